package execlog

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ksred/tradecron-api/pkg/response"
)

// Service exposes read access to the execution audit trail
type Service struct {
	db *Database
}

func NewService(gormDB *gorm.DB) *Service {
	return &Service{
		db: NewDatabase(gormDB),
	}
}

// ListLogs returns execution log entries matching the filter
func (s *Service) ListLogs(filter ListFilter) ([]ExecutionLog, error) {
	return s.db.ListLogs(filter)
}

// GetDB exposes the database wrapper for the scheduler's executor
func (s *Service) GetDB() *Database {
	return s.db
}

// GinHandlers contains HTTP handlers for execution log endpoints
type GinHandlers struct {
	service *Service
}

func NewGinHandlers(service *Service) *GinHandlers {
	return &GinHandlers{
		service: service,
	}
}

// ListLogsHandler handles GET requests for the execution audit trail.
// Query parameters: account_id, order_id, status, q (message substring),
// limit, offset.
func (h *GinHandlers) ListLogsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filter := ListFilter{
			AccountID: c.Query("account_id"),
			OrderID:   c.Query("order_id"),
			Status:    c.Query("status"),
			Message:   c.Query("q"),
		}

		if raw := c.Query("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit <= 0 {
				response.BadRequest(c, "limit must be a positive integer")
				return
			}
			filter.Limit = limit
		}
		if raw := c.Query("offset"); raw != "" {
			offset, err := strconv.Atoi(raw)
			if err != nil || offset < 0 {
				response.BadRequest(c, "offset must be a non-negative integer")
				return
			}
			filter.Offset = offset
		}

		logs, err := h.service.ListLogs(filter)
		response.Handle(c, logs, err)
	}
}
