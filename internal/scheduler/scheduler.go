package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/ksred/tradecron-api/internal/config"
	"github.com/ksred/tradecron-api/internal/orders"
)

// Scheduler polls for due pending orders on a fixed interval, claims each
// one atomically, and hands claimed order ids to a bounded worker pool.
// The poll loop never blocks on order execution; all gateway latency is
// isolated inside the workers.
type Scheduler struct {
	orders   *orders.Database
	executor *Executor

	pollInterval  time.Duration
	batchSize     int
	staleClaimAge time.Duration

	group  *errgroup.Group
	cancel context.CancelFunc
	done   chan struct{}
}

func NewScheduler(ordersDB *orders.Database, executor *Executor, cfg *config.Config) *Scheduler {
	group := &errgroup.Group{}
	group.SetLimit(cfg.WorkerCount)

	return &Scheduler{
		orders:        ordersDB,
		executor:      executor,
		pollInterval:  cfg.PollInterval,
		batchSize:     cfg.BatchSize,
		staleClaimAge: cfg.StaleClaimAge,
		group:         group,
	}
}

// Start begins the poll loop in a background goroutine. The loop runs
// until the context is cancelled or Stop is called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)
}

// Stop cancels the timer, waits for the poll loop to exit, and then waits
// for in-flight workers to reach their own terminal status.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	_ = s.group.Wait()
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.done)

	logger := log.With().Str("component", "order_scheduler").Logger()
	logger.Info().
		Dur("poll_interval", s.pollInterval).
		Int("batch_size", s.batchSize).
		Msg("starting order scheduler")

	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("shutting down order scheduler")
			return
		case <-ticker.C:
			// A failed cycle is isolated: log it and let the next
			// tick proceed normally.
			if err := s.runCycle(ctx); err != nil {
				logger.Error().Err(err).Msg("poll cycle failed")
			}
		}
	}
}

// runCycle performs one poll cycle: reclaim stale claims, select due
// pending orders up to the batch cap, claim each, and dispatch the claims
// to the worker pool by order id.
func (s *Scheduler) runCycle(ctx context.Context) error {
	logger := log.With().Str("component", "order_scheduler").Logger()
	now := time.Now().UTC()

	if s.staleClaimAge > 0 {
		reclaimed, err := s.orders.ReclaimStale(now.Add(-s.staleClaimAge))
		if err != nil {
			return fmt.Errorf("reclaiming stale orders: %w", err)
		}
		if reclaimed > 0 {
			logger.Warn().Int64("count", reclaimed).Msg("reclaimed stale in-progress orders")
		}
	}

	due, err := s.orders.SelectDuePending(now, s.batchSize)
	if err != nil {
		return fmt.Errorf("selecting due orders: %w", err)
	}
	if len(due) == 0 {
		return nil
	}

	logger.Info().Int("due_count", len(due)).Msg("processing due orders")

	for _, order := range due {
		claimed, err := s.orders.ClaimOrder(order.OrderID)
		if err != nil {
			logger.Error().Err(err).Str("order_id", order.OrderID).Msg("claim failed")
			continue
		}
		if !claimed {
			// Claimed elsewhere or already processed; not an error.
			continue
		}

		// Dispatch by id only: the worker re-reads fresh state rather
		// than sharing this cycle's in-memory row.
		orderID := order.OrderID
		submitted := s.group.TryGo(func() error {
			if err := s.executor.ExecuteOrder(ctx, orderID); err != nil {
				log.Error().
					Err(err).
					Str("component", "order_scheduler").
					Str("order_id", orderID).
					Msg("order execution failed")
			}
			return nil
		})
		if !submitted {
			// Pool saturated: the order stays in_progress and the
			// staleness reclaim will return it to pending.
			logger.Warn().Str("order_id", orderID).Msg("worker pool saturated, deferring order")
		}
	}

	return nil
}
