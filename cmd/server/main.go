package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/ksred/tradecron-api/internal/accounts"
	"github.com/ksred/tradecron-api/internal/auth"
	"github.com/ksred/tradecron-api/internal/broker"
	"github.com/ksred/tradecron-api/internal/config"
	"github.com/ksred/tradecron-api/internal/database"
	"github.com/ksred/tradecron-api/internal/execlog"
	"github.com/ksred/tradecron-api/internal/orders"
	"github.com/ksred/tradecron-api/internal/scheduler"
	"github.com/ksred/tradecron-api/pkg/middleware"

	"github.com/gin-gonic/gin"
)

// init configures the application logging based on environment settings
// In development mode, it enables pretty printing with timestamps
// Debug logging can be enabled via DEBUG environment variable
func init() {
	// Configure pretty logging for development
	if os.Getenv("ENV") != "production" {
		output := zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
		zlog.Logger = zerolog.New(output).With().Timestamp().Logger()
	}

	// Set global log level
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if os.Getenv("DEBUG") == "true" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}

// main initializes and runs the scheduled-order API server together with
// the background order scheduler, with graceful shutdown support for both
func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Initialize database
	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to initialize database")
	}

	// Initialize router
	router := gin.Default()

	// Initialize services and handlers
	accountsService := accounts.NewService(db)
	accountsHandlers := accounts.NewGinHandlers(accountsService)

	// Seed the bootstrap credentials so the first client can authenticate
	if _, err := accountsService.EnsureAccount(cfg.BootstrapAPIKey, cfg.BootstrapAPISecret); err != nil {
		zlog.Fatal().Err(err).Msg("Failed to seed bootstrap account")
	}

	authService := auth.NewService(cfg.JWTSecret, accountsService.GetDB())
	authHandlers := auth.NewGinHandlers(authService)

	ordersService := orders.NewService(db)

	logService := execlog.NewService(db)
	logHandlers := execlog.NewGinHandlers(logService)

	// Create the broker gateway and the order scheduler
	gateway := broker.NewGateway(cfg.BrokerEnableLive, cfg.BrokerBaseURL)
	executor := scheduler.NewExecutor(
		ordersService.GetDB(),
		accountsService.GetDB(),
		logService.GetDB(),
		gateway,
	)
	ordersHandlers := orders.NewGinHandlers(ordersService, executor)

	orderScheduler := scheduler.NewScheduler(ordersService.GetDB(), executor, cfg)
	orderScheduler.Start(context.Background())

	// Setup middleware
	router.Use(middleware.RateLimit())

	// Setup API routes
	setupRoutes(router, cfg.JWTSecret, authHandlers, accountsHandlers, ordersHandlers, logHandlers)

	// Create server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown setup
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal().Err(err).Msg("listen")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zlog.Info().Msg("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	// Stop the scheduler last so in-flight placements reach a terminal status
	orderScheduler.Stop()

	zlog.Info().Msg("Server exiting")
}

// setupRoutes configures all API endpoints and their handlers
// It groups routes by functionality and applies appropriate middleware:
// - Auth routes: Public endpoints for authentication
// - Account and order routes: Protected by JWT authentication
// - Internal routes: Protected by internal network authentication
func setupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authHandlers *auth.GinHandlers,
	accountsHandlers *accounts.GinHandlers,
	ordersHandlers *orders.GinHandlers,
	logHandlers *execlog.GinHandlers,
) {
	v1 := router.Group("/api/v1")
	{
		// Auth routes
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/token", authHandlers.GenerateTokenHandler())
		}

		// Account routes
		accountsGroup := v1.Group("/accounts")
		accountsGroup.Use(middleware.JWTAuth(jwtSecret))
		{
			accountsGroup.POST("", accountsHandlers.CreateAccountHandler())
			accountsGroup.GET("", accountsHandlers.ListAccountsHandler())
		}

		// Order routes
		ordersGroup := v1.Group("/orders")
		ordersGroup.Use(middleware.JWTAuth(jwtSecret))
		{
			ordersGroup.POST("", ordersHandlers.CreateOrderHandler())
			ordersGroup.GET("", ordersHandlers.ListOrdersHandler())
			ordersGroup.GET("/:order_id", ordersHandlers.GetOrderHandler())
		}

		// Execution log routes
		executionsGroup := v1.Group("/executions")
		executionsGroup.Use(middleware.JWTAuth(jwtSecret))
		{
			executionsGroup.GET("", logHandlers.ListLogsHandler())
		}

		// Internal routes (should be protected by internal network)
		internal := v1.Group("/internal")
		internal.Use(middleware.InternalAuth(jwtSecret))
		{
			internal.POST("/orders/:order_id/place", ordersHandlers.PlaceOrderNowHandler())
		}
	}
}
