package main

import (
	"context"
	_ "credit-api/docs"
	"credit-api/internal/api"
	mw "credit-api/internal/api/middleware"
	"credit-api/internal/config"
	"credit-api/internal/domain/credit"
	"credit-api/internal/domain/customer"
	"credit-api/internal/event"
	"credit-api/internal/infrastructure/database/migrations"
	"credit-api/internal/infrastructure/database/postgres"
	"credit-api/internal/infrastructure/logging"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

// @title Credit API
// @version 1.0
// @description Customer registration and credit request management.

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	runMigrations(cfg.Database, logger)

	dbPool := initializeDatabase(cfg, logger)
	defer closeDatabase(dbPool, logger)

	rabbitMQConn := setupRabbitMQ(cfg, logger)
	publisher := initializeEventPublisher(cfg, rabbitMQConn, logger)

	redisClient := initializeRedisClient(cfg, logger)
	rateLimiter := mw.NewRateLimiterMiddleware(cfg.Server.RateLimit, redisClient, logger)

	pruneCtx, stopPrune := context.WithCancel(context.Background())
	go rateLimiter.Prune(pruneCtx, 10*time.Minute)

	customerService, creditService := initializeServices(dbPool, publisher, logger)
	router := api.SetupRouter(customerService, creditService, rateLimiter, databaseHealth(dbPool), cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, shutdownChan, serverErrors, logger, stopPrune,
		func() { closeRabbitMQConnection(rabbitMQConn, logger) },
		func() { closeRedisClient(redisClient, logger) },
	)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "port", cfg.Server.Port, "auth_enabled", cfg.Server.Auth.Enabled)

	return cfg, logger
}

func runMigrations(cfg config.DatabaseConfig, logger *slog.Logger) {
	if !cfg.MigrationsEnabled {
		logger.Info("Database migrations disabled via configuration.")
		return
	}

	m, err := migrations.New(cfg.URL, logger)
	if err != nil {
		logger.Error("Failed to initialize migrations", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := m.Close(); err != nil {
			logger.Warn("Failed to close migrator", "error", err)
		}
	}()

	if err := m.Up(); err != nil {
		logger.Error("Failed to apply migrations", "error", err)
		os.Exit(1)
	}
}

func initializeDatabase(cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(context.Background(), cfg.Database, logger)
	if err != nil {
		logger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	return dbPool
}

func closeDatabase(dbPool *pgxpool.Pool, logger *slog.Logger) {
	logger.Info("Closing database connection pool...")
	dbPool.Close()
}

type pinger interface {
	Ping(ctx context.Context) error
}

func databaseHealth(db pinger) api.HealthChecker {
	return func(r *http.Request) error {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		return db.Ping(ctx)
	}
}

func setupRabbitMQ(cfg *config.Config, logger *slog.Logger) *amqp.Connection {
	if !cfg.RabbitMQ.Enabled {
		logger.Info("RabbitMQ disabled via configuration; domain events will be dropped.")
		return nil
	}

	conn, err := amqp.DialConfig(cfg.RabbitMQ.URL(), amqp.Config{
		Heartbeat: 10 * time.Second,
		Dial:      amqp.DefaultDial(5 * time.Second),
	})
	if err != nil {
		logger.Warn("Failed to connect to RabbitMQ; continuing without event publishing", "error", err, "host", cfg.RabbitMQ.Host)
		return nil
	}
	logger.Info("Connected to RabbitMQ", "host", cfg.RabbitMQ.Host, "port", cfg.RabbitMQ.Port)
	return conn
}

func initializeEventPublisher(cfg *config.Config, conn *amqp.Connection, logger *slog.Logger) event.EventPublisher {
	var next event.EventPublisher = event.NopPublisher{}
	if conn != nil {
		rabbit, err := event.NewRabbitMQEventPublisher(conn, cfg.RabbitMQ.ExchangeName, logger)
		if err != nil {
			logger.Warn("Failed to set up RabbitMQ publisher; domain events will be dropped", "error", err)
		} else {
			next = rabbit
		}
	}
	return event.NewBreakerPublisher(next, event.DefaultBreakerSettings(), logger)
}

func closeRabbitMQConnection(rabbitConn *amqp.Connection, logger *slog.Logger) {
	if rabbitConn == nil {
		logger.Info("RabbitMQ connection was not established, skipping close.")
		return
	}
	if rabbitConn.IsClosed() {
		logger.Info("RabbitMQ connection already closed, skipping close.")
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := rabbitConn.Close(); err != nil {
		logger.Error("Failed to close RabbitMQ connection gracefully", slog.Any("error", err))
	}
}

func initializeRedisClient(cfg *config.Config, logger *slog.Logger) *redis.Client {
	if !cfg.Redis.Enabled {
		logger.Info("Redis disabled via configuration; rate limiting stays local to this instance.")
		return nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Failed to connect to Redis; falling back to local rate limiting", "error", err, "addr", cfg.Redis.Addr)
		_ = rdb.Close()
		return nil
	}

	logger.Info("Redis client connected successfully.", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
	return rdb
}

func closeRedisClient(redisClient *redis.Client, logger *slog.Logger) {
	if redisClient == nil {
		logger.Info("Redis client was not initialized, skipping close.")
		return
	}
	logger.Info("Closing Redis client connection...")
	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close Redis client connection gracefully", "error", err)
	}
}

func initializeServices(dbPool postgres.DBPool, publisher event.EventPublisher, logger *slog.Logger) (customer.CustomerService, credit.CreditService) {
	logger.Info("Initializing application components...")
	customerRepo := postgres.NewCustomerRepository(dbPool, logger)
	creditRepo := postgres.NewCreditRepository(dbPool, logger)
	customerService := customer.NewCustomerService(customerRepo, publisher, logger)
	return customerService, credit.NewCreditService(creditRepo, customerService, publisher, logger)
}

func startServer(cfg *config.Config, router http.Handler, logger *slog.Logger) (*http.Server, <-chan error, <-chan os.Signal) {
	logger.Info("Setting up HTTP server...", "port", cfg.Server.Port)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info(fmt.Sprintf("Server listening on port %d", cfg.Server.Port))
		err := srv.ListenAndServe()
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server error", "error", err)
			serverErrors <- err
		} else {
			logger.Info("Server closed gracefully.")
			serverErrors <- nil
		}
	}()
	return srv, serverErrors, shutdownChan
}

// handleShutdown blocks until a signal or a server failure, then stops the
// HTTP server before running the closers in order.
func handleShutdown(srv *http.Server, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger, closers ...func()) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
		}
		triggerReason = "server exited"
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)
	shutdownHTTPServer(srv, serverErrors, triggerReason != "server exited", logger)

	for _, closeFn := range closers {
		closeFn()
	}
	logger.Info("Application shutdown process complete.")
}

func shutdownHTTPServer(srv *http.Server, serverErrors <-chan error, awaitExit bool, logger *slog.Logger) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	logger.Info("Shutting down HTTP server...")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", "error", err)
		if err := srv.Close(); err != nil {
			logger.Error("HTTP server forced close failed", "error", err)
		}
	} else {
		logger.Info("HTTP server gracefully stopped.")
	}

	if !awaitExit {
		return
	}
	select {
	case err := <-serverErrors:
		if err != nil {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}
}
