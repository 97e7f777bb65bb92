package main

import (
	"context"
	_ "customer-management/docs"
	"customer-management/internal/api"
	"customer-management/internal/batch"
	"customer-management/internal/config"
	"customer-management/internal/domain/customer"
	"customer-management/internal/domain/loan"
	"customer-management/internal/domain/user"
	"customer-management/internal/event"
	"customer-management/internal/infrastructure/cache"
	"customer-management/internal/infrastructure/database/postgres"
	"customer-management/internal/infrastructure/logging"
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
	"github.com/robfig/cron/v3"
)

const (
	defaultRefreshSchedule = "0 3 * * *"
	defaultRefreshTimeout  = 30 * time.Minute
)

// @title Customer Management API
// @version 1.0
// @description Customer records with server-computed loan eligibility and maximum loan amount.

// @BasePath /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, logger := initializeApp()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool := initializeDatabase(ctx, cfg, logger)
	defer closeDatabase(dbPool, logger)

	redisClient := initializeRedis(ctx, cfg.Redis, logger)
	defer cache.Close(redisClient, logger)

	amqpConn := initializeRabbitMQ(cfg.RabbitMQ, logger)
	defer closeRabbitMQ(amqpConn, logger)

	customerService, userService := initializeServices(cfg, dbPool, redisClient, amqpConn, logger)

	refreshJob := batch.NewRefreshAssessmentJob(customerService, cfg.Batch.Workers, logger)
	cronScheduler := startBatchJobs(cfg, logger, refreshJob)
	router := api.SetupRouter(ctx, customerService, userService, cfg, logger)

	srv, serverErrors, shutdownChan := startServer(cfg, router, logger)
	handleShutdown(srv, cronScheduler, shutdownChan, serverErrors, logger)
}

func initializeApp() (*config.Config, *slog.Logger) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.NewLogger(cfg.Logger)
	logger.Info("Application starting...", "port", cfg.Server.Port, "auth_enabled", cfg.Server.Auth.Enabled)

	if err := validateAuthConfig(cfg.Server.Auth); err != nil {
		logger.Error("Invalid auth configuration", "error", err)
		os.Exit(1)
	}

	return cfg, logger
}

func validateAuthConfig(cfg config.AuthConfig) error {
	if !cfg.Enabled {
		return nil
	}
	if cfg.JWTSecret == "" {
		return errors.New("server.auth.jwtSecret must be set when auth is enabled")
	}
	if cfg.TokenTTL <= 0 {
		return fmt.Errorf("server.auth.tokenTTL must be positive, got %s", cfg.TokenTTL)
	}
	return nil
}

func initializeDatabase(ctx context.Context, cfg *config.Config, logger *slog.Logger) *pgxpool.Pool {
	logger.Info("Initializing database connection pool...")
	dbPool, err := postgres.NewConnectionPool(ctx, cfg.Database, logger)
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

// initializeRedis returns nil when caching is disabled or Redis is unreachable;
// the service then reads straight from Postgres.
func initializeRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	if !cfg.Enabled {
		logger.Info("Redis cache disabled via configuration.")
		return nil
	}
	client, err := cache.Connect(ctx, cfg, redis.NewClient, logger)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without customer cache", "error", err)
		return nil
	}
	return client
}

func initializeRabbitMQ(cfg config.RabbitMQConfig, logger *slog.Logger) *amqp.Connection {
	if !cfg.Enabled {
		logger.Info("RabbitMQ event publishing disabled via configuration.")
		return nil
	}
	conn, err := event.Dial(cfg.URL, logger)
	if err != nil {
		logger.Warn("RabbitMQ unavailable, customer events will be dropped", "error", err)
		return nil
	}
	return conn
}

func closeRabbitMQ(conn *amqp.Connection, logger *slog.Logger) {
	if conn == nil {
		return
	}
	logger.Info("Closing RabbitMQ connection...")
	if err := conn.Close(); err != nil {
		logger.Error("Failed to close RabbitMQ connection", "error", err)
	}
}

func newCustomerRepository(db postgres.DBPool, redisClient *redis.Client, cfg config.RedisConfig, logger *slog.Logger) customer.CustomerRepository {
	var repo customer.CustomerRepository = postgres.NewCustomerRepository(db, logger)
	if redisClient == nil {
		return repo
	}
	logger.Info("Customer lookups cached in Redis", "ttl", cfg.TTL)
	return cache.NewCachedCustomerRepository(repo, redisClient, cfg.TTL, logger)
}

func newEventPublisher(conn *amqp.Connection, exchange string, logger *slog.Logger) event.EventPublisher {
	if conn == nil {
		return event.NewNoopEventPublisher(logger)
	}
	pub, err := event.NewRabbitMQEventPublisher(conn, exchange, logger)
	if err != nil {
		logger.Warn("Failed to set up RabbitMQ publisher, customer events will be dropped", "error", err)
		return event.NewNoopEventPublisher(logger)
	}
	return pub
}

func initializeServices(
	cfg *config.Config,
	dbPool postgres.DBPool,
	redisClient *redis.Client,
	amqpConn *amqp.Connection,
	logger *slog.Logger,
) (customer.CustomerService, user.UserService) {
	logger.Info("Initializing application components...")

	policy, err := cfg.Loan.Policy()
	if err != nil {
		logger.Error("Invalid loan policy", "error", err)
		os.Exit(1)
	}
	logger.Info("Loan eligibility policy loaded",
		"min_monthly_salary", policy.MinMonthlySalary.String(),
		"min_credit_score", policy.MinCreditScore,
		"employment_statuses", policy.EmploymentStatuses,
	)

	customerService := customer.NewCustomerService(
		newCustomerRepository(dbPool, redisClient, cfg.Redis, logger),
		loan.NewEligibilityEvaluator(policy),
		loan.NewLimitCalculator(),
		newEventPublisher(amqpConn, cfg.RabbitMQ.ExchangeName, logger),
		logger,
	)
	userService := user.NewUserService(postgres.NewUserRepository(dbPool, logger), logger)
	return customerService, userService
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

func handleShutdown(srv *http.Server, cronScheduler *cron.Cron, shutdownChan <-chan os.Signal, serverErrors <-chan error, logger *slog.Logger) {
	logger.Info("Shutdown handler started. Waiting for signal or server error...")

	var triggerReason string
	select {
	case sig := <-shutdownChan:
		triggerReason = "signal: " + sig.String()
		logger.Info("Shutdown signal received.", "signal", sig.String())
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server exited unexpectedly before signal", "error", err)
			os.Exit(1)
		}
		triggerReason = "server exited"
		logger.Info("Server goroutine finished before signal.", "error", err)
	}

	logger.Info("Starting graceful shutdown...", "trigger", triggerReason)

	logger.Info("Stopping cron scheduler...")
	cronCtx := cronScheduler.Stop()
	select {
	case <-cronCtx.Done():
		logger.Info("Cron scheduler stopped gracefully.")
	case <-time.After(15 * time.Second):
		logger.Warn("Cron scheduler shutdown timed out.")
	}

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

	logger.Info("Waiting for server goroutine to confirm exit...")
	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Warn("Server goroutine exited with unexpected error after shutdown", "error", err)
		} else {
			logger.Info("Server goroutine confirmed exit.")
		}
	case <-time.After(5 * time.Second):
		logger.Warn("Timed out waiting for server goroutine confirmation.")
	}

	logger.Info("Application shutdown process complete.")
}

func startBatchJobs(cfg *config.Config, logger *slog.Logger, refreshJob *batch.RefreshAssessmentJob) *cron.Cron {
	logger.Info("Initializing batch job scheduler...")
	c := cron.New()

	scheduleSpec := cfg.Batch.AssessmentRefreshSchedule
	if scheduleSpec == "" {
		scheduleSpec = defaultRefreshSchedule
		logger.Warn("Batch assessment refresh schedule not configured, using default", "schedule", scheduleSpec)
	}
	jobTimeout := cfg.Batch.AssessmentRefreshTimeout
	if jobTimeout <= 0 {
		jobTimeout = defaultRefreshTimeout
	}

	jobID, err := c.AddJob(scheduleSpec, cron.FuncJob(func() {
		jobLogger := logger.With("job_name", "LoanAssessmentRefresh")
		jobLogger.Info("Cron triggered: Running loan assessment refresh job.")

		ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
		defer cancel()

		if runErr := refreshJob.Run(ctx); runErr != nil {
			jobLogger.Error("Loan assessment refresh job finished with error", slog.Any("error", runErr))
		}
	}))
	if err != nil {
		logger.Error("Failed to schedule loan assessment refresh job", "schedule", scheduleSpec, slog.Any("error", err))
	} else {
		logger.Info("Scheduled loan assessment refresh job", "schedule", scheduleSpec, "job_id", jobID)
	}

	c.Start()
	logger.Info("Cron scheduler started.")
	return c
}
