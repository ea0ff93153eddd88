package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cuongbtq/jobboard-be/internal/api/handler"
	"github.com/cuongbtq/jobboard-be/internal/api/notification"
	"github.com/cuongbtq/jobboard-be/internal/api/router"
	"github.com/cuongbtq/jobboard-be/internal/api/storage"
	"github.com/cuongbtq/jobboard-be/internal/api/workflow"
	"github.com/cuongbtq/jobboard-be/internal/auth"
	"github.com/cuongbtq/jobboard-be/internal/config"
	"github.com/cuongbtq/jobboard-be/internal/mailer"
	"github.com/cuongbtq/jobboard-be/shared/database"
	"github.com/cuongbtq/jobboard-be/shared/logger"
	"github.com/cuongbtq/jobboard-be/shared/rabbitmq"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables or flags")
	}

	defaultConfigPath := os.Getenv("API_SERVICE_CONFIG_PATH")
	if defaultConfigPath == "" {
		defaultConfigPath = "configs/api-service/config.yaml"
	}
	configPath := flag.String("config", defaultConfigPath, "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	appLogger, err := initLogger(&cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer appLogger.Close()

	appLogger.Info("Starting API service",
		slog.String("app", cfg.App.Name),
		slog.String("version", cfg.App.Version),
		slog.String("environment", cfg.App.Environment),
	)

	dbClient, err := initDatabase(&cfg.Database, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbClient.Close()

	store := storage.NewStorage(dbClient, appLogger.Logger)
	if cfg.Database.AutoMigrate {
		if err := store.Migrate(context.Background()); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	sender, closeSender, err := initSender(cfg, appLogger.Logger)
	if err != nil {
		return fmt.Errorf("failed to initialize mailer: %w", err)
	}
	defer closeSender()

	deps := initDependencies(cfg, appLogger.Logger, store, sender)
	r := initRouter(cfg, deps)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	appLogger.Info("API service is running",
		slog.String("address", addr),
		slog.String("mailer_transport", cfg.Mailer.Transport),
		slog.Bool("require_token", cfg.Auth.RequireToken),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		appLogger.Info("Shutting down server...", slog.String("signal", sig.String()))
	case err := <-serverErr:
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown",
			slog.Any("error", err),
		)
		return err
	}

	appLogger.Info("Server shutdown complete")
	return nil
}

// initLogger initializes and configures the application logger
func initLogger(cfg *config.LoggingConfig) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:        cfg.Level,
		Format:       cfg.Format,
		Output:       cfg.Output,
		EnableSource: cfg.EnableCaller,
		TimeFormat:   time.RFC3339,
	})
}

func initDatabase(cfg *config.DatabaseConfig, logger *slog.Logger) (*database.Client, error) {
	return database.NewClient(&database.Config{
		Driver:          cfg.Driver,
		Host:            cfg.Host,
		Port:            cfg.Port,
		User:            cfg.User,
		Password:        cfg.Password,
		Database:        cfg.Database,
		SSLMode:         cfg.SSLMode,
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.ConnMaxIdleTime,
	}, logger)
}

// initSender builds the configured email transport. The returned func
// releases whatever connection the transport holds.
func initSender(cfg *config.Config, logger *slog.Logger) (mailer.Sender, func(), error) {
	switch cfg.Mailer.Transport {
	case config.TransportQueue:
		client, err := initRabbitMQ(&cfg.RabbitMQ, logger)
		if err != nil {
			return nil, nil, err
		}
		return mailer.NewQueueSender(client, logger), func() { _ = client.Close() }, nil

	case config.TransportSMTP:
		return mailer.NewSMTPSender(smtpConfig(&cfg.Mailer, cfg.Workflow.EmailTimeout), logger), func() {}, nil

	default:
		return mailer.NewLogSender(logger), func() {}, nil
	}
}

// smtpConfig bounds each send by the workflow email timeout
func smtpConfig(cfg *config.MailerConfig, timeout time.Duration) mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		TLS:      cfg.SMTP.TLS,
		FromName: cfg.FromName,
		From:     cfg.From,
		Timeout:  timeout,
	}
}

// initRabbitMQ initializes the RabbitMQ client
func initRabbitMQ(cfg *config.RabbitMQConfig, logger *slog.Logger) (*rabbitmq.Client, error) {
	return rabbitmq.NewClient(&rabbitmq.Config{
		Host:               cfg.Host,
		Port:               cfg.Port,
		User:               cfg.User,
		Password:           cfg.Password,
		VHost:              cfg.VHost,
		ExchangeName:       cfg.Exchange.Name,
		ExchangeType:       cfg.Exchange.Type,
		ExchangeDurable:    cfg.Exchange.Durable,
		ExchangeAutoDelete: cfg.Exchange.AutoDelete,
		QueueName:          cfg.Queue.Name,
		QueueDurable:       cfg.Queue.Durable,
		QueueAutoDelete:    cfg.Queue.AutoDelete,
		QueueExclusive:     cfg.Queue.Exclusive,
		DeadLetterExchange: cfg.DeadLetterExchange,
		RoutingKey:         cfg.RoutingKey,
		RetryAttempts:      cfg.Connection.RetryAttempts,
		RetryInterval:      cfg.Connection.RetryInterval,
		Heartbeat:          cfg.Connection.Heartbeat,
		ConnectionTimeout:  cfg.Connection.ConnectionTimeout,
		PublishRetries:     cfg.Publish.RetryAttempts,
		PublishRetryDelay:  cfg.Publish.RetryInterval,
		PublishBackoffMult: cfg.Publish.BackoffMultiplier,
	}, logger)
}

func initDependencies(cfg *config.Config, logger *slog.Logger, store *storage.Storage, sender mailer.Sender) *handler.Dependencies {
	dispatcher := mailer.NewDispatcher(sender)
	notifications := notification.NewLog(store, logger)

	return &handler.Dependencies{
		Logger:        logger,
		Store:         store,
		Engine:        workflow.NewEngine(store, notifications, dispatcher, workflow.Config{EmailTimeout: cfg.Workflow.EmailTimeout}, logger),
		Queries:       workflow.NewQueries(store),
		Notifications: notifications,
		Mailer:        dispatcher,
		Issuer:        auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	}
}

// initRouter initializes the Gin router with all routes and middleware
func initRouter(cfg *config.Config, deps *handler.Dependencies) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	return router.SetupRouter(deps, router.Options{
		ServiceName:    cfg.App.Name,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RequireToken:   cfg.Auth.RequireToken,
	})
}
