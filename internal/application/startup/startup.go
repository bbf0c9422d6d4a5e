// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/AtRiskMedia/ace-block/internal/application/container"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/ace-block/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/ace-block/internal/presentation/http/server"
	"github.com/AtRiskMedia/ace-block/pkg/config"
	"github.com/gin-gonic/gin"
)

// NewLogger builds the channeled logger from configuration.
func NewLogger() (*logging.ChanneledLogger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.JSONFormat = config.LogJSON
	cfg.DefaultLevel = logging.ParseLevel(config.LogLevel)
	cfg.ChannelLevels = logging.ParseChannelLevels(config.LogChannelLevels)
	if config.LogDirectory != "" {
		cfg.OutputToFile = true
		cfg.LogDirectory = config.LogDirectory
	}
	return logging.NewChanneledLogger(cfg)
}

// OpenDatabase connects to the configured database.
func OpenDatabase(logger *logging.ChanneledLogger) (*database.DB, error) {
	return database.Open(database.Options{
		Driver:             config.DBDriver,
		DSN:                config.DBDSN,
		AuthToken:          config.TursoAuthToken,
		MaxOpenConns:       config.DBMaxOpenConns,
		MaxIdleConns:       config.DBMaxIdleConns,
		ConnMaxLifetime:    time.Duration(config.DBConnMaxLifetimeMinutes) * time.Minute,
		ConnMaxIdleTime:    time.Duration(config.DBConnMaxIdleMinutes) * time.Minute,
		SlowQueryThreshold: config.SlowQueryThreshold,
	}, logger)
}

// Migrate creates the schema and the system context.
func Migrate(db *database.DB, logger *logging.ChanneledLogger) error {
	start := time.Now()
	creator := database.NewTableCreator()

	if err := creator.CreateSchema(db.DB); err != nil {
		logger.LogStartupPhase("migrate", time.Since(start), false, map[string]any{"error": err.Error()})
		return err
	}
	if err := creator.SeedSystemContext(db.DB); err != nil {
		logger.LogStartupPhase("migrate", time.Since(start), false, map[string]any{"error": err.Error()})
		return err
	}

	logger.LogStartupPhase("migrate", time.Since(start), true, map[string]any{"database": db.ConnectionInfo()})
	return nil
}

// Bootstrap opens and migrates the database and wires the container.
func Bootstrap() (*container.Container, error) {
	logger, err := NewLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	db, err := OpenDatabase(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := Migrate(db, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	appContainer, err := container.NewContainer(db, logger)
	if err != nil {
		db.Close()
		return nil, err
	}
	return appContainer, nil
}

// Initialize performs the complete startup sequence and serves until a
// shutdown signal arrives.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("Initializing ACE block service...")

	// Step 1: Database, schema and dependency injection container
	appContainer, err := Bootstrap()
	if err != nil {
		return err
	}
	defer appContainer.Logger.Close()

	logger := appContainer.Logger
	logger.Startup().Info("Container initialization complete - switching to channeled logging",
		"database", appContainer.DB.ConnectionInfo(),
		"language", appContainer.Strings.Language())

	if appContainer.JWTSecret == "" {
		logger.Startup().Warn("JWT_SECRET is not set; authenticated endpoints will reject every request")
	}

	// Step 2: Start background cleanup worker
	logger.Startup().Info("Starting background cleanup worker...")
	startWorkerTime := time.Now()

	cleanupWorker := cleanup.NewWorker(map[string]cleanup.Purger{
		"graphs": appContainer.GraphCache,
	}, cleanup.NewConfig(), logger)
	go cleanupWorker.Start(ctx)

	logger.Startup().Info("Background cleanup worker started", "duration", time.Since(startWorkerTime))

	// Step 3: Start HTTP server
	port := config.Port
	httpServer := server.New(port, appContainer)

	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"port", port,
		"analytics", config.AnalyticsBaseURL)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	cancelBackgroundTasks()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing database...")
	if err := appContainer.Close(); err != nil {
		logger.Shutdown().Error("Error closing database", "error", err.Error())
	}

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
