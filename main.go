// Package main provides the main entry point for the ICCT tournament registration system
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"gopkg.in/natefinch/lumberjack.v2"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/icct-platform/registration-backend/app/handlers"
	"github.com/icct-platform/registration-backend/app/router"
	"github.com/icct-platform/registration-backend/app/scheduler"
	"github.com/icct-platform/registration-backend/app/services"
	businessflow "github.com/icct-platform/registration-backend/business_flow"
	"github.com/icct-platform/registration-backend/config"
	"github.com/icct-platform/registration-backend/models"
	"github.com/icct-platform/registration-backend/repository"
)

// Application represents the main application structure
type Application struct {
	router    *router.FiberRouter
	config    *config.ProductionConfig
	server    *fiber.App
	stopFuncs []func()
}

func main() {
	log.Println("Starting ICCT registration application...")

	// Load production configuration
	cfg, err := config.LoadProductionConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg.Logging)

	// Initialize application
	app, err := initializeApplication(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	// Setup routes
	app.router.SetupRoutes()

	// Setup graceful shutdown
	_, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start server in goroutine
	go func() {
		address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		log.Printf("Server starting on %s", address)

		if err := app.server.Listen(address); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-sigChan
	log.Println("Shutting down gracefully...")

	// Stop background workers
	for _, fn := range app.stopFuncs {
		fn()
	}

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.server.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
}

// setupLogging routes the standard logger to a rotating file when configured
func setupLogging(cfg config.LoggingConfig) {
	if cfg.Output == "stdout" || cfg.FilePath == "" {
		return
	}

	rotating := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	switch cfg.Output {
	case "file":
		log.SetOutput(rotating)
	case "both":
		log.SetOutput(io.MultiWriter(os.Stdout, rotating))
	}
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.LUTC)
}

// initializeDatabase initializes the database connection with connection pooling
func initializeDatabase(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Get underlying sql.DB for connection pooling configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pooling
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Test the connection
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Printf("Database connection established with %d max open connections, %d max idle connections",
		cfg.MaxOpenConns, cfg.MaxIdleConns)

	return db, nil
}

// ensureSchema migrates the schema for all persisted entities. The sequence
// counter table must exist with its primary key before any allocation runs;
// the unique constraint is what makes concurrent provisioning safe.
func ensureSchema(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.SequenceCounter{},
		&models.Team{},
		&models.Player{},
		&models.DocumentAsset{},
		&models.Match{},
		&models.AuditLog{},
	)
}

// initializeCache initializes the Cache client and verifies connectivity
func initializeCache(cfg config.CacheConfig) (*redis.Client, error) {
	if !cfg.Enabled || cfg.Provider != "redis" {
		return nil, nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	// Override DB if provided in config
	opt.DB = cfg.RedisDB

	rc := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	log.Printf("Redis connection established to %s (db=%d)", cfg.RedisURL, cfg.RedisDB)
	return rc, nil
}

// startCacheHealthMonitor starts a background goroutine that periodically pings Redis
// to detect connectivity issues. The returned cancel function stops the monitor.
func startCacheHealthMonitor(parent context.Context, client *redis.Client, interval time.Duration) func() {
	monitorCtx, cancel := context.WithCancel(parent)
	if interval <= 0 {
		interval = 30 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-monitorCtx.Done():
				return
			case <-ticker.C:
				ctx, c := context.WithTimeout(context.Background(), 3*time.Second)
				if err := client.Ping(ctx).Err(); err != nil {
					log.Printf("Redis healthcheck failed: %v", err)
				}
				c()
			}
		}
	}()
	return cancel
}

// initializeNotificationService initializes the notification service
func initializeNotificationService(cfg *config.ProductionConfig) (services.NotificationService, error) {
	var emailProvider services.EmailProvider

	switch cfg.Email.Provider {
	case "smtp":
		emailProvider = services.NewSMTPEmailProvider(
			cfg.Email.Host,
			cfg.Email.Port,
			cfg.Email.Username,
			cfg.Email.Password,
			cfg.Email.FromEmail,
			cfg.Email.FromName,
		)
	case "ses":
		provider, err := services.NewSESEmailProvider(
			context.Background(),
			cfg.Email.SESRegion,
			cfg.Email.SESAccessKeyID,
			cfg.Email.SESSecretAccessKey,
			cfg.Email.FromEmail,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SES email provider: %w", err)
		}
		emailProvider = provider
	default:
		emailProvider = services.NewMockEmailProvider()
	}

	return services.NewNotificationService(emailProvider), nil
}

// initializeStorageService initializes the object storage backend
func initializeStorageService(cfg config.StorageConfig) (services.ObjectStorageService, error) {
	if cfg.Provider == "mock" {
		return services.NewMockStorageService(), nil
	}

	return services.NewS3StorageService(context.Background(), services.S3StorageConfig{
		Region:          cfg.Region,
		Bucket:          cfg.Bucket,
		Endpoint:        cfg.Endpoint,
		AccessKeyID:     cfg.AccessKeyID,
		SecretAccessKey: cfg.SecretAccessKey,
		PublicBaseURL:   cfg.PublicBaseURL,
		ForcePathStyle:  cfg.ForcePathStyle,
	})
}

// initializeApplication initializes the main application components
func initializeApplication(cfg *config.ProductionConfig) (*Application, error) {
	var stopFuncs []func()

	// Initialize database
	db, err := initializeDatabase(cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	rc, err := initializeCache(cfg.Cache)
	if err != nil {
		return nil, err
	}

	if rc != nil {
		cancel := startCacheHealthMonitor(context.Background(), rc, cfg.Cache.CleanupInterval)
		stopFuncs = append(stopFuncs, cancel)
	}

	// Initialize repositories
	teamRepo := repository.NewTeamRepository(db)
	playerRepo := repository.NewPlayerRepository(db)
	matchRepo := repository.NewMatchRepository(db)
	documentRepo := repository.NewDocumentAssetRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	sequenceRepo := repository.NewSequenceCounterRepository(db, int(cfg.Tournament.AllocationLockTimeout.Milliseconds()))

	// Initialize services
	notificationService, err := initializeNotificationService(cfg)
	if err != nil {
		return nil, err
	}

	storageService, err := initializeStorageService(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	identifierService := services.NewIdentifierService(sequenceRepo, services.IdentifierServiceConfig{
		Prefix:       cfg.Tournament.IDPrefix,
		PadWidth:     cfg.Tournament.IDPadWidth,
		MaxRetries:   cfg.Tournament.AllocationMaxRetries,
		RetryBackoff: cfg.Tournament.AllocationRetryBackoff,
	})

	// Initialize flows
	registrationFlow := businessflow.NewRegistrationFlow(
		teamRepo,
		playerRepo,
		documentRepo,
		auditRepo,
		identifierService,
		storageService,
		notificationService,
		businessflow.RegistrationConfig{
			RosterMin:       cfg.Tournament.RosterMinPlayers,
			RosterMax:       cfg.Tournament.RosterMaxPlayers,
			MaxDocumentSize: cfg.Tournament.MaxDocumentSizeBytes,
		},
		db,
	)

	adminTeamFlow := businessflow.NewAdminTeamFlow(
		teamRepo,
		playerRepo,
		auditRepo,
		notificationService,
		db,
	)

	matchFlow := businessflow.NewMatchFlow(
		matchRepo,
		teamRepo,
		auditRepo,
		db,
	)

	sequenceAdminFlow := businessflow.NewSequenceAdminFlow(
		identifierService,
		teamRepo,
		auditRepo,
		cfg.Tournament.IDPrefix,
	)

	documentFlow := businessflow.NewDocumentFlow(
		documentRepo,
		auditRepo,
		storageService,
	)

	// Reconcile the team counter against persisted teams before accepting
	// traffic, so a restored backup cannot cause duplicate identifiers
	reconcileCtx, reconcileCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer reconcileCancel()
	if err := sequenceAdminFlow.ReconcileTeamSequence(reconcileCtx); err != nil {
		return nil, fmt.Errorf("failed to reconcile team sequence: %w", err)
	}

	// Initialize handlers
	registrationHandler := handlers.NewRegistrationHandler(registrationFlow)
	teamAdminHandler := handlers.NewTeamAdminHandler(adminTeamFlow)
	matchHandler := handlers.NewMatchHandler(matchFlow)
	sequenceAdminHandler := handlers.NewSequenceAdminHandler(sequenceAdminFlow)
	documentHandler := handlers.NewDocumentHandler(documentFlow)

	// Initialize router
	appRouter := router.NewFiberRouter(router.Config{
		RegistrationHandler:  registrationHandler,
		TeamAdminHandler:     teamAdminHandler,
		MatchHandler:         matchHandler,
		SequenceAdminHandler: sequenceAdminHandler,
		DocumentHandler:      documentHandler,
		AdminAPIKeys:         cfg.Admin.APIKeys,
		RedisClient:          rc,
		RedisKeyPrefix:       cfg.Cache.RedisPrefix,
		AllowOrigins:         cfg.Security.AllowedOrigins,
		BodyLimit:            cfg.Server.BodyLimit,
		MetricsEnabled:       cfg.Metrics.Enabled,
	})

	if cfg.Scheduler.Enabled {
		sched := scheduler.NewMatchReminderScheduler(
			matchRepo,
			teamRepo,
			auditRepo,
			notificationService,
			db,
			cfg.Scheduler.ReminderInterval,
			cfg.Scheduler.ReminderLeadTime,
		)
		stopScheduler := sched.Start(context.Background())
		stopFuncs = append(stopFuncs, stopScheduler)
		stopFuncs = append(stopFuncs, func() { _ = sched.Close() })
	}

	// Create application struct from FiberRouter
	fiberRouter := appRouter.(*router.FiberRouter)
	application := &Application{
		router:    fiberRouter,
		config:    cfg,
		server:    fiberRouter.GetApp(),
		stopFuncs: stopFuncs,
	}

	return application, nil
}
