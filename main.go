package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mopshyai/carebowapp-sub005/internal/config"
	"github.com/mopshyai/carebowapp-sub005/internal/handler"
	"github.com/mopshyai/carebowapp-sub005/internal/location"
	"github.com/mopshyai/carebowapp-sub005/internal/middleware"
	"github.com/mopshyai/carebowapp-sub005/internal/notify"
	"github.com/mopshyai/carebowapp-sub005/internal/reminder"
	"github.com/mopshyai/carebowapp-sub005/internal/repository"
	"github.com/mopshyai/carebowapp-sub005/internal/security"
	"github.com/mopshyai/carebowapp-sub005/internal/service"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize Zap logger
	var logger *zap.Logger
	if cfg.Server.Environment == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded successfully",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	// Initialize database connection pool with pgx
	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}
	logger.Info("Successfully connected to database")

	// At-rest encryption for contact phone numbers
	encryptor, err := security.NewEncryptor([]byte(cfg.Security.EncryptionKey))
	if err != nil {
		logger.Fatal("Failed to initialize encryptor", zap.Error(err))
	}

	// Initialize repositories
	symptomRepo := repository.NewSymptomRepository(pool, logger)
	safetyRepo := repository.NewSafetyRepository(pool, logger)
	contactRepo := repository.NewContactRepository(pool, encryptor, logger)
	reminderRepo := repository.NewReminderRepository(pool, logger)

	// Boundary collaborators
	locationProvider := location.NewHTTPProvider(cfg.Location.Endpoint, cfg.Location.Timeout, logger)
	alertSender := notify.NewLogSender(logger)

	// Initialize services
	symptomService := service.NewSymptomService(symptomRepo, logger)
	safetyService := service.NewSafetyService(
		safetyRepo,
		contactRepo,
		reminderRepo,
		locationProvider,
		alertSender,
		logger,
	)

	// Durable check-in reminder scheduler
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	scheduler := reminder.NewScheduler(reminderRepo, safetyService, cfg.Safety.ReminderPollInterval, logger)
	go scheduler.Run(schedulerCtx)

	// Initialize handlers
	symptomHandler := handler.NewSymptomHandler(symptomService, logger)
	safetyHandler := handler.NewSafetyHandler(safetyService, logger)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Recovery middleware must be first
	r.Use(middleware.RecoveryMiddleware(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"}, // Configure appropriately for production
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RequestLoggingMiddleware(logger))
	r.Use(middleware.ErrorLoggingMiddleware(logger))

	registerRoutes(r, symptomHandler, safetyHandler, pool, logger)

	// Start server with graceful shutdown
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("Starting server", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	pool.Close()

	logger.Info("Server exited")
}

func registerRoutes(
	r *gin.Engine,
	symptoms *handler.SymptomHandler,
	safety *handler.SafetyHandler,
	pool *pgxpool.Pool,
	logger *zap.Logger,
) {
	r.GET("/health", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			logger.Error("health check failed: database unreachable", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "disconnected",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"database": "connected",
			"service":  "carebow-safety-backend",
			"version":  "1.0.0",
		})
	})

	v1 := r.Group("/api/v1")

	v1.POST("/symptoms", symptoms.Create)
	v1.GET("/symptoms", symptoms.List)
	v1.GET("/symptoms/:id", symptoms.Get)
	v1.PUT("/symptoms/:id", symptoms.Update)
	v1.DELETE("/symptoms/:id", symptoms.Delete)
	v1.POST("/triage/preview", symptoms.Preview)

	v1.GET("/safety/status", safety.Status)
	v1.GET("/safety/settings", safety.GetSettings)
	v1.PUT("/safety/settings", safety.UpdateSettings)
	v1.POST("/safety/checkin", safety.CheckIn)
	v1.POST("/safety/missed", safety.RecordMissed)
	v1.POST("/safety/sos", safety.TriggerSOS)
	v1.POST("/safety/test-alert", safety.TestAlert)
	v1.GET("/safety/events", safety.Events)
	v1.DELETE("/safety/events", safety.ClearEvents)
	v1.GET("/safety/contacts", safety.ListContacts)
	v1.POST("/safety/contacts", safety.CreateContact)
	v1.PUT("/safety/contacts/:id", safety.UpdateContact)
	v1.DELETE("/safety/contacts/:id", safety.DeleteContact)
}
