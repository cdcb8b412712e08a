// @title           Vehicle Image Ingestion API
// @version         1.0.0
// @description     Ingests vehicle images, obtains license-plate recognition results, archives originals to object storage, and emits composite upload records to Kafka and Postgres.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"lpr-ingest-backend/internal/config"
	"lpr-ingest-backend/internal/database"
	"lpr-ingest-backend/internal/handlers"
	"lpr-ingest-backend/internal/kafka"
	"lpr-ingest-backend/internal/middleware"
	"lpr-ingest-backend/internal/recognition"
	"lpr-ingest-backend/internal/services"
	"lpr-ingest-backend/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info("recognition endpoint configured",
		zap.String("base_url", cfg.LPRBaseURL),
		zap.String("path", cfg.LPRPath))
	logger.Info("kafka configured",
		zap.String("brokers", cfg.KafkaBrokers),
		zap.String("topic", cfg.KafkaTopic))

	// Recognition client
	lprClient := recognition.NewClient(cfg.LPRBaseURL, cfg.LPRPath, cfg.LPRAuthKey, logger)

	// Object storage
	s3Client, err := storage.NewS3Client(context.Background(), storage.Config{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		UseSSL:          cfg.S3UseSSL,
		ForcePathStyle:  cfg.S3ForcePathStyle,
	})
	if err != nil {
		logger.Fatal("failed to initialize S3 client", zap.Error(err))
	}
	archiver := storage.NewArchiver(s3Client, cfg.S3Bucket, logger)

	// Kafka producer
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	if err != nil {
		logger.Fatal("failed to initialize kafka producer", zap.Error(err))
	}
	defer producer.Close()

	// Database client and migrations
	dbClient, err := database.NewClient(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to initialize database client", zap.Error(err))
	}
	defer dbClient.Close()

	migrator, err := database.NewMigrator(cfg.DatabaseURL, logger)
	if err != nil {
		logger.Fatal("failed to initialize migrator", zap.Error(err))
	}
	defer migrator.Close()
	if err := migrator.Run(); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// Orchestrator and handlers
	uploadService := services.NewUploadService(lprClient, archiver, producer, dbClient, logger)
	uploadHandler := handlers.NewUploadHandler(uploadService, logger)
	uploadsHandler := handlers.NewUploadsHandler(dbClient, archiver, logger)

	// Setup router
	router := gin.Default()

	// Health check (no auth)
	router.GET("/health", handlers.HealthHandler)

	// API routes
	api := router.Group("/api/v1")
	api.Use(middleware.AuthMiddleware(cfg))

	api.POST("/org/:org_id/action/UploadVehicleImage", uploadHandler.UploadVehicleImage)
	api.GET("/org/:org_id/uploads", uploadsHandler.ListUploads)
	api.GET("/org/:org_id/uploads/count", uploadsHandler.CountUploads)
	api.GET("/org/:org_id/uploads/:upload_id/signed-url", uploadsHandler.GetSignedURL)

	// Start server
	logger.Info("server starting", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, router); err != nil {
		logger.Fatal("server failed", zap.Error(err))
	}
}

func newLogger(environment string) (*zap.Logger, error) {
	zapCfg := zap.NewProductionConfig()
	if environment != "production" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zapCfg.Build()
}
