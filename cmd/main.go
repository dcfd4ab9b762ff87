package main

import (
	"context"
	"log"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"chwadmin/docs/swagger"
	"chwadmin/internal/access"
	"chwadmin/internal/api"
	"chwadmin/internal/config"
	"chwadmin/internal/db"
	"chwadmin/internal/handlers"
	"chwadmin/internal/models"
	"chwadmin/internal/services"
	"chwadmin/internal/tasks"
	"chwadmin/internal/utils/logger"
)

// 🚀 Main function
// @title CHW Admin API
// @version 1.0
// @description Admin API for community health worker registration and learning content
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {

	logger := logger.New("chwadmin")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Warn("Failed to close database connection: %v", err)
		}
	}()

	dbInstance := db.GetDB()

	// Redis backs the permission cache, the publish limiter and the task queue
	redisOpt := tasks.RedisOpt(cfg.Redis)
	redisClient := tasks.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	var permissionCache *access.Cache
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Warn("Redis unreachable, permission sets will not be cached: %v", err)
	} else {
		permissionCache = access.NewCache(redisClient, cfg.Cache.ProfileTTL)
	}
	pingCancel()

	profiles := services.NewProfileService(dbInstance, permissionCache)
	profiles.Subscribe()
	books := services.NewBookService(dbInstance)

	// Initialize S3 service
	s3Service, err := services.NewS3Service(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}

	// Register the URL generator
	models.RegisterFileURLGenerator(s3Service)
	handlers.RegisterStorageHandler(s3Service)

	taskClient := tasks.NewTaskClient(redisOpt, redisClient, cfg.Publish)
	defer taskClient.Close()

	// Initialize task handlers
	taskHandler := tasks.NewTaskHandler(books, s3Service, taskClient)

	// Initialize task server
	taskServer := tasks.NewServer(redisOpt, cfg.Worker.Concurrency, taskHandler, logger)

	// Create a context for task server
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// Start task server
	if err := taskServer.Start(serverCtx); err != nil {
		log.Fatalf("Task server error: %v", err)
	}

	// Initialize task scheduler
	taskScheduler := tasks.NewScheduler(redisOpt, cfg.Worker.RepublishSchedule, logger)

	// Start task scheduler
	go func() {
		if err := taskScheduler.Start(); err != nil {
			logger.Error("Task scheduler error", err)
		}
	}()

	// Initialize API server
	apiServer, err := api.NewServer(cfg, dbInstance, profiles, taskClient)
	if err != nil {
		log.Fatalf("Failed to create API server: %v", err)
	}

	// Swagger documentation
	if u, err := url.Parse(cfg.Server.PublicURL); err == nil && u.Host != "" {
		swagger.SwaggerInfo.Host = u.Host
		swagger.SwaggerInfo.Schemes = []string{u.Scheme}
	}

	go func() {
		logger.Success("API server starting on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop task scheduler
	taskScheduler.Stop()

	// Stop task server
	taskServer.Shutdown()
	serverCancel()

	// Shutdown API server
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}

	logger.Info("Servers shutdown gracefully")
}
