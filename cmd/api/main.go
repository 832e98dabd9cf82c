package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/stayfinder/listing_reviews/internal/config"
	"github.com/stayfinder/listing_reviews/internal/delivery/events"
	httpDelivery "github.com/stayfinder/listing_reviews/internal/delivery/http"
	"github.com/stayfinder/listing_reviews/internal/delivery/http/handler"
	"github.com/stayfinder/listing_reviews/internal/pkg/cache"
	"github.com/stayfinder/listing_reviews/internal/pkg/database"
	"github.com/stayfinder/listing_reviews/internal/pkg/logger"
	cacheRepo "github.com/stayfinder/listing_reviews/internal/repository/cache"
	"github.com/stayfinder/listing_reviews/internal/repository/postgres"
	"github.com/stayfinder/listing_reviews/internal/usecase/review"

	_ "github.com/stayfinder/listing_reviews/docs"
)

// @title Listing Reviews API
// @version 1.0
// @description Review service for a rental listing marketplace: one review per user per listing, no self-reviews, derived aggregate ratings.

// @contact.name API Support
// @contact.url http://github.com/stayfinder/listing_reviews

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name Reviews
// @tag.description Review management endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting Listing Reviews API...")

	if cfg.Auth.JWTSecret == "" {
		appLogger.Fatal("JWT_SECRET is required", nil)
	}

	appLogger.Info("Connecting to PostgreSQL...")
	db, err := database.WaitForDB(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer db.Close()
	appLogger.Info("Connected to PostgreSQL successfully")

	if err := database.RunMigrations(db); err != nil {
		appLogger.Fatal("Failed to run migrations", err)
	}

	appLogger.Info("Connecting to Redis...")
	redisClient, err := cache.WaitForRedis(cfg, 10, 2*time.Second)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()
	appLogger.Info("Connected to Redis successfully")

	appLogger.Info("Connecting to NATS...")
	publisher, err := events.NewPublisher(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create NATS publisher", err)
	}
	defer publisher.Close()

	reviewRepo := postgres.NewReviewRepository(db)
	listingDir := postgres.NewListingDirectory(db)
	identity := postgres.NewIdentityProvider(db)
	redisCache := cacheRepo.NewRedisCache(redisClient, cfg.Cache.ReviewsListTTL)

	reviewService := review.NewService(reviewRepo, listingDir, identity, redisCache, publisher, appLogger)
	reviewHandler := handler.NewReviewHandler(reviewService, appLogger)

	router := httpDelivery.NewRouter(reviewHandler, cfg, appLogger)
	httpHandler := router.Setup()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      httpHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server stopped gracefully")
}
