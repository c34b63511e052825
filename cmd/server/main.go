package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"baul-admin-api/internal/config"
	"baul-admin-api/internal/handlers"
	"baul-admin-api/pkg/server"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logrus.WithError(err).Fatal("Invalid configuration")
	}

	logger := cfg.NewLogger()

	// Initialize dependencies
	container, err := server.NewContainer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	// Setup Gin router
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	routerConfig := &handlers.RouterConfig{
		ProductService: container.ProductService,
		StatsService:   container.StatsService,
		PricingService: container.PricingService,
		ImportService:  container.ImportService,
		AuthService:    container.AuthService,
		TokenAuth:      container.Tokens,
		Logger:         logger,
		PricingRate:    cfg.Pricing.RateLimit,
		RateLimitRPS:   cfg.RateLimitRPS,
	}

	router := gin.New()
	handlers.SetupMiddleware(router, routerConfig)
	if err := handlers.SetupRoutes(router, routerConfig); err != nil {
		logger.WithError(err).Fatal("Failed to set up routes")
	}
	if cfg.Environment == "development" {
		handlers.SetupDevelopmentRoutes(router, routerConfig)
	}

	// Start server
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("Failed to start server")
		}
	}()

	logger.WithFields(logrus.Fields{
		"port":         cfg.Port,
		"environment":  cfg.Environment,
		"store_driver": cfg.Database.Driver,
	}).Info("Server started")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
