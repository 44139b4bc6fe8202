package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/boardly/boardly-server/internal/api"
	"github.com/boardly/boardly-server/internal/config"
	"github.com/boardly/boardly-server/internal/repository"
	"github.com/boardly/boardly-server/internal/service"
	"github.com/boardly/boardly-server/internal/sweeper"
	"github.com/boardly/boardly-server/internal/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	logger, err := utils.NewLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("Failed to set up logger: %v", err)
	}
	defer logger.Sync()

	// Set up database connection
	db, err := config.SetupDatabase(cfg)
	if err != nil {
		logger.Fatal("Failed to set up database", zap.Error(err))
	}
	defer db.Close()

	// Create repository
	repo := repository.NewPostgresRepository(db)

	// Create service
	notifier := service.NewLogNotifier(logger)
	svc := service.NewDefaultService(repo, cfg.Auth.JWTSecret, cfg.Server.PublicBaseURL, notifier, logger)

	// Create API handler
	handler := api.NewHandler(svc, db, cfg, logger)

	// Set up Gin router
	router := gin.Default()
	handler.SetupRoutes(router)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start the expired share link sweep
	sw := sweeper.New(repo, cfg.Share.SweepInterval, logger)
	go sw.Run(ctx)

	// Start server
	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	go func() {
		logger.Info("Starting server", zap.String("addr", serverAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
}
