package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yukikurage/task-insights-api/internal/config"
	"github.com/yukikurage/task-insights-api/internal/database"
	"github.com/yukikurage/task-insights-api/internal/logger"
	"github.com/yukikurage/task-insights-api/internal/router"
	"github.com/yukikurage/task-insights-api/internal/seed"
	"github.com/yukikurage/task-insights-api/internal/services"
	"github.com/yukikurage/task-insights-api/internal/validation"
)

func main() {
	// Load configuration
	cfg := config.Load()

	zapLogger := logger.New(logger.Config{
		Level:    cfg.Log.Level,
		Encoding: cfg.Log.Encoding,
	})
	defer zapLogger.Sync() //nolint:errcheck

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect to database
	db, err := database.Connect(cfg.DB, zapLogger)
	if err != nil {
		zapLogger.Fatal("database connection failed", zap.Error(err))
	}
	sqlDB, err := db.DB()
	if err != nil {
		zapLogger.Fatal("failed to access connection pool", zap.Error(err))
	}
	defer sqlDB.Close()

	// Run migrations
	if err := database.Migrate(db, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	if err := validation.Register(); err != nil {
		zapLogger.Fatal("failed to register validators", zap.Error(err))
	}

	svc := services.New(db, zapLogger)

	if cfg.SeedData {
		if err := seed.Run(ctx, svc, zapLogger); err != nil {
			zapLogger.Fatal("seeding failed", zap.Error(err))
		}
	}

	r := router.New(router.NewHandlers(svc, db, zapLogger), zapLogger)

	server := &http.Server{
		Addr:    cfg.Address(),
		Handler: r,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zapLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
