package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/courrierhq/courrier-backend/internal/api"
	"github.com/courrierhq/courrier-backend/internal/config"
	"github.com/courrierhq/courrier-backend/internal/database"
	"github.com/courrierhq/courrier-backend/internal/logger"
	"github.com/courrierhq/courrier-backend/internal/storage"
)

func logLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func main() {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(cfg.LogLevel),
	}))
	slog.SetDefault(log)
	cfg.LogConfig(log)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("database close failed", "error", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		log.Error("database migration failed", "error", err)
		os.Exit(1)
	}

	fileStorage, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		log.Error("file storage init failed", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}

	e := api.NewRouter(&api.RouterConfig{
		DB:          db,
		FileStorage: fileStorage,
		Config:      cfg,
		Logger:      log,
		SecLogger:   logger.NewSecurityLogger(),
	})

	addr := fmt.Sprintf(":%d", cfg.APIPort)
	go func() {
		log.Info("starting server", "addr", addr)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	log.Info("server stopped")
}
