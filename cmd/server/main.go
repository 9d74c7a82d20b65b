package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/mealshare/mealshare-be/internal/config"
	"github.com/mealshare/mealshare-be/internal/server"
	"github.com/mealshare/mealshare-be/internal/storage/postgres"
	"github.com/mealshare/mealshare-be/internal/storage/redisstore"
)

func main() {
	loadLocalEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := newLogger(cfg.PrettyLogs)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	ctx := context.Background()
	store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("init database", zap.Error(err))
	}
	defer store.Close()

	metadata, err := redisstore.NewMetadataStore(ctx, redisstore.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		logger.Fatal("init redis", zap.Error(err))
	}
	defer func() { _ = metadata.Close() }()

	srv := server.New(cfg, store, store, metadata, logger)

	go func() {
		logger.Info("mealshare backend listening", zap.String("addr", cfg.HTTPAddress()))
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.Error("graceful shutdown error", zap.Error(err))
	}
}

func newLogger(pretty bool) *zap.Logger {
	if pretty {
		logger, err := zap.NewDevelopment()
		if err != nil {
			log.Fatalf("init logger: %v", err)
		}
		return logger
	}
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	return logger
}

func loadLocalEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found; relying on existing environment")
	}
}
