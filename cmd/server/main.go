package main

import (
	"context"
	"database/sql"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"repairflow/internal/config"
	"repairflow/internal/infrastructure/logger"
	"repairflow/internal/infrastructure/mysql"
	"repairflow/internal/infrastructure/redis"
	"repairflow/internal/server"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	ctx := context.Background()

	var db *sql.DB
	if cfg.Content.Backend == config.ContentBackendMySQL {
		db, err = mysql.NewConnection(ctx, cfg.Database)
		if err != nil {
			zapLogger.Fatal("connecting to database", zap.Error(err))
		}
		defer db.Close()
		zapLogger.Info("database connected")
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		zapLogger.Fatal("connecting to redis", zap.Error(err))
	}
	defer rdb.Close()
	zapLogger.Info("redis connected", zap.String("addr", cfg.Redis.Addr))

	handler, err := server.NewHandler(cfg, db, rdb, zapLogger)
	if err != nil {
		zapLogger.Fatal("building handler", zap.Error(err))
	}
	zapLogger.Info("content backend ready", zap.String("backend", cfg.Content.Backend))

	srv := server.New(cfg.Server, handler, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Fatal("server shutdown failed", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
