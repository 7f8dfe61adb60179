package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JMURv/auth-service/internal/auth"
	"github.com/JMURv/auth-service/internal/cache/redis"
	"github.com/JMURv/auth-service/internal/config"
	"github.com/JMURv/auth-service/internal/ctrl"
	handler "github.com/JMURv/auth-service/internal/hdl/http"
	"github.com/JMURv/auth-service/internal/observability/metrics/prometheus"
	"github.com/JMURv/auth-service/internal/observability/tracing/jaeger"
	"github.com/JMURv/auth-service/internal/repo/db"
	"github.com/JMURv/auth-service/internal/smtp"
	"go.uber.org/zap"
)

const envPath = ".env"

const shutdownTimeout = 10 * time.Second

func mustRegisterLogger(mode string) {
	switch mode {
	case "prod":
		zap.ReplaceGlobals(zap.Must(zap.NewProduction()))
	default:
		zap.ReplaceGlobals(zap.Must(zap.NewDevelopment()))
	}
}

func main() {
	defer func() {
		if err := recover(); err != nil {
			zap.L().Panic("panic occurred", zap.Any("error", err))
			os.Exit(1)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mustRegisterLogger(os.Getenv("SERVER_MODE"))
	conf := config.MustLoad(envPath)

	go prometheus.New(conf.Server.Port + 5).Start(ctx)
	go jaeger.Start(ctx, conf)

	cache := redis.New(conf.Redis)
	repo := db.New(conf)
	au := auth.New(conf)
	svc := ctrl.New(au, repo, cache, repo, smtp.New(conf), conf)
	svc.StartSweeper(ctx, conf.Sweep.Interval)

	h := handler.New(au, svc, cache, conf)

	zap.L().Info(
		fmt.Sprintf(
			"Starting server on %v://%v:%v",
			conf.Server.Scheme,
			conf.Server.Domain,
			conf.Server.Port,
		),
	)
	go h.Start(conf.Server.Port)

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	<-c

	zap.L().Info("Shutting down gracefully...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := h.Close(shutdownCtx); err != nil {
		zap.L().Warn("Error closing handler", zap.Error(err))
	}

	if err := cache.Close(); err != nil {
		zap.L().Warn("Failed to close connection to Redis: ", zap.Error(err))
	}

	if err := repo.Close(shutdownCtx); err != nil {
		zap.L().Warn("Error closing repository", zap.Error(err))
	}

	_ = zap.L().Sync()
}
