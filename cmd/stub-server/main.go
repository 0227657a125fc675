// File: cmd/stub-server/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"be4you/internal/modules/stubapi"
	"be4you/internal/pkg/config"
	"be4you/internal/pkg/log"
	"be4you/internal/pkg/metrics"
)

func main() {
	cfg := config.Load()

	log.Init(log.ParseLevel(cfg.LogLevel), cfg.Environment)
	logger := log.GetLogger()
	metrics.SetServiceName("stub-api")

	server := stubapi.New(stubapi.Options{
		SessionTTL: cfg.StubSessionTTL,
		Logger:     logger,
	})

	go func() {
		if err := server.Start(cfg.StubListenAddr); err != nil {
			logger.Error("stub api failed to start", err, log.String("addr", cfg.StubListenAddr))
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down stub api")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("stub api shutdown failed", err)
		os.Exit(1)
	}
	logger.Info("stub api stopped")
}
