// Command consumer drains the booking event queues into logs/booking.log.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/iliyamo/seat-hold-engine/internal/config"
	"github.com/iliyamo/seat-hold-engine/internal/logger"
	"github.com/iliyamo/seat-hold-engine/internal/queue"
)

func main() {
	_ = godotenv.Load()

	cfg := config.LoadConsumer()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.With("component", "consumer", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c := &queue.Consumer{URL: cfg.RabbitURL, Dir: cfg.EventLogDir, Log: log}
	log.Info("consuming booking events", "queues", queue.Queues, "dir", cfg.EventLogDir)
	if err := c.Run(ctx); err != nil {
		logger.Fatal("consumer stopped", "error", err)
	}
	log.Info("consumer stopped")
}
