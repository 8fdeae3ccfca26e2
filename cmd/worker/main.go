package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Domenick1991/trainbooking/config"
	"github.com/Domenick1991/trainbooking/internal/kafka"
	"github.com/Domenick1991/trainbooking/internal/logger"
	"github.com/Domenick1991/trainbooking/internal/notify"
)

func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg, err := logger.New(cfg.Log, "booking-worker")
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer lg.Sync()

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.NotificationsTopic == "" {
		lg.Fatal("kafka.brokers and kafka.notifications_topic are required for the worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.NotificationsTopic, lg.Named("kafka"))
	defer consumer.Close()

	sender := notify.NewSender(lg.Named("notify"))

	lg.Info("worker started", zap.String("topic", cfg.Kafka.NotificationsTopic), zap.String("group_id", cfg.Kafka.GroupID))

	if err := consumer.ConsumeEvents(ctx, sender.Send); err != nil && !errors.Is(err, context.Canceled) {
		lg.Error("consumer stopped", zap.Error(err))
		return
	}
	lg.Info("worker stopped")
}
