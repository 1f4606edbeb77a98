package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"book_orders/internal/application/orderevents"
	"book_orders/internal/config"
	"book_orders/internal/infrastructure/encoding/avro"
	kafkainfra "book_orders/internal/infrastructure/messaging/kafka"
	"book_orders/pkg/logger"
)

// Tails the order-created topic and logs every event until interrupted.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}

	appLog, err := logger.NewZapLogger(cfg.App.Env, cfg.Log.Level)
	if err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	defer appLog.Sync()

	if len(cfg.Kafka.Brokers) == 0 || cfg.Kafka.EventsTopic == "" {
		appLog.Fatal("KAFKA_BOOTSTRAP_SERVERS and KAFKA_ORDER_EVENTS_TOPIC are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := avro.NewOrderEventCodec()
	if err != nil {
		appLog.Fatal("avro codec init failed", logger.Error(err))
	}

	svc := orderevents.NewService(appLog)
	consumer := kafkainfra.NewOrderEventConsumer(cfg.Kafka, codec, svc, appLog)
	defer consumer.Close()

	appLog.Info("consuming order events",
		logger.Any("brokers", cfg.Kafka.Brokers),
		logger.String("topic", cfg.Kafka.EventsTopic),
		logger.String("group", cfg.Kafka.ConsumerGroup),
	)

	if err := consumer.Start(ctx); err != nil {
		appLog.Error("consumer stopped", logger.Error(err))
	}

	stats := svc.Stats()
	appLog.Info("order events summary",
		logger.Int("accepted", stats.Accepted),
		logger.Int("rejected", stats.Rejected),
		logger.Any("revenue", stats.Revenue),
	)
}
