package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	ginlib "github.com/gin-gonic/gin"

	"book_orders/internal/application/order"
	"book_orders/internal/config"
	"book_orders/internal/domain/repository"
	"book_orders/internal/infrastructure/encoding/avro"
	"book_orders/internal/infrastructure/http/catalog"
	ginserver "book_orders/internal/infrastructure/http/gin"
	kafkainfra "book_orders/internal/infrastructure/messaging/kafka"
	"book_orders/internal/infrastructure/persistence/memory"
	"book_orders/internal/infrastructure/persistence/postgres"
	"book_orders/internal/interfaces/http/handler"
	"book_orders/internal/interfaces/http/router"
	"book_orders/pkg/logger"
)

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
	appLog = appLog.WithFields(logger.String("app", cfg.App.Name))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	orderRepo, closeRepo, err := newOrderRepository(ctx, cfg, appLog)
	if err != nil {
		appLog.Fatal("order store init failed", logger.Error(err))
	}
	defer closeRepo()

	books, err := catalog.NewClient(cfg.Catalog, appLog)
	if err != nil {
		appLog.Fatal("catalog client init failed", logger.Error(err))
	}

	var opts []order.Option
	if cfg.Kafka.Enabled {
		codec, err := avro.NewOrderEventCodec()
		if err != nil {
			appLog.Fatal("avro codec init failed", logger.Error(err))
		}
		producer, err := kafkainfra.NewOrderEventProducer(cfg.Kafka, codec, appLog)
		if err != nil {
			appLog.Fatal("kafka producer init failed", logger.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
			defer cancel()
			if err := producer.Close(shutdownCtx); err != nil {
				appLog.Warn("kafka producer close failed", logger.Error(err))
			}
		}()
		opts = append(opts, order.WithPublisher(producer))
	}

	orderService := order.NewService(orderRepo, books, appLog, opts...)

	if cfg.App.Env == "production" || cfg.App.Env == "prod" {
		ginlib.SetMode(ginlib.ReleaseMode)
	}
	engine := ginserver.NewEngine(appLog)
	router.RegisterRoutes(engine, handler.NewOrderHandler(orderService, appLog), appLog, cfg.Server.CORSAllowOrigins)

	server := ginserver.NewServer(cfg.Server, engine, appLog)

	errCh := make(chan error, 1)
	go func() { errCh <- server.Run() }()

	select {
	case err := <-errCh:
		if err != nil {
			appLog.Error("server run failed", logger.Error(err))
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			appLog.Error("server shutdown failed", logger.Error(err))
		}
	}
}

func newOrderRepository(ctx context.Context, cfg *config.Config, log logger.Logger) (repository.OrderRepository, func(), error) {
	if cfg.Store.Driver == config.StoreMemory {
		log.Info("using in-memory order store")
		return memory.NewOrderRepository(), func() {}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, nil, err
	}

	repo := postgres.NewOrderRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	log.Info("using postgres order store",
		logger.String("host", cfg.DB.Host),
		logger.String("db", cfg.DB.DBName),
	)
	return repo, pool.Close, nil
}
