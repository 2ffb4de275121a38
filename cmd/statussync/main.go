package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/savoria/order-service/internal/config"
	kafkax "github.com/savoria/order-service/internal/kafka"
	"github.com/savoria/order-service/internal/orders"
	"github.com/savoria/order-service/internal/postgres"
	"github.com/savoria/order-service/internal/redisx"
	"github.com/savoria/order-service/internal/statussync"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// DB
	db, err := postgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	// Redis (consumer dedup + status cache refresh)
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Producer re-publishes applied snapshots outward
	prod := kafkax.NewProducer(cfg.Brokers(), orders.TopicOrderOut, 1024, logger)
	prod.Start(ctx)

	svc := &statussync.Service{
		Orders:   &orders.Repo{DB: db},
		Redis:    rdb,
		Producer: prod,
		Name:     cfg.ServiceName + "-statussync",
		Log:      logger,
	}

	cons := kafkax.NewConsumer(cfg.Brokers(), cfg.ConsumerGroup, orders.TopicFulfillmentIn, cfg.ConsumerWorkers, logger)

	go func() {
		logger.Info("statussync consumer started",
			zap.String("group", cfg.ConsumerGroup),
			zap.String("topic", orders.TopicFulfillmentIn),
			zap.Int("workers", cfg.ConsumerWorkers))
		if err := cons.Start(ctx, svc.HandleFulfillmentEvent); err != nil {
			logger.Error("consumer exit", zap.Error(err))
			cancel()
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down consumer")
	cancel()
	time.Sleep(500 * time.Millisecond)
	prod.Close()
	prod.WaitClosed()
}
