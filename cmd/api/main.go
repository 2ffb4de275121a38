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

	"github.com/savoria/order-service/internal/catalog"
	"github.com/savoria/order-service/internal/config"
	"github.com/savoria/order-service/internal/httpx"
	kafkax "github.com/savoria/order-service/internal/kafka"
	"github.com/savoria/order-service/internal/orders"
	"github.com/savoria/order-service/internal/postgres"
	"github.com/savoria/order-service/internal/redisx"
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

	// Redis
	rdb := redisx.New(cfg.RedisAddr)
	defer rdb.Close()

	// Kafka producer for outbound order events
	prod := kafkax.NewProducer(cfg.Brokers(), orders.TopicOrderOut, 1024, logger)
	prod.Start(ctx)

	// Orchestrator
	svc := orders.NewService(
		&orders.Repo{DB: db},
		&orders.ItemRepo{DB: db},
		catalog.NewClient(cfg.CatalogBaseURL),
		prod,
		cfg.ServiceName,
		logger,
	)

	router := httpx.NewRouter()
	router.Use(httpx.RequestLogger(logger))
	oh := &httpx.OrdersHandler{Service: svc, Redis: rdb, Log: logger}
	oh.Register(router)

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: router}

	go func() {
		logger.Info("HTTP listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	logger.Info("shutting down")

	ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	_ = srv.Shutdown(ctx2)
	prod.Close() // flush queued events
	cancel()
	prod.WaitClosed()
}
