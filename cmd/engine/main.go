package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gobwas/ws"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/ceast3/thereplacebook/cmd/engine/internal/feed"
	"github.com/ceast3/thereplacebook/cmd/engine/internal/gateway"
	"github.com/ceast3/thereplacebook/cmd/engine/internal/news"
	"github.com/ceast3/thereplacebook/cmd/engine/internal/realtime"
	"github.com/ceast3/thereplacebook/cmd/engine/internal/repository"
	"github.com/ceast3/thereplacebook/cmd/engine/internal/wealth"
	"github.com/ceast3/thereplacebook/pkg/config"
	"github.com/ceast3/thereplacebook/pkg/models"
)

const bookRefreshInterval = 5 * time.Minute

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	logger, err := config.NewLogger(cfg.Logger, cfg.App.Env)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The subject store is required shared state; nothing works without it.
	store, err := repository.NewPostgresStore(ctx, cfg.Postgres.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer store.Close()

	// Redis mirrors quotes for other services; the engine degrades without it.
	var quoteStore *repository.RedisStore
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Warn("Redis unavailable, quote snapshots disabled", zap.Error(err))
		rdb.Close()
	} else {
		quoteStore = repository.NewRedisStore(rdb)
		defer quoteStore.Close()
	}

	registry := realtime.NewRegistry()
	subs := realtime.NewSubscriptions()
	dispatcher := realtime.NewDispatcher(registry, subs, logger)

	var snapshots realtime.SnapshotProvider
	if quoteStore != nil {
		snapshots = quoteStore
	}
	handler := realtime.NewHandler(dispatcher, subs, snapshots, logger)

	book := wealth.NewBook(logger)
	if err := book.Refresh(ctx, store, cfg.Monitor.TopSubjects); err != nil {
		logger.Error("Initial holdings load failed, starting empty", zap.Error(err))
	}

	cache := feed.NewCache()
	rates := wealth.NewRateTable(nil, logger)

	sources := []feed.Source{
		feed.NewYahooSource(),
		feed.NewAlphaVantageSource(cfg.Feed.AlphaVantageKey),
	}
	var sink feed.QuoteSink
	if quoteStore != nil {
		sink = quoteStore
	}
	aggregator := feed.NewAggregator(
		sources, cache, book, subs, dispatcher, sink,
		cfg.Feed.Interval, cfg.Feed.BatchSize, cfg.Feed.BatchDelay, logger)

	valuator := wealth.NewValuator(cache, rates, book)
	monitor := wealth.NewMonitor(
		valuator, book, dispatcher,
		cfg.Monitor.Interval, cfg.Monitor.PercentThreshold, cfg.Monitor.AbsoluteThreshold,
		logger)

	health := realtime.NewHealthMonitor(registry, subs, cfg.Health.Interval, logger)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:           cfg.Kafka.Brokers,
		Topic:             cfg.Kafka.Topic,
		GroupID:           cfg.Kafka.GroupID,
		MinBytes:          200,
		MaxBytes:          10e6,
		MaxWait:           200 * time.Millisecond,
		HeartbeatInterval: 3 * time.Second,
		SessionTimeout:    10 * time.Second,
	})
	consumer := news.NewConsumer(reader, dispatcher, logger)

	go aggregator.Run(ctx)
	go monitor.Run(ctx)
	go health.Run(ctx)
	go rates.Run(ctx, cfg.Rates.Interval)
	go book.Run(ctx, store, cfg.Monitor.TopSubjects, bookRefreshInterval)
	go func() {
		if err := consumer.Run(ctx); err != nil {
			logger.Error("News consumer stopped", zap.Error(err))
		}
	}()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, _, _, err := ws.UpgradeHTTP(r, w)
		if err != nil {
			return
		}
		client := gateway.NewClient(conn, registry, subs, handler, cfg.Gateway.QueueSize, logger)
		client.Start()
	})

	srv := &http.Server{Addr: cfg.App.Port, Handler: mux}

	go func() {
		logger.Info("Server Started", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("HTTP Error", zap.Error(err))
		}
	}()

	dispatcher.Publish(models.NewSystemNotice("Real-time wealth engine online", models.SeverityInfo))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logger.Info("Shutdown signal received")
	cancel()

	if err := reader.Close(); err != nil {
		logger.Error("Error closing Kafka reader", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	logger.Info("Shutdown Complete")
}
