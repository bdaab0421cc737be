package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"academy/internal/config"
	"academy/internal/logging"
	"academy/internal/queue"
	"academy/internal/store"
	"academy/internal/summary"
	"academy/internal/worker"
)

// Worker consumes the change feed and keeps attendance summaries in redis.
func main() {
	cfg := config.Load()
	log := logging.Must(cfg.Env, cfg.LogLevel).Named("worker")
	defer func() { _ = log.Sync() }()
	for _, w := range cfg.Warnings {
		log.Warn("config", zap.String("detail", w))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Info("shutdown signal received")
		cancel()
	}()

	backend, err := store.Open(ctx, store.Options{
		Backend:       cfg.StoreBackend,
		DatabaseURL:   cfg.DatabaseURL,
		SQLitePath:    cfg.SQLitePath,
		MongoURI:      cfg.MongoURI,
		MongoDatabase: cfg.MongoDatabase,
	})
	if err != nil {
		log.Fatal("store open failed", zap.Error(err))
	}
	defer func() { _ = backend.Close(context.Background()) }()

	rdb := store.NewRedis(cfg.RedisAddr)
	defer func() { _ = rdb.Close() }()
	if !rdb.Healthy(ctx) {
		log.Warn("redis not reachable, summaries will fail until it is", zap.String("addr", cfg.RedisAddr))
	}

	var q queue.Queue
	if cfg.QueueBackend == "redis" {
		q = queue.NewRedisQueue(rdb.Client, cfg.QueueKey)
	} else {
		q = queue.NewInMemory(64)
		log.Warn("in-memory queue selected; the worker only sees events published in this process")
	}

	w := worker.New(store.NewInstrumented(backend, log), summary.NewRedis(rdb.Client), log)
	go w.Heartbeat(ctx, cfg.HeartbeatInterval)

	events, err := q.Consume(ctx)
	if err != nil {
		log.Fatal("queue consume init failed", zap.Error(err))
	}
	log.Info("worker started, waiting for events")
	w.Run(ctx, events)
	log.Info("worker stopped")
}
