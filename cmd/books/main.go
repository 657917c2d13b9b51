package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"librisync/internal/audit"
	"librisync/internal/books/consumer"
	"librisync/internal/books/handler"
	"librisync/internal/books/metrics"
	"librisync/internal/books/store"
	"librisync/internal/platform/config"
	"librisync/internal/platform/dbexec"
	"librisync/internal/platform/httpserver"
	"librisync/internal/platform/kafka"
	"librisync/internal/platform/logger"
	"librisync/internal/platform/ops"
	"librisync/internal/platform/postgres"
	"librisync/internal/platform/redis"
)

// main wires the Books service: the catalog read API and the availability
// consumer that applies loan events from the queue. Both run until the
// process receives a shutdown signal.
func main() {
	cfg := config.FromEnv(":8081")
	log := logger.New("books-service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Connect(ctx, cfg.Postgres)
	if err != nil {
		log.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	exec := dbexec.New(dbexec.DefaultWorkers)
	defer exec.Close()

	cache, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	defer cache.Close()

	if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers, cfg.Kafka.LoanTopic, cfg.Kafka.LogTopic); err != nil {
		log.Error("ensure topics", "error", err)
		os.Exit(1)
	}

	publisher, err := kafka.NewPublisher(cfg.Kafka.Brokers)
	if err != nil {
		log.Error("connect kafka", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	auditPub := audit.NewQueuePublisher(publisher, cfg.Kafka.LogTopic, log, audit.WithAsyncBuffer(256))
	defer auditPub.Close()

	bookStore := store.NewPostgres(pool, exec)

	loanConsumer, err := kafka.NewConsumer(
		kafka.ConsumerConfig{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.LoanTopic,
			Group:   cfg.Kafka.Group,
			OnDiscard: func(ctx context.Context, _ *kafka.Message, err error) {
				audit.Error(ctx, auditPub, fmt.Sprintf("Discarding loan event after repeated failures: %v", err))
			},
		},
		consumer.New(bookStore, auditPub, log, metrics.New()),
		log,
	)
	if err != nil {
		log.Error("connect kafka consumer", "error", err)
		os.Exit(1)
	}
	defer loanConsumer.Close()

	router := chi.NewRouter()
	handler.New(bookStore, log).Register(router)
	ops.New("books-service", cache, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("books service listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("availability consumer started", "topic", cfg.Kafka.LoanTopic)
		if err := loanConsumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("books service stopped", "error", err)
		os.Exit(1)
	}
}
