package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"librisync/internal/audit"
	"librisync/internal/loans/handler"
	"librisync/internal/loans/metrics"
	"librisync/internal/loans/queue"
	"librisync/internal/loans/service"
	"librisync/internal/loans/store"
	"librisync/internal/platform/config"
	"librisync/internal/platform/dbexec"
	"librisync/internal/platform/httpserver"
	"librisync/internal/platform/kafka"
	"librisync/internal/platform/logger"
	"librisync/internal/platform/ops"
	"librisync/internal/platform/postgres"
	"librisync/internal/platform/redis"
)

// main wires the Loans service: loan intake over HTTP, persisting loans and
// publishing loan events to the queue. Business logic lives in the internal
// packages; main only constructs and connects them.
func main() {
	cfg := config.FromEnv(":8082")
	log := logger.New("loan-service")

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

	svc, err := service.New(
		store.NewPostgres(pool, exec),
		queue.NewLoanPublisher(publisher, cfg.Kafka.LoanTopic),
		auditPub,
		log,
		metrics.New(),
	)
	if err != nil {
		log.Error("build loan service", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	handler.New(svc, log).Register(router)
	ops.New("loan-service", cache, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("loan service listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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
		log.Error("loan service stopped", "error", err)
		os.Exit(1)
	}
}
