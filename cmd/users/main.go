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
	"librisync/internal/platform/config"
	"librisync/internal/platform/crypto"
	"librisync/internal/platform/dbexec"
	"librisync/internal/platform/httpserver"
	"librisync/internal/platform/kafka"
	"librisync/internal/platform/logger"
	"librisync/internal/platform/ops"
	"librisync/internal/platform/postgres"
	"librisync/internal/platform/redis"
	"librisync/internal/users/cache"
	"librisync/internal/users/graphql"
	"librisync/internal/users/handler"
	"librisync/internal/users/metrics"
	"librisync/internal/users/service"
	"librisync/internal/users/store"
)

// main wires the Users service: identity reads over REST and GraphQL with a
// cache-aside layer in front of the relational store. Emails stay encrypted
// everywhere except the response body.
func main() {
	cfg := config.FromEnv(":8083")
	log := logger.New("user-service")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	codec, err := crypto.NewCodec(cfg.EncryptionKey)
	if err != nil {
		log.Error("build encryption codec", "error", err)
		os.Exit(1)
	}

	pool, err := postgres.Connect(ctx, cfg.Postgres)
	if err != nil {
		log.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	exec := dbexec.New(dbexec.DefaultWorkers)
	defer exec.Close()

	redisClient, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		log.Error("connect redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	if err := kafka.EnsureTopics(ctx, cfg.Kafka.Brokers, cfg.Kafka.LogTopic); err != nil {
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
		cache.NewRedis(redisClient),
		codec,
		auditPub,
		log,
		metrics.New(),
	)
	if err != nil {
		log.Error("build users service", "error", err)
		os.Exit(1)
	}

	gqlHandler, err := graphql.New(svc, log)
	if err != nil {
		log.Error("build graphql schema", "error", err)
		os.Exit(1)
	}

	router := chi.NewRouter()
	handler.New(svc, log).Register(router)
	gqlHandler.Register(router)
	ops.New("user-service", redisClient, log).Register(router)

	srv := httpserver.New(cfg.Addr, router)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("user service listening", "addr", cfg.Addr)
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
		log.Error("user service stopped", "error", err)
		os.Exit(1)
	}
}
