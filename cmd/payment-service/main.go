package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/storefront/internal/config"
	"github.com/dmehra2102/storefront/internal/payment/application"
	paymentkafka "github.com/dmehra2102/storefront/internal/payment/infrastructure/kafka"
	pg "github.com/dmehra2102/storefront/internal/payment/infrastructure/postgres"
	"github.com/dmehra2102/storefront/internal/platform/postgres"
	"github.com/dmehra2102/storefront/pkg/health"
	"github.com/dmehra2102/storefront/pkg/idempotency"
	"github.com/dmehra2102/storefront/pkg/logging"
	"github.com/dmehra2102/storefront/pkg/outbox"
	"github.com/dmehra2102/storefront/pkg/shutdown"
	"github.com/dmehra2102/storefront/pkg/tracing"
)

func main() {
	log := logging.New()
	ctx, cancel := shutdown.WithSignals(context.Background(), log)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		log.Error("config invalid", "err", err)
		os.Exit(1)
	}
	brokers := strings.Split(cfg.KafkaAddr, ",")

	tp, err := tracing.Init(ctx, "payment-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, log, pool); err != nil {
		log.Error("migration failed", "err", err)
		os.Exit(1)
	}

	redisDB := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisDB.Close()
	idem := idempotency.NewStore(redisDB, cfg.IdempotentTTL)

	repo := pg.NewRepository(log, pool)

	// Outbox relay for payment events
	writer := outbox.NewWriter(brokers)
	defer writer.Close()
	dispatch := outbox.NewDispatcher(log, writer, cfg.PaymentTopic)
	relay := outbox.NewRelay(log, outbox.NewPostgresStore(log, pool, "payment"), dispatch, "payment-service-relay")
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped", "err", err)
		}
	}()

	svc := application.NewService(repo)
	consumer := paymentkafka.NewConsumer(log, brokers, cfg.OrderTopic, "payment-service", svc, idem)

	go func() {
		if err := consumer.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("consumer stopped", "err", err)
			cancel()
		}
	}()

	monitor := health.NewMonitor(log, "payment", map[string]health.Check{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return redisDB.Ping(ctx).Err() },
	})
	go monitor.Run(ctx)

	srv := &http.Server{Addr: env("PAYMENT_HTTP_ADDR", ":8081"), Handler: monitor, ReadTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("health endpoint failed", "err", err)
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("payment-service shutdown")
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
