package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/dmehra2102/storefront/internal/auth"
	cartapp "github.com/dmehra2102/storefront/internal/cart/application"
	carthttp "github.com/dmehra2102/storefront/internal/cart/infrastructure/http"
	cartredis "github.com/dmehra2102/storefront/internal/cart/infrastructure/redis"
	catalogapp "github.com/dmehra2102/storefront/internal/catalog/application"
	cataloghttp "github.com/dmehra2102/storefront/internal/catalog/infrastructure/http"
	catalogpg "github.com/dmehra2102/storefront/internal/catalog/infrastructure/postgres"
	"github.com/dmehra2102/storefront/internal/config"
	orderapp "github.com/dmehra2102/storefront/internal/order/application"
	orderhttp "github.com/dmehra2102/storefront/internal/order/infrastructure/http"
	orderpg "github.com/dmehra2102/storefront/internal/order/infrastructure/postgres"
	"github.com/dmehra2102/storefront/internal/platform/postgres"
	"github.com/dmehra2102/storefront/pkg/health"
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
	if cfg.JWTSecret == "" {
		log.Error("AUTH_JWT_SECRET is required")
		os.Exit(1)
	}

	tp, err := tracing.Init(ctx, "storefront-service", cfg.OTLPEndpoint, log)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	// Postgres Setup
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

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()

	// Kafka producer
	writer := outbox.NewWriter(strings.Split(cfg.KafkaAddr, ","))
	defer writer.Close()

	// Catalog
	products := catalogapp.NewService(catalogpg.NewRepository(log, pool))

	// Cart
	carts := cartapp.NewService(cartredis.NewStore(log, rdb, cfg.CartTTL), products, cfg.Policy)

	// Orders & outbox
	orderRepo := orderpg.NewRepository(log, pool)
	orders := orderapp.NewService(log, orderRepo, orderRepo, carts)
	dispatch := outbox.NewDispatcher(log, writer, cfg.OrderTopic)
	relay := outbox.NewRelay(log, outbox.NewPostgresStore(log, pool, "order"), dispatch, "storefront-service-relay")

	monitor := health.NewMonitor(log, "storefront", map[string]health.Check{
		"postgres": pool.Ping,
		"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
	})
	gs, err := monitor.Serve(cfg.GRPCAddr)
	if err != nil {
		log.Error("grpc health server failed", "err", err)
		os.Exit(1)
	}
	defer gs.GracefulStop()

	catalogHandler := cataloghttp.NewHandler(log, products)
	orderHandler := orderhttp.NewHandler(log, orders)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.Recoverer)
	r.Method(http.MethodGet, "/healthz", monitor)
	r.Group(func(r chi.Router) {
		r.Use(auth.Authenticate(log, auth.NewVerifier(cfg.JWTSecret)))
		r.Mount("/cart", carthttp.NewHandler(log, carts).Routes())
		r.Route("/admin", func(r chi.Router) {
			r.Use(auth.RequireUser, auth.RequireAdmin(log, auth.NewPostgresDirectory(log, pool)))
			r.Mount("/products", catalogHandler.AdminRoutes())
			r.Mount("/orders", orderHandler.AdminRoutes())
		})
		r.Group(func(r chi.Router) {
			r.Use(auth.RequireUser)
			orderHandler.Register(r)
		})
		catalogHandler.Register(r)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go monitor.Run(ctx)

	// Run relay
	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	// Run HTTP
	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("storefront-service shutdown complete")
}
