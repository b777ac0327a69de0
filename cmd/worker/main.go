package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vrapolinario/AIforITOps/internal/catalog"
	"github.com/vrapolinario/AIforITOps/internal/inventory"
	"github.com/vrapolinario/AIforITOps/internal/orders"
	"github.com/vrapolinario/AIforITOps/pkg/config"
	"github.com/vrapolinario/AIforITOps/pkg/db"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
	"github.com/vrapolinario/AIforITOps/pkg/metrics"
	"github.com/vrapolinario/AIforITOps/pkg/pubsub"
)

func main() {
	ctx := context.Background()
	logg := logger.New(logger.Options{ServiceName: "inventory-worker"})

	_ = godotenv.Load()

	cfg, err := config.Load()
	requireResource(ctx, logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "inventory-worker",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	requireResource(ctx, logg, "database", err)
	defer dbClient.Close()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	requireResource(ctx, logg, "pubsub", err)
	defer pubsubClient.Close()

	requireResource(ctx, logg, "database ping", dbClient.Ping(ctx))
	requireResource(ctx, logg, "pubsub ping", pubsubClient.Ping(ctx))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	workerMetrics := metrics.NewWorkerMetrics(registry)

	consumer, err := inventory.NewConsumer(
		catalog.NewRepository(dbClient.DB()),
		orders.NewRepository(dbClient.DB()),
		pubsubClient.OrdersSubscription(),
		logg,
		workerMetrics,
	)
	requireResource(ctx, logg, "inventory consumer", err)

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	runCtx = logg.WithFields(runCtx, map[string]any{"env": cfg.App.Env})

	go serveMetrics(runCtx, logg, cfg.App.MetricsPort, registry)

	logg.Info(runCtx, "inventory worker ready")

	if err := consumer.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(runCtx, "inventory worker stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(context.Background(), "inventory worker drained")
}

func serveMetrics(ctx context.Context, logg *logger.Logger, port string, registry *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	server := &http.Server{Addr: ":" + port, Handler: mux}
	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logg.Error(ctx, "metrics server stopped unexpectedly", err)
	}
}

func requireResource(ctx context.Context, logg *logger.Logger, resource string, err error) {
	if err == nil {
		return
	}
	logg.Error(ctx, fmt.Sprintf("resource not working: %s", resource), err)
	os.Exit(1)
}
