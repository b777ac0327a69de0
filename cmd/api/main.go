package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	"github.com/vrapolinario/AIforITOps/api/controllers"
	"github.com/vrapolinario/AIforITOps/api/routes"
	cartsvc "github.com/vrapolinario/AIforITOps/internal/cart"
	"github.com/vrapolinario/AIforITOps/internal/catalog"
	"github.com/vrapolinario/AIforITOps/internal/chat"
	checkoutsvc "github.com/vrapolinario/AIforITOps/internal/checkout"
	"github.com/vrapolinario/AIforITOps/internal/events"
	"github.com/vrapolinario/AIforITOps/internal/orders"
	"github.com/vrapolinario/AIforITOps/pkg/config"
	"github.com/vrapolinario/AIforITOps/pkg/db"
	"github.com/vrapolinario/AIforITOps/pkg/env"
	"github.com/vrapolinario/AIforITOps/pkg/logger"
	"github.com/vrapolinario/AIforITOps/pkg/migrate"
	"github.com/vrapolinario/AIforITOps/pkg/openai"
	"github.com/vrapolinario/AIforITOps/pkg/pubsub"
	"github.com/vrapolinario/AIforITOps/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	pubsubClient, err := pubsub.NewClient(context.Background(), cfg.GCP, cfg.PubSub, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap pubsub", err)
		os.Exit(1)
	}
	defer func() {
		if err := pubsubClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing pubsub", err)
		}
	}()

	catalogService, err := catalog.NewService(catalog.NewRepository(dbClient.DB()), cfg.Catalog)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	cartService, err := cartsvc.NewService(redisClient, cfg.Redis.CartTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart service", err)
		os.Exit(1)
	}

	orderPublisher, err := events.NewPublisher(pubsubClient.OrdersPublisher())
	if err != nil {
		logg.Error(context.Background(), "failed to create order publisher", err)
		os.Exit(1)
	}

	ordersRepo := orders.NewRepository(dbClient.DB())

	checkoutService, err := checkoutsvc.NewService(cartService, ordersRepo, orderPublisher, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	var chatService chat.Service
	if cfg.OpenAI.Configured() {
		openaiClient, err := openai.NewClient(cfg.OpenAI)
		if err != nil {
			logg.Error(context.Background(), "failed to create completion client", err)
			os.Exit(1)
		}
		chatService, err = chat.NewService(openaiClient, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create chat service", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "chatbot upstream not configured, answers will fall back")
		chatService, err = chat.NewService(openai.NotConfigured{}, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to create chat service", err)
			os.Exit(1)
		}
	}

	addr := ":" + env.Get("PORT", cfg.App.Port)
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config: cfg,
			Logger: logg,
			Readiness: map[string]controllers.Pinger{
				"db":     dbClient,
				"redis":  redisClient,
				"pubsub": pubsubClient,
			},
			Catalog:  catalogService,
			Orders:   ordersRepo,
			Cart:     cartService,
			Checkout: checkoutService,
			Chat:     chatService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
