package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/mambaservices/storefront-backend/api/routes"
	"github.com/mambaservices/storefront-backend/internal/accesscodes"
	"github.com/mambaservices/storefront-backend/internal/auth"
	"github.com/mambaservices/storefront-backend/internal/discordaccess"
	"github.com/mambaservices/storefront-backend/internal/forms"
	"github.com/mambaservices/storefront-backend/internal/fulfillment"
	"github.com/mambaservices/storefront-backend/internal/notifications"
	"github.com/mambaservices/storefront-backend/internal/orders"
	"github.com/mambaservices/storefront-backend/internal/users"
	stripewebhook "github.com/mambaservices/storefront-backend/internal/webhooks/stripe"
	"github.com/mambaservices/storefront-backend/pkg/config"
	"github.com/mambaservices/storefront-backend/pkg/db"
	"github.com/mambaservices/storefront-backend/pkg/logger"
	"github.com/mambaservices/storefront-backend/pkg/metrics"
	"github.com/mambaservices/storefront-backend/pkg/migrate"
	"github.com/mambaservices/storefront-backend/pkg/redis"
	"github.com/mambaservices/storefront-backend/pkg/stripe"
)

type repositories struct {
	users         users.Repository
	orders        orders.Repository
	accessCodes   accesscodes.Repository
	discordAccess discordaccess.Repository
	forms         forms.Repository
}

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

	repos, dbClient, err := buildRepositories(context.Background(), cfg, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap storage", err)
		os.Exit(1)
	}
	if dbClient != nil {
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
	}

	var redisClient *redis.Client
	if cfg.Redis.URL == "" && cfg.Redis.Address == "" && !cfg.App.IsProd() {
		logg.Warn(context.Background(), "redis not configured, rate limiting and webhook dedup disabled")
	} else {
		redisClient, err = redis.New(context.Background(), cfg.Redis, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()
	}

	var stripeClient *stripe.Client
	if cfg.Stripe.APIKey == "" && !cfg.App.IsProd() {
		logg.Warn(context.Background(), "stripe not configured, webhook endpoint disabled")
	} else {
		stripeClient, err = stripe.NewClient(context.Background(), cfg.Stripe, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to initialize stripe", err)
			os.Exit(1)
		}
	}

	registry := prometheus.NewRegistry()
	fulfillmentMetrics := metrics.NewFulfillmentMetrics(registry)

	var sender notifications.Sender
	if cfg.Resend.APIKey != "" {
		sender, err = notifications.NewResendSender(notifications.ResendSenderParams{
			APIKey: cfg.Resend.APIKey,
			From:   cfg.Resend.DefaultFrom,
			Logger: logg,
		})
		if err != nil {
			logg.Error(context.Background(), "failed to initialize resend", err)
			os.Exit(1)
		}
	} else {
		logg.Warn(context.Background(), "resend api key missing, emails disabled")
		sender = notifications.NewNoopSender(logg)
	}

	authService, err := auth.NewService(auth.ServiceParams{UserRepo: repos.users, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}
	ordersService, err := orders.NewService(orders.ServiceParams{Repo: repos.orders, Logger: logg})
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}
	codesService, err := accesscodes.NewService(accesscodes.ServiceParams{
		Repo:          repos.accessCodes,
		Metrics:       fulfillmentMetrics,
		Logger:        logg,
		GeneratorLink: cfg.Fulfillment.GeneratorLink,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create access codes service", err)
		os.Exit(1)
	}
	accessService, err := discordaccess.NewService(discordaccess.ServiceParams{
		Repo:   repos.discordAccess,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create discord access service", err)
		os.Exit(1)
	}
	formsService, err := forms.NewService(forms.ServiceParams{
		Repo:       repos.forms,
		Logger:     logg,
		AccessLink: cfg.Fulfillment.GeneratorLink,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create forms service", err)
		os.Exit(1)
	}
	dispatcher, err := fulfillment.NewService(fulfillment.ServiceParams{
		Orders:              ordersService,
		AccessCodes:         codesService,
		DiscordAccess:       accessService,
		Sender:              sender,
		Metrics:             fulfillmentMetrics,
		Logger:              logg,
		GeneratorLink:       cfg.Fulfillment.GeneratorLink,
		DefaultReceiptsDays: cfg.Fulfillment.DefaultAccessDays,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create fulfillment dispatcher", err)
		os.Exit(1)
	}
	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		Dispatcher: dispatcher,
		Metrics:    fulfillmentMetrics,
		Logger:     logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}
	var webhookGuard *stripewebhook.Guard
	if redisClient != nil {
		webhookGuard, err = stripewebhook.NewGuard(redisClient)
		if err != nil {
			logg.Error(context.Background(), "failed to create webhook guard", err)
			os.Exit(1)
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":       cfg.App.Env,
		"addr":      addr,
		"db_driver": cfg.DB.Driver,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.RouterParams{
			Config:        cfg,
			Logger:        logg,
			Redis:         redisClient,
			Metrics:       registry,
			Auth:          authService,
			Orders:        ordersService,
			AccessCodes:   codesService,
			DiscordAccess: accessService,
			Forms:         formsService,
			Fulfillment:   dispatcher,
			StripeClient:  stripeClient,
			StripeWebhook: webhookService,
			WebhookGuard:  webhookGuard,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

// buildRepositories selects the storage backend. The memory driver exists for
// local development without Postgres; everything flows through the same
// repository interfaces either way.
func buildRepositories(ctx context.Context, cfg *config.Config, logg *logger.Logger) (*repositories, *db.Client, error) {
	if cfg.DB.UseMemory() {
		logg.Warn(ctx, "using in-memory storage, data will not survive restarts")
		return &repositories{
			users:         users.NewMemoryRepository(),
			orders:        orders.NewMemoryRepository(),
			accessCodes:   accesscodes.NewMemoryRepository(),
			discordAccess: discordaccess.NewMemoryRepository(),
			forms:         forms.NewMemoryRepository(),
		}, nil, nil
	}

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return nil, nil, err
	}
	if err := migrate.MaybeRunDev(ctx, cfg, logg, dbClient); err != nil {
		_ = dbClient.Close()
		return nil, nil, err
	}

	conn := dbClient.DB()
	return &repositories{
		users:         users.NewGormRepository(conn),
		orders:        orders.NewGormRepository(conn),
		accessCodes:   accesscodes.NewGormRepository(conn),
		discordAccess: discordaccess.NewGormRepository(conn),
		forms:         forms.NewGormRepository(conn),
	}, dbClient, nil
}
