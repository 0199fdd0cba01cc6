package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mambaservices/storefront-backend/internal/discordaccess"
	"github.com/mambaservices/storefront-backend/internal/discordbot"
	"github.com/mambaservices/storefront-backend/pkg/config"
	"github.com/mambaservices/storefront-backend/pkg/db"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "bot"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "bot",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if !cfg.Discord.Enabled() {
		logg.Error(context.Background(), "discord token, guild id and role id must be configured", nil)
		os.Exit(1)
	}

	var repo discordaccess.Repository
	if cfg.DB.UseMemory() {
		logg.Warn(context.Background(), "using in-memory storage, data will not survive restarts")
		repo = discordaccess.NewMemoryRepository()
	} else {
		dbClient, err := db.New(context.Background(), cfg.DB, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to connect to database", err)
			os.Exit(1)
		}
		defer func() {
			if err := dbClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing database", err)
			}
		}()
		repo = discordaccess.NewGormRepository(dbClient.DB())
	}

	// The role manager and the access service share the bot's gateway session,
	// so the session is created before either.
	session, err := discordbot.NewSession(cfg.Discord)
	if err != nil {
		logg.Error(context.Background(), "failed to create discord session", err)
		os.Exit(1)
	}
	roles, err := discordbot.NewRoleManager(session, cfg.Discord)
	if err != nil {
		logg.Error(context.Background(), "failed to create role manager", err)
		os.Exit(1)
	}
	accessService, err := discordaccess.NewService(discordaccess.ServiceParams{
		Repo:   repo,
		Roles:  roles,
		Logger: logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create discord access service", err)
		os.Exit(1)
	}

	bot, err := discordbot.NewBot(discordbot.BotParams{
		Access:  accessService,
		Config:  cfg.Discord,
		Logger:  logg,
		Session: session,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create bot", err)
		os.Exit(1)
	}

	ctx := logg.WithField(context.Background(), "guild_id", cfg.Discord.GuildID)
	if err := bot.Start(ctx); err != nil {
		logg.Error(ctx, "failed to start bot", err)
		os.Exit(1)
	}
	logg.Info(ctx, "bot running, press ctrl+c to exit")

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	logg.Info(ctx, "shutting down")
	if err := bot.Stop(); err != nil {
		logg.Error(ctx, "error closing discord session", err)
	}
}
