package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	tele "gopkg.in/telebot.v4"

	"github.com/dipanalytics/contentbot/core/admin"
	"github.com/dipanalytics/contentbot/core/cache"
	coreconfig "github.com/dipanalytics/contentbot/core/config"
	coredatabase "github.com/dipanalytics/contentbot/core/database"
	"github.com/dipanalytics/contentbot/core/grant"
	"github.com/dipanalytics/contentbot/core/ingest"
	"github.com/dipanalytics/contentbot/core/logger"
	"github.com/dipanalytics/contentbot/core/objstore"
	"github.com/dipanalytics/contentbot/core/playback"
	"github.com/dipanalytics/contentbot/core/store"
	coretelegram "github.com/dipanalytics/contentbot/core/telegram"
	"github.com/dipanalytics/contentbot/core/telegram/handlers"

	"log/slog"
)

// App holds the wired application services.
type App struct {
	Config *coreconfig.Config

	DB    *sqlx.DB
	Redis *redis.Client

	Store    *store.Store
	Grants   *grant.Manager
	Playback *playback.Engine
	Ingest   *ingest.Service

	Registry *coretelegram.Registry
	Admin    *admin.Server
}

// Bootstrap initializes the logger, infrastructure connections, and services.
func Bootstrap(cfg *coreconfig.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: nil config provided")
	}

	if err := logger.InitLogger(cfg); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	db, err := coredatabase.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := coredatabase.RunMigrations(cfg.Database); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
	}

	rdb, err := cache.Connect(cfg.Redis)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: redis initialization failed: %w", err)
	}

	uploader, err := objstore.NewS3(cfg.Storage)
	if err != nil {
		_ = rdb.Close()
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: object storage initialization failed: %w", err)
	}

	st := store.New(db)
	grants := grant.New(st, time.Duration(cfg.Playback.GrantTTLDays)*24*time.Hour)
	engine := playback.NewEngine(st, playback.NewRedisTracker(rdb))
	ing := ingest.New(st, uploader, cfg.Playback.MaxStep)

	reg := coretelegram.NewRegistry()
	handlers.New(st, grants, engine, ing, uploader).Register(reg)

	a := &App{
		Config:   cfg,
		DB:       db,
		Redis:    rdb,
		Store:    st,
		Grants:   grants,
		Playback: engine,
		Ingest:   ing,
		Registry: reg,
	}

	if cfg.Admin.Listen != "" {
		a.Admin = admin.NewServer(cfg.Admin, st, uploader)
	}

	return a, nil
}

// TelegramRunOptions builds run options for the bot runtime.
func (a *App) TelegramRunOptions() coretelegram.RunOptions {
	return coretelegram.RunOptions{
		Config:      a.Config,
		Registry:    a.Registry,
		Middlewares: coretelegram.DefaultMiddlewares(a.Config),
		OnStart: func(ctx context.Context, bot *tele.Bot) error {
			logger.Component("app").Info("app ready",
				slog.String("event", "ready"),
				slog.String("bot_username", bot.Me.Username),
			)
			return nil
		},
		OnStop: func(ctx context.Context, bot *tele.Bot) error {
			logger.Component("app").Info("shutting down...",
				slog.String("event", "shutdown"),
			)
			return nil
		},
	}
}

// Close releases infrastructure connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.DB != nil {
		_ = a.DB.Close()
	}
}
