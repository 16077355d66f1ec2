// Package bot wires the marketplace flows onto the Telegram runtime:
// command and callback registration, the conversation step dispatcher,
// and the lifecycle hooks that start the maintenance scheduler.
package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/crewshare/crewbot/core/bootstrap"
	tg "github.com/crewshare/crewbot/core/telegram"
	"github.com/crewshare/crewbot/core/telegram/router"
	"github.com/crewshare/crewbot/internal/catalog"
	"github.com/crewshare/crewbot/internal/clients/mailer"
	"github.com/crewshare/crewbot/internal/clients/paystack"
	"github.com/crewshare/crewbot/internal/config"
	"github.com/crewshare/crewbot/internal/service"
	"github.com/crewshare/crewbot/internal/session"
	"github.com/crewshare/crewbot/internal/store"
	"github.com/crewshare/crewbot/internal/sweep"
)

// App is the assembled marketplace bot.
type App struct {
	cfg       *config.Config
	db        *sqlx.DB
	reg       *tg.Registry
	svc       *service.Service
	sessions  *session.Manager
	scheduler *sweep.Scheduler
	notifier  *notifier

	steps map[session.Step]stepHandler
}

// New bootstraps infrastructure and assembles the bot.
func New(cfg *config.Config) (*App, error) {
	res, err := bootstrap.Run(bootstrap.Options{
		Config:   cfg.CoreConfig(),
		Database: cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(cfg.Marketplace.CatalogPath)
	if err != nil {
		return nil, err
	}

	sessStore, err := buildSessionStore(cfg, res.DB)
	if err != nil {
		return nil, err
	}

	notif := &notifier{}
	svc := service.New(service.Deps{
		Users:    store.NewUsers(res.DB),
		Listings: store.NewListings(res.DB),
		Leaves:   store.NewLeaves(res.DB),
		Payments: store.NewPayments(res.DB),
		Gateway:  paystack.New(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.CallbackURL),
		Mailer:   mailer.New(cfg.Mailer.URL),
		Notifier: notif,
		Catalog:  cat,
		Policy:   cfg.Marketplace,
		AdminIDs: cfg.Core.Telegram.AdminIDs,
	})

	sweeper := sweep.NewSweeper(store.NewLeaves(res.DB), store.NewListings(res.DB))
	scheduler, err := sweep.NewScheduler(cfg.Marketplace.SweepSchedule, sweeper)
	if err != nil {
		return nil, fmt.Errorf("bot: invalid sweep schedule %q: %w", cfg.Marketplace.SweepSchedule, err)
	}

	app := &App{
		cfg:       cfg,
		db:        res.DB,
		reg:       tg.NewRegistry(),
		svc:       svc,
		sessions:  session.NewManager(sessStore, time.Duration(cfg.Session.IdleTimeoutMinutes)*time.Minute),
		scheduler: scheduler,
		notifier:  notif,
	}
	app.registerRoutes()
	return app, nil
}

func buildSessionStore(cfg *config.Config, db *sqlx.DB) (session.Store, error) {
	var base session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendMemory:
		return session.NewMemoryStore(), nil
	case config.SessionBackendRedis:
		rs := session.NewRedisStore(
			cfg.Session.RedisAddr, cfg.Session.RedisPassword, cfg.Session.RedisDB,
			time.Duration(cfg.Session.IdleTimeoutMinutes)*time.Minute)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			return nil, fmt.Errorf("bot: redis session store unreachable: %w", err)
		}
		base = rs
	default:
		base = session.NewPostgresStore(db)
	}
	if cfg.Session.FallbackMemory {
		base = session.NewFallbackStore(base)
	}
	return base, nil
}

// TelegramRunOptions satisfies the core runner's TelegramApp interface.
func (a *App) TelegramRunOptions() (tg.RunOptions, error) {
	core := a.cfg.CoreConfig()

	routes := router.TextRoutes(a, a.reg, router.TextOptions{UnknownText: a.handleUnknownText})
	routes = append(routes, router.CallbackRoute(a.reg, router.CallbackOptions{}))

	return tg.RunOptions{
		Config:      core,
		Registry:    a.reg,
		Middlewares: tg.DefaultMiddlewares(core, nil),
		Routes:      routes,
		OnStart: func(_ context.Context, rt tg.Runtime) error {
			a.notifier.bind(rt.Bot)
			a.scheduler.Start()
			return nil
		},
		OnStop: func(_ context.Context, _ tg.Runtime) error {
			a.scheduler.Stop()
			return a.db.Close()
		},
	}, nil
}
