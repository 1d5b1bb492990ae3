// Package app assembles the services shared by the API server and consignctl.
package app

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/MrJamesThe3rd/consignd/internal/clock"
	"github.com/MrJamesThe3rd/consignd/internal/config"
	"github.com/MrJamesThe3rd/consignd/internal/database"
	"github.com/MrJamesThe3rd/consignd/internal/events"
	"github.com/MrJamesThe3rd/consignd/internal/history"
	historyStore "github.com/MrJamesThe3rd/consignd/internal/history/store"
	"github.com/MrJamesThe3rd/consignd/internal/hold"
	holdStore "github.com/MrJamesThe3rd/consignd/internal/hold/store"
	"github.com/MrJamesThe3rd/consignd/internal/listing"
	listingStore "github.com/MrJamesThe3rd/consignd/internal/listing/store"
	"github.com/MrJamesThe3rd/consignd/internal/lock"
	"github.com/MrJamesThe3rd/consignd/internal/order"
	orderStore "github.com/MrJamesThe3rd/consignd/internal/order/store"
	"github.com/MrJamesThe3rd/consignd/internal/sweep"
)

// SetupLogging installs the default slog handler for env.
func SetupLogging(env string) {
	var handler slog.Handler
	if env == "dev" {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}

	slog.SetDefault(slog.New(handler))
}

type Options struct {
	Migrate bool
}

type App struct {
	DB       *sql.DB
	Clock    clock.Clock
	Holds    *hold.Manager
	Sweeper  *sweep.Sweeper
	Runner   *sweep.Runner
	Listings *listing.Service
	Orders   *order.Service
	History  *history.Service

	closers []func()
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	db, err := database.New(ctx, cfg.ConnectionString(), database.Options{
		MaxConns: cfg.DB.MaxConns,
		Migrate:  opts.Migrate,
	})
	if err != nil {
		return nil, err
	}

	a := &App{DB: db, Clock: clock.NewSystem()}
	a.closers = append(a.closers, func() { db.Close() })

	var notifier hold.Notifier = events.Noop{}

	if cfg.NATS.URL != "" {
		pub, err := events.Connect(cfg.NATS.URL)
		if err != nil {
			a.Close()
			return nil, err
		}

		notifier = pub
		a.closers = append(a.closers, pub.Close)
	}

	var gate sweep.Gate = lock.NewLocal()

	if cfg.Redis.Addr != "" {
		r, err := lock.NewRedis(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			a.Close()
			return nil, err
		}

		gate = r
		a.closers = append(a.closers, func() { r.Close() })
	}

	holds := holdStore.New(db)

	a.Holds = hold.NewManager(holds, a.Clock,
		hold.WithPolicy(hold.Policy{
			BaseWindow:     cfg.Checkout.BaseWindow,
			Extension:      cfg.Checkout.Extension,
			Ceiling:        cfg.Checkout.Ceiling,
			TxAttempts:     cfg.Checkout.TxAttempts,
			ReconcileBatch: cfg.Sweep.BatchSize,
		}),
		hold.WithNotifier(notifier),
	)
	a.Sweeper = sweep.NewSweeper(holds, a.Holds, a.Clock, cfg.Sweep.BatchSize)
	a.Runner = sweep.NewRunner(a.Sweeper, gate, cfg.Sweep.Interval, cfg.Sweep.Throttle)

	a.Listings = listing.NewService(listingStore.New(db), a.Runner)
	a.Orders = order.NewService(orderStore.New(db))
	a.History = history.NewService(historyStore.New(db))

	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}
