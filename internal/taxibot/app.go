// Package taxibot wires the order aggregator to Telegram: handlers, commands,
// dispatch notifications and the companion background tasks.
package taxibot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/orderbot/core/cmd"
	"github.com/m3rciful/orderbot/core/journal"
	"github.com/m3rciful/orderbot/core/logger"
	"github.com/m3rciful/orderbot/core/metrics"
	"github.com/m3rciful/orderbot/core/order"
	coretelegram "github.com/m3rciful/orderbot/core/telegram"
	"github.com/m3rciful/orderbot/core/telegram/router"
	"github.com/m3rciful/orderbot/core/telegram/sender"
)

// App is the assembled order-intake bot.
type App struct {
	cfg      *Config
	db       *sqlx.DB
	agg      *order.Aggregator
	notifier *Notifier
	handlers *Handlers
	registry *coretelegram.Registry
}

// New assembles the bot. db may be nil when the journal is disabled.
func New(cfg *Config, db *sqlx.DB) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("taxibot: nil config")
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		return nil, err
	}

	var (
		jrn   journal.Journal = journal.Nop{}
		stats func(context.Context) (int, error)
	)
	if db != nil {
		pg := journal.NewPostgres(db)
		jrn = pg
		stats = statsSince(pg.CountSince)
	}

	agg := order.NewAggregator(order.Options{
		Catalog:    catalog,
		SessionTTL: cfg.Session.TTL,
		Observer:   order.Observers{logObserver{}, metrics.OrderObserver{}},
	})
	formatter := order.Formatter{Catalog: catalog, MapLinkBase: cfg.Dispatch.MapLinkBase}
	notifier := NewNotifier(cfg.Dispatch.ChatID, formatter, jrn)

	a := &App{
		cfg:      cfg,
		db:       db,
		agg:      agg,
		notifier: notifier,
		handlers: NewHandlers(agg, notifier, cfg.Texts, stats),
		registry: coretelegram.NewRegistry(),
	}
	a.registerCommands()
	return a, nil
}

func (a *App) registerCommands() {
	h, t := a.handlers, a.cfg.Texts
	a.registry.RegisterCommand("/start", coretelegram.Command{Handler: h.Start, Description: "🔄 Перезапуск"})
	a.registry.RegisterCommand("/contact", coretelegram.Command{Handler: h.Static(t.Contact, true), Description: "📞 Контакт"})
	a.registry.RegisterCommand("/info", coretelegram.Command{Handler: h.Static(t.Info, true), Description: "ℹ️ Описание"})
	a.registry.RegisterCommand("/order", coretelegram.Command{Handler: h.Static(t.Order, false), Description: "🚕 Как заказать"})
	a.registry.RegisterCommand("/sobriety", coretelegram.Command{Handler: h.Static(t.Sobriety, false), Description: "😇 Трезвый водитель"})
	a.registry.RegisterCommand("/price", coretelegram.Command{Handler: h.Static(t.Price, false), Description: "💰 Цены"})
	a.registry.RegisterCommand("/stats", coretelegram.Command{Handler: h.Stats, Description: "Статистика", AdminOnly: true})
}

// Aggregator exposes the order state machine.
func (a *App) Aggregator() *order.Aggregator { return a.agg }

// TelegramRunOptions satisfies cmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID:       a.cfg.Telegram.AdminID,
		OnAdminReject: a.handlers.DenyAdmin,
	})
	routes = append(routes, router.MessageRoutes(a.registry, router.MessageOptions{
		Text:     a.handlers.Text,
		Location: a.handlers.Location,
		Contact:  a.handlers.Contact,
	})...)

	return coretelegram.RunOptions{
		Config:            &a.cfg.Config,
		Registry:          a.registry,
		DispatcherOptions: sender.Options{MaxRetries: 3},
		Middlewares:       coretelegram.DefaultMiddlewares(&a.cfg.Config),
		Routes:            routes,
		OnStart: func(ctx context.Context, rt coretelegram.Runtime) error {
			a.notifier.Bind(rt.Bot, rt.Dispatcher)
			return nil
		},
		OnStop: func(ctx context.Context, rt coretelegram.Runtime) error {
			logger.ORD.Info("order intake stopped",
				slog.String("event", "shutdown"),
				slog.Int("sessions_active", a.agg.Active()),
			)
			return nil
		},
	}, nil
}

// BackgroundTasks satisfies cmd.BackgroundApp.
func (a *App) BackgroundTasks() []cmd.Task {
	var tasks []cmd.Task
	if a.cfg.Session.TTL > 0 {
		tasks = append(tasks, cmd.Task{Name: "session-sweeper", Run: a.sweep})
	}
	if a.cfg.Metrics.Listen != "" {
		metrics.MustRegister()
		metrics.TrackActiveSessions(a.agg.Active)
		srv := metrics.NewServer(a.cfg.Metrics.Listen, a.health)
		tasks = append(tasks, cmd.Task{Name: "ops-http", Run: srv.Run})
	}
	return tasks
}

func (a *App) sweep(ctx context.Context) error {
	t := time.NewTicker(a.cfg.Session.SweepInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			a.agg.ExpireIdle(now)
		}
	}
}

func (a *App) health(ctx context.Context) error {
	if a.db == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return a.db.PingContext(ctx)
}
