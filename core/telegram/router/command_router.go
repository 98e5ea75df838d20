package router

import (
	"context"
	"log/slog"

	"github.com/m3rciful/orderbot/core/logger"
	tg "github.com/m3rciful/orderbot/core/telegram"
	"github.com/m3rciful/orderbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// CommandRouteOptions configures how commands are wrapped and exposed.
type CommandRouteOptions struct {
	AdminID       int64
	OnAdminReject tele.HandlerFunc
}

// CommandRoutes prepares command handlers wrapped with shared middleware.
func CommandRoutes(reg *tg.Registry, opts CommandRouteOptions) []tg.Route {
	if reg == nil {
		return nil
	}

	adminOpts := middleware.AdminOptions{
		AdminID:  opts.AdminID,
		OnReject: opts.OnAdminReject,
	}

	routes := make([]tg.Route, 0, reg.Len())
	reg.Each(func(cmd string, def tg.Command) {
		name := "command." + handlerName(cmd)
		h := func(c tele.Context) error {
			return begin(c, name).run(func() error { return def.Handler(c) })
		}
		if def.AdminOnly {
			h = middleware.AdminOnlyMiddleware(adminOpts)(h)
		}
		routes = append(routes, tg.Route{Endpoint: cmd, Handler: wrap(h)})
	})

	logger.Info(context.Background(), "tg.wire", "wire.commands",
		slog.String("status", "ok"),
		slog.Int("count", len(routes)),
	)

	return routes
}
