package router

import (
	tg "github.com/m3rciful/orderbot/core/telegram"
	"github.com/m3rciful/orderbot/core/telegram/middleware"

	tele "gopkg.in/telebot.v4"
)

// MessageOptions binds handlers for the plain message kinds a bot accepts.
// Nil handlers are logged as skipped.
type MessageOptions struct {
	// Text receives any text that is not a registered command or alias.
	Text     tele.HandlerFunc
	Location tele.HandlerFunc
	Contact  tele.HandlerFunc
}

// MessageRoutes builds handlers for text, location and contact updates.
func MessageRoutes(reg *tg.Registry, opts MessageOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return begin(c, "command."+handlerName(key)).run(func() error { return cmd.Handler(c) })
			}
		}
		s := begin(c, "text")
		if opts.Text == nil {
			s.skip()
			return nil
		}
		return s.run(func() error { return opts.Text(c) })
	}

	routes := []tg.Route{
		{Endpoint: tele.OnText, Handler: wrap(textHandler)},
		{Endpoint: tele.OnLocation, Handler: wrap(kindHandler("location", opts.Location))},
		{Endpoint: tele.OnContact, Handler: wrap(kindHandler("contact", opts.Contact))},
	}
	return routes
}

func kindHandler(name string, h tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		s := begin(c, name)
		if h == nil {
			s.skip()
			return nil
		}
		return s.run(func() error { return h(c) })
	}
}

func wrap(h tele.HandlerFunc) tele.HandlerFunc {
	return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
}
