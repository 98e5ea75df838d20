package telegram

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m3rciful/orderbot/core/logger"

	tele "gopkg.in/telebot.v4"
)

// Command is a slash command with its handler and menu metadata.
// Aliases are extra texts, with or without the slash, that resolve to it.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Registry keeps commands in registration order and resolves aliases.
type Registry struct {
	names []string
	defs  map[string]Command
	alias map[string]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		defs:  make(map[string]Command),
		alias: make(map[string]string),
	}
}

// RegisterCommand adds cmd under name ("/name"). Invalid or duplicate
// registrations are logged and ignored.
func (r *Registry) RegisterCommand(name string, cmd Command) {
	skip := func(reason string) {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("status", "skip"),
			slog.String("command", name),
			slog.String("cause", reason),
		)
	}
	switch _, dup := r.defs[name]; {
	case cmd.Handler == nil || cmd.Description == "":
		skip("invalid")
		return
	case !strings.HasPrefix(name, "/") || len(name) < 2:
		skip("no_slash_prefix")
		return
	case dup:
		skip("duplicate")
		return
	}
	r.names = append(r.names, name)
	r.defs[name] = cmd
	r.alias[name] = name
	r.alias[name[1:]] = name
	for _, a := range cmd.Aliases {
		a = strings.TrimPrefix(a, "/")
		if _, taken := r.alias[a]; a != "" && !taken {
			r.alias[a] = name
			r.alias["/"+a] = name
		}
	}
}

// Len reports the number of registered commands.
func (r *Registry) Len() int { return len(r.names) }

// Each calls fn for every command in registration order.
func (r *Registry) Each(fn func(name string, cmd Command)) {
	for _, n := range r.names {
		fn(n, r.defs[n])
	}
}

// ListCommands returns the command menu in registration order. With
// visibleOnly, hidden and admin-only commands are left out.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	r.Each(func(name string, cmd Command) {
		if visibleOnly && (cmd.Hidden || cmd.AdminOnly) {
			return
		}
		list = append(list, tele.Command{Text: name, Description: cmd.Description})
	})
	return list
}

// LookupCommand resolves a command name or alias to its canonical name.
func (r *Registry) LookupCommand(text string) (string, Command, bool) {
	name, ok := r.alias[strings.TrimSpace(text)]
	if !ok {
		return "", Command{}, false
	}
	return name, r.defs[name], true
}

// InitBotCommands publishes the visible commands as the bot's command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if len(list) == 0 {
		return
	}
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}
}
