package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestRegistryCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", Command{Handler: noop, Description: "restart", Aliases: []string{"restart"}})
	reg.RegisterCommand("/stats", Command{Handler: noop, Description: "stats", AdminOnly: true})
	reg.RegisterCommand("/hidden", Command{Handler: noop, Description: "x", Hidden: true})
	reg.RegisterCommand("nope", Command{Handler: noop, Description: "no slash"})
	reg.RegisterCommand("/empty", Command{Handler: noop})
	reg.RegisterCommand("/start", Command{Handler: noop, Description: "dup"})

	require.Equal(t, 3, reg.Len())
	var order []string
	reg.Each(func(name string, _ Command) { order = append(order, name) })
	assert.Equal(t, []string{"/start", "/stats", "/hidden"}, order)

	visible := reg.ListCommands(true)
	require.Len(t, visible, 1)
	assert.Equal(t, tele.Command{Text: "/start", Description: "restart"}, visible[0])
	assert.Len(t, reg.ListCommands(false), 3)

	for _, in := range []string{"restart", "/restart", "start", " /start "} {
		key, cmd, ok := reg.LookupCommand(in)
		assert.True(t, ok, in)
		assert.Equal(t, "/start", key, in)
		assert.Equal(t, "restart", cmd.Description, in)
	}
	key, cmd, ok := reg.LookupCommand("stats")
	assert.True(t, ok)
	assert.Equal(t, "/stats", key)
	assert.True(t, cmd.AdminOnly)
	_, _, ok = reg.LookupCommand("/missing")
	assert.False(t, ok)
}

func TestRegistryAliasDoesNotShadowCommand(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/info", Command{Handler: noop, Description: "info"})
	reg.RegisterCommand("/help", Command{Handler: noop, Description: "help", Aliases: []string{"info"}})

	key, _, ok := reg.LookupCommand("info")
	require.True(t, ok)
	assert.Equal(t, "/info", key)
}
