package taxibot

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/orderbot/core/config"
	"github.com/m3rciful/orderbot/core/order"
	coretelegram "github.com/m3rciful/orderbot/core/telegram"
)

func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{
		Config:   coreconfig.Config{Telegram: coreconfig.TelegramConfig{Token: "t", AdminID: 1}},
		Dispatch: DispatchConfig{ChatID: -1},
	}
	require.NoError(t, cfg.Normalize())
	return cfg
}

func TestNewWiresCommandsAndRoutes(t *testing.T) {
	app, err := New(testConfig(t), nil)
	require.NoError(t, err)

	visible := app.registry.ListCommands(true)
	names := make([]string, 0, len(visible))
	for _, c := range visible {
		names = append(names, c.Text)
	}
	assert.Equal(t, []string{"/start", "/contact", "/info", "/order", "/sobriety", "/price"}, names)
	_, stats, ok := app.registry.LookupCommand("/stats")
	require.True(t, ok)
	assert.True(t, stats.AdminOnly)

	opts, err := app.TelegramRunOptions()
	require.NoError(t, err)
	assert.Len(t, opts.Routes, 7+3)
	assert.Same(t, &app.cfg.Config, opts.Config)
	assert.NotEmpty(t, opts.Middlewares)

	require.NoError(t, opts.OnStart(context.Background(), coretelegram.Runtime{}))
	require.NoError(t, opts.OnStop(context.Background(), coretelegram.Runtime{}))
}

func TestNewRejectsNilConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestBackgroundTasks(t *testing.T) {
	cfg := testConfig(t)
	app, err := New(cfg, nil)
	require.NoError(t, err)
	assert.Empty(t, app.BackgroundTasks(), "no ttl and no metrics listener")

	cfg.Session.TTL = time.Minute
	cfg.Metrics.Listen = "127.0.0.1:0"
	tasks := app.BackgroundTasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "session-sweeper", tasks[0].Name)
	assert.Equal(t, "ops-http", tasks[1].Name)
	assert.NoError(t, app.health(context.Background()))
}

func TestSweeperExpiresIdleSessions(t *testing.T) {
	cfg := testConfig(t)
	cfg.Session.TTL = time.Nanosecond
	cfg.Session.SweepInterval = 5 * time.Millisecond
	app, err := New(cfg, nil)
	require.NoError(t, err)

	app.Aggregator().SelectService(9, order.Identity{}, "Такси 🚕")
	require.Equal(t, 1, app.Aggregator().Active())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.sweep(ctx) }()

	require.Eventually(t, func() bool { return app.Aggregator().Active() == 0 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
}
