package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/orderbot/core/config"
	coretelegram "github.com/m3rciful/orderbot/core/telegram"
)

func TestRunGroupStopsTasksWhenBotExits(t *testing.T) {
	var stopped atomic.Bool
	err := runGroup(context.Background(),
		func(context.Context) error { return nil },
		[]Task{{Name: "sweeper", Run: func(ctx context.Context) error {
			<-ctx.Done()
			stopped.Store(true)
			return nil
		}}},
	)
	require.NoError(t, err)
	assert.True(t, stopped.Load())
}

func TestRunGroupTaskFailureStopsBot(t *testing.T) {
	boom := errors.New("listen: address in use")
	err := runGroup(context.Background(),
		func(ctx context.Context) error {
			<-ctx.Done()
			return nil
		},
		[]Task{{Name: "ops", Run: func(context.Context) error { return boom }}, {Name: "nil"}},
	)
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "ops")
}

type carrier struct{ cfg *coreconfig.Config }

func (c carrier) CoreConfig() *coreconfig.Config { return c.cfg }

type app struct{ ticks *atomic.Int32 }

func (app) TelegramRunOptions() (coretelegram.RunOptions, error) {
	return coretelegram.RunOptions{}, nil
}

func (a app) BackgroundTasks() []Task {
	return []Task{{Name: "tick", Run: func(ctx context.Context) error {
		a.ticks.Add(1)
		<-ctx.Done()
		return nil
	}}}
}

func TestRunWiresHooksAndTasks(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("telegram:\n  token: x\n"), 0o600))
	t.Setenv("ORDERBOT_TEST_CONFIG", path)

	ticks := &atomic.Int32{}
	var started, stoppedHook bool
	err := Run(Options{
		ConfigEnvVar: "ORDERBOT_TEST_CONFIG",
		LoadConfig: func(string) (ConfigCarrier, error) {
			return carrier{cfg: &coreconfig.Config{}}, nil
		},
		Bootstrap:      func(ConfigCarrier) (TelegramApp, error) { return app{ticks: ticks}, nil },
		ShutdownLogger: func() error { return nil },
		RunTelegram: func(ctx context.Context, opts coretelegram.RunOptions) error {
			require.NoError(t, opts.OnStart(ctx, coretelegram.Runtime{}))
			started = true
			time.Sleep(10 * time.Millisecond)
			stoppedHook = opts.OnStop(ctx, coretelegram.Runtime{}) == nil
			return nil
		},
	})
	require.NoError(t, err)
	assert.True(t, started)
	assert.True(t, stoppedHook)
	assert.Equal(t, int32(1), ticks.Load())
}

func TestRunValidatesOptions(t *testing.T) {
	assert.Error(t, Run(Options{}))
	assert.Error(t, Run(Options{LoadConfig: func(string) (ConfigCarrier, error) { return nil, nil }}))
}

func TestConfigPath(t *testing.T) {
	t.Setenv(defaultConfigEnv, "")
	_, err := Options{}.configPath()
	assert.Error(t, err)

	p, err := Options{DefaultConfigPath: "config.yaml"}.configPath()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", p)

	t.Setenv(defaultConfigEnv, " /etc/orderbot.yaml ")
	p, err = Options{DefaultConfigPath: "config.yaml"}.configPath()
	require.NoError(t, err)
	assert.Equal(t, "/etc/orderbot.yaml", p)
}

func TestWrapLifecycleStopsOnStartError(t *testing.T) {
	boom := errors.New("webhook")
	opts := coretelegram.RunOptions{
		OnStart: func(context.Context, coretelegram.Runtime) error { return boom },
	}
	wrapLifecycle(&opts, time.Now())
	assert.ErrorIs(t, opts.OnStart(context.Background(), coretelegram.Runtime{}), boom)
	assert.NoError(t, opts.OnStop(context.Background(), coretelegram.Runtime{}))
}
