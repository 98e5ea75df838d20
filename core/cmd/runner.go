package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	coreconfig "github.com/m3rciful/orderbot/core/config"
	"github.com/m3rciful/orderbot/core/logger"
	coretelegram "github.com/m3rciful/orderbot/core/telegram"
)

const defaultConfigEnv = "CONFIG_PATH"

// ConfigCarrier exposes access to the embedded core configuration.
type ConfigCarrier interface {
	CoreConfig() *coreconfig.Config
}

// TelegramApp builds the options for the bot runtime.
type TelegramApp interface {
	TelegramRunOptions() (coretelegram.RunOptions, error)
}

// Task is a long-running companion of the bot, such as an HTTP endpoint or a sweeper.
// Run must return when ctx is done.
type Task struct {
	Name string
	Run  func(ctx context.Context) error
}

// BackgroundApp is implemented by apps that run tasks next to the bot.
type BackgroundApp interface {
	BackgroundTasks() []Task
}

// Options wire the process entry point. Nil ShutdownLogger and RunTelegram
// fall back to logger.Shutdown and coretelegram.RunTelegram.
type Options struct {
	ConfigEnvVar      string
	DefaultConfigPath string

	LoadConfig func(path string) (ConfigCarrier, error)
	Bootstrap  func(cfg ConfigCarrier) (TelegramApp, error)

	ShutdownLogger func() error
	RunTelegram    func(ctx context.Context, opts coretelegram.RunOptions) error
}

var (
	errNoLoader    = errors.New("cmd: LoadConfig is required")
	errNoBootstrap = errors.New("cmd: Bootstrap is required")
)

// Run loads configuration, bootstraps the app and serves until SIGINT or
// SIGTERM, or until the bot or a background task exits.
func Run(opts Options) error {
	switch {
	case opts.LoadConfig == nil:
		return errNoLoader
	case opts.Bootstrap == nil:
		return errNoBootstrap
	}

	path, err := opts.configPath()
	if err != nil {
		return err
	}
	log.Printf("orderbot: config %s", path)
	cfg, err := opts.LoadConfig(path)
	if err != nil {
		return fmt.Errorf("cmd: load config: %w", err)
	}
	if cfg == nil || cfg.CoreConfig() == nil {
		return errors.New("cmd: config has no core section")
	}

	app, err := opts.Bootstrap(cfg)
	if err != nil {
		return fmt.Errorf("cmd: bootstrap: %w", err)
	}
	defer opts.shutdownLogger()

	runOpts, err := app.TelegramRunOptions()
	if err != nil {
		return fmt.Errorf("cmd: telegram options: %w", err)
	}
	wrapLifecycle(&runOpts, time.Now())

	var tasks []Task
	if bg, ok := app.(BackgroundApp); ok {
		tasks = bg.BackgroundTasks()
	}
	run := opts.RunTelegram
	if run == nil {
		run = coretelegram.RunTelegram
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return runGroup(ctx, func(ctx context.Context) error { return run(ctx, runOpts) }, tasks)
}

func (o Options) configPath() (string, error) {
	env := o.ConfigEnvVar
	if env == "" {
		env = defaultConfigEnv
	}
	if p := strings.TrimSpace(os.Getenv(env)); p != "" {
		return p, nil
	}
	if o.DefaultConfigPath != "" {
		return o.DefaultConfigPath, nil
	}
	return "", fmt.Errorf("cmd: set %s or DefaultConfigPath", env)
}

func (o Options) shutdownLogger() {
	shutdown := o.ShutdownLogger
	if shutdown == nil {
		shutdown = logger.Shutdown
	}
	if err := shutdown(); err != nil {
		log.Printf("orderbot: logger shutdown: %v", err)
	}
}

// wrapLifecycle logs readiness after the app's OnStart and the shutdown
// before its OnStop.
func wrapLifecycle(opts *coretelegram.RunOptions, startedAt time.Time) {
	onStart, onStop := opts.OnStart, opts.OnStop
	opts.OnStart = func(ctx context.Context, rt coretelegram.Runtime) error {
		if onStart != nil {
			if err := onStart(ctx, rt); err != nil {
				return err
			}
		}
		logger.Info(ctx, "app", "ready", slog.Duration("startup_duration", logger.Took(startedAt)))
		return nil
	}
	opts.OnStop = func(ctx context.Context, rt coretelegram.Runtime) error {
		logger.Info(ctx, "app", "shutdown", slog.Duration("uptime", logger.Took(startedAt)))
		if onStop == nil {
			return nil
		}
		return onStop(ctx, rt)
	}
}

// runGroup runs the bot and tasks together; the first to exit stops the rest.
func runGroup(ctx context.Context, bot func(context.Context) error, tasks []Task) error {
	g, gctx := errgroup.WithContext(ctx)
	gctx, stop := context.WithCancel(gctx)
	defer stop()

	g.Go(func() error {
		defer stop()
		return bot(gctx)
	})
	for _, t := range tasks {
		if t.Run == nil {
			continue
		}
		g.Go(func() error {
			defer stop()
			if err := t.Run(gctx); err != nil {
				return fmt.Errorf("cmd: %s: %w", t.Name, err)
			}
			return nil
		})
	}
	return g.Wait()
}
