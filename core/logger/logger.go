package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/m3rciful/orderbot/core/buildinfo"
	coreconfig "github.com/m3rciful/orderbot/core/config"
)

var (
	initOnce sync.Once
	out      *sink
	levelVar slog.LevelVar

	debugSample sampler
	traceAll    bool

	components sync.Map // name -> *slog.Logger

	// L is the base logger. It discards output until InitLogger runs.
	L = slog.New(slog.DiscardHandler)

	// TG logs Telegram transport events.
	TG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// ORD logs order state machine and dispatch events.
	ORD *slog.Logger
	// JRN logs order journal writes.
	JRN *slog.Logger
	// OPS logs the metrics/health HTTP endpoint.
	OPS *slog.Logger
)

func init() {
	debugSample.set(1, 50)
	bindComponents()
}

// options is the logging configuration resolved from coreconfig.LoggingConfig.
type options struct {
	format  logFormat
	level   slog.Level
	order   []string
	sample  [2]int
	file    string
	profile string
}

func resolveOptions(cfg *coreconfig.Config) options {
	opts := options{format: formatJSON, level: slog.LevelInfo, sample: [2]int{1, 50}, profile: "prod"}
	if cfg == nil {
		return opts
	}
	lc := cfg.Logging
	if p := strings.ToLower(strings.TrimSpace(lc.Profile)); p != "" {
		opts.profile = p
	}
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		opts.format = formatKV
	case "json":
	default:
		if opts.profile == "debug" || opts.profile == "dev" {
			opts.format = formatKV
		}
	}
	opts.level = parseLevel(lc.Level)
	if raw := strings.TrimSpace(lc.KeysOrder); raw != "" && raw != "default" {
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				opts.order = append(opts.order, k)
			}
		}
	}
	if strings.TrimSpace(lc.DebugSample) != "" {
		if num, den, ok := parseRatio(lc.DebugSample); ok {
			opts.sample = [2]int{num, den}
		}
	}
	if dir, file := strings.TrimSpace(lc.Dir), strings.TrimSpace(lc.BotFile); dir != "" && file != "" {
		opts.file = filepath.Join(dir, file)
	}
	return opts
}

// InitLogger configures the global structured logger. Only the first call has effect.
func InitLogger(cfg *coreconfig.Config) error {
	var err error
	initOnce.Do(func() {
		opts := resolveOptions(cfg)
		outputs := []io.Writer{os.Stdout}
		var closers []io.Closer
		if opts.file != "" {
			f, ferr := openLogFile(opts.file)
			if ferr != nil {
				err = ferr
				return
			}
			outputs = append(outputs, f)
			closers = append(closers, f)
		}
		out = newSink(outputs, closers)
		levelVar.Set(opts.level)
		debugSample.set(opts.sample[0], opts.sample[1])
		traceAll = envFlag("LOG_TRACE") || envFlag("TRACE")

		L = slog.New(newLineHandler(&levelVar, out, opts.format, opts.order))
		slog.SetDefault(L)
		bindComponents()

		bi := buildinfo.Get()
		attrs := []slog.Attr{
			slog.String("event", "startup"),
			slog.String("go_version", bi.GoVersion),
			slog.String("build_version", bi.Version),
			slog.String("build_commit", bi.Commit),
			slog.String("build_time", bi.Date),
			slog.String("cfg_profile", opts.profile),
		}
		if cfg != nil {
			attrs = append(attrs, slog.String("mode", cfg.Telegram.RunMode))
		}
		L.LogAttrs(context.Background(), slog.LevelInfo, "startup", attrs...)
	})
	return err
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("logger: create log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logger: open log file: %w", err)
	}
	return f, nil
}

func bindComponents() {
	components.Clear()
	TG = Component("tg")
	TWire = Component("tg.wire")
	ORD = Component("order")
	JRN = Component("journal")
	OPS = Component("ops")
}

// Shutdown flushes and closes the log outputs. Later records are dropped.
func Shutdown() error {
	if out == nil {
		return nil
	}
	return out.Close()
}

// Component returns the base logger scoped to a component name.
func Component(name string) *slog.Logger {
	name = strings.TrimSpace(name)
	if name == "" {
		return L
	}
	if l, ok := components.Load(name); ok {
		return l.(*slog.Logger)
	}
	l, _ := components.LoadOrStore(name, L.With("component", name))
	return l.(*slog.Logger)
}

// Log writes an event for component at level. Context metadata is added by the handler.
func Log(ctx context.Context, level slog.Level, component, event string, attrs ...slog.Attr) {
	if ctx == nil {
		ctx = context.Background()
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	Component(component).LogAttrs(ctx, level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Log(ctx, slog.LevelDebug, component, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Log(ctx, slog.LevelInfo, component, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Log(ctx, slog.LevelWarn, component, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Log(ctx, slog.LevelError, component, event, attrs...)
}

// ShouldSampleDebug reports whether a high-volume debug event should be logged.
// LOG_TRACE=1 disables sampling.
func ShouldSampleDebug() bool {
	return traceAll || debugSample.allow()
}

func envFlag(name string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(name))) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// RoundMS rounds d to the nearest millisecond; negative durations become zero.
func RoundMS(d time.Duration) time.Duration {
	return max(d, 0).Round(time.Millisecond)
}

// Took returns the rounded time elapsed since start.
func Took(start time.Time) time.Duration {
	return RoundMS(time.Since(start))
}

// Preview joins at most limit values, noting how many were left out.
func Preview(values []string, limit int) string {
	if len(values) <= limit {
		return strings.Join(values, ", ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(values[:max(limit, 0)], ", "), len(values)-max(limit, 0))
}
