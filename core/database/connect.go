package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/orderbot/core/logger"
)

const (
	driverName     = "postgres"
	connectTimeout = 5 * time.Second
	readyInterval  = 2 * time.Second
	readyTimeout   = 30 * time.Second
)

func (c Config) logAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("host", c.Host),
		slog.String("port", c.Port),
		slog.String("db", c.Name),
	}
}

// Connect opens the journal database and sizes its pool. Both connect and
// ping share one deadline.
func Connect(cfg Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, driverName, cfg.DSN())
	if err == nil {
		if err = db.PingContext(ctx); err != nil {
			_ = db.Close()
		}
	}
	if err != nil {
		logger.Error(ctx, "db", "db.connect", append(cfg.logAttrs(),
			slog.String("status", "fail"),
			slog.Duration("duration", logger.Took(start)),
			slog.String("err", logger.Clean(err.Error(), 256)),
		)...)
		return nil, fmt.Errorf("db connect %s/%s: %w", cfg.Host, cfg.Name, err)
	}

	pool := cfg.maxConnections()
	db.SetMaxOpenConns(pool)
	db.SetMaxIdleConns(pool)
	db.SetConnMaxIdleTime(5 * time.Minute)

	logger.Info(ctx, "db", "db.connect", append(cfg.logAttrs(),
		slog.String("status", "ok"),
		slog.Int("pool_open", pool),
		slog.Duration("duration", logger.Took(start)),
	)...)
	return db, nil
}

// waitReady pings dsn until it answers, ctx ends or timeout elapses.
func waitReady(ctx context.Context, dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sqlx.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	tick := time.NewTicker(readyInterval)
	defer tick.Stop()
	attempts := 0
	for {
		attempts++
		lastErr := db.PingContext(ctx)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("database not ready after %d attempts: %w", attempts, lastErr)
		case <-tick.C:
		}
	}
}
