// Package bootstrap prepares process-wide infrastructure before the bot starts.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/orderbot/core/config"
	coredatabase "github.com/m3rciful/orderbot/core/database"
	"github.com/m3rciful/orderbot/core/logger"
)

// Options select the configuration and, for tests, replace the logger and
// database steps.
type Options struct {
	Config   *coreconfig.Config
	Database coredatabase.Config

	LoggerInit func(*coreconfig.Config) error
	Connect    func(coredatabase.Config) (*sqlx.DB, error)
	Migrate    func(coredatabase.Config) error
}

func (o Options) withDefaults() Options {
	if o.LoggerInit == nil {
		o.LoggerInit = logger.InitLogger
	}
	if o.Connect == nil {
		o.Connect = coredatabase.Connect
	}
	if o.Migrate == nil {
		o.Migrate = coredatabase.RunMigrations
	}
	return o
}

// Result holds the infrastructure built by Run. DB is nil when the journal
// database is disabled.
type Result struct {
	DB *sqlx.DB
}

// Run starts logging, then connects and migrates the journal database when
// it is enabled. A failed migration closes the connection.
func Run(opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}
	opts = opts.withDefaults()

	if err := opts.LoggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}
	ctx := context.Background()
	if !opts.Database.Enabled {
		logger.Info(ctx, "db", "db.skip", slog.String("status", "disabled"))
		return &Result{}, nil
	}

	db, err := opts.Connect(opts.Database)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}
	if err := opts.Migrate(opts.Database); err != nil {
		return nil, errors.Join(fmt.Errorf("bootstrap: migrations failed: %w", err), closeDB(db))
	}
	return &Result{DB: db}, nil
}

func closeDB(db *sqlx.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}
