package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/m3rciful/orderbot/core/logger"
)

const upSuffix = ".up.sql"

// migrateURL is the postgres:// form of the DSN expected by golang-migrate.
func (c Config) migrateURL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     c.Host + ":" + c.Port,
		Path:     "/" + c.Name,
		RawQuery: url.Values{"sslmode": {c.sslMode()}}.Encode(),
	}
	return u.String()
}

// RunMigrations waits for the database and applies every pending up
// migration from cfg.MigrationsDir.
func RunMigrations(cfg Config) error {
	ctx := context.Background()
	fail := func(stage string, err error) error {
		logger.Error(ctx, "db.migrate", "db.migrate",
			slog.String("status", "fail"),
			slog.String("action", stage),
			slog.String("err", logger.Clean(err.Error(), 256)),
		)
		return fmt.Errorf("migrations %s: %w", stage, err)
	}

	dsn := cfg.migrateURL()
	if err := waitReady(ctx, dsn, readyTimeout); err != nil {
		return fail("wait", err)
	}
	dir, err := resolveMigrationsDir(cfg.MigrationsDir)
	if err != nil {
		return fail("resolve", err)
	}
	files := upMigrations(dir)
	logger.Debug(ctx, "db.migrate", "migrate.resolve",
		slog.String("path", dir),
		slog.Int("count", len(files)),
		slog.String("payload", logger.Preview(files, 6)),
	)

	m, err := migrate.New((&url.URL{Scheme: "file", Path: filepath.ToSlash(dir)}).String(), dsn)
	if err != nil {
		return fail("init", err)
	}
	defer func() { _, _ = m.Close() }()

	from := currentVersion(m)
	start := time.Now()
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fail("apply", err)
	}
	to := currentVersion(m)

	applied := appliedBetween(files, from, to)
	logger.Info(ctx, "db.migrate", "migrate.summary",
		slog.String("status", "ok"),
		slog.Uint64("from_ver", from),
		slog.Uint64("to_ver", to),
		slog.Int("count", len(applied)),
		slog.String("payload", logger.Preview(applied, 6)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}

// currentVersion reports 0 for a database without a migration record.
func currentVersion(m *migrate.Migrate) uint64 {
	v, _, err := m.Version()
	if err != nil {
		return 0
	}
	return uint64(v)
}

func resolveMigrationsDir(dir string) (string, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		dir = defaultMigrationsDir
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("resolve %q: %w", dir, err)
	}
	return abs, nil
}

// upMigrations lists the up scripts of dir sorted by name. A missing dir
// yields nil; migrate.New reports it.
func upMigrations(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), upSuffix) {
			names = append(names, e.Name())
		}
	}
	slices.Sort(names)
	return names
}

// fileVersion parses the numeric prefix of a migration file name.
func fileVersion(name string) uint64 {
	prefix, _, _ := strings.Cut(name, "_")
	v, _ := strconv.ParseUint(prefix, 10, 64)
	return v
}

// appliedBetween returns the files with a version in (from, to].
func appliedBetween(files []string, from, to uint64) []string {
	var out []string
	for _, f := range files {
		if v := fileVersion(f); v > from && v <= to {
			out = append(out, f)
		}
	}
	return out
}
