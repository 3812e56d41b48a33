package db

import (
	"database/sql"
	"database/sql/driver"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"hawaii-climate/internal/config"

	"github.com/jackc/pgx/v5/stdlib"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// Open returns a pinged connection pool for an existing dataset. A SQLite file
// that does not exist is an error; it is never created here.
func Open(cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	return open(cfg, logger, false)
}

// OpenOrCreate is Open for tooling that builds a dataset: a missing SQLite file
// and its directory are created.
func OpenOrCreate(cfg config.Config, logger *slog.Logger) (*sql.DB, error) {
	return open(cfg, logger, true)
}

func open(cfg config.Config, logger *slog.Logger, create bool) (*sql.DB, error) {
	dialect, err := DialectFor(cfg.Driver)
	if err != nil {
		return nil, err
	}

	dsn, err := buildDSN(cfg, create)
	if err != nil {
		return nil, err
	}

	var db *sql.DB
	if cfg.LogSQL {
		connector, err := NewLoggingConnector(driverFor(dialect), dsn, logger)
		if err != nil {
			return nil, fmt.Errorf("db connector: %w", err)
		}
		db = sql.OpenDB(connector)
	} else {
		db, err = sql.Open(cfg.Driver, dsn)
		if err != nil {
			return nil, fmt.Errorf("db open: %w", err)
		}
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns >= 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}

	return db, nil
}

func Close(db *sql.DB) error {
	if db == nil {
		return nil
	}
	return db.Close()
}

func driverFor(d Dialect) driver.Driver {
	if d == Postgres {
		return stdlib.GetDefaultDriver()
	}
	return &sqlite3.SQLiteDriver{}
}

func buildDSN(cfg config.Config, create bool) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.Driver != string(SQLite) {
		return "", fmt.Errorf("db: DSN required for driver %q", cfg.Driver)
	}

	path := cfg.Path
	file, _, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
	if create {
		if dir := filepath.Dir(file); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return "", fmt.Errorf("mkdir %s: %w", dir, err)
			}
		}
	} else if _, err := os.Stat(file); err != nil {
		return "", fmt.Errorf("db: dataset %s: %w", file, err)
	}

	// busy_timeout covers the importer writing while the API reads.
	params := []string{
		"_foreign_keys=on",
		"_busy_timeout=5000",
	}
	// mode=rw makes go-sqlite3 fail instead of creating an empty file.
	if !create && !strings.Contains(path, "mode=") {
		params = append(params, "mode=rw")
	}

	if strings.HasPrefix(path, "file:") {
		sep := "?"
		if strings.Contains(path, "?") {
			sep = "&"
		}
		return path + sep + strings.Join(params, "&"), nil
	}

	return fmt.Sprintf("file:%s?%s", path, strings.Join(params, "&")), nil
}
