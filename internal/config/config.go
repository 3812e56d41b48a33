package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const configFileEnv = "CONFIG_FILE"

// AnchorLatest resolves the /tobs anchor from the newest measurement date.
const AnchorLatest = "latest"

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// Driver is the database/sql driver name: "sqlite3" or "pgx".
	Driver string
	// DSN takes precedence over Path when set.
	DSN             string
	Path            string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	LogSQL          bool
	Migrate         bool

	// TobsAnchor is either AnchorLatest or a YYYY-MM-DD date.
	TobsAnchor  string
	StrictDates bool
}

// fileConfig mirrors the YAML layout of CONFIG_FILE. Every value is a string so
// the file and the environment go through the same parsing.
type fileConfig struct {
	AppEnv   string `yaml:"app_env"`
	LogLevel string `yaml:"log_level"`
	HTTP     struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Database struct {
		Driver          string `yaml:"driver"`
		DSN             string `yaml:"dsn"`
		SQLitePath      string `yaml:"sqlite_path"`
		MaxOpenConns    string `yaml:"max_open_conns"`
		MaxIdleConns    string `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		LogSQL          string `yaml:"log_sql"`
		Migrate         string `yaml:"migrate"`
	} `yaml:"database"`
	API struct {
		TobsAnchor  string `yaml:"tobs_anchor"`
		StrictDates string `yaml:"strict_dates"`
	} `yaml:"api"`
}

func LoadFromEnv() (Config, error) {
	var fc fileConfig
	if path := strings.TrimSpace(os.Getenv(configFileEnv)); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return Config{}, fmt.Errorf("config: decode yaml %s: %w", path, err)
		}
	}

	appEnv := lookup("APP_ENV", fc.AppEnv, "dev")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(lookup("LOG_LEVEL", fc.LogLevel, "info"))
	if err != nil {
		return Config{}, err
	}

	driver := lookup("DB_DRIVER", fc.Database.Driver, "sqlite3")
	switch driver {
	case "sqlite3", "pgx":
	default:
		return Config{}, fmt.Errorf("invalid DB_DRIVER %q (allowed: sqlite3, pgx)", driver)
	}
	dsn := lookup("DB_DSN", fc.Database.DSN, "")
	if driver == "pgx" && dsn == "" {
		return Config{}, fmt.Errorf("DB_DSN is required when DB_DRIVER is pgx")
	}

	maxOpenConnsStr := lookup("DB_MAX_OPEN_CONNS", fc.Database.MaxOpenConns, "4")
	maxOpenConns, err := strconv.Atoi(maxOpenConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_OPEN_CONNS %q: %w", maxOpenConnsStr, err)
	}

	maxIdleConnsStr := lookup("DB_MAX_IDLE_CONNS", fc.Database.MaxIdleConns, "2")
	maxIdleConns, err := strconv.Atoi(maxIdleConnsStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_MAX_IDLE_CONNS %q: %w", maxIdleConnsStr, err)
	}

	connMaxLifetimeStr := lookup("DB_CONN_MAX_LIFETIME", fc.Database.ConnMaxLifetime, "0s")
	connMaxLifetime, err := time.ParseDuration(connMaxLifetimeStr)
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME %q: %w", connMaxLifetimeStr, err)
	}

	logSQL, err := parseBool("DB_LOG_SQL", lookup("DB_LOG_SQL", fc.Database.LogSQL, "false"))
	if err != nil {
		return Config{}, err
	}
	migrate, err := parseBool("DB_MIGRATE", lookup("DB_MIGRATE", fc.Database.Migrate, "true"))
	if err != nil {
		return Config{}, err
	}

	anchor := lookup("TOBS_ANCHOR", fc.API.TobsAnchor, AnchorLatest)
	if anchor != AnchorLatest {
		if _, err := time.Parse(time.DateOnly, anchor); err != nil {
			return Config{}, fmt.Errorf("invalid TOBS_ANCHOR %q (allowed: latest or YYYY-MM-DD)", anchor)
		}
	}
	strictDates, err := parseBool("STRICT_DATES", lookup("STRICT_DATES", fc.API.StrictDates, "false"))
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        lookup("HTTP_ADDR", fc.HTTP.Addr, ":8080"),
		Driver:          driver,
		DSN:             dsn,
		Path:            lookup("SQLITE_PATH", fc.Database.SQLitePath, "Resources/hawaii.sqlite"),
		MaxOpenConns:    maxOpenConns,
		MaxIdleConns:    maxIdleConns,
		ConnMaxLifetime: connMaxLifetime,
		LogSQL:          logSQL,
		Migrate:         migrate,
		TobsAnchor:      anchor,
		StrictDates:     strictDates,
	}, nil
}

// lookup returns the trimmed environment value for key, then the file value,
// then def.
func lookup(key, fromFile, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	if v := strings.TrimSpace(fromFile); v != "" {
		return v
	}
	return def
}

func parseBool(key, s string) (bool, error) {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q (expected true or false)", key, s)
	}
	return b, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
