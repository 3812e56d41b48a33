// Package dataset loads station and measurement CSV exports into the schema
// created by internal/migrate.
package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"hawaii-climate/internal/db"
)

var (
	stationColumns     = []string{"station", "name", "latitude", "longitude", "elevation"}
	measurementColumns = []string{"station", "date", "prcp", "tobs"}
)

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Importer writes CSV rows into the dataset. Each call runs in a single
// transaction: a bad row leaves the tables untouched.
type Importer struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewImporter(conn *sql.DB, dialect db.Dialect) *Importer {
	return &Importer{db: conn, dialect: dialect}
}

// ImportStations reads a header of station,name,latitude,longitude,elevation
// (any order, extra columns ignored) and returns the number of rows written.
func (im *Importer) ImportStations(ctx context.Context, r io.Reader) (int, error) {
	insert := im.dialect.Rebind(`INSERT INTO station (id, station, name, latitude, longitude, elevation) VALUES (?, ?, ?, ?, ?, ?)`)

	return im.load(ctx, "station", r, stationColumns, func(ctx context.Context, tx *sql.Tx, id int64, line int, get func(string) string) error {
		station := get("station")
		if station == "" {
			return fmt.Errorf("line %d: empty station id", line)
		}
		lat, err := parseOptionalFloat(get("latitude"))
		if err != nil {
			return fmt.Errorf("line %d: latitude: %w", line, err)
		}
		lon, err := parseOptionalFloat(get("longitude"))
		if err != nil {
			return fmt.Errorf("line %d: longitude: %w", line, err)
		}
		elev, err := parseOptionalFloat(get("elevation"))
		if err != nil {
			return fmt.Errorf("line %d: elevation: %w", line, err)
		}
		_, err = tx.ExecContext(ctx, insert, id, station, get("name"), lat, lon, elev)
		return err
	})
}

// ImportMeasurements reads a header of station,date,prcp,tobs. An empty prcp
// is stored as NULL; tobs is required.
func (im *Importer) ImportMeasurements(ctx context.Context, r io.Reader) (int, error) {
	insert := im.dialect.Rebind(`INSERT INTO measurement (id, station, date, prcp, tobs) VALUES (?, ?, ?, ?, ?)`)

	return im.load(ctx, "measurement", r, measurementColumns, func(ctx context.Context, tx *sql.Tx, id int64, line int, get func(string) string) error {
		station := get("station")
		if station == "" {
			return fmt.Errorf("line %d: empty station id", line)
		}
		date, err := time.Parse(time.DateOnly, get("date"))
		if err != nil {
			return fmt.Errorf("line %d: date %q (expected YYYY-MM-DD)", line, get("date"))
		}
		prcp, err := parseOptionalFloat(get("prcp"))
		if err != nil {
			return fmt.Errorf("line %d: prcp: %w", line, err)
		}
		tobs, err := strconv.ParseFloat(get("tobs"), 64)
		if err != nil {
			return fmt.Errorf("line %d: tobs: %w", line, err)
		}
		_, err = tx.ExecContext(ctx, insert, id, station, date.Format(time.DateOnly), prcp, tobs)
		return err
	})
}

type rowFunc func(ctx context.Context, tx *sql.Tx, id int64, line int, get func(string) string) error

func (im *Importer) load(ctx context.Context, table string, r io.Reader, required []string, row rowFunc) (n int, err error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return 0, fmt.Errorf("%s: read header: %w", table, err)
	}
	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("%s: %w %q", table, ErrMissingColumn, col)
		}
	}

	tx, err := im.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: begin: %w", table, err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.Error("import rollback", "table", table, "error", rbErr)
			}
		}
	}()

	// The schema has no autoincrement that works on both dialects.
	var maxID sql.NullInt64
	if err = tx.QueryRowContext(ctx, "SELECT MAX(id) FROM "+table).Scan(&maxID); err != nil {
		return 0, fmt.Errorf("%s: next id: %w", table, err)
	}
	nextID := maxID.Int64 + 1

	for line := 2; ; line++ {
		record, readErr := reader.Read()
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			err = fmt.Errorf("%s: %w", table, readErr)
			return 0, err
		}
		get := func(col string) string {
			return strings.TrimSpace(record[index[col]])
		}
		if err = row(ctx, tx, nextID, line, get); err != nil {
			err = fmt.Errorf("%s: %w", table, err)
			return 0, err
		}
		nextID++
		n++
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: commit: %w", table, err)
	}
	slog.Info("dataset imported", "table", table, "rows", n)
	return n, nil
}

func parseOptionalFloat(s string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
