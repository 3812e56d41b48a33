package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"hawaii-climate/internal/db"
	"hawaii-climate/internal/modules/climate/types"
)

//go:embed sql/all-precipitation.sql
var allPrecipitationSQL string

//go:embed sql/all-stations.sql
var allStationsSQL string

//go:embed sql/most-active-station.sql
var mostActiveStationSQL string

//go:embed sql/latest-date.sql
var latestDateSQL string

//go:embed sql/year-of-temps.sql
var yearOfTempsSQL string

//go:embed sql/temp-stats-from.sql
var tempStatsFromSQL string

//go:embed sql/temp-stats-between.sql
var tempStatsBetweenSQL string

// trailingWindowDays is how far back YearOfTempsFor reaches from its anchor.
const trailingWindowDays = 365

var tracer = otel.Tracer("hawaii-climate/repository")

// ClimateRepository is the read-only query layer over the measurement and
// station tables. Empty results are returned as empty slices, never errors.
type ClimateRepository interface {
	AllPrecipitation(ctx context.Context) ([]types.Precipitation, error)
	AllStations(ctx context.Context) ([]types.Station, error)
	// MostActiveStation returns the station with the most measurements. Ties
	// go to the lowest station id. ok is false on an empty dataset.
	MostActiveStation(ctx context.Context) (stationID string, ok bool, err error)
	LatestDate(ctx context.Context) (date string, ok bool, err error)
	// YearOfTempsFor returns the station's observations dated on or after
	// anchor minus 365 days. No upper bound is applied.
	YearOfTempsFor(ctx context.Context, stationID string, anchor time.Time) ([]types.TempObservation, error)
	TempStatsFrom(ctx context.Context, start string) ([]types.TempStats, error)
	TempStatsBetween(ctx context.Context, start, end string) ([]types.TempStats, error)
}

type repositoryImpl struct {
	db      *sql.DB
	dialect db.Dialect
}

func NewRepository(conn *sql.DB, dialect db.Dialect) ClimateRepository {
	return &repositoryImpl{db: conn, dialect: dialect}
}

// withConn runs fn on a connection that is checked out for this operation only
// and released on every return path.
func (r *repositoryImpl) withConn(ctx context.Context, op string, fn func(ctx context.Context, conn *sql.Conn) error) (err error) {
	ctx, span := tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("db.system", string(r.dialect)),
	))
	defer func() { recordAndEnd(span, err) }()

	conn, err := r.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("%s: acquire connection: %w", op, err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil {
			slog.Error("release connection", "op", op, "error", closeErr)
		}
	}()

	if err = fn(ctx, conn); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func recordAndEnd(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *repositoryImpl) AllPrecipitation(ctx context.Context) ([]types.Precipitation, error) {
	var out []types.Precipitation
	err := r.withConn(ctx, "AllPrecipitation", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, allPrecipitationSQL)
		if err != nil {
			return err
		}
		out, err = scanAll(rows, func(rows *sql.Rows, p *types.Precipitation) error {
			var prcp sql.NullFloat64
			if err := rows.Scan(&p.Date, &prcp); err != nil {
				return err
			}
			if prcp.Valid {
				v := prcp.Float64
				p.Prcp = &v
			}
			return nil
		})
		return err
	})
	return out, err
}

func (r *repositoryImpl) AllStations(ctx context.Context) ([]types.Station, error) {
	var out []types.Station
	err := r.withConn(ctx, "AllStations", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, allStationsSQL)
		if err != nil {
			return err
		}
		out, err = scanAll(rows, func(rows *sql.Rows, s *types.Station) error {
			return rows.Scan(&s.Name, &s.Station)
		})
		return err
	})
	return out, err
}

func (r *repositoryImpl) MostActiveStation(ctx context.Context) (string, bool, error) {
	var (
		stationID string
		found     bool
	)
	err := r.withConn(ctx, "MostActiveStation", func(ctx context.Context, conn *sql.Conn) error {
		var count int64
		err := conn.QueryRowContext(ctx, mostActiveStationSQL).Scan(&stationID, &count)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil
		case err != nil:
			return err
		}
		found = true
		return nil
	})
	return stationID, found, err
}

func (r *repositoryImpl) LatestDate(ctx context.Context) (string, bool, error) {
	var latest sql.NullString
	err := r.withConn(ctx, "LatestDate", func(ctx context.Context, conn *sql.Conn) error {
		return conn.QueryRowContext(ctx, latestDateSQL).Scan(&latest)
	})
	return latest.String, latest.Valid, err
}

func (r *repositoryImpl) YearOfTempsFor(ctx context.Context, stationID string, anchor time.Time) ([]types.TempObservation, error) {
	from := anchor.AddDate(0, 0, -trailingWindowDays).Format(time.DateOnly)

	var out []types.TempObservation
	err := r.withConn(ctx, "YearOfTempsFor", func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, r.dialect.Rebind(yearOfTempsSQL), stationID, from)
		if err != nil {
			return err
		}
		out, err = scanAll(rows, func(rows *sql.Rows, o *types.TempObservation) error {
			return rows.Scan(&o.Date, &o.Tobs)
		})
		return err
	})
	return out, err
}

func (r *repositoryImpl) TempStatsFrom(ctx context.Context, start string) ([]types.TempStats, error) {
	return r.tempStats(ctx, "TempStatsFrom", tempStatsFromSQL, start)
}

func (r *repositoryImpl) TempStatsBetween(ctx context.Context, start, end string) ([]types.TempStats, error) {
	return r.tempStats(ctx, "TempStatsBetween", tempStatsBetweenSQL, start, end)
}

func (r *repositoryImpl) tempStats(ctx context.Context, op, query string, args ...any) ([]types.TempStats, error) {
	var out []types.TempStats
	err := r.withConn(ctx, op, func(ctx context.Context, conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, r.dialect.Rebind(query), args...)
		if err != nil {
			return err
		}
		out, err = scanAll(rows, func(rows *sql.Rows, s *types.TempStats) error {
			return rows.Scan(&s.Date, &s.Name, &s.Station, &s.Min, &s.Max, &s.Average)
		})
		return err
	})
	return out, err
}

// scanAll drains rows through scan and always returns a non-nil slice so an
// empty result encodes as [] rather than null.
func scanAll[T any](rows *sql.Rows, scan func(*sql.Rows, *T) error) ([]T, error) {
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close rows", "error", err)
		}
	}()
	out := make([]T, 0)
	for rows.Next() {
		var v T
		if err := scan(rows, &v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
