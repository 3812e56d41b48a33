package controller

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"hawaii-climate/internal/modules/climate/types"
	"hawaii-climate/internal/modules/climate/views"
)

type mockRepo struct {
	precip      []types.Precipitation
	precipErr   error
	stations    []types.Station
	stationsErr error
	stats       []types.TempStats
	statsErr    error

	fromCalls    []string
	betweenCalls [][2]string
}

func (m *mockRepo) AllPrecipitation(ctx context.Context) ([]types.Precipitation, error) {
	return m.precip, m.precipErr
}

func (m *mockRepo) AllStations(ctx context.Context) ([]types.Station, error) {
	return m.stations, m.stationsErr
}

func (m *mockRepo) MostActiveStation(ctx context.Context) (string, bool, error) {
	return "", false, nil
}

func (m *mockRepo) LatestDate(ctx context.Context) (string, bool, error) {
	return "", false, nil
}

func (m *mockRepo) YearOfTempsFor(ctx context.Context, stationID string, anchor time.Time) ([]types.TempObservation, error) {
	return []types.TempObservation{}, nil
}

func (m *mockRepo) TempStatsFrom(ctx context.Context, start string) ([]types.TempStats, error) {
	m.fromCalls = append(m.fromCalls, start)
	return m.stats, m.statsErr
}

func (m *mockRepo) TempStatsBetween(ctx context.Context, start, end string) ([]types.TempStats, error) {
	m.betweenCalls = append(m.betweenCalls, [2]string{start, end})
	return m.stats, m.statsErr
}

type mockTobs struct {
	temps []types.TempObservation
	err   error
}

func (m *mockTobs) TrailingYearForMostActive(ctx context.Context) (string, []types.TempObservation, error) {
	return "USC00519281", m.temps, m.err
}

func newTestMux(repo *mockRepo, tobs *mockTobs, opts Options) *http.ServeMux {
	if tobs == nil {
		tobs = &mockTobs{temps: []types.TempObservation{}}
	}
	mux := http.NewServeMux()
	NewClimateController(repo, tobs, opts).RegisterRoutes(mux)
	return mux
}

func serve(mux http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func Test_handleIndex(t *testing.T) {
	ctrl := NewClimateController(&mockRepo{}, &mockTobs{}, Options{}).(*climateControllerImpl)

	t.Run("returns 200 with HTML when templates loaded", func(t *testing.T) {
		if err := views.LoadTemplates(); err != nil {
			t.Fatalf("LoadTemplates: %v", err)
		}
		rec := httptest.NewRecorder()
		ctrl.handleIndex(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("Content-Type = %q; want text/html; charset=utf-8", ct)
		}
		if body := rec.Body.String(); !strings.Contains(body, "/api/v1.0/tobs") {
			t.Errorf("body = %q; expected route listing", body)
		}
	})

	t.Run("unknown path is 404", func(t *testing.T) {
		rec := serve(newTestMux(&mockRepo{}, nil, Options{}), "/dashboard")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func Test_handlePrecipitation(t *testing.T) {
	t.Run("encodes singleton maps with null", func(t *testing.T) {
		v := 0.08
		repo := &mockRepo{precip: []types.Precipitation{
			{Date: "2017-08-01", Prcp: &v},
			{Date: "2017-08-01", Prcp: nil},
		}}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/precipitation")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
			t.Errorf("Content-Type = %q; want application/json", ct)
		}
		body := strings.TrimSpace(rec.Body.String())
		want := `[{"2017-08-01":0.08},{"2017-08-01":null}]`
		if body != want {
			t.Errorf("body = %s; want %s", body, want)
		}
	})

	t.Run("empty dataset is []", func(t *testing.T) {
		repo := &mockRepo{precip: []types.Precipitation{}}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/precipitation")
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("body = %s; want []", body)
		}
	})

	t.Run("returns 500 when repository fails", func(t *testing.T) {
		repo := &mockRepo{precipErr: errors.New("db error")}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/precipitation")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
		if !strings.Contains(rec.Body.String(), "db error") {
			t.Errorf("body = %q; expected error JSON", rec.Body.String())
		}
	})
}

func Test_handleStations(t *testing.T) {
	t.Run("encodes name/id pairs", func(t *testing.T) {
		repo := &mockRepo{stations: []types.Station{{Name: "WAIKIKI 717.2, HI US", Station: "USC00519397"}}}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/stations")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		var got [][2]string
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != 1 || got[0] != [2]string{"WAIKIKI 717.2, HI US", "USC00519397"} {
			t.Errorf("body = %v", got)
		}
	})

	t.Run("returns 500 when repository fails", func(t *testing.T) {
		rec := serve(newTestMux(&mockRepo{stationsErr: errors.New("db error")}, nil, Options{}), "/api/v1.0/stations")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func Test_handleTobs(t *testing.T) {
	t.Run("encodes date/tobs pairs", func(t *testing.T) {
		tobs := &mockTobs{temps: []types.TempObservation{{Date: "2016-08-24", Tobs: 77}}}
		rec := serve(newTestMux(&mockRepo{}, tobs, Options{}), "/api/v1.0/tobs")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != `[["2016-08-24",77]]` {
			t.Errorf("body = %s", body)
		}
	})

	t.Run("returns 500 when service fails", func(t *testing.T) {
		tobs := &mockTobs{err: errors.New("db error")}
		rec := serve(newTestMux(&mockRepo{}, tobs, Options{}), "/api/v1.0/tobs")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func Test_handleTempStats(t *testing.T) {
	stats := []types.TempStats{{
		Date: "2016-01-01", Name: "WAIKIKI 717.2, HI US", Station: "USC00519397",
		Min: 70, Max: 80, Average: 75,
	}}

	t.Run("single date uses open range", func(t *testing.T) {
		repo := &mockRepo{stats: stats}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/2016-01-01")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if len(repo.fromCalls) != 1 || repo.fromCalls[0] != "2016-01-01" {
			t.Errorf("TempStatsFrom calls = %v", repo.fromCalls)
		}
		var got []map[string]any
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(got) != 1 || got[0]["Average"] != 75.0 || got[0]["Station"] != "USC00519397" {
			t.Errorf("body = %v", got)
		}
	})

	t.Run("trailing slash is a single start date", func(t *testing.T) {
		repo := &mockRepo{stats: stats}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/2016-01-01/")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if len(repo.fromCalls) != 1 || repo.fromCalls[0] != "2016-01-01" {
			t.Errorf("TempStatsFrom calls = %v", repo.fromCalls)
		}
		if len(repo.betweenCalls) != 0 {
			t.Errorf("TempStatsBetween calls = %v; want none", repo.betweenCalls)
		}
	})

	t.Run("two dates use bounded range", func(t *testing.T) {
		repo := &mockRepo{stats: stats}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/2016-01-01/2016-12-31")

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if len(repo.betweenCalls) != 1 || repo.betweenCalls[0] != [2]string{"2016-01-01", "2016-12-31"} {
			t.Errorf("TempStatsBetween calls = %v", repo.betweenCalls)
		}
	})

	t.Run("slashed dates are normalized", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
			want   [2]string
		}{
			{name: "literal segments", target: "/api/v1.0/2016/01/01/2016/12/31", want: [2]string{"2016-01-01", "2016-12-31"}},
			{name: "percent encoded", target: "/api/v1.0/2016%2F01%2F01/2016%2F12%2F31", want: [2]string{"2016-01-01", "2016-12-31"}},
			{name: "mixed", target: "/api/v1.0/2016/01/01/2016-12-31", want: [2]string{"2016-01-01", "2016-12-31"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := &mockRepo{stats: []types.TempStats{}}
				rec := serve(newTestMux(repo, nil, Options{}), tt.target)
				if rec.Code != http.StatusOK {
					t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
				}
				if len(repo.betweenCalls) != 1 || repo.betweenCalls[0] != tt.want {
					t.Errorf("TempStatsBetween calls = %v; want %v", repo.betweenCalls, tt.want)
				}
			})
		}
	})

	t.Run("malformed date passes through by default", func(t *testing.T) {
		repo := &mockRepo{stats: []types.TempStats{}}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/not-a-date")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
			t.Errorf("body = %s; want []", body)
		}
	})

	t.Run("too many dates is 404", func(t *testing.T) {
		repo := &mockRepo{}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/a/b/c")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusNotFound)
		}
		if len(repo.fromCalls)+len(repo.betweenCalls) != 0 {
			t.Error("repository called for unmatched path")
		}
	})

	t.Run("strict mode rejects bad input", func(t *testing.T) {
		tests := []struct {
			name   string
			target string
		}{
			{name: "unparseable start", target: "/api/v1.0/2016-13-01"},
			{name: "unparseable end", target: "/api/v1.0/2016-01-01/soon"},
			{name: "start after end", target: "/api/v1.0/2017-01-01/2016-01-01"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := &mockRepo{}
				rec := serve(newTestMux(repo, nil, Options{StrictDates: true}), tt.target)
				if rec.Code != http.StatusBadRequest {
					t.Errorf("status = %d; want %d", rec.Code, http.StatusBadRequest)
				}
				if !strings.Contains(rec.Body.String(), "Bad Request") {
					t.Errorf("body = %q; expected error JSON", rec.Body.String())
				}
			})
		}
	})

	t.Run("strict mode accepts valid range", func(t *testing.T) {
		repo := &mockRepo{stats: []types.TempStats{}}
		rec := serve(newTestMux(repo, nil, Options{StrictDates: true}), "/api/v1.0/2016/01/01/2016/01/01")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d; want %d", rec.Code, http.StatusOK)
		}
		if len(repo.betweenCalls) != 1 {
			t.Errorf("TempStatsBetween calls = %v", repo.betweenCalls)
		}
	})

	t.Run("returns 500 when repository fails", func(t *testing.T) {
		repo := &mockRepo{statsErr: errors.New("db error")}
		rec := serve(newTestMux(repo, nil, Options{}), "/api/v1.0/2016-01-01")
		if rec.Code != http.StatusInternalServerError {
			t.Errorf("status = %d; want %d", rec.Code, http.StatusInternalServerError)
		}
	})
}

func TestRoutes_methodNotAllowed(t *testing.T) {
	mux := newTestMux(&mockRepo{}, nil, Options{})
	req := httptest.NewRequest(http.MethodPost, "/api/v1.0/stations", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d; want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
