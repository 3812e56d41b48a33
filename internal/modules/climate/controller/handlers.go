package controller

import (
	"bytes"
	"log/slog"
	"net/http"

	"hawaii-climate/internal/modules/climate/views"
	"hawaii-climate/internal/utils"
)

func (c *climateControllerImpl) handleIndex(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := views.RenderIndex(&buf, views.DefaultIndex()); err != nil {
		slog.Error("index template render failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, "failed to render page")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("index: write response failed", "error", err)
	}
}

func (c *climateControllerImpl) handlePrecipitation(w http.ResponseWriter, r *http.Request) {
	rows, err := c.repository.AllPrecipitation(r.Context())
	if err != nil {
		slog.Error("precipitation: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, rows)
}

func (c *climateControllerImpl) handleStations(w http.ResponseWriter, r *http.Request) {
	stations, err := c.repository.AllStations(r.Context())
	if err != nil {
		slog.Error("stations: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, stations)
}

func (c *climateControllerImpl) handleTobs(w http.ResponseWriter, r *http.Request) {
	_, observations, err := c.tobs.TrailingYearForMostActive(r.Context())
	if err != nil {
		slog.Error("tobs: query failed", "error", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, observations)
}

func (c *climateControllerImpl) handleTempStats(w http.ResponseWriter, r *http.Request) {
	dates := splitDates(r.PathValue("dates"))
	if len(dates) != 1 && len(dates) != 2 {
		http.NotFound(w, r)
		return
	}
	for i := range dates {
		dates[i] = normalizeDate(dates[i])
	}

	if c.opts.StrictDates {
		canonical, err := validateRange(dates)
		if err != nil {
			utils.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		dates = canonical
	}

	var (
		stats any
		err   error
	)
	if len(dates) == 1 {
		stats, err = c.repository.TempStatsFrom(r.Context(), dates[0])
	} else {
		stats, err = c.repository.TempStatsBetween(r.Context(), dates[0], dates[1])
	}
	if err != nil {
		slog.Error("temp stats: query failed", "dates", dates, "error", err)
		utils.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	utils.WriteJSON(w, http.StatusOK, stats)
}
