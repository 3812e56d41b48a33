package controller

import (
	"context"
	"net/http"

	"hawaii-climate/internal/modules/climate/repository"
	"hawaii-climate/internal/modules/climate/types"
)

const apiPrefix = "/api/v1.0"

// TrailingYearProvider resolves the /tobs payload.
type TrailingYearProvider interface {
	TrailingYearForMostActive(ctx context.Context) (string, []types.TempObservation, error)
}

type Options struct {
	// StrictDates rejects unparseable or inverted date ranges with 400
	// instead of passing them to the query.
	StrictDates bool
}

type ClimateController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type climateControllerImpl struct {
	repository repository.ClimateRepository
	tobs       TrailingYearProvider
	opts       Options
}

func NewClimateController(repository repository.ClimateRepository, tobs TrailingYearProvider, opts Options) ClimateController {
	return &climateControllerImpl{repository: repository, tobs: tobs, opts: opts}
}

func (c *climateControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /{$}", c.handleIndex)
	mux.HandleFunc("GET "+apiPrefix+"/precipitation", c.handlePrecipitation)
	mux.HandleFunc("GET "+apiPrefix+"/stations", c.handleStations)
	mux.HandleFunc("GET "+apiPrefix+"/tobs", c.handleTobs)
	mux.HandleFunc("GET "+apiPrefix+"/{dates...}", c.handleTempStats)
}
