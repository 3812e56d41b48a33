package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"hawaii-climate/internal/config"
	"hawaii-climate/internal/modules/climate/repository"
	"hawaii-climate/internal/modules/climate/types"
)

// AnchorPolicy decides which date the trailing /tobs year ends on.
type AnchorPolicy struct {
	// Fixed is the anchor when non-zero. Zero means use the newest
	// measurement date in the dataset.
	Fixed time.Time
}

// ParseAnchorPolicy accepts config.AnchorLatest or a YYYY-MM-DD date.
func ParseAnchorPolicy(s string) (AnchorPolicy, error) {
	if s == "" || s == config.AnchorLatest {
		return AnchorPolicy{}, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return AnchorPolicy{}, fmt.Errorf("parse anchor %q: %w", s, err)
	}
	return AnchorPolicy{Fixed: t}, nil
}

func (p AnchorPolicy) String() string {
	if p.Fixed.IsZero() {
		return config.AnchorLatest
	}
	return p.Fixed.Format(time.DateOnly)
}

type Service struct {
	repository repository.ClimateRepository
	anchor     AnchorPolicy
}

func NewService(repository repository.ClimateRepository, anchor AnchorPolicy) *Service {
	return &Service{repository: repository, anchor: anchor}
}

// ResolveAnchor returns the anchor date for the trailing year. ok is false
// when the policy is computed and the dataset has no measurements.
func (s *Service) ResolveAnchor(ctx context.Context) (time.Time, bool, error) {
	if !s.anchor.Fixed.IsZero() {
		return s.anchor.Fixed, true, nil
	}
	latest, ok, err := s.repository.LatestDate(ctx)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("resolve anchor: %w", err)
	}
	if !ok {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.DateOnly, latest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("resolve anchor: latest date %q: %w", latest, err)
	}
	return t, true, nil
}

// TrailingYearForMostActive returns the busiest station and its observations
// for the year ending at the resolved anchor. An empty dataset yields an empty
// station id and an empty slice.
func (s *Service) TrailingYearForMostActive(ctx context.Context) (string, []types.TempObservation, error) {
	stationID, ok, err := s.repository.MostActiveStation(ctx)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return "", []types.TempObservation{}, nil
	}

	anchor, ok, err := s.ResolveAnchor(ctx)
	if err != nil {
		return "", nil, err
	}
	if !ok {
		return stationID, []types.TempObservation{}, nil
	}

	observations, err := s.repository.YearOfTempsFor(ctx, stationID, anchor)
	if err != nil {
		return "", nil, err
	}
	slog.Debug("trailing year resolved",
		"station", stationID,
		"anchor", anchor.Format(time.DateOnly),
		"policy", s.anchor.String(),
		"observations", len(observations))
	return stationID, observations, nil
}
