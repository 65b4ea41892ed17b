package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"weather-pipeline/internal/metrics"
)

// Service runs the ingestion pipeline for one city at a time and exposes
// the read side of the store to the HTTP layer.
type Service struct {
	store   Store
	fetcher Fetcher
	units   Units
	log     *zap.SugaredLogger
}

// NewService creates a new Service.
func NewService(store Store, fetcher Fetcher, units Units, log *zap.SugaredLogger) *Service {
	return &Service{
		store:   store,
		fetcher: fetcher,
		units:   units,
		log:     log,
	}
}

// Collect fetches current conditions for a city, normalizes and validates
// the payload, and inserts the resulting record. A payload failing a
// required-field check is rejected without touching the store; advisory
// violations are persisted flagged is_valid=false.
func (s *Service) Collect(ctx context.Context, city string) error {
	raw, err := s.fetcher.Fetch(ctx, city, s.units)
	if err != nil {
		metrics.FetchFailures.WithLabelValues(city, errorKind(err)).Inc()
		return fmt.Errorf("fetch %s: %w", city, err)
	}

	rec, err := Normalize(raw, city)
	if err != nil {
		metrics.RecordsRejected.WithLabelValues(city).Inc()
		return fmt.Errorf("normalize %s: %w", city, err)
	}

	id, err := s.store.Insert(ctx, &rec)
	if err != nil {
		return fmt.Errorf("insert %s: %w", city, err)
	}

	metrics.RecordsInserted.WithLabelValues(rec.City).Inc()
	if !rec.IsValid {
		metrics.RecordsFlaggedInvalid.WithLabelValues(rec.City).Inc()
		s.log.Warnw("record stored with advisory violations", "city", rec.City, "id", id)
	}
	s.log.Debugw("record collected", "city", rec.City, "id", id, "source", rec.DataSource)
	return nil
}

// Latest returns the newest record per city.
func (s *Service) Latest(ctx context.Context) ([]Record, error) {
	return s.store.Latest(ctx)
}

// LatestFor returns the newest record for one city.
func (s *Service) LatestFor(ctx context.Context, city string) (Record, error) {
	return s.store.LatestFor(ctx, city)
}

// History returns records for a city within [since, until], ascending.
func (s *Service) History(ctx context.Context, city string, since, until time.Time) ([]Record, error) {
	return s.store.History(ctx, city, since, until)
}

// Statistics returns aggregates for a city over the trailing day window.
func (s *Service) Statistics(ctx context.Context, city string, days int) (Statistics, error) {
	return s.store.Statistics(ctx, city, days)
}

// Cleanup deletes records older than the retention window.
func (s *Service) Cleanup(ctx context.Context, daysToKeep int) (int64, error) {
	return s.store.Cleanup(ctx, daysToKeep)
}

// errorKind labels a classified ingestion error for metrics.
func errorKind(err error) string {
	switch {
	case errors.Is(err, ErrAuth):
		return "auth"
	case errors.Is(err, ErrRateLimited):
		return "rate_limit"
	case errors.Is(err, ErrCityNotFound):
		return "not_found"
	case errors.Is(err, ErrNetwork):
		return "network"
	case errors.Is(err, ErrBadPayload):
		return "bad_payload"
	default:
		return "other"
	}
}
