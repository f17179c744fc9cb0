package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/i474232898/weather-measurements/internal/metrics"
)

// Service is the entry point used by the HTTP layer and the scheduler. It
// owns no state of its own: measurements live in the injected Store.
type Service struct {
	store     Store
	stats     *StatsEngine
	providers []Provider
	log       logrus.FieldLogger
}

// NewService creates a new Service.
func NewService(store Store, stats *StatsEngine, providers []Provider, log logrus.FieldLogger) *Service {
	if stats == nil {
		stats = NewStatsEngine(store, MedianLegacy)
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		store:     store,
		stats:     stats,
		providers: providers,
		log:       log,
	}
}

// Lookup is the result of Find: exactly one of Exact and Day is set.
type Lookup struct {
	Exact *Measurement
	Day   []Measurement
}

// Save stores fields at ts, replacing any measurement already there.
func (s *Service) Save(ts time.Time, fields Fields) Measurement {
	m := Measurement{Timestamp: ts.UTC().Truncate(time.Millisecond), Fields: fields.Clone()}
	s.store.Save(m)
	return m
}

// Find resolves raw as an exact instant when it parses as one, and as a day
// key otherwise. Non-canonical RFC 3339 spellings (no milliseconds, other
// offsets) are accepted on purpose and resolve to the canonical instant.
func (s *Service) Find(raw string) (Lookup, error) {
	if ts, err := ParseInstant(raw); err == nil {
		m, err := s.store.Find(ts)
		if err != nil {
			return Lookup{}, err
		}
		return Lookup{Exact: &m}, nil
	}

	day, err := ParseDay(raw)
	if err != nil {
		return Lookup{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	ms, err := s.store.FindDay(day)
	if err != nil {
		return Lookup{}, err
	}
	return Lookup{Day: ms}, nil
}

// Replace swaps the whole field set of the measurement at pathTS.
func (s *Service) Replace(pathTS string, bodyTS time.Time, fields Fields) error {
	path, err := parsePathInstant(pathTS)
	if err != nil {
		return err
	}
	return s.store.Replace(path, bodyTS, fields.Clone())
}

// Merge adds or overwrites fields on the measurement at pathTS, keeping the rest.
func (s *Service) Merge(pathTS string, bodyTS time.Time, fields Fields) error {
	path, err := parsePathInstant(pathTS)
	if err != nil {
		return err
	}
	return s.store.Merge(path, bodyTS, fields.Clone())
}

// Delete removes the measurement at raw.
func (s *Service) Delete(raw string) error {
	ts, err := ParseInstant(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return s.store.Delete(ts)
}

// Stats runs q through the stats engine.
func (s *Service) Stats(q StatsQuery) ([]StatResult, error) {
	res, err := s.stats.Query(q)
	if err != nil {
		metrics.StatsQueriesTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	metrics.StatsQueriesTotal.WithLabelValues("ok").Inc()
	return res, nil
}

// PruneOlderThan drops measurements older than maxAge and returns how many were removed.
func (s *Service) PruneOlderThan(maxAge time.Duration) int {
	if maxAge <= 0 {
		return 0
	}
	return s.store.Prune(time.Now().Add(-maxAge))
}

// FetchAndStore fetches from all providers concurrently for the station,
// aggregates successful readings and stores them as one measurement.
func (s *Service) FetchAndStore(ctx context.Context, station Station) error {
	log := s.log.WithField("station", station.Key())
	if len(s.providers) == 0 {
		log.Error("no providers available to fetch weather data")
		return errors.New("no weather providers configured")
	}

	var (
		mu       sync.Mutex
		readings []Reading
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range s.providers {
		p := p
		g.Go(func() error {
			r, err := p.Fetch(gctx, station)
			if err != nil {
				// Partial success is fine; keep going with the other providers.
				metrics.IngestFetchTotal.WithLabelValues(p.Name(), "error").Inc()
				log.WithError(err).WithField("provider", p.Name()).Warn("provider fetch failed")
				return nil
			}
			metrics.IngestFetchTotal.WithLabelValues(p.Name(), "ok").Inc()

			mu.Lock()
			readings = append(readings, r)
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	m, ok := AggregateReadings(readings)
	if !ok {
		log.Info("no successful provider readings; nothing stored")
		return nil
	}

	s.store.Save(m)
	log.WithFields(logrus.Fields{
		"timestamp": FormatInstant(m.Timestamp),
		"providers": len(readings),
	}).Debug("stored aggregated measurement")
	return nil
}

func parsePathInstant(raw string) (time.Time, error) {
	ts, err := ParseInstant(raw)
	if err != nil {
		// An unparseable path can never match the payload timestamp.
		return time.Time{}, fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return ts, nil
}
