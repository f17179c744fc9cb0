package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/i474232898/weather-measurements/internal/weather"
)

// dayBucket holds the measurements of one calendar day, keyed by canonical instant.
type dayBucket struct {
	measurements map[string]weather.Measurement
}

// MemoryStore is a concurrency-safe in-memory implementation of a weather store.
// A single lock covers every bucket: creating a bucket and writing into it
// happen as one step.
type MemoryStore struct {
	mu sync.RWMutex

	// key: day, value: that day's measurements
	days  map[weather.DayKey]*dayBucket
	count int
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		days: make(map[weather.DayKey]*dayBucket),
	}
}

// Save inserts m, replacing whatever was stored at the same instant.
func (s *MemoryStore) Save(m weather.Measurement) {
	key := weather.FormatInstant(m.Timestamp)
	day := weather.DayOf(m.Timestamp)
	m = weather.Measurement{Timestamp: m.Timestamp.UTC().Truncate(time.Millisecond), Fields: m.Fields.Clone()}

	s.mu.Lock()
	defer s.mu.Unlock()

	bucket, ok := s.days[day]
	if !ok {
		bucket = &dayBucket{measurements: make(map[string]weather.Measurement)}
		s.days[day] = bucket
	}
	if _, exists := bucket.measurements[key]; !exists {
		s.count++
	}
	bucket.measurements[key] = m
}

// Find returns the measurement stored at ts.
func (s *MemoryStore) Find(ts time.Time) (weather.Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.lookup(ts)
	if !ok {
		return weather.Measurement{}, fmt.Errorf("%w: %s", weather.ErrNotFound, weather.FormatInstant(ts))
	}
	return m.Clone(), nil
}

// FindDay returns every measurement of day ordered by timestamp.
func (s *MemoryStore) FindDay(day weather.DayKey) ([]weather.Measurement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	bucket, ok := s.days[day]
	if !ok || len(bucket.measurements) == 0 {
		return nil, fmt.Errorf("%w: no measurements on %s", weather.ErrNotFound, day)
	}

	out := make([]weather.Measurement, 0, len(bucket.measurements))
	for _, m := range bucket.measurements {
		out = append(out, m.Clone())
	}
	sortByTime(out)
	return out, nil
}

// Replace swaps the field set of the measurement at path. The payload
// timestamp must match the path before existence is even checked.
func (s *MemoryStore) Replace(path, body time.Time, fields weather.Fields) error {
	return s.update(path, body, func(weather.Fields) weather.Fields {
		return fields.Clone()
	})
}

// Merge writes fields over the measurement at path; fields not mentioned are kept.
func (s *MemoryStore) Merge(path, body time.Time, fields weather.Fields) error {
	return s.update(path, body, func(current weather.Fields) weather.Fields {
		merged := current.Clone()
		for k, v := range fields {
			merged[k] = v
		}
		return merged
	})
}

func (s *MemoryStore) update(path, body time.Time, apply func(weather.Fields) weather.Fields) error {
	if !path.Equal(body) {
		return fmt.Errorf("%w: path %s, body %s", weather.ErrConflict,
			weather.FormatInstant(path), weather.FormatInstant(body))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.lookup(path)
	if !ok {
		return fmt.Errorf("%w: %s", weather.ErrNotFound, weather.FormatInstant(path))
	}
	m.Fields = apply(m.Fields)
	s.days[weather.DayOf(path)].measurements[weather.FormatInstant(path)] = m
	return nil
}

// Delete removes the measurement at ts. Its day bucket stays, possibly empty.
func (s *MemoryStore) Delete(ts time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.lookup(ts); !ok {
		return fmt.Errorf("%w: %s", weather.ErrNotFound, weather.FormatInstant(ts))
	}
	delete(s.days[weather.DayOf(ts)].measurements, weather.FormatInstant(ts))
	s.count--
	return nil
}

// Range returns measurements with from <= timestamp < to, ordered by timestamp.
// Only buckets between the days of from and to are scanned.
func (s *MemoryStore) Range(from, to time.Time) []weather.Measurement {
	fromDay, toDay := weather.DayOf(from), weather.DayOf(to)

	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []weather.Measurement
	for day, bucket := range s.days {
		if day < fromDay || day > toDay {
			continue
		}
		for _, m := range bucket.measurements {
			if m.Timestamp.Before(from) || !m.Timestamp.Before(to) {
				continue
			}
			out = append(out, m.Clone())
		}
	}
	sortByTime(out)
	return out
}

// Prune removes every measurement older than cutoff and returns how many went.
// Buckets are left in place.
func (s *MemoryStore) Prune(cutoff time.Time) int {
	cutoffDay := weather.DayOf(cutoff)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for day, bucket := range s.days {
		if day > cutoffDay {
			continue
		}
		for key, m := range bucket.measurements {
			if m.Timestamp.Before(cutoff) {
				delete(bucket.measurements, key)
				removed++
			}
		}
	}
	s.count -= removed
	return removed
}

// Len returns the number of stored measurements.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.count
}

// lookup must be called with s.mu held.
func (s *MemoryStore) lookup(ts time.Time) (weather.Measurement, bool) {
	bucket, ok := s.days[weather.DayOf(ts)]
	if !ok {
		return weather.Measurement{}, false
	}
	m, ok := bucket.measurements[weather.FormatInstant(ts)]
	return m, ok
}

func sortByTime(ms []weather.Measurement) {
	sort.Slice(ms, func(i, j int) bool {
		return ms[i].Timestamp.Before(ms[j].Timestamp)
	})
}

var _ weather.Store = (*MemoryStore)(nil)
