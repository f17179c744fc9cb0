package weather

import (
	"context"
	"time"
)

// Reading is a single provider's observation, normalized to metric names.
// Fields only holds the metrics the provider actually reported.
type Reading struct {
	ProviderName string
	Timestamp    time.Time
	Fields       Fields
}

// Provider abstracts an upstream weather source (e.g. OpenWeatherMap, WeatherAPI, Open-Meteo).
type Provider interface {
	Name() string
	Fetch(ctx context.Context, station Station) (Reading, error)
}

// RangeReader is the read side the stats engine scans.
type RangeReader interface {
	// Range returns measurements with from <= timestamp < to.
	Range(from, to time.Time) []Measurement
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
type Store interface {
	RangeReader

	Save(m Measurement)
	Find(ts time.Time) (Measurement, error)
	FindDay(day DayKey) ([]Measurement, error)
	Replace(path, body time.Time, fields Fields) error
	Merge(path, body time.Time, fields Fields) error
	Delete(ts time.Time) error
	Prune(cutoff time.Time) int
	Len() int
}
