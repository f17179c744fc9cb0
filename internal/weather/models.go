package weather

import (
	"encoding/json"
	"time"
)

// Metric names a numeric quantity reported by a measurement.
type Metric string

const (
	MetricTemperature   Metric = "temperature"
	MetricDewPoint      Metric = "dewPoint"
	MetricPrecipitation Metric = "precipitation"
)

// Metrics lists the metrics the stats endpoint can aggregate.
var Metrics = []Metric{MetricTemperature, MetricDewPoint, MetricPrecipitation}

// Fields maps metric name to value. Measurements may carry metrics beyond the
// ones listed in Metrics; only those can be aggregated.
type Fields map[string]float64

// Clone returns an independent copy of f.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Measurement is a set of readings taken at a single instant.
// The timestamp is its identity: a store holds at most one per instant.
type Measurement struct {
	Timestamp time.Time
	Fields    Fields
}

// Clone returns a copy of m that shares no state with it.
func (m Measurement) Clone() Measurement {
	return Measurement{Timestamp: m.Timestamp, Fields: m.Fields.Clone()}
}

// MarshalJSON renders the flat wire form: {"timestamp": "...", "<metric>": n}.
func (m Measurement) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(m.Fields)+1)
	for k, v := range m.Fields {
		out[k] = v
	}
	out["timestamp"] = FormatInstant(m.Timestamp)
	return json.Marshal(out)
}

// Station is the location polled by the provider ingestion job.
// City/Country must be provided; coordinates are optional.
type Station struct {
	City    string   `json:"city" yaml:"city"`
	Country string   `json:"country" yaml:"country"`
	Lat     *float64 `json:"lat,omitempty" yaml:"lat"`
	Lon     *float64 `json:"lon,omitempty" yaml:"lon"`
}

// Key returns a readable identifier used in logs.
func (s Station) Key() string {
	return s.City + ":" + s.Country
}

// HasCoordinates reports whether both latitude and longitude are known.
func (s Station) HasCoordinates() bool {
	return s.Lat != nil && s.Lon != nil
}
