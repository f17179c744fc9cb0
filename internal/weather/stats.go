package weather

import (
	"fmt"
	"time"
)

// StatsQuery selects the stats and metrics to compute over [From, To).
// Stats and Metrics are treated as sets; the first occurrence fixes the order.
type StatsQuery struct {
	Stats   []string
	Metrics []string
	From    time.Time
	To      time.Time
}

// StatResult is one (metric, stat) aggregate.
type StatResult struct {
	Metric Metric  `json:"metric"`
	Stat   Stat    `json:"stat"`
	Value  float64 `json:"value"`
}

// StatsEngine computes aggregates over measurements read from a RangeReader.
type StatsEngine struct {
	reader RangeReader
	median MedianMode
}

// NewStatsEngine creates a StatsEngine. An empty mode selects MedianLegacy.
func NewStatsEngine(reader RangeReader, mode MedianMode) *StatsEngine {
	if mode == "" {
		mode = MedianLegacy
	}
	return &StatsEngine{reader: reader, median: mode}
}

// MedianMode returns the configured median mode.
func (e *StatsEngine) MedianMode() MedianMode {
	return e.median
}

// Query computes every requested (metric, stat) pair. Metrics without any
// value in range are left out of the result altogether.
func (e *StatsEngine) Query(q StatsQuery) ([]StatResult, error) {
	stats, err := parseStats(q.Stats)
	if err != nil {
		return nil, err
	}
	metrics, err := parseMetrics(q.Metrics)
	if err != nil {
		return nil, err
	}

	measurements := e.reader.Range(q.From, q.To)

	values := make(map[Metric][]float64, len(metrics))
	for _, m := range measurements {
		for _, metric := range metrics {
			if v, ok := m.Fields[string(metric)]; ok {
				values[metric] = append(values[metric], v)
			}
		}
	}

	out := make([]StatResult, 0, len(metrics)*len(stats))
	for _, metric := range metrics {
		data := values[metric]
		if len(data) == 0 {
			continue
		}
		for _, stat := range stats {
			out = append(out, StatResult{
				Metric: metric,
				Stat:   stat,
				Value:  compute(stat, data, e.median),
			})
		}
	}
	return out, nil
}

func parseStats(raw []string) ([]Stat, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one stat is required", ErrBadRequest)
	}
	seen := make(map[Stat]bool, len(raw))
	out := make([]Stat, 0, len(raw))
	for _, s := range raw {
		st, err := ParseStat(s)
		if err != nil {
			return nil, err
		}
		if seen[st] {
			continue
		}
		seen[st] = true
		out = append(out, st)
	}
	return out, nil
}

func parseMetrics(raw []string) ([]Metric, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("%w: at least one metric is required", ErrBadRequest)
	}
	seen := make(map[Metric]bool, len(raw))
	out := make([]Metric, 0, len(raw))
	for _, s := range raw {
		m, err := ParseMetric(s)
		if err != nil {
			return nil, err
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out, nil
}
