package weather

import (
	"math"
	"time"
)

// AggregateReadings combines provider readings into a single Measurement.
// Each metric is averaged over the readings that reported it; the timestamp is
// the newest reading's, truncated to the second.
func AggregateReadings(readings []Reading) (Measurement, bool) {
	if len(readings) == 0 {
		return Measurement{}, false
	}

	sums := make(map[string]float64)
	counts := make(map[string]int)
	var newestTS time.Time

	for _, r := range readings {
		for k, v := range r.Fields {
			sums[k] += v
			counts[k]++
		}
		if r.Timestamp.After(newestTS) {
			newestTS = r.Timestamp
		}
	}

	if len(sums) == 0 {
		return Measurement{}, false
	}

	if newestTS.IsZero() {
		newestTS = time.Now()
	}

	fields := make(Fields, len(sums))
	for k, sum := range sums {
		fields[k] = sum / float64(counts[k])
	}

	return Measurement{
		Timestamp: newestTS.UTC().Truncate(time.Second),
		Fields:    fields,
	}, true
}

// DewPoint estimates the dew point (°C) from air temperature (°C) and relative
// humidity (%) using the Magnus formula.
func DewPoint(tempC, humidityPct float64) float64 {
	const a, b = 17.62, 243.12
	if humidityPct <= 0 {
		humidityPct = 0.01
	}
	gamma := math.Log(humidityPct/100) + a*tempC/(b+tempC)
	return b * gamma / (a - gamma)
}
