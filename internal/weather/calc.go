package weather

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Stat names an aggregation applied to the values of a metric.
type Stat string

const (
	StatMin     Stat = "min"
	StatMax     Stat = "max"
	StatAverage Stat = "average"
	StatMedian  Stat = "median"
)

// MedianMode selects how the median stat picks its element.
type MedianMode string

const (
	// MedianLegacy picks index n/2-1 of the sorted values (index 0 for a
	// single value). Existing clients depend on this result.
	MedianLegacy MedianMode = "legacy"
	// MedianStandard picks the middle value, or the mean of the two middle
	// values for an even count.
	MedianStandard MedianMode = "standard"
)

// ParseMedianMode validates a configured median mode.
func ParseMedianMode(s string) (MedianMode, error) {
	switch m := MedianMode(s); m {
	case MedianLegacy, MedianStandard:
		return m, nil
	case "":
		return MedianLegacy, nil
	default:
		return "", fmt.Errorf("unknown median mode %q", s)
	}
}

// ParseStat validates a stat name.
func ParseStat(s string) (Stat, error) {
	switch st := Stat(s); st {
	case StatMin, StatMax, StatAverage, StatMedian:
		return st, nil
	default:
		return "", fmt.Errorf("%w: unknown stat %q", ErrBadRequest, s)
	}
}

// ParseMetric validates a metric name against the aggregatable set.
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics {
		if string(m) == s {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: unknown metric %q", ErrBadRequest, s)
}

// compute applies stat to a non-empty value set.
func compute(stat Stat, values []float64, mode MedianMode) float64 {
	switch stat {
	case StatMin:
		return minOf(values)
	case StatMax:
		return maxOf(values)
	case StatAverage:
		return average(values)
	case StatMedian:
		return median(values, mode)
	}
	return math.NaN()
}

func minOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v < m {
			m = v
		}
	}
	return m
}

func maxOf(values []float64) float64 {
	m := values[0]
	for _, v := range values[1:] {
		if v > m {
			m = v
		}
	}
	return m
}

// average is the arithmetic mean limited to 3 significant digits.
func average(values []float64) float64 {
	n := float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v
	}
	if !math.IsInf(sum, 0) {
		return roundSignificant(sum/n, 3)
	}

	// The plain sum overflowed; accumulate pre-divided terms instead.
	var mean float64
	for _, v := range values {
		mean += v / n
	}
	return roundSignificant(mean, 3)
}

func median(values []float64, mode MedianMode) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)

	if mode == MedianStandard {
		if n%2 == 1 {
			return sorted[n/2]
		}
		a, b := sorted[n/2-1], sorted[n/2]
		if mid := (a + b) / 2; !math.IsInf(mid, 0) {
			return mid
		}
		return a/2 + b/2
	}

	idx := 0
	if n > 1 {
		idx = n/2 - 1
	}
	return sorted[idx]
}

// roundSignificant rounds v to digits significant digits, halves away from zero.
// It works on the decimal expansion so neither tiny nor huge magnitudes
// need a power of ten that would leave the float64 range.
func roundSignificant(v float64, digits int) float64 {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) || digits <= 0 {
		return v
	}

	// d.ddd...e±x with enough digits to see past the rounding position.
	s := strconv.FormatFloat(math.Abs(v), 'e', digits+24, 64)
	mark := strings.IndexByte(s, 'e')
	mantissa := []byte(s[:1] + s[2:mark])
	exp, err := strconv.Atoi(s[mark+1:])
	if err != nil {
		return v
	}

	kept := mantissa[:digits]
	rounded, roundedExp := kept, exp
	if mantissa[digits] >= '5' {
		rounded = incrementDigits(kept)
		if len(rounded) > digits {
			rounded = rounded[:digits]
			roundedExp++
		}
	}

	r, ok := parseDigits(rounded, roundedExp)
	if !ok {
		// Rounding up left the float64 range; keep the truncated digits.
		r, _ = parseDigits(kept, exp)
	}
	return math.Copysign(r, v)
}

// incrementDigits adds one to a decimal digit string, growing it on carry.
func incrementDigits(d []byte) []byte {
	out := append([]byte(nil), d...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] < '9' {
			out[i]++
			return out
		}
		out[i] = '0'
	}
	return append([]byte{'1'}, out...)
}

func parseDigits(d []byte, exp int) (float64, bool) {
	s := string(d[:1])
	if len(d) > 1 {
		s += "." + string(d[1:])
	}
	f, err := strconv.ParseFloat(s+"e"+strconv.Itoa(exp), 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
