package weather

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sampleData = []float64{27.1, 28.4, 22, 22, 28.1, 26.9}
	singleData = []float64{10}
)

func TestMinMax(t *testing.T) {
	assert.Equal(t, 22.0, minOf(sampleData))
	assert.Equal(t, 28.4, maxOf(sampleData))
	assert.Equal(t, 10.0, minOf(singleData))
	assert.Equal(t, 10.0, maxOf(singleData))
	assert.Equal(t, -3.5, minOf([]float64{-3.5, 10, 9}))
}

func TestAverageRoundsToThreeSignificantDigits(t *testing.T) {
	assert.Equal(t, 25.8, average(sampleData))
	assert.Equal(t, 10.0, average(singleData))
	assert.Equal(t, 0.0, average([]float64{0, 0}))
	assert.Equal(t, 0.333, average([]float64{0, 1, 0}))
	assert.Equal(t, 1230.0, average([]float64{1234}))
}

func TestAverageStaysFiniteAtExtremes(t *testing.T) {
	assert.Equal(t, 1e-310, average([]float64{1e-310}))
	assert.Equal(t, 1e-310, average([]float64{1e-310, 1e-310}))
	// The sum overflows; the mean itself is representable.
	assert.Equal(t, 1.79e308, average([]float64{math.MaxFloat64, math.MaxFloat64}))
	assert.Equal(t, -1.79e308, average([]float64{-math.MaxFloat64, -math.MaxFloat64}))
	assert.Equal(t, 0.0, average([]float64{math.MaxFloat64, -math.MaxFloat64}))
}

func TestRoundSignificant(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{25.75, 25.8},
		{-25.75, -25.8},
		{0.125, 0.125},
		{999.6, 1000},
		{0.0009996, 0.001},
		{5e-324, 5e-324},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, roundSignificant(tt.in, 3), "%g", tt.in)
	}
}

func TestStandardMedianDoesNotOverflow(t *testing.T) {
	assert.Equal(t, math.MaxFloat64, median([]float64{math.MaxFloat64, math.MaxFloat64}, MedianStandard))
}

func TestLegacyMedian(t *testing.T) {
	assert.Equal(t, 26.9, median(sampleData, MedianLegacy))
	assert.Equal(t, 10.0, median(singleData, MedianLegacy))
	// Index n/2-1 on the sorted values: [1 2 3] -> index 0.
	assert.Equal(t, 1.0, median([]float64{3, 1, 2}, MedianLegacy))
}

func TestMedianSortsNumerically(t *testing.T) {
	// Sorted as strings this would be [10 100 11 9], picking 100.
	assert.Equal(t, 10.0, median([]float64{10, 9, 100, 11}, MedianLegacy))
	assert.Equal(t, -2.0, median([]float64{-1, -10, -2, 5}, MedianLegacy))
}

func TestStandardMedian(t *testing.T) {
	assert.InDelta(t, 27.0, median(sampleData, MedianStandard), 1e-9)
	assert.Equal(t, 2.0, median([]float64{3, 1, 2}, MedianStandard))
	assert.Equal(t, 10.0, median(singleData, MedianStandard))
}

func TestMedianDoesNotReorderInput(t *testing.T) {
	data := []float64{3, 1, 2}
	median(data, MedianLegacy)
	assert.Equal(t, []float64{3, 1, 2}, data)
}

func TestParseStatAndMetric(t *testing.T) {
	st, err := ParseStat("average")
	require.NoError(t, err)
	assert.Equal(t, StatAverage, st)

	_, err = ParseStat("mode")
	assert.True(t, errors.Is(err, ErrBadRequest))

	m, err := ParseMetric("dewPoint")
	require.NoError(t, err)
	assert.Equal(t, MetricDewPoint, m)

	_, err = ParseMetric("humidity")
	assert.True(t, errors.Is(err, ErrBadRequest))
}

func TestParseMedianMode(t *testing.T) {
	m, err := ParseMedianMode("")
	require.NoError(t, err)
	assert.Equal(t, MedianLegacy, m)

	m, err = ParseMedianMode("standard")
	require.NoError(t, err)
	assert.Equal(t, MedianStandard, m)

	_, err = ParseMedianMode("mean")
	assert.Error(t, err)
}
