package weather

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInstantCanonicalizes(t *testing.T) {
	for in, want := range map[string]string{
		"2015-09-01T16:00:00.000Z":       "2015-09-01T16:00:00.000Z",
		"2015-09-01T16:00:00Z":           "2015-09-01T16:00:00.000Z",
		"2015-09-01T18:00:00+02:00":      "2015-09-01T16:00:00.000Z",
		"2015-09-01T16:00:00.123456789Z": "2015-09-01T16:00:00.123Z",
	} {
		ts, err := ParseInstant(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, FormatInstant(ts), in)
	}
}

func TestParseInstantRejects(t *testing.T) {
	for _, in := range []string{"", "2015-09-01", "2015-09-02T16:00:00:000Z", "2015-909-01", "123141", "not a date"} {
		assert.False(t, IsValidInstant(in), in)
	}
}

func TestDayOf(t *testing.T) {
	assert.Equal(t, DayKey("2015-12-22"), DayOf(at(t, "2015-12-22T16:00:00.000Z")))
	assert.Equal(t, DayKey("2015-09-02"), DayOf(at(t, "2015-09-02T16:00:00.000Z")))

	// Every component comes from UTC, including across a year boundary.
	local := time.Date(2015, 12, 31, 22, 0, 0, 0, time.FixedZone("UTC-5", -5*3600))
	assert.Equal(t, DayKey("2016-01-01"), DayOf(local))
}

func TestParseDay(t *testing.T) {
	d, err := ParseDay("2015-09-01")
	require.NoError(t, err)
	assert.Equal(t, DayKey("2015-09-01"), d)

	_, err = ParseDay("2015-909-01")
	assert.Error(t, err)
	_, err = ParseDay("2015-09-01T16:00:00.000Z")
	assert.Error(t, err)
}

func TestMeasurementJSONIsFlat(t *testing.T) {
	m := Measurement{
		Timestamp: at(t, "2015-09-01T16:00:00.000Z"),
		Fields:    Fields{"temperature": 27.1, "dewPoint": 16.7, "precipitation": 0},
	}

	raw, err := json.Marshal(m)
	require.NoError(t, err)
	assert.JSONEq(t, `{"timestamp":"2015-09-01T16:00:00.000Z","temperature":27.1,"dewPoint":16.7,"precipitation":0}`, string(raw))
}
