package weather_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-measurements/internal/store"
	"github.com/i474232898/weather-measurements/internal/weather"
)

type fakeProvider struct {
	name    string
	reading weather.Reading
	err     error
}

func (p fakeProvider) Name() string { return p.name }

func (p fakeProvider) Fetch(ctx context.Context, station weather.Station) (weather.Reading, error) {
	if p.err != nil {
		return weather.Reading{}, p.err
	}
	return p.reading, nil
}

func newService(t *testing.T, providers ...weather.Provider) (*weather.Service, *store.MemoryStore, *logtest.Hook) {
	t.Helper()
	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	st := store.NewMemoryStore()
	svc := weather.NewService(st, weather.NewStatsEngine(st, weather.MedianLegacy), providers, logger)
	return svc, st, hook
}

func instant(t *testing.T, s string) time.Time {
	t.Helper()
	ts, err := weather.ParseInstant(s)
	require.NoError(t, err)
	return ts
}

func TestFindDispatchesOnInstantOrDay(t *testing.T) {
	svc, _, _ := newService(t)
	svc.Save(instant(t, "2015-09-01T16:00:00.000Z"), weather.Fields{"temperature": 27.1, "dewPoint": 16.7, "precipitation": 0})
	svc.Save(instant(t, "2015-09-01T16:10:00.000Z"), weather.Fields{"temperature": 27.3})

	res, err := svc.Find("2015-09-01T16:00:00.000Z")
	require.NoError(t, err)
	require.NotNil(t, res.Exact)
	assert.Nil(t, res.Day)
	assert.Equal(t, weather.Fields{"temperature": 27.1, "dewPoint": 16.7, "precipitation": 0}, res.Exact.Fields)

	res, err = svc.Find("2015-09-01")
	require.NoError(t, err)
	assert.Nil(t, res.Exact)
	assert.Len(t, res.Day, 2)

	for _, raw := range []string{"2015-09-15T16:00:00.000Z", "2015-09-15", "garbage"} {
		_, err = svc.Find(raw)
		assert.True(t, errors.Is(err, weather.ErrNotFound), raw)
	}
}

func TestFindAcceptsNonCanonicalInstants(t *testing.T) {
	svc, _, _ := newService(t)
	svc.Save(instant(t, "2015-09-01T16:00:00.000Z"), weather.Fields{"temperature": 27.1})

	for _, raw := range []string{"2015-09-01T16:00:00Z", "2015-09-01T18:00:00.000+02:00"} {
		res, err := svc.Find(raw)
		require.NoError(t, err, raw)
		require.NotNil(t, res.Exact, raw)
		assert.Equal(t, 27.1, res.Exact.Fields["temperature"])
	}
}

func TestReplaceAndMergeConflicts(t *testing.T) {
	svc, _, _ := newService(t)
	ts := instant(t, "2015-09-01T16:00:00.000Z")
	svc.Save(ts, weather.Fields{"temperature": 27.1})

	other := instant(t, "2015-09-02T16:00:00.000Z")
	assert.True(t, errors.Is(svc.Replace("2015-09-01T16:00:00.000Z", other, weather.Fields{"temperature": 1}), weather.ErrConflict))
	assert.True(t, errors.Is(svc.Merge("2015-09-01T16:00:00.000Z", other, weather.Fields{"temperature": 1}), weather.ErrConflict))
	assert.True(t, errors.Is(svc.Replace("not-a-time", ts, weather.Fields{"temperature": 1}), weather.ErrConflict))

	// Equivalent spellings of the same instant agree.
	require.NoError(t, svc.Merge("2015-09-01T18:00:00+02:00", ts, weather.Fields{"precipitation": 12.3}))

	res, err := svc.Find("2015-09-01T16:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, weather.Fields{"temperature": 27.1, "precipitation": 12.3}, res.Exact.Fields)
}

func TestDelete(t *testing.T) {
	svc, st, _ := newService(t)
	svc.Save(instant(t, "2015-09-01T16:00:00.000Z"), weather.Fields{"temperature": 27.1})

	require.NoError(t, svc.Delete("2015-09-01T16:00:00.000Z"))
	assert.Equal(t, 0, st.Len())
	assert.True(t, errors.Is(svc.Delete("2015-09-01T16:00:00.000Z"), weather.ErrNotFound))
	assert.True(t, errors.Is(svc.Delete("2015-09-01"), weather.ErrNotFound))
}

func TestStatsReadsFromStore(t *testing.T) {
	svc, _, _ := newService(t)
	svc.Save(instant(t, "2015-09-01T16:00:00.000Z"), weather.Fields{"temperature": 10})

	res, err := svc.Stats(weather.StatsQuery{
		Stats:   []string{"min", "max", "average", "median"},
		Metrics: []string{"temperature"},
		From:    instant(t, "2015-09-01T00:00:00.000Z"),
		To:      instant(t, "2015-09-02T00:00:00.000Z"),
	})
	require.NoError(t, err)
	require.Len(t, res, 4)
	for _, r := range res {
		assert.Equal(t, 10.0, r.Value, r.Stat)
	}

	_, err = svc.Stats(weather.StatsQuery{Stats: []string{"p99"}, Metrics: []string{"temperature"}})
	assert.True(t, errors.Is(err, weather.ErrBadRequest))
}

func TestPruneOlderThan(t *testing.T) {
	svc, st, _ := newService(t)
	svc.Save(time.Now().Add(-48*time.Hour), weather.Fields{"temperature": 1})
	svc.Save(time.Now(), weather.Fields{"temperature": 2})

	assert.Equal(t, 0, svc.PruneOlderThan(0))
	assert.Equal(t, 1, svc.PruneOlderThan(24*time.Hour))
	assert.Equal(t, 1, st.Len())
}

func TestFetchAndStoreAggregatesSuccessfulProviders(t *testing.T) {
	ts := instant(t, "2015-09-01T16:00:00.000Z")
	svc, st, hook := newService(t,
		fakeProvider{name: "a", reading: weather.Reading{ProviderName: "a", Timestamp: ts, Fields: weather.Fields{"temperature": 20, "dewPoint": 10}}},
		fakeProvider{name: "b", reading: weather.Reading{ProviderName: "b", Timestamp: ts, Fields: weather.Fields{"temperature": 22}}},
		fakeProvider{name: "c", err: errors.New("boom")},
	)

	require.NoError(t, svc.FetchAndStore(context.Background(), weather.Station{City: "Paris", Country: "FR"}))
	assert.Equal(t, 1, st.Len())

	m, err := st.Find(ts)
	require.NoError(t, err)
	assert.Equal(t, weather.Fields{"temperature": 21, "dewPoint": 10}, m.Fields)

	var warned bool
	for _, e := range hook.AllEntries() {
		if e.Level == logrus.WarnLevel && e.Data["provider"] == "c" {
			warned = true
		}
	}
	assert.True(t, warned)
}

func TestFetchAndStoreWithoutReadingsKeepsStore(t *testing.T) {
	svc, st, _ := newService(t, fakeProvider{name: "a", err: errors.New("down")})
	require.NoError(t, svc.FetchAndStore(context.Background(), weather.Station{City: "Paris", Country: "FR"}))
	assert.Equal(t, 0, st.Len())

	empty, _, _ := newService(t)
	assert.Error(t, empty.FetchAndStore(context.Background(), weather.Station{City: "Paris", Country: "FR"}))
}
