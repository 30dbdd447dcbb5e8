package publicdata

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/couchcryptid/tourism-dashboard-service/internal/cache"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mock for cache tests ---

type countingSource struct {
	forecastCalls      int
	concentrationCalls int
	visitorCalls       int

	forecast      []domain.RawForecastItem
	concentration []domain.RawConcentrationRow
	visitors      []domain.RawVisitorRow
	err           error
}

func (m *countingSource) UltraShortForecast(_ context.Context, _ domain.Region, _ time.Time) ([]domain.RawForecastItem, error) {
	m.forecastCalls++
	return m.forecast, m.err
}

func (m *countingSource) Concentration(_ context.Context, _ domain.Region) ([]domain.RawConcentrationRow, error) {
	m.concentrationCalls++
	return m.concentration, m.err
}

func (m *countingSource) VisitorStats(_ context.Context, _, _ string) ([]domain.RawVisitorRow, error) {
	m.visitorCalls++
	return m.visitors, m.err
}

func newTestCachedSource(inner domain.Source, clock clockwork.Clock) *CachedSource {
	return NewCachedSource(inner, cache.New[any](10, clock), 300*time.Second, seoul, observability.NewMetricsForTesting())
}

func TestCachedSource_ForecastCacheHit(t *testing.T) {
	inner := &countingSource{forecast: []domain.RawForecastItem{{Category: "T1H", FcstValue: "12"}}}
	s := newTestCachedSource(inner, nil)
	now := time.Date(2025, 3, 1, 14, 45, 0, 0, seoul)

	first, err := s.UltraShortForecast(context.Background(), changwon, now)
	require.NoError(t, err)
	second, err := s.UltraShortForecast(context.Background(), changwon, now.Add(10*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.forecastCalls, "same base_time should hit the cache")
	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues(SourceForecast, "hit")), 1e-9)
	assert.InDelta(t, 1, testutil.ToFloat64(s.metrics.CacheLookups.WithLabelValues(SourceForecast, "miss")), 1e-9)
}

func TestCachedSource_ForecastNewBaseTimeMisses(t *testing.T) {
	inner := &countingSource{forecast: []domain.RawForecastItem{{Category: "T1H"}}}
	s := newTestCachedSource(inner, nil)
	now := time.Date(2025, 3, 1, 14, 45, 0, 0, seoul)

	_, _ = s.UltraShortForecast(context.Background(), changwon, now)
	_, _ = s.UltraShortForecast(context.Background(), changwon, now.Add(time.Hour))

	assert.Equal(t, 2, inner.forecastCalls)
}

func TestCachedSource_DifferentRegionsMiss(t *testing.T) {
	inner := &countingSource{concentration: []domain.RawConcentrationRow{{TAtsNm: "A"}}}
	s := newTestCachedSource(inner, nil)
	jinju := domain.Region{Name: "진주시", SignguCode: "48170"}

	_, _ = s.Concentration(context.Background(), changwon)
	_, _ = s.Concentration(context.Background(), jinju)
	_, _ = s.Concentration(context.Background(), changwon)

	assert.Equal(t, 2, inner.concentrationCalls)
}

func TestCachedSource_Expiry(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	inner := &countingSource{visitors: []domain.RawVisitorRow{{SignguNm: "창원시"}}}
	s := newTestCachedSource(inner, clock)

	_, _ = s.VisitorStats(context.Background(), "20240615", "20240615")
	clock.Advance(299 * time.Second)
	_, _ = s.VisitorStats(context.Background(), "20240615", "20240615")
	assert.Equal(t, 1, inner.visitorCalls)

	clock.Advance(time.Second)
	_, _ = s.VisitorStats(context.Background(), "20240615", "20240615")
	assert.Equal(t, 2, inner.visitorCalls)
}

func TestCachedSource_EmptyAndErrorsNotCached(t *testing.T) {
	inner := &countingSource{}
	s := newTestCachedSource(inner, nil)

	_, err := s.VisitorStats(context.Background(), "20240615", "20240615")
	require.NoError(t, err)
	_, _ = s.VisitorStats(context.Background(), "20240615", "20240615")
	assert.Equal(t, 2, inner.visitorCalls)

	inner.err = errors.New("boom")
	_, err = s.Concentration(context.Background(), changwon)
	require.Error(t, err)
	_, _ = s.Concentration(context.Background(), changwon)
	assert.Equal(t, 2, inner.concentrationCalls)
}

func TestCachedSource_Invalidate(t *testing.T) {
	inner := &countingSource{
		concentration: []domain.RawConcentrationRow{{TAtsNm: "A"}},
		visitors:      []domain.RawVisitorRow{{SignguNm: "창원시"}},
	}
	s := newTestCachedSource(inner, nil)

	_, _ = s.Concentration(context.Background(), changwon)
	_, _ = s.VisitorStats(context.Background(), "20240615", "20240615")

	assert.Equal(t, 1, s.Invalidate(SourceConcentration))

	_, _ = s.Concentration(context.Background(), changwon)
	_, _ = s.VisitorStats(context.Background(), "20240615", "20240615")
	assert.Equal(t, 2, inner.concentrationCalls)
	assert.Equal(t, 1, inner.visitorCalls)
}
