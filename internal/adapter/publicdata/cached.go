package publicdata

import (
	"context"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/tourism-dashboard-service/internal/cache"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
)

// CachedSource wraps a Source with the shared proxy response cache.
type CachedSource struct {
	inner   domain.Source
	cache   *cache.Cache[any]
	ttl     time.Duration
	loc     *time.Location
	metrics *observability.Metrics
}

// NewCachedSource creates a cache decorator around a source. Entries live for
// ttl. loc is the provider time zone used to derive forecast keys.
func NewCachedSource(inner domain.Source, c *cache.Cache[any], ttl time.Duration, loc *time.Location, metrics *observability.Metrics) *CachedSource {
	return &CachedSource{inner: inner, cache: c, ttl: ttl, loc: loc, metrics: metrics}
}

func (s *CachedSource) UltraShortForecast(ctx context.Context, region domain.Region, now time.Time) ([]domain.RawForecastItem, error) {
	baseDate, baseTime := domain.ForecastBase(now, s.loc)
	key := cache.Key(SourceForecast, url.Values{
		"base_date": {baseDate},
		"base_time": {baseTime},
		"nx":        {strconv.Itoa(region.NX)},
		"ny":        {strconv.Itoa(region.NY)},
	})
	return cached(s, SourceForecast, key, func() ([]domain.RawForecastItem, error) {
		return s.inner.UltraShortForecast(ctx, region, now)
	})
}

func (s *CachedSource) Concentration(ctx context.Context, region domain.Region) ([]domain.RawConcentrationRow, error) {
	key := cache.Key(SourceConcentration, url.Values{
		"areaCd":   {domain.AreaCode},
		"signguCd": {region.SignguCode},
	})
	return cached(s, SourceConcentration, key, func() ([]domain.RawConcentrationRow, error) {
		return s.inner.Concentration(ctx, region)
	})
}

func (s *CachedSource) VisitorStats(ctx context.Context, startYmd, endYmd string) ([]domain.RawVisitorRow, error) {
	key := cache.Key(SourceVisitors, url.Values{
		"startYmd": {startYmd},
		"endYmd":   {endYmd},
	})
	return cached(s, SourceVisitors, key, func() ([]domain.RawVisitorRow, error) {
		return s.inner.VisitorStats(ctx, startYmd, endYmd)
	})
}

// Invalidate drops every cached response for source.
func (s *CachedSource) Invalidate(source string) int {
	return s.cache.DeletePrefix(cache.SourcePrefix(source))
}

func cached[T any](s *CachedSource, source, key string, load func() ([]T, error)) ([]T, error) {
	if v, ok := s.cache.Get(key); ok {
		if rows, ok := v.([]T); ok {
			s.metrics.CacheLookups.WithLabelValues(source, "hit").Inc()
			return rows, nil
		}
	}
	s.metrics.CacheLookups.WithLabelValues(source, "miss").Inc()

	rows, err := load()
	if err != nil {
		return nil, err
	}
	// Empty answers are never cached.
	if len(rows) > 0 {
		s.cache.Set(key, rows, s.ttl)
	}
	return rows, nil
}
