//go:build publicdata

package publicdata

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/couchcryptid/tourism-dashboard-service/internal/cache"
	"github.com/couchcryptid/tourism-dashboard-service/internal/config"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the real data.go.kr APIs and require DATA_GO_KR_SERVICE_KEY.
// Run with: go test -tags=publicdata ./internal/adapter/publicdata/ -v -count=1

func smokeClient(t *testing.T) *Client {
	t.Helper()
	if os.Getenv("DATA_GO_KR_SERVICE_KEY") == "" {
		t.Fatal("DATA_GO_KR_SERVICE_KEY must be set to run smoke tests")
	}
	cfg, err := config.Load()
	require.NoError(t, err)
	return NewClient(cfg, observability.NewMetricsForTesting(), observability.DiscardLogger())
}

func TestSmoke_UltraShortForecast(t *testing.T) {
	c := smokeClient(t)
	region, err := domain.LookupRegion("changwon")
	require.NoError(t, err)

	items, err := c.UltraShortForecast(context.Background(), region, time.Now())
	require.NoError(t, err)
	require.NotEmpty(t, items)

	records := domain.NormalizeForecasts(items)
	assert.NotEmpty(t, domain.ForecastCategories(records))
}

func TestSmoke_Concentration(t *testing.T) {
	c := smokeClient(t)
	region, err := domain.LookupRegion("창원시")
	require.NoError(t, err)

	rows, err := c.Concentration(context.Background(), region)
	require.NoError(t, err)
	for _, r := range rows {
		assert.Equal(t, domain.Text(region.SignguCode), r.SignguCd)
	}
}

func TestSmoke_CachedVisitorStats(t *testing.T) {
	c := smokeClient(t)
	cached := NewCachedSource(c, cache.New[any](10, nil), time.Minute, c.loc, observability.NewMetricsForTesting())

	// First call: cache miss, real API call.
	r1, err := cached.VisitorStats(context.Background(), "20240615", "20240615")
	require.NoError(t, err)

	// Second call: cache hit, no API call.
	r2, err := cached.VisitorStats(context.Background(), "20240615", "20240615")
	require.NoError(t, err)
	assert.Equal(t, r1, r2)
}
