package domain

import (
	"context"
	"time"
)

// Source fetches raw rows from the public-data providers.
type Source interface {
	// UltraShortForecast returns the forecast items issued for region as of now.
	UltraShortForecast(ctx context.Context, region Region, now time.Time) ([]RawForecastItem, error)

	// Concentration returns predicted attraction concentration rows for region.
	Concentration(ctx context.Context, region Region) ([]RawConcentrationRow, error)

	// VisitorStats returns daily visitor rows for every district between
	// startYmd and endYmd inclusive.
	VisitorStats(ctx context.Context, startYmd, endYmd string) ([]RawVisitorRow, error)
}

// SeriesSnapshot is a refreshed chart bundle for one region, published after
// each scheduled refresh.
type SeriesSnapshot struct {
	ID            string                     `json:"id"`
	Region        string                     `json:"region"`
	Forecast      map[string][]ForecastPoint `json:"forecast"`
	Concentration ConcentrationSeries        `json:"concentration"`
	GeneratedAt   time.Time                  `json:"generated_at"`
}
