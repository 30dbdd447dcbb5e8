package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
	"github.com/google/uuid"
)

// SnapshotLoader writes refreshed snapshots to the destination.
type SnapshotLoader interface {
	LoadBatch(ctx context.Context, snapshots []domain.SeriesSnapshot) error
}

// maxLoadAttempts bounds how often a failed load is retried within one refresh.
const maxLoadAttempts = 3

// Pipeline refreshes the forecast and concentration series of every region:
// fetch from the source, build the chart series, then load the snapshots.
type Pipeline struct {
	source  domain.Source
	loader  SnapshotLoader
	regions []domain.Region
	loc     *time.Location
	logger  *slog.Logger
	metrics *observability.Metrics
	ready   atomic.Bool

	mu     sync.RWMutex
	latest map[string]domain.SeriesSnapshot
}

// New creates a Pipeline over regions. A nil loader keeps snapshots in memory only.
func New(source domain.Source, loader SnapshotLoader, regions []domain.Region, loc *time.Location, logger *slog.Logger, metrics *observability.Metrics) *Pipeline {
	return &Pipeline{
		source:  source,
		loader:  loader,
		regions: regions,
		loc:     loc,
		logger:  logger,
		metrics: metrics,
		latest:  make(map[string]domain.SeriesSnapshot),
	}
}

// CheckReadiness returns nil once at least one refresh has produced a snapshot,
// or an error describing why the service is not yet ready.
func (p *Pipeline) CheckReadiness(_ context.Context) error {
	if !p.ready.Load() {
		return errors.New("no region has been refreshed yet")
	}
	return nil
}

// Latest returns the most recent snapshot for a region name.
func (p *Pipeline) Latest(region string) (domain.SeriesSnapshot, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.latest[region]
	return s, ok
}

// Refresh runs one pass over every region. Regions whose fetch fails are
// skipped and reported in the returned error; the rest are still loaded.
func (p *Pipeline) Refresh(ctx context.Context) error {
	start := time.Now()
	now := domain.Now()

	snapshots := make([]domain.SeriesSnapshot, 0, len(p.regions))
	var errs []error
	for _, region := range p.regions {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		snap, err := p.buildSnapshot(ctx, region, now)
		if err != nil {
			p.logger.Warn("region refresh failed", "region", region.Name, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", region.Name, err))
			continue
		}
		snapshots = append(snapshots, snap)
	}

	if len(snapshots) > 0 {
		if err := p.load(ctx, snapshots); err != nil {
			errs = append(errs, err)
		} else {
			p.store(snapshots)
			p.ready.Store(true)
		}
	}

	p.metrics.RefreshDuration.Observe(time.Since(start).Seconds())
	err := errors.Join(errs...)
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	p.metrics.RefreshRuns.WithLabelValues(outcome).Inc()
	p.logger.Info("refresh finished",
		"regions", len(p.regions),
		"snapshots", len(snapshots),
		"failed", len(errs),
		"duration", time.Since(start),
	)
	return err
}

func (p *Pipeline) buildSnapshot(ctx context.Context, region domain.Region, now time.Time) (domain.SeriesSnapshot, error) {
	items, err := p.source.UltraShortForecast(ctx, region, now)
	if err != nil {
		return domain.SeriesSnapshot{}, fmt.Errorf("fetch forecast: %w", err)
	}
	rows, err := p.source.Concentration(ctx, region)
	if err != nil {
		return domain.SeriesSnapshot{}, fmt.Errorf("fetch concentration: %w", err)
	}

	forecastRecords := domain.NormalizeForecasts(items)
	concentrationRecords := domain.NormalizeConcentration(rows)
	p.metrics.NormalizeIssues.WithLabelValues("forecast").Add(float64(domain.CountIssues(forecastRecords)))
	p.metrics.NormalizeIssues.WithLabelValues("concentration").Add(float64(domain.CountIssues(concentrationRecords)))

	windowed := domain.NewWindow(now, p.loc).Filter(forecastRecords)
	forecast := make(map[string][]domain.ForecastPoint)
	for _, category := range domain.ForecastCategories(windowed) {
		forecast[category] = domain.ResolveForecast(windowed, category)
		p.metrics.SeriesBuilt.WithLabelValues("forecast").Inc()
	}
	concentration := domain.BuildConcentration(concentrationRecords, "")
	p.metrics.SeriesBuilt.WithLabelValues("concentration").Inc()

	return domain.SeriesSnapshot{
		ID:            uuid.NewString(),
		Region:        region.Name,
		Forecast:      forecast,
		Concentration: concentration,
		GeneratedAt:   now,
	}, nil
}

// load writes snapshots, retrying with exponential backoff: 200ms doubling
// up to 5s, at most maxLoadAttempts times.
func (p *Pipeline) load(ctx context.Context, snapshots []domain.SeriesSnapshot) error {
	if p.loader == nil {
		return nil
	}

	backoff := 200 * time.Millisecond
	maxBackoff := 5 * time.Second

	var err error
	for attempt := 1; attempt <= maxLoadAttempts; attempt++ {
		if err = p.loader.LoadBatch(ctx, snapshots); err == nil {
			p.metrics.SnapshotsPublished.Add(float64(len(snapshots)))
			return nil
		}
		p.logger.Error("load snapshots failed", "error", err, "attempt", attempt, "batch_size", len(snapshots))
		if attempt == maxLoadAttempts || !sleepWithContext(ctx, backoff) {
			break
		}
		backoff = nextBackoff(backoff, maxBackoff)
	}
	return fmt.Errorf("load snapshots: %w", err)
}

func (p *Pipeline) store(snapshots []domain.SeriesSnapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range snapshots {
		p.latest[s.Region] = s
	}
}

func nextBackoff(current, maxBackoff time.Duration) time.Duration {
	next := current * 2
	if next > maxBackoff {
		return maxBackoff
	}
	return next
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
