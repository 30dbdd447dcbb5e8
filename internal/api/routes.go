package api

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/couchcryptid/tourism-dashboard-service/internal/dataset"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
	"github.com/couchcryptid/tourism-dashboard-service/internal/selection"
)

type handlers struct {
	source     domain.Source
	datasets   *dataset.Store
	selections selection.Store
	tracker    *selection.Tracker
	snapshots  SnapshotReader
	loc        *time.Location
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// seriesResponse wraps a chart series with the region it was built for and the
// request generation that produced it.
type seriesResponse struct {
	Region     string `json:"region"`
	Generation uint64 `json:"generation"`
	Series     any    `json:"series"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	h := &handlers{
		source:     deps.Source,
		datasets:   deps.Datasets,
		selections: deps.Selections,
		tracker:    deps.Tracker,
		snapshots:  deps.Snapshots,
		loc:        deps.Location,
		metrics:    deps.Metrics,
		logger:     deps.Logger,
	}

	api := app.Group("/api")
	api.Get("/regions", h.regions)

	series := api.Group("/series")
	series.Get("/visitors", h.visitors)
	series.Get("/forecast", h.forecast)
	series.Get("/concentration", h.concentration)
	series.Get("/consumption", h.consumption)
	series.Get("/foreign-consumption", h.foreignConsumption)

	api.Get("/snapshots/:region", h.snapshot)

	api.Get("/datasets/:region/:category", h.listDatasets)
	api.Get("/datasets/:region/:category/:file", h.readDataset)

	api.Get("/selection", h.getSelection)
	api.Put("/selection", h.putSelection)
}

func (h *handlers) regions(c *fiber.Ctx) error {
	return c.JSON(domain.Regions())
}

// region resolves the "region" query parameter, falling back to the
// session's saved selection.
func (h *handlers) region(c *fiber.Ctx) (domain.Region, error) {
	key := c.Query("region")
	if key == "" {
		sel, err := h.selections.Load(c.UserContext(), sessionID(c))
		if errors.Is(err, selection.ErrNoSelection) {
			return domain.Region{}, fiber.NewError(fiber.StatusBadRequest, "region is required")
		}
		if err != nil {
			return domain.Region{}, err
		}
		key = sel.Region
	}
	r, err := domain.LookupRegion(key)
	if err != nil {
		return domain.Region{}, fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return r, nil
}

// tracked runs build under a fresh generation for the session and kind. If a newer
// request of the same kind for the session began meanwhile, the result is discarded.
func (h *handlers) tracked(c *fiber.Ctx, kind string, region domain.Region, build func(ctx context.Context) (any, error)) error {
	ctx, ticket := h.tracker.Begin(c.UserContext(), sessionID(c), kind)
	series, err := build(ctx)
	if !h.tracker.Finish(ticket) {
		h.metrics.StaleDiscarded.Inc()
		h.logger.Debug("stale series discarded", "kind", kind, "region", region.Name, "generation", ticket.Generation)
		return fiber.NewError(fiber.StatusConflict, "superseded by a newer request")
	}
	if err != nil {
		return err
	}

	h.metrics.SeriesBuilt.WithLabelValues(kind).Inc()
	return c.JSON(seriesResponse{Region: region.Name, Generation: ticket.Generation, Series: series})
}

func (h *handlers) fetchFailed(kind string, region domain.Region, err error) error {
	h.logger.Warn("upstream fetch failed", "kind", kind, "region", region.Name, "error", err)
	return upstreamError(err)
}

func (h *handlers) visitors(c *fiber.Ctx) error {
	region, err := h.region(c)
	if err != nil {
		return err
	}
	var q visitorsQuery
	if err := q.bind(c, h.loc); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return h.tracked(c, "visitors", region, func(ctx context.Context) (any, error) {
		rows, err := h.source.VisitorStats(ctx, q.Start, q.End)
		if err != nil {
			return nil, h.fetchFailed("visitors", region, err)
		}
		return domain.BuildVisitors(rows, region.Name), nil
	})
}

func (h *handlers) forecast(c *fiber.Ctx) error {
	region, err := h.region(c)
	if err != nil {
		return err
	}
	var q forecastQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return h.tracked(c, "forecast", region, func(ctx context.Context) (any, error) {
		now := domain.Now()
		items, err := h.source.UltraShortForecast(ctx, region, now)
		if err != nil {
			return nil, h.fetchFailed("forecast", region, err)
		}
		return domain.BuildForecast(items, q.Category, now, h.loc), nil
	})
}

func (h *handlers) concentration(c *fiber.Ctx) error {
	region, err := h.region(c)
	if err != nil {
		return err
	}
	attraction := c.Query("attraction")

	return h.tracked(c, "concentration", region, func(ctx context.Context) (any, error) {
		rows, err := h.source.Concentration(ctx, region)
		if err != nil {
			return nil, h.fetchFailed("concentration", region, err)
		}
		return domain.BuildConcentration(domain.NormalizeConcentration(rows), attraction), nil
	})
}

func (h *handlers) consumption(c *fiber.Ctx) error {
	region, err := h.region(c)
	if err != nil {
		return err
	}
	var q consumptionQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	return h.tracked(c, "consumption", region, func(context.Context) (any, error) {
		t, err := h.datasets.Read(region.Name, dataset.CategoryConsumption, dataset.FileConsumptionByAge)
		if err != nil {
			return nil, datasetError(err)
		}
		return domain.BuildConsumptionByAge(t.Rows, domain.Gender(q.Gender)), nil
	})
}

func (h *handlers) foreignConsumption(c *fiber.Ctx) error {
	region, err := h.region(c)
	if err != nil {
		return err
	}

	return h.tracked(c, "foreign_consumption", region, func(context.Context) (any, error) {
		t, err := h.datasets.Read(region.Name, dataset.CategoryConsumption, dataset.FileForeignConsumption)
		if err != nil {
			return nil, datasetError(err)
		}
		return domain.BuildForeignConsumption(t.Rows), nil
	})
}

func (h *handlers) snapshot(c *fiber.Ctx) error {
	region, err := domain.LookupRegion(c.Params("region"))
	if err != nil {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if h.snapshots == nil {
		return fiber.NewError(fiber.StatusNotFound, "scheduled refresh is disabled")
	}
	snap, ok := h.snapshots.Latest(region.Name)
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no snapshot for region yet")
	}
	return c.JSON(snap)
}

func (h *handlers) listDatasets(c *fiber.Ctx) error {
	files, err := h.datasets.List(c.Params("region"), c.Params("category"))
	if err != nil {
		return datasetError(err)
	}
	return c.JSON(fiber.Map{"files": files})
}

func (h *handlers) readDataset(c *fiber.Ctx) error {
	var q datasetQuery
	if err := q.bind(c); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	t, err := h.datasets.Read(c.Params("region"), c.Params("category"), c.Params("file"))
	if err != nil {
		return datasetError(err)
	}

	if q.processing() {
		return c.JSON(dataset.Process(t, dataset.ProcessQuery{
			GroupBy:   q.GroupBy,
			Aggregate: q.Aggregate,
			DateRange: q.DateRange,
		}))
	}
	return c.JSON(dataset.Paginate(t, dataset.PageQuery{
		Filter:  q.Filter,
		Columns: q.Columns,
		Offset:  q.Offset,
		Limit:   q.Limit,
	}))
}

type selectionResponse struct {
	Region    domain.Region `json:"region"`
	UpdatedAt time.Time     `json:"updated_at"`
}

func (h *handlers) getSelection(c *fiber.Ctx) error {
	sel, err := h.selections.Load(c.UserContext(), sessionID(c))
	if errors.Is(err, selection.ErrNoSelection) {
		return fiber.NewError(fiber.StatusNotFound, "no region selected")
	}
	if err != nil {
		return err
	}
	region, err := domain.LookupRegion(sel.Region)
	if err != nil {
		return err
	}
	return c.JSON(selectionResponse{Region: region, UpdatedAt: sel.UpdatedAt})
}

func (h *handlers) putSelection(c *fiber.Ctx) error {
	var req selectionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	region, err := domain.LookupRegion(req.Region)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sel := selection.Selection{Region: region.Name, UpdatedAt: domain.Now()}
	if err := h.selections.Save(c.UserContext(), sessionID(c), sel); err != nil {
		return err
	}
	h.logger.Debug("region selected", "region", region.Name)
	return c.JSON(selectionResponse{Region: region, UpdatedAt: sel.UpdatedAt})
}
