// Package export builds chart series offline from saved provider responses and
// dataset files, and writes them as XLSX workbooks or PNG charts.
package export

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/couchcryptid/tourism-dashboard-service/internal/adapter/publicdata"
	"github.com/couchcryptid/tourism-dashboard-service/internal/dataset"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
)

// Series kinds.
const (
	KindVisitors           = "visitors"
	KindForecast           = "forecast"
	KindConcentration      = "concentration"
	KindConsumption        = "consumption"
	KindForeignConsumption = "foreign-consumption"
)

// Kinds lists every buildable series kind.
var Kinds = []string{KindVisitors, KindForecast, KindConcentration, KindConsumption, KindForeignConsumption}

// ErrUnknownKind is returned for a kind not in Kinds.
var ErrUnknownKind = errors.New("unknown series kind")

// Request describes one offline build. Path is a provider JSON response (or a
// plain JSON array of items) for the API kinds, and a CSV or XLSX file for the
// consumption kinds.
type Request struct {
	Kind       string
	Path       string
	Region     string
	Category   string
	Gender     domain.Gender
	Attraction string
	Now        time.Time
	Location   *time.Location
}

// Result holds the series in its API shape and flattened to label/value points
// for tabular and image output.
type Result struct {
	Kind   string
	Value  any
	Points domain.CategorySeries
}

// Build loads req.Path and builds the requested series.
func Build(req Request) (Result, error) {
	switch req.Kind {
	case KindVisitors:
		rows, err := loadItems[domain.RawVisitorRow](req.Path)
		if err != nil {
			return Result{}, err
		}
		s := domain.BuildVisitors(rows, req.Region)
		return Result{Kind: req.Kind, Value: s, Points: s}, nil

	case KindForecast:
		items, err := loadItems[domain.RawForecastItem](req.Path)
		if err != nil {
			return Result{}, err
		}
		points := domain.BuildForecast(items, req.Category, req.Now, req.Location)
		return Result{Kind: req.Kind, Value: points, Points: flattenForecast(points)}, nil

	case KindConcentration:
		rows, err := loadItems[domain.RawConcentrationRow](req.Path)
		if err != nil {
			return Result{}, err
		}
		s := domain.BuildConcentration(domain.NormalizeConcentration(rows), req.Attraction)
		return Result{Kind: req.Kind, Value: s, Points: s.Points}, nil

	case KindConsumption:
		t, err := loadTable(req.Path)
		if err != nil {
			return Result{}, err
		}
		g := req.Gender
		if g == "" {
			g = domain.GenderAll
		}
		if !g.Valid() {
			return Result{}, fmt.Errorf("invalid gender %q", g)
		}
		s := domain.BuildConsumptionByAge(t.Rows, g)
		return Result{Kind: req.Kind, Value: s, Points: s}, nil

	case KindForeignConsumption:
		t, err := loadTable(req.Path)
		if err != nil {
			return Result{}, err
		}
		fc := domain.BuildForeignConsumption(t.Rows)
		return Result{Kind: req.Kind, Value: fc, Points: fc.Points}, nil
	}
	return Result{}, fmt.Errorf("%w: %q", ErrUnknownKind, req.Kind)
}

// flattenForecast labels each point with its joined time label and keeps the
// primary value.
func flattenForecast(points []domain.ForecastPoint) domain.CategorySeries {
	out := make(domain.CategorySeries, 0, len(points))
	for _, p := range points {
		out = append(out, domain.Point{
			Label: strings.TrimSpace(strings.Join(p.Label(), " ")),
			Value: p.Value,
		})
	}
	return out
}

func loadItems[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var items []T
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		return items, nil
	}
	if err := publicdata.DecodeItems(trimmed, &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return items, nil
}

func loadTable(path string) (*dataset.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return dataset.ReadCSV(f)
	case ".xlsx":
		return dataset.ReadXLSX(f)
	}
	return nil, fmt.Errorf("%w: %s", dataset.ErrUnsupportedFormat, path)
}

// finite replaces NaN and infinities with 0 for renderers that reject them.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
