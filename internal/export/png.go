package export

import (
	"errors"
	"fmt"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// Chart styles.
const (
	StyleBar  = "bar"
	StyleLine = "line"
)

// ChartOptions controls PNG rendering.
type ChartOptions struct {
	Title  string
	Style  string
	Width  vg.Length
	Height vg.Length
}

// SavePNG renders r.Points as a bar or line chart at path.
func SavePNG(path string, r Result, opts ChartOptions) error {
	if len(r.Points) == 0 {
		return errors.New("series is empty")
	}
	if opts.Width == 0 {
		opts.Width = 8 * vg.Inch
	}
	if opts.Height == 0 {
		opts.Height = 4 * vg.Inch
	}
	if opts.Title == "" {
		opts.Title = r.Kind
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.Add(plotter.NewGrid())
	p.NominalX(r.Points.Labels()...)

	switch opts.Style {
	case StyleLine:
		xys := make(plotter.XYs, len(r.Points))
		for i, pt := range r.Points {
			xys[i] = plotter.XY{X: float64(i), Y: finite(pt.Value)}
		}
		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("line: %w", err)
		}
		p.Add(line)
	default:
		values := make(plotter.Values, len(r.Points))
		for i, pt := range r.Points {
			values[i] = finite(pt.Value)
		}
		bars, err := plotter.NewBarChart(values, vg.Points(20))
		if err != nil {
			return fmt.Errorf("bar chart: %w", err)
		}
		bars.LineStyle.Width = vg.Length(0)
		p.Add(bars)
	}

	if err := p.Save(opts.Width, opts.Height, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
