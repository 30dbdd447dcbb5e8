// Command chartpng renders a dashboard series to a PNG for offline inspection.
// Inputs are the same as cmd/seriesgen.
//
// Usage:
//
//	go run ./cmd/chartpng -kind foreign-consumption -in data/창원시/관광소비/외국인.csv -out foreign.png
//	go run ./cmd/chartpng -kind concentration -in concentration.json -style line -out concentration.png
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"

	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/export"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	kind := flag.String("kind", "", "series kind: "+strings.Join(export.Kinds, ", "))
	in := flag.String("in", "", "input file: provider JSON, or CSV/XLSX for consumption kinds")
	region := flag.String("region", "", "district name or slug (visitors)")
	category := flag.String("category", domain.CategoryTemperature, "forecast category")
	gender := flag.String("gender", string(domain.GenderAll), "consumption gender")
	attraction := flag.String("attraction", "", "attraction to chart (concentration)")
	out := flag.String("out", "chart.png", "output PNG path")
	style := flag.String("style", export.StyleBar, "chart style: bar or line")
	title := flag.String("title", "", "chart title; defaults to the kind")
	width := flag.Float64("width", 8, "width in inches")
	height := flag.Float64("height", 4, "height in inches")
	flag.Parse()

	if *kind == "" || *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -kind, -in")
	}

	req := export.Request{
		Kind:       *kind,
		Path:       *in,
		Category:   strings.ToUpper(*category),
		Gender:     domain.Gender(*gender),
		Attraction: *attraction,
		Now:        time.Now(),
		Location:   domain.DefaultLocation,
	}
	if *region != "" {
		r, err := domain.LookupRegion(*region)
		if err != nil {
			return err
		}
		req.Region = r.Name
	}

	result, err := export.Build(req)
	if err != nil {
		return fmt.Errorf("build %s: %w", *kind, err)
	}

	opts := export.ChartOptions{
		Title:  *title,
		Style:  *style,
		Width:  vg.Length(*width) * vg.Inch,
		Height: vg.Length(*height) * vg.Inch,
	}
	if err := export.SavePNG(*out, result, opts); err != nil {
		return err
	}
	log.Printf("wrote %s (%d points)", *out, len(result.Points))
	return nil
}
