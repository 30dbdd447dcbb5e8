// Command seriesgen builds a dashboard chart series from a saved provider
// response or a local dataset file, using the same transforms as the service.
// It is handy for producing test fixtures and checking upstream dumps offline.
//
// Usage:
//
//	go run ./cmd/seriesgen -kind visitors -in testdata/visitors.json -region 창원시
//	go run ./cmd/seriesgen -kind forecast -in forecast.json -category T1H -now 2025-03-01T14:10:00+09:00
//	go run ./cmd/seriesgen -kind consumption -in data/창원시/관광소비/성연령별.csv -gender 남성 -xlsx out.xlsx
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"

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
	category := flag.String("category", domain.CategoryTemperature, "forecast category: T1H, RN1, SKY, REH")
	gender := flag.String("gender", string(domain.GenderAll), "consumption gender: 전체, 남성, 여성")
	attraction := flag.String("attraction", "", "attraction to chart (concentration); defaults to the first")
	now := flag.String("now", "", "RFC3339 instant anchoring the forecast window; defaults to the current time")
	tz := flag.String("tz", "Asia/Seoul", "provider time zone")
	out := flag.String("out", "", "write JSON here instead of stdout")
	xlsx := flag.String("xlsx", "", "also export label/value points as an XLSX workbook")
	flag.Parse()

	if *kind == "" || *in == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -kind, -in")
	}

	loc, err := time.LoadLocation(*tz)
	if err != nil {
		return fmt.Errorf("invalid -tz: %w", err)
	}
	if *now != "" {
		at, err := time.Parse(time.RFC3339, *now)
		if err != nil {
			return fmt.Errorf("invalid -now: %w", err)
		}
		// Fix the clock so repeated runs produce identical output.
		domain.SetClock(clockwork.NewFakeClockAt(at))
		defer domain.SetClock(nil)
	}

	req := export.Request{
		Kind:       *kind,
		Path:       *in,
		Category:   strings.ToUpper(*category),
		Gender:     domain.Gender(*gender),
		Attraction: *attraction,
		Now:        domain.Now(),
		Location:   loc,
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
	log.Printf("%s: %d points", result.Kind, len(result.Points))

	if err := writeJSON(*out, result.Value); err != nil {
		return fmt.Errorf("writing series: %w", err)
	}
	if *xlsx != "" {
		if err := export.WriteXLSX(*xlsx, result.Kind, result.Points); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
		log.Printf("wrote workbook: %s", *xlsx)
	}
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
