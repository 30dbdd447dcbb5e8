// Command validate checks the region dataset tree served by the dashboard:
// directory layout, file parsing, required headers, value shapes and that the
// consumption charts build from every region that ships them.
//
// Usage:
//
//	go run ./cmd/validate -data-dir data
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/couchcryptid/tourism-dashboard-service/internal/dataset"
	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
	"github.com/couchcryptid/tourism-dashboard-service/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// loadedFile is one dataset file that parsed successfully.
type loadedFile struct {
	region   string
	category string
	name     string
	table    *dataset.Table
}

func (f loadedFile) String() string {
	return filepath.Join(f.region, f.category, f.name)
}

func main() {
	dataDir := flag.String("data-dir", "data", "dataset root: {region}/{category}/{file}")
	flag.Parse()

	os.Exit(run(*dataDir))
}

func run(dataDir string) int {
	fmt.Println("=== Dashboard Dataset Validation ===")
	fmt.Println()

	store := dataset.NewStore(dataDir, nil, 0, observability.DiscardLogger())

	layout, files := validateLayout(dataDir, store)
	phases := []*phase{
		layout,
		validateSchema(files),
		validateValues(files),
		validateSeries(files),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Files: %d parsed, %d rows\n", len(files), countRows(files))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

func countRows(files []loadedFile) int {
	n := 0
	for _, f := range files {
		n += len(f.table.Rows)
	}
	return n
}

// ── Phase 1: Layout ──
// Every top-level directory must be a known district and every file must parse.

func validateLayout(root string, store *dataset.Store) (*phase, []loadedFile) {
	p := &phase{name: "Phase 1: Layout (regions, formats)"}

	entries, err := os.ReadDir(root)
	if err != nil {
		p.errorf("read data dir: %v", err)
		return p, nil
	}

	var files []loadedFile
	for _, regionDir := range entries {
		if !regionDir.IsDir() {
			continue
		}
		region, err := domain.LookupRegion(regionDir.Name())
		if err != nil {
			p.errorf("%s: not a known district", regionDir.Name())
			continue
		}

		categories, err := os.ReadDir(filepath.Join(root, regionDir.Name()))
		if err != nil {
			p.errorf("%s: %v", regionDir.Name(), err)
			continue
		}
		for _, cat := range categories {
			if !cat.IsDir() {
				continue
			}
			list, err := store.List(region.Name, cat.Name())
			if err != nil {
				p.errorf("%s/%s: %v", region.Name, cat.Name(), err)
				continue
			}
			if len(list) == 0 {
				p.errorf("%s/%s: no CSV or XLSX files", region.Name, cat.Name())
			}
			for _, info := range list {
				t, err := store.Read(region.Name, cat.Name(), info.Name)
				if err != nil {
					p.errorf("%s/%s/%s: %v", region.Name, cat.Name(), info.Name, err)
					continue
				}
				files = append(files, loadedFile{region: region.Name, category: cat.Name(), name: info.Name, table: t})
			}
		}
	}

	sort.Slice(files, func(i, j int) bool { return files[i].String() < files[j].String() })
	return p, files
}

// ── Phase 2: Schema ──
// Well-known files carry the columns the chart builders read.

func validateSchema(files []loadedFile) *phase {
	p := &phase{name: "Phase 2: Schema (required headers)"}

	for _, f := range files {
		if err := dataset.CheckColumns(f.name, f.table); err != nil {
			p.errorf("%s: %v", f, err)
		}
		if len(f.table.Rows) == 0 {
			p.errorf("%s: no data rows", f)
		}
	}
	return p
}

// ── Phase 3: Values ──
// Ratio columns must be numeric where the row is not a placeholder.

func validateValues(files []loadedFile) *phase {
	p := &phase{name: "Phase 3: Values (numeric ratios)"}

	for _, f := range files {
		switch f.name {
		case dataset.FileConsumptionByAge:
			checkAgeRows(p, f)
		case dataset.FileForeignConsumption:
			checkForeignRows(p, f)
		}
	}
	return p
}

func checkAgeRows(p *phase, f loadedFile) {
	for i, row := range f.table.Rows {
		age := row[domain.ColumnConsumerAge]
		if age == "" || age == "_" {
			continue
		}
		if math.IsNaN(domain.ParseIntPrefix(age)) {
			p.errorf("%s row %d: age %q has no leading number", f, i+2, age)
		}
		for _, g := range []domain.Gender{domain.GenderMale, domain.GenderFemale} {
			col := domain.RatioColumn(g)
			if v := domain.ParseFloatPrefix(row[col]); math.IsNaN(v) || v < 0 || v > 100 {
				p.errorf("%s row %d: %s=%q is not a percentage", f, i+2, col, row[col])
			}
		}
	}
}

func checkForeignRows(p *phase, f loadedFile) {
	for i, row := range f.table.Rows {
		if row[domain.ColumnCountry] == "" {
			p.errorf("%s row %d: missing %s", f, i+2, domain.ColumnCountry)
		}
		if v := domain.ParseFloatPrefix(row[domain.ColumnConsumptionRate]); math.IsNaN(v) {
			p.errorf("%s row %d: %s=%q is not numeric", f, i+2, domain.ColumnConsumptionRate, row[domain.ColumnConsumptionRate])
		}
	}
}

// ── Phase 4: Series ──
// The consumption charts build to non-empty, finite series.

func validateSeries(files []loadedFile) *phase {
	p := &phase{name: "Phase 4: Series (chart builds)"}

	for _, f := range files {
		var s domain.CategorySeries
		switch f.name {
		case dataset.FileConsumptionByAge:
			s = domain.BuildConsumptionByAge(f.table.Rows, domain.GenderAll)
		case dataset.FileForeignConsumption:
			s = domain.BuildForeignConsumption(f.table.Rows).Points
		default:
			continue
		}
		if len(s) == 0 {
			p.errorf("%s: series is empty", f)
			continue
		}
		for _, pt := range s {
			if math.IsNaN(pt.Value) || math.IsInf(pt.Value, 0) {
				p.errorf("%s: point %q has no value", f, pt.Label)
			}
		}
	}
	return p
}
