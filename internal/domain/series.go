package domain

import (
	"math"
	"sort"
	"time"
)

// Build maps rows to points using the given label and value extractors.
func Build[T any](rows []T, label func(T) string, value func(T) float64) CategorySeries {
	out := make(CategorySeries, 0, len(rows))
	for _, row := range rows {
		out = append(out, Point{Label: label(row), Value: value(row)})
	}
	return out
}

// ConcentrationSeries is the chart for one attraction's predicted concentration.
type ConcentrationSeries struct {
	Attractions []string       `json:"attractions"`
	Selected    string         `json:"selected"`
	Points      CategorySeries `json:"points"`
	Bounds      AxisBounds     `json:"bounds"`
}

// AxisBounds is the y-axis range for a percentage chart.
type AxisBounds struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Attractions returns the distinct attraction names in first-seen order.
func Attractions(records []ConcentrationRecord) []string {
	return uniqueInOrder(records, func(r ConcentrationRecord) string { return r.Attraction })
}

// BuildConcentration returns the series for the selected attraction. An empty
// selection falls back to the attraction of the first record. Rows with an
// empty rate or date are skipped, and the rest are sorted by date key.
func BuildConcentration(records []ConcentrationRecord, selected string) ConcentrationSeries {
	if selected == "" && len(records) > 0 {
		selected = records[0].Attraction
	}

	matched := make([]ConcentrationRecord, 0, len(records))
	for _, rec := range records {
		if rec.Attraction == selected && rec.RateText != "" && rec.Date != "" {
			matched = append(matched, rec)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date < matched[j].Date
	})

	points := Build(matched,
		func(r ConcentrationRecord) string { return slice(r.Date, 4, 6) + "/" + slice(r.Date, 6, 8) },
		func(r ConcentrationRecord) float64 { return r.Rate },
	)
	return ConcentrationSeries{
		Attractions: Attractions(records),
		Selected:    selected,
		Points:      points,
		Bounds:      PercentBounds(points),
	}
}

// PercentBounds pads the finite value range by 5 and clamps it to [0, 100].
// An empty series yields the full [0, 100] range.
func PercentBounds(s CategorySeries) AxisBounds {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, p := range s {
		if !isFinite(p.Value) {
			continue
		}
		lo = math.Min(lo, p.Value)
		hi = math.Max(hi, p.Value)
	}
	if math.IsInf(lo, 1) {
		return AxisBounds{Min: 0, Max: 100}
	}
	return AxisBounds{
		Min: math.Max(0, math.Floor(lo)-5),
		Max: math.Min(100, math.Ceil(hi)+5),
	}
}

// Gender selects a consumption column.
type Gender string

// Gender selectors. GenderAll sums the male and female columns.
const (
	GenderAll    Gender = "전체"
	GenderMale   Gender = "남성"
	GenderFemale Gender = "여성"
)

// Consumption dataset column names.
const (
	ColumnConsumerAge     = "소비자 연령"
	ColumnCountry         = "국가"
	ColumnConsumptionRate = "소비 비율(%)"
	ageBlankSentinel      = "_"
)

// RatioColumn returns the column holding the ratio for g.
func RatioColumn(g Gender) string {
	return "비율(" + string(g) + ")"
}

// Valid reports whether g is a known selector.
func (g Gender) Valid() bool {
	switch g {
	case GenderAll, GenderMale, GenderFemale:
		return true
	}
	return false
}

// BuildConsumptionByAge pivots age/gender consumption rows into a series of
// (age, ratio). Blank and placeholder ages are dropped, the rest sort by their
// numeric age, and the value column follows g.
func BuildConsumptionByAge(rows []CSVRow, g Gender) CategorySeries {
	kept := make([]CSVRow, 0, len(rows))
	for _, row := range rows {
		age := row[ColumnConsumerAge]
		if age == "" || age == ageBlankSentinel {
			continue
		}
		kept = append(kept, row)
	}
	sort.SliceStable(kept, func(i, j int) bool {
		return ParseIntPrefix(kept[i][ColumnConsumerAge]) < ParseIntPrefix(kept[j][ColumnConsumerAge])
	})

	return Build(kept,
		func(r CSVRow) string { return r[ColumnConsumerAge] },
		func(r CSVRow) float64 { return consumptionRatio(r, g) },
	)
}

func consumptionRatio(row CSVRow, g Gender) float64 {
	if g == GenderAll {
		return orZero(ParseFloatPrefix(row[RatioColumn(GenderMale)])) +
			orZero(ParseFloatPrefix(row[RatioColumn(GenderFemale)]))
	}
	return orZero(ParseFloatPrefix(row[RatioColumn(g)]))
}

// ForeignConsumptionLimit caps the foreign consumption ranking.
const ForeignConsumptionLimit = 10

// ForeignConsumption is the top-countries chart with its padded axis maximum.
type ForeignConsumption struct {
	Points  CategorySeries `json:"points"`
	AxisMax float64        `json:"axis_max"`
}

// BuildForeignConsumption keeps rows with a country and a numeric ratio, in
// file order, up to ForeignConsumptionLimit.
func BuildForeignConsumption(rows []CSVRow) ForeignConsumption {
	points := CategorySeries{}
	for _, row := range rows {
		country := trimSpace(row[ColumnCountry])
		pct := ParseFloatPrefix(row[ColumnConsumptionRate])
		if country == "" || math.IsNaN(pct) {
			continue
		}
		points = append(points, Point{Label: country, Value: pct})
		if len(points) == ForeignConsumptionLimit {
			break
		}
	}

	// With no rows the max is 0, giving an axis of 5 rather than -Inf.
	maxValue := 0.0
	if len(points) > 0 {
		maxValue = math.Inf(-1)
		for _, p := range points {
			maxValue = math.Max(maxValue, p.Value)
		}
	}
	return ForeignConsumption{
		Points:  points,
		AxisMax: math.Ceil((maxValue+3)/5) * 5,
	}
}

// BuildVisitors normalizes and groups raw visitor rows for region.
func BuildVisitors(rows []RawVisitorRow, region string) CategorySeries {
	return GroupVisitors(NormalizeVisitors(rows), region)
}

// BuildForecast normalizes raw forecast items, keeps the window around now in
// loc, and resolves the series for category.
func BuildForecast(items []RawForecastItem, category string, now time.Time, loc *time.Location) []ForecastPoint {
	records := NewWindow(now, loc).Filter(NormalizeForecasts(items))
	return ResolveForecast(records, category)
}
