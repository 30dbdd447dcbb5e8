package domain

import (
	"encoding/json"
	"strings"
)

// NoPrecipitation is the RN1 value the provider sends instead of 0.
const NoPrecipitation = "강수없음"

var precipitationTypes = map[string]string{
	"0": "강수없음",
	"1": "비",
	"2": "비/눈",
	"3": "눈",
	"4": "소나기",
	"5": "빗방울",
	"6": "빗방울눈날림",
	"7": "눈날림",
}

var skyConditions = map[string]string{
	"1": "맑음",
	"3": "구름많음",
	"4": "흐림",
}

// PrecipitationTypeLabel maps a PTY code to its label, or "" when unmapped.
func PrecipitationTypeLabel(code string) string {
	return precipitationTypes[code]
}

// SkyConditionLabel maps a SKY code to its label, or "" when unmapped.
func SkyConditionLabel(code string) string {
	return skyConditions[code]
}

// ForecastPoint is one chart point of a forecast series.
//
// Precipitation points carry the precipitation type as Condition, temperature
// points carry the sky condition and humidity, and every other category is a
// bare (clock, value) pair.
type ForecastPoint struct {
	Category    string
	Clock       string
	Condition   string
	Value       float64
	Humidity    float64
	HasHumidity bool
}

// Label returns the x-axis label: [clock, condition] for joined categories and
// [clock] otherwise.
func (p ForecastPoint) Label() []string {
	if joinedCategory(p.Category) {
		return []string{p.Clock, p.Condition}
	}
	return []string{p.Clock}
}

// MarshalJSON emits the chart shape for the point's category.
func (p ForecastPoint) MarshalJSON() ([]byte, error) {
	switch p.Category {
	case CategoryTemperature:
		humidity := json.RawMessage("null")
		if p.HasHumidity {
			humidity = numberJSON(p.Humidity)
		}
		return json.Marshal(struct {
			Time        []string        `json:"time"`
			Temperature json.RawMessage `json:"temperature"`
			Humidity    json.RawMessage `json:"humidity"`
		}{p.Label(), numberJSON(p.Value), humidity})
	case CategoryPrecipitation:
		return json.Marshal(struct {
			Time  []string        `json:"time"`
			Value json.RawMessage `json:"value"`
		}{p.Label(), numberJSON(p.Value)})
	default:
		return json.Marshal(struct {
			Time  string          `json:"time"`
			Value json.RawMessage `json:"value"`
		}{p.Clock, numberJSON(p.Value)})
	}
}

func joinedCategory(category string) bool {
	return category == CategoryTemperature || category == CategoryPrecipitation
}

// TimeIndex is a per-category lookup of forecast rows keyed by fcstTime.
// A later row with the same (category, time) replaces an earlier one.
type TimeIndex map[string]map[string]ForecastRecord

// NewTimeIndex builds the join index once for a window of records.
func NewTimeIndex(records []ForecastRecord) TimeIndex {
	idx := make(TimeIndex)
	for _, rec := range records {
		byTime, ok := idx[rec.Category]
		if !ok {
			byTime = make(map[string]ForecastRecord)
			idx[rec.Category] = byTime
		}
		byTime[rec.Time] = rec
	}
	return idx
}

// Lookup returns the row of the given category at time.
func (idx TimeIndex) Lookup(category, time string) (ForecastRecord, bool) {
	rec, ok := idx[category][time]
	return rec, ok
}

// ResolveForecast builds the series for category from records that have
// already been windowed. One point is produced per row of the category, in
// input order.
func ResolveForecast(records []ForecastRecord, category string) []ForecastPoint {
	idx := NewTimeIndex(records)
	points := []ForecastPoint{}
	for _, rec := range records {
		if rec.Category != category {
			continue
		}
		p := ForecastPoint{Category: category, Clock: clockLabel(rec.Time)}
		switch category {
		case CategoryPrecipitation:
			if pty, ok := idx.Lookup(CategoryPrecipType, rec.Time); ok {
				p.Condition = PrecipitationTypeLabel(pty.Value)
			}
			p.Value = precipitationAmount(rec.Value)
		case CategoryTemperature:
			if sky, ok := idx.Lookup(CategorySky, rec.Time); ok {
				p.Condition = SkyConditionLabel(sky.Value)
			}
			if reh, ok := idx.Lookup(CategoryHumidity, rec.Time); ok {
				p.Humidity = ParseFloatPrefix(reh.Value)
				p.HasHumidity = true
			}
			p.Value = ParseFloatPrefix(rec.Value)
		default:
			p.Value = ParseFloatPrefix(rec.Value)
		}
		points = append(points, p)
	}
	return points
}

// ForecastCategories returns the categories present in records, first-seen order.
func ForecastCategories(records []ForecastRecord) []string {
	return uniqueInOrder(records, func(r ForecastRecord) string { return r.Category })
}

func precipitationAmount(value string) float64 {
	if value == NoPrecipitation {
		return 0
	}
	return ParseFloatPrefix(value)
}

// clockLabel turns "HHMM" into "HH:MM".
func clockLabel(hhmm string) string {
	var b strings.Builder
	b.WriteString(slice(hhmm, 0, 2))
	b.WriteByte(':')
	b.WriteString(slice(hhmm, 2, 4))
	return b.String()
}
