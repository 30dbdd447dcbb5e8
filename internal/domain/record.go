package domain

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Forecast categories returned by the ultra-short-term forecast service.
const (
	CategoryTemperature   = "T1H"
	CategoryPrecipitation = "RN1"
	CategoryPrecipType    = "PTY"
	CategorySky           = "SKY"
	CategoryHumidity      = "REH"
)

// Text is a string field that also accepts JSON numbers, since data.go.kr
// services are inconsistent about quoting numeric columns.
type Text string

// UnmarshalJSON accepts a JSON string, number, or null.
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Text(n.String())
	return nil
}

// RawVisitorRow is one item of locgoRegnVisitrDDList.
type RawVisitorRow struct {
	SignguCode Text `json:"signguCode"`
	SignguNm   Text `json:"signguNm"`
	DaywkDivCd Text `json:"daywkDivCd"`
	DaywkDivNm Text `json:"daywkDivNm"`
	TouDivCd   Text `json:"touDivCd"`
	TouDivNm   Text `json:"touDivNm"`
	TouNum     Text `json:"touNum"`
	BaseYmd    Text `json:"baseYmd"`
}

// RawForecastItem is one item of getUltraSrtFcst.
type RawForecastItem struct {
	BaseDate  Text `json:"baseDate"`
	BaseTime  Text `json:"baseTime"`
	Category  Text `json:"category"`
	FcstDate  Text `json:"fcstDate"`
	FcstTime  Text `json:"fcstTime"`
	FcstValue Text `json:"fcstValue"`
	NX        Text `json:"nx"`
	NY        Text `json:"ny"`
}

// RawConcentrationRow is one item of tatsCnctrRatedList.
type RawConcentrationRow struct {
	BaseYmd   Text `json:"baseYmd"`
	AreaCd    Text `json:"areaCd"`
	AreaNm    Text `json:"areaNm"`
	SignguCd  Text `json:"signguCd"`
	SignguNm  Text `json:"signguNm"`
	TAtsNm    Text `json:"tAtsNm"`
	CnctrRate Text `json:"cnctrRate"`
}

// CSVRow is a header-keyed row of a delimited dataset. Missing columns read as "".
type CSVRow map[string]string

// VisitorRecord is a normalized visitor count for one district and visitor type.
type VisitorRecord struct {
	Region      string       `json:"region"`
	VisitorType string       `json:"visitor_type"`
	Count       int64        `json:"count"`
	Date        string       `json:"date,omitempty"`
	Issues      []FieldIssue `json:"issues,omitempty"`
}

// ForecastRecord is a normalized forecast row. Value stays textual because
// its meaning depends on Category.
type ForecastRecord struct {
	Date     string       `json:"date"`
	Time     string       `json:"time"`
	Category string       `json:"category"`
	Value    string       `json:"value"`
	Issues   []FieldIssue `json:"issues,omitempty"`
}

// ConcentrationRecord is a normalized attraction concentration prediction.
// Rate is NaN when RateText does not parse.
type ConcentrationRecord struct {
	Attraction string       `json:"attraction"`
	Date       string       `json:"date"`
	RateText   string       `json:"rate_text"`
	Rate       float64      `json:"-"`
	Issues     []FieldIssue `json:"issues,omitempty"`
}

// Point is one (label, value) entry of a chart series.
type Point struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// MarshalJSON encodes NaN and infinities as null so unparseable values reach
// the chart as gaps.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Label string          `json:"label"`
		Value json.RawMessage `json:"value"`
	}{Label: p.Label, Value: numberJSON(p.Value)})
}

// CategorySeries is an ordered list of points.
type CategorySeries []Point

// Labels returns the series labels in order.
func (s CategorySeries) Labels() []string {
	out := make([]string, len(s))
	for i, p := range s {
		out[i] = p.Label
	}
	return out
}

// Values returns the series values in order.
func (s CategorySeries) Values() []float64 {
	out := make([]float64, len(s))
	for i, p := range s {
		out[i] = p.Value
	}
	return out
}

// Sum adds every finite value in the series.
func (s CategorySeries) Sum() float64 {
	var total float64
	for _, p := range s {
		if isFinite(p.Value) {
			total += p.Value
		}
	}
	return total
}

func numberJSON(v float64) json.RawMessage {
	if !isFinite(v) {
		return json.RawMessage("null")
	}
	return json.RawMessage(strconv.FormatFloat(v, 'f', -1, 64))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
