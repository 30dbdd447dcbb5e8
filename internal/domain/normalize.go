package domain

// NormalizeVisitors converts raw visitor rows into typed records. Rows are
// never dropped; unusable counts become 0 and are tagged in Issues.
func NormalizeVisitors(rows []RawVisitorRow) []VisitorRecord {
	out := make([]VisitorRecord, 0, len(rows))
	for _, row := range rows {
		count, issue := parseCount("touNum", string(row.TouNum))
		rec := VisitorRecord{
			Region:      string(row.SignguNm),
			VisitorType: string(row.TouDivNm),
			Count:       count,
			Date:        string(row.BaseYmd),
		}
		rec.Issues = appendIssue(rec.Issues, issue)
		out = append(out, rec)
	}
	return out
}

// NormalizeForecasts converts raw forecast items into records. Date and time
// shape problems are tagged but the row is kept; the window filter decides
// whether it survives.
func NormalizeForecasts(items []RawForecastItem) []ForecastRecord {
	out := make([]ForecastRecord, 0, len(items))
	for _, item := range items {
		rec := ForecastRecord{
			Date:     string(item.FcstDate),
			Time:     string(item.FcstTime),
			Category: string(item.Category),
			Value:    string(item.FcstValue),
		}
		if !isDigits(rec.Date, 8) {
			rec.Issues = append(rec.Issues, FieldIssue{Field: "fcstDate", Status: FieldMalformed, Raw: rec.Date, Reason: "expected YYYYMMDD"})
		}
		if !isDigits(rec.Time, 4) {
			rec.Issues = append(rec.Issues, FieldIssue{Field: "fcstTime", Status: FieldMalformed, Raw: rec.Time, Reason: "expected HHMM"})
		}
		out = append(out, rec)
	}
	return out
}

// NormalizeConcentration converts raw concentration rows into records. An
// unparseable rate is kept as NaN.
func NormalizeConcentration(rows []RawConcentrationRow) []ConcentrationRecord {
	out := make([]ConcentrationRecord, 0, len(rows))
	for _, row := range rows {
		rec := ConcentrationRecord{
			Attraction: string(row.TAtsNm),
			Date:       string(row.BaseYmd),
			RateText:   string(row.CnctrRate),
		}
		rate, issue := parseRate("cnctrRate", rec.RateText)
		rec.Rate = rate
		rec.Issues = appendIssue(rec.Issues, issue)
		out = append(out, rec)
	}
	return out
}

// OK reports whether every field normalized cleanly.
func (r VisitorRecord) OK() bool { return len(r.Issues) == 0 }

// OK reports whether every field normalized cleanly.
func (r ForecastRecord) OK() bool { return len(r.Issues) == 0 }

// OK reports whether every field normalized cleanly.
func (r ConcentrationRecord) OK() bool { return len(r.Issues) == 0 }

// Checked is implemented by normalized records that carry parse issues.
type Checked interface {
	OK() bool
}

// WithoutIssues returns the records that normalized cleanly, preserving order.
// Callers that prefer rejecting malformed rows over defaults use it after
// normalizing.
func WithoutIssues[T Checked](records []T) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if r.OK() {
			out = append(out, r)
		}
	}
	return out
}

// CountIssues returns how many records carry at least one parse issue.
func CountIssues[T Checked](records []T) int {
	n := 0
	for _, r := range records {
		if !r.OK() {
			n++
		}
	}
	return n
}
