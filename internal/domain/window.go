package domain

import (
	"fmt"
	"math"
	"time"
)

// WindowHours is how far past the current hour forecast rows are kept.
const WindowHours = 6

// DefaultLocation is the provider calendar used when none is configured.
var DefaultLocation = mustLoadLocation("Asia/Seoul")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}

// Window is a forecast window anchored to the integer hour of now.
type Window struct {
	Date      string
	StartHour int
	EndHour   int
}

// NewWindow anchors a window at now, expressed in the provider location loc.
// A nil loc uses DefaultLocation.
func NewWindow(now time.Time, loc *time.Location) Window {
	if loc == nil {
		loc = DefaultLocation
	}
	local := now.In(loc)
	return Window{
		Date:      local.Format("20060102"),
		StartHour: local.Hour(),
		EndHour:   local.Hour() + WindowHours,
	}
}

// Contains reports whether rec falls on the window's date and within its hours.
// The hour comes from the first two characters of rec.Time; a row whose hour
// does not parse is outside every window.
func (w Window) Contains(rec ForecastRecord) bool {
	if rec.Date != w.Date {
		return false
	}
	hour := ParseIntPrefix(slice(rec.Time, 0, 2))
	if math.IsNaN(hour) {
		return false
	}
	return hour >= float64(w.StartHour) && hour <= float64(w.EndHour)
}

// Filter keeps the records inside the window, preserving order.
func (w Window) Filter(records []ForecastRecord) []ForecastRecord {
	out := make([]ForecastRecord, 0, len(records))
	for _, rec := range records {
		if w.Contains(rec) {
			out = append(out, rec)
		}
	}
	return out
}

// FilterWindow keeps the forecast rows for today within [hour, hour+6] of the
// package clock, in the provider location.
func FilterWindow(records []ForecastRecord, loc *time.Location) []ForecastRecord {
	return NewWindow(clock.Now(), loc).Filter(records)
}

// ForecastBase returns the base_date and base_time for an ultra-short-term
// forecast request issued at now: one hour earlier, at half past.
func ForecastBase(now time.Time, loc *time.Location) (baseDate, baseTime string) {
	if loc == nil {
		loc = DefaultLocation
	}
	t := now.In(loc).Add(-time.Hour)
	return t.Format("20060102"), fmt.Sprintf("%02d30", t.Hour())
}
