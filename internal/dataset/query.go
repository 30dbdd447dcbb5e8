package dataset

import (
	"encoding/json"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
)

// DefaultLimit is the page size when none is given.
const DefaultLimit = 1000

// PageQuery selects a window of rows from a table.
type PageQuery struct {
	Filter  string   // "column=value"; anything without '=' is ignored
	Columns []string // keep only these columns, when non-empty
	Offset  int
	Limit   int
}

// PageMeta describes a returned page.
type PageMeta struct {
	TotalCount      int      `json:"total_count"`
	ReturnedCount   int      `json:"returned_count"`
	Columns         []string `json:"columns"`
	Offset          int      `json:"offset"`
	Limit           int      `json:"limit"`
	HasMore         bool     `json:"has_more"`
	FilterApplied   bool     `json:"filter_applied"`
	ColumnsSelected bool     `json:"columns_selected"`
}

// Page is a filtered, projected and paginated view of a table.
type Page struct {
	Data     []domain.CSVRow `json:"data"`
	Metadata PageMeta        `json:"metadata"`
}

// Paginate applies q to t. Filtering runs before projection, and paging
// runs last.
func Paginate(t *Table, q PageQuery) Page {
	if q.Limit <= 0 {
		q.Limit = DefaultLimit
	}
	if q.Offset < 0 {
		q.Offset = 0
	}

	rows := t.Rows
	if q.Filter != "" {
		rows = applyFilter(rows, q.Filter)
	}

	columns := t.Columns
	if len(q.Columns) > 0 {
		rows = selectColumns(rows, q.Columns)
		columns = q.Columns
	}

	total := len(rows)
	start := min(q.Offset, total)
	end := total
	if q.Limit < total-start {
		end = start + q.Limit
	}
	data := make([]domain.CSVRow, end-start)
	copy(data, rows[start:end])

	return Page{
		Data: data,
		Metadata: PageMeta{
			TotalCount:      total,
			ReturnedCount:   len(data),
			Columns:         columns,
			Offset:          q.Offset,
			Limit:           q.Limit,
			HasMore:         end < total,
			FilterApplied:   q.Filter != "",
			ColumnsSelected: len(q.Columns) > 0,
		},
	}
}

func applyFilter(rows []domain.CSVRow, filter string) []domain.CSVRow {
	column, value, ok := strings.Cut(filter, "=")
	if !ok {
		return rows
	}
	column, value = strings.TrimSpace(column), strings.TrimSpace(value)

	out := make([]domain.CSVRow, 0, len(rows))
	for _, row := range rows {
		if v, ok := row[column]; ok && v == value {
			out = append(out, row)
		}
	}
	return out
}

func selectColumns(rows []domain.CSVRow, columns []string) []domain.CSVRow {
	out := make([]domain.CSVRow, len(rows))
	for i, row := range rows {
		projected := make(domain.CSVRow, len(columns))
		for _, col := range columns {
			if v, ok := row[col]; ok {
				projected[col] = v
			}
		}
		out[i] = projected
	}
	return out
}

// Aggregate functions accepted in "column:function".
const (
	AggSum = "sum"
	AggAvg = "avg"
	AggMin = "min"
	AggMax = "max"
)

// unknownGroup labels rows that lack the group-by column.
const unknownGroup = "Unknown"

// dateColumns are probed in order to find the column a date range applies to.
var dateColumns = []string{"date", "created_at", "timestamp", "updated_at"}

// ProcessQuery groups, aggregates and date-filters a table.
type ProcessQuery struct {
	GroupBy   string
	Aggregate string // "column:function"
	DateRange string // "start:end", compared as strings
}

// Group is one group-by bucket. Items is set for plain grouping; Metric and
// Value are set when an aggregate was requested.
type Group struct {
	Column string
	Key    string
	Count  int
	Items  []domain.CSVRow
	Metric string
	Value  float64
}

// MarshalJSON writes the group as {column: key, "count": n, ...} with either
// "items" or "{aggcolumn}_{function}".
func (g Group) MarshalJSON() ([]byte, error) {
	m := map[string]any{
		g.Column: g.Key,
		"count":  g.Count,
	}
	if g.Metric != "" {
		if math.IsNaN(g.Value) || math.IsInf(g.Value, 0) {
			m[g.Metric] = nil
		} else {
			m[g.Metric] = g.Value
		}
	} else {
		m["items"] = g.Items
	}
	return json.Marshal(m)
}

// ProcessMeta describes a processed result.
type ProcessMeta struct {
	TotalCount    int      `json:"total_count"`
	ReturnedCount int      `json:"returned_count"`
	GroupBy       string   `json:"group_by,omitempty"`
	Aggregate     string   `json:"aggregate,omitempty"`
	DateRange     string   `json:"date_range,omitempty"`
	OriginalCount *int     `json:"original_count,omitempty"`
	Columns       []string `json:"columns"`
}

// Processed holds either grouped buckets or the (date-filtered) rows when no
// grouping was requested.
type Processed struct {
	Groups   []Group         `json:"groups,omitempty"`
	Rows     []domain.CSVRow `json:"rows,omitempty"`
	Metadata ProcessMeta     `json:"metadata"`
}

// Process applies q to t.
func Process(t *Table, q ProcessQuery) Processed {
	meta := ProcessMeta{GroupBy: q.GroupBy, Aggregate: q.Aggregate, DateRange: q.DateRange}

	rows := t.Rows
	if q.DateRange != "" {
		rows = applyDateRange(rows, t.Columns, q.DateRange)
	}

	if q.GroupBy == "" {
		n := len(rows)
		meta.TotalCount, meta.ReturnedCount, meta.OriginalCount = n, n, &n
		meta.Columns = t.Columns
		return Processed{Rows: rows, Metadata: meta}
	}

	var groups []Group
	column, fn, ok := strings.Cut(q.Aggregate, ":")
	if q.Aggregate != "" && ok {
		groups = aggregate(rows, q.GroupBy, column, fn)
	} else {
		groups = group(rows, q.GroupBy)
	}

	meta.TotalCount, meta.ReturnedCount = len(groups), len(groups)
	meta.Columns = []string{q.GroupBy, "count"}
	if len(groups) > 0 {
		if groups[0].Metric != "" {
			meta.Columns = append(meta.Columns, groups[0].Metric)
		} else {
			meta.Columns = append(meta.Columns, "items")
		}
	}
	return Processed{Groups: groups, Metadata: meta}
}

func applyDateRange(rows []domain.CSVRow, columns []string, dateRange string) []domain.CSVRow {
	start, end, ok := strings.Cut(dateRange, ":")
	if !ok {
		return rows
	}
	col := ""
	for _, candidate := range dateColumns {
		if slices.Contains(columns, candidate) {
			col = candidate
			break
		}
	}
	if col == "" {
		return rows
	}

	out := make([]domain.CSVRow, 0, len(rows))
	for _, row := range rows {
		if d := row[col]; start <= d && d <= end {
			out = append(out, row)
		}
	}
	return out
}

// groupOrder buckets rows by the groupBy column, in first-seen key order.
func groupOrder(rows []domain.CSVRow, groupBy string) ([]string, map[string][]domain.CSVRow) {
	var keys []string
	buckets := make(map[string][]domain.CSVRow)
	for _, row := range rows {
		key, ok := row[groupBy]
		if !ok {
			key = unknownGroup
		}
		if _, seen := buckets[key]; !seen {
			keys = append(keys, key)
		}
		buckets[key] = append(buckets[key], row)
	}
	return keys, buckets
}

func group(rows []domain.CSVRow, groupBy string) []Group {
	keys, buckets := groupOrder(rows, groupBy)
	out := make([]Group, 0, len(keys))
	for _, key := range keys {
		items := buckets[key]
		out = append(out, Group{Column: groupBy, Key: key, Count: len(items), Items: items})
	}
	return out
}

// aggregate reduces the numeric values of column per group. Non-numeric cells
// are skipped, groups with no numeric cells are dropped and unknown functions
// fall back to sum.
func aggregate(rows []domain.CSVRow, groupBy, column, fn string) []Group {
	switch fn {
	case AggSum, AggAvg, AggMin, AggMax:
	default:
		fn = AggSum
	}

	keys, buckets := groupOrder(rows, groupBy)
	out := make([]Group, 0, len(keys))
	for _, key := range keys {
		var values []float64
		for _, row := range buckets[key] {
			v, err := strconv.ParseFloat(strings.TrimSpace(row[column]), 64)
			if err != nil {
				continue
			}
			values = append(values, v)
		}
		if len(values) == 0 {
			continue
		}
		out = append(out, Group{
			Column: groupBy,
			Key:    key,
			Count:  len(values),
			Metric: column + "_" + fn,
			Value:  reduce(values, fn),
		})
	}
	return out
}

func reduce(values []float64, fn string) float64 {
	switch fn {
	case AggAvg:
		return sum(values) / float64(len(values))
	case AggMin:
		m := values[0]
		for _, v := range values[1:] {
			m = math.Min(m, v)
		}
		return m
	case AggMax:
		m := values[0]
		for _, v := range values[1:] {
			m = math.Max(m, v)
		}
		return m
	default:
		return sum(values)
	}
}

func sum(values []float64) float64 {
	total := 0.0
	for _, v := range values {
		total += v
	}
	return total
}
