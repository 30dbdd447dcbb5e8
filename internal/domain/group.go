package domain

// GroupVisitors filters records to the target region and sums counts per
// visitor type. Region matching is exact. The output keeps the order in which
// each visitor type first appears; no match yields an empty series.
func GroupVisitors(records []VisitorRecord, region string) CategorySeries {
	index := make(map[string]int)
	series := CategorySeries{}
	for _, rec := range records {
		if rec.Region != region {
			continue
		}
		i, ok := index[rec.VisitorType]
		if !ok {
			i = len(series)
			index[rec.VisitorType] = i
			series = append(series, Point{Label: rec.VisitorType})
		}
		series[i].Value += float64(rec.Count)
	}
	return series
}

// VisitorRegions returns the distinct region names in first-seen order.
func VisitorRegions(records []VisitorRecord) []string {
	return uniqueInOrder(records, func(r VisitorRecord) string { return r.Region })
}

func uniqueInOrder[T any](items []T, key func(T) string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	for _, item := range items {
		k := key(item)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
