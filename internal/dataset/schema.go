package dataset

import (
	"fmt"
	"strings"

	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
)

// RequiredColumns lists the header columns the chart builders read from each
// well-known dataset file.
var RequiredColumns = map[string][]string{
	FileConsumptionByAge: {
		domain.ColumnConsumerAge,
		domain.RatioColumn(domain.GenderMale),
		domain.RatioColumn(domain.GenderFemale),
	},
	FileForeignConsumption: {
		domain.ColumnCountry,
		domain.ColumnConsumptionRate,
	},
}

// MissingColumns returns the required columns for file that t lacks. Files
// with no known schema never miss anything.
func MissingColumns(file string, t *Table) []string {
	var missing []string
	for _, col := range RequiredColumns[file] {
		found := false
		for _, have := range t.Columns {
			if have == col {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, col)
		}
	}
	return missing
}

// CheckColumns returns an error naming the required columns t lacks.
func CheckColumns(file string, t *Table) error {
	if missing := MissingColumns(file, t); len(missing) > 0 {
		return fmt.Errorf("%s: missing columns %s", file, strings.Join(missing, ", "))
	}
	return nil
}
