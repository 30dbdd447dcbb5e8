package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/couchcryptid/tourism-dashboard-service/internal/domain"
)

// WriteXLSX saves s to path as a two-column workbook with a header row.
// Unparseable values are left as empty cells.
func WriteXLSX(path, sheet string, s domain.CategorySeries) error {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "series"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheet, "A1", &[]any{"label", "value"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, p := range s {
		var value any
		if !math.IsNaN(p.Value) && !math.IsInf(p.Value, 0) {
			value = p.Value
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]any{p.Label, value}); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}
