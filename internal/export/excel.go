package export

import (
	"fmt"

	"github.com/piwi3910/panelnest/internal/model"
	"github.com/xuri/excelize/v2"
)

// ExportExcel writes a production result to an .xlsx workbook with three
// sheets: Summary, Placements, and Cut Sequence.
func ExportExcel(path string, result *model.ProductionResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := writeSummarySheet(f, result); err != nil {
		return err
	}
	if err := writePlacementsSheet(f, result); err != nil {
		return err
	}
	if err := writeCutsSheet(f, result); err != nil {
		return err
	}

	// The default sheet becomes Summary
	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

func writeSummarySheet(f *excelize.File, result *model.ProductionResult) error {
	const sheet = "Summary"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("rename summary sheet: %w", err)
	}

	rows := [][]interface{}{
		{"Generated", result.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Fingerprint", result.Fingerprint},
		{"Sheets Used", len(result.Sheets)},
		{"Parts Placed", result.PlacementCount()},
		{"Optimized Yield %", result.OptimizedYield},
		{"Target Yield %", result.TargetYieldPercent},
		{"Meets Target", result.MeetsTarget},
		{"Best Effort", result.BestEffort},
		{"Total Cuts", len(result.Cuts)},
		{"Estimated Cut Time (min)", result.EstimatedCutTimeMinutes},
		{"Reusable Offcuts", len(result.Offcuts)},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row: %w", err)
		}
	}

	start := len(rows) + 2
	if len(result.GroupErrors) > 0 {
		cell, _ := excelize.CoordinatesToCellName(1, start)
		header := []interface{}{"Material", "Error Kind", "Message"}
		if err := f.SetSheetRow(sheet, cell, &header); err != nil {
			return err
		}
		for i, ge := range result.GroupErrors {
			cell, _ := excelize.CoordinatesToCellName(1, start+1+i)
			row := []interface{}{ge.MaterialKey, ge.Kind, ge.Message}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return err
			}
		}
	}
	return nil
}

func writePlacementsSheet(f *excelize.File, result *model.ProductionResult) error {
	const sheet = "Placements"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create placements sheet: %w", err)
	}

	header := []interface{}{"Sheet", "Material", "Part", "Unit", "X (mm)", "Y (mm)", "Length (mm)", "Width (mm)", "Rotated"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	rowNum := 2
	for _, s := range result.Sheets {
		for _, p := range s.Placements {
			cell, _ := excelize.CoordinatesToCellName(1, rowNum)
			row := []interface{}{s.SheetIndex + 1, s.MaterialKey, p.PartName, p.UnitID, p.X, p.Y, p.Length, p.Width, p.Rotated}
			if err := f.SetSheetRow(sheet, cell, &row); err != nil {
				return err
			}
			rowNum++
		}
	}
	return nil
}

func writeCutsSheet(f *excelize.File, result *model.ProductionResult) error {
	const sheet = "Cut Sequence"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create cut sequence sheet: %w", err)
	}

	header := []interface{}{"Step", "Sheet", "Kind", "X1", "Y1", "X2", "Y2", "Length (mm)"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i, c := range result.Cuts {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		row := []interface{}{i + 1, c.SheetIndex + 1, string(c.Kind), c.X1, c.Y1, c.X2, c.Y2, c.Length()}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}
