package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/piwi3910/panelnest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func fixtureResult() *model.ProductionResult {
	return &model.ProductionResult{
		Sheets: []model.NestingSheet{
			{
				SheetIndex:         0,
				MaterialKey:        "MDF-18",
				SheetLength:        2800,
				SheetWidth:         2070,
				UtilizationPercent: 12.4,
				Placements: []model.Placement{
					{PartID: "aaa", PartName: "Side", UnitID: "aaa#1", X: 0, Y: 0, Length: 600, Width: 400},
					{PartID: "aaa", PartName: "Side", UnitID: "aaa#2", X: 603.2, Y: 0, Length: 600, Width: 400, Rotated: false},
					{PartID: "bbb", PartName: "Top", UnitID: "bbb#1", X: 0, Y: 403.2, Length: 800, Width: 300, Rotated: true},
				},
			},
		},
		Cuts: []model.Cut{
			{SheetIndex: 0, Kind: model.CutRip, X1: 0, Y1: 400, X2: 2800, Y2: 400},
			{SheetIndex: 0, Kind: model.CutCross, X1: 600, Y1: 0, X2: 600, Y2: 400},
		},
		OptimizedYield:          12.4,
		TargetYieldPercent:      80,
		EstimatedCutTimeMinutes: 0.82,
		GeneratedAt:             time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
		Fingerprint:             "0123456789abcdef",
	}
}

func TestCollectLabelInfos(t *testing.T) {
	labels := CollectLabelInfos(fixtureResult())

	require.Len(t, labels, 3)
	assert.Equal(t, "aaa#1", labels[0].UnitID)
	assert.Equal(t, "Side", labels[0].PartName)
	assert.Equal(t, "MDF-18", labels[0].MaterialKey)
	assert.Equal(t, 1, labels[0].SheetIndex)
	assert.True(t, labels[2].Rotated)
	assert.Equal(t, 800.0, labels[2].Length)
}

func TestExportPDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.pdf")

	err := ExportPDF(path, fixtureResult(), model.DefaultConfig())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportPDF_NoSheets(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.pdf")
	err := ExportPDF(path, &model.ProductionResult{}, model.DefaultConfig())
	assert.Error(t, err)
}

func TestExportLabels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")

	err := ExportLabels(path, fixtureResult())
	require.NoError(t, err)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, info.Size(), int64(0))
}

func TestExportLabels_NoPlacements(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.pdf")
	err := ExportLabels(path, &model.ProductionResult{})
	assert.Error(t, err)
}

func TestExportExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "result.xlsx")

	require.NoError(t, ExportExcel(path, fixtureResult()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	sheets := f.GetSheetList()
	assert.Contains(t, sheets, "Summary")
	assert.Contains(t, sheets, "Placements")
	assert.Contains(t, sheets, "Cut Sequence")

	rows, err := f.GetRows("Placements")
	require.NoError(t, err)
	require.Len(t, rows, 4) // header + 3 placements
	assert.Equal(t, "Side", rows[1][2])

	cutRows, err := f.GetRows("Cut Sequence")
	require.NoError(t, err)
	require.Len(t, cutRows, 3) // header + 2 cuts
	assert.Equal(t, "rip", cutRows[1][2])
}
