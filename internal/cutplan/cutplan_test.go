package cutplan

import (
	"strings"
	"testing"

	"github.com/piwi3910/panelnest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSheet() model.NestingSheet {
	return model.NestingSheet{
		SheetIndex:  0,
		MaterialKey: "MDF-18",
		SheetLength: 1000,
		SheetWidth:  600,
		Placements: []model.Placement{
			{UnitID: "a#1", X: 0, Y: 0, Length: 400, Width: 200},
			{UnitID: "b#1", X: 403.2, Y: 0, Length: 300, Width: 200},
			{UnitID: "c#1", X: 0, Y: 203.2, Length: 500, Width: 150},
		},
	}
}

func TestGenerateSheet_RipsBeforeCrossCuts(t *testing.T) {
	cuts := GenerateSheet(testSheet())
	require.Len(t, cuts, 5)

	// Two shelves, bottom first: rips at y=200 and y=353.2
	assert.Equal(t, model.CutRip, cuts[0].Kind)
	assert.Equal(t, 200.0, cuts[0].Y1)
	assert.Equal(t, 0.0, cuts[0].X1)
	assert.Equal(t, 1000.0, cuts[0].X2)

	assert.Equal(t, model.CutRip, cuts[1].Kind)
	assert.InDelta(t, 353.2, cuts[1].Y1, 1e-9)

	// Cross cuts follow, left to right within each shelf
	assert.Equal(t, model.CutCross, cuts[2].Kind)
	assert.Equal(t, 400.0, cuts[2].X1)
	assert.Equal(t, 0.0, cuts[2].Y1)
	assert.Equal(t, 200.0, cuts[2].Y2)

	assert.Equal(t, model.CutCross, cuts[3].Kind)
	assert.InDelta(t, 703.2, cuts[3].X1, 1e-9)

	assert.Equal(t, model.CutCross, cuts[4].Kind)
	assert.Equal(t, 500.0, cuts[4].X1)
	assert.InDelta(t, 203.2, cuts[4].Y1, 1e-9)
}

func TestGenerateSheet_EdgeAlignedCutsSkipped(t *testing.T) {
	sheet := model.NestingSheet{
		SheetIndex:  0,
		SheetLength: 1000,
		SheetWidth:  600,
		Placements: []model.Placement{
			// Part fills the full length and full width: nothing to cut
			{UnitID: "full#1", X: 0, Y: 0, Length: 1000, Width: 600},
		},
	}

	assert.Empty(t, GenerateSheet(sheet))
}

func TestGenerateSheet_EmptySheet(t *testing.T) {
	assert.Empty(t, GenerateSheet(model.NestingSheet{SheetLength: 1000, SheetWidth: 600}))
}

func TestGenerate_MultipleSheets(t *testing.T) {
	first := testSheet()
	second := testSheet()
	second.SheetIndex = 1
	for i := range second.Placements {
		second.Placements[i].SheetIndex = 1
	}

	cuts := Generate([]model.NestingSheet{first, second})
	require.Len(t, cuts, 10)
	assert.Equal(t, 0, cuts[0].SheetIndex)
	assert.Equal(t, 1, cuts[5].SheetIndex)
}

func TestEstimateCutTime(t *testing.T) {
	cuts := []model.Cut{
		{X1: 0, Y1: 200, X2: 1000, Y2: 200},
		{X1: 400, Y1: 0, X2: 400, Y2: 200},
	}
	tc := TimeConfig{MinutesPerMM: 0.001, RepositionMinutes: 0.5}

	// 1200mm of cutting plus two repositions
	assert.InDelta(t, 1200*0.001+2*0.5, EstimateCutTime(cuts, tc), 1e-9)
	assert.Equal(t, 0.0, EstimateCutTime(nil, tc))
}

func TestDefaultTimeConfig(t *testing.T) {
	tc := DefaultTimeConfig()
	assert.Equal(t, 0.0001, tc.MinutesPerMM)
	assert.Equal(t, 0.25, tc.RepositionMinutes)
}

func TestRenderSheet(t *testing.T) {
	sheet := testSheet()
	cuts := GenerateSheet(sheet)

	out := RenderSheet(sheet, cuts)
	assert.Contains(t, out, "Sheet 1 (MDF-18, 1000x600 mm)")
	assert.Contains(t, out, "rip   at Y=200.0")
	assert.Contains(t, out, "cross at X=400.0")
	assert.Equal(t, 6, strings.Count(out, "\n"))
}

func TestRenderSheet_NoCuts(t *testing.T) {
	sheet := model.NestingSheet{SheetIndex: 2, MaterialKey: "PLY-12", SheetLength: 1000, SheetWidth: 600}
	out := RenderSheet(sheet, nil)
	assert.Contains(t, out, "no cuts required")
}
