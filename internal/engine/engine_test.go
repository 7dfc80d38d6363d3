package engine

import (
	"context"
	"testing"
	"time"

	"github.com/piwi3910/panelnest/internal/cutplan"
	"github.com/piwi3910/panelnest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() model.OptimizationConfig {
	// No kerf by default so placement arithmetic is exact in assertions
	return model.OptimizationConfig{
		Kerf:               0,
		TargetYieldPercent: 80,
		GrainMatching:      true,
		AllowRotation:      true,
	}
}

func testRunner(cfg model.OptimizationConfig) *Runner {
	return New(cfg, cutplan.DefaultTimeConfig())
}

func standardPalette() map[string]model.SheetStock {
	return map[string]model.SheetStock{
		"MDF-18": {MaterialKey: "MDF-18", SheetLength: 2800, SheetWidth: 2070, UnitCost: 45},
		"PLY-12": {MaterialKey: "PLY-12", SheetLength: 2440, SheetWidth: 1220, UnitCost: 60},
	}
}

func TestRunProduction_TenEqualPanelsOnOneSheet(t *testing.T) {
	part := model.NewPart("Panel", 600, 400, 18, 10, "MDF-18")
	cfg := model.OptimizationConfig{
		Kerf:               3.2,
		TargetYieldPercent: 80,
		GrainMatching:      false,
		AllowRotation:      true,
	}
	runner := testRunner(cfg)

	result, err := runner.RunProduction(context.Background(), []model.Part{part}, nil, standardPalette())
	require.NoError(t, err)

	require.Len(t, result.Sheets, 1)
	assert.Equal(t, 10, result.PlacementCount())
	assert.Empty(t, result.GroupErrors)
	assert.Greater(t, result.Sheets[0].PackedUtilization(), 80.0)
}

func TestRunProduction_GrainLockedPartsNeverRotate(t *testing.T) {
	part := model.NewPart("Door", 700, 350, 18, 6, "MDF-18")
	part.Grain = model.GrainLength
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(context.Background(), []model.Part{part}, nil, standardPalette())
	require.NoError(t, err)

	require.Equal(t, 6, result.PlacementCount())
	for _, sheet := range result.Sheets {
		for _, p := range sheet.Placements {
			assert.False(t, p.Rotated, "grain-locked part must keep its orientation")
			assert.Equal(t, 700.0, p.Length)
			assert.Equal(t, 350.0, p.Width)
		}
	}
}

func TestRunProduction_GrainWidthPartIsPlacedRotated(t *testing.T) {
	part := model.NewPart("Shelf", 300, 800, 18, 1, "MDF-18")
	part.Grain = model.GrainWidth
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(context.Background(), []model.Part{part}, nil, standardPalette())
	require.NoError(t, err)

	require.Equal(t, 1, result.PlacementCount())
	p := result.Sheets[0].Placements[0]
	assert.True(t, p.Rotated)
	assert.Equal(t, 800.0, p.Length)
	assert.Equal(t, 300.0, p.Width)
}

func TestRunProduction_OversizedPartFailsItsGroupOnly(t *testing.T) {
	big := model.NewPart("Huge", 3000, 2500, 18, 1, "MDF-18")
	ok := model.NewPart("Small", 400, 300, 12, 2, "PLY-12")
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(context.Background(), []model.Part{big, ok}, nil, standardPalette())
	require.NoError(t, err)

	// PLY-12 group still nested
	assert.Equal(t, 2, result.PlacementCount())
	require.Len(t, result.GroupErrors, 1)
	assert.Equal(t, "MDF-18", result.GroupErrors[0].MaterialKey)
	assert.Equal(t, model.ErrKindUnplaceable, result.GroupErrors[0].Kind)
	assert.Contains(t, result.GroupErrors[0].Message, big.ID)
}

func TestRunProduction_MissingMaterialMapping(t *testing.T) {
	part := model.NewPart("Panel", 600, 400, 18, 1, "OAK-25")
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(context.Background(), []model.Part{part}, nil, standardPalette())
	require.NoError(t, err)

	assert.Empty(t, result.Sheets)
	require.Len(t, result.GroupErrors, 1)
	assert.Equal(t, model.ErrKindMissingMaterial, result.GroupErrors[0].Kind)
}

func TestRunProduction_InvalidPartFailsValidation(t *testing.T) {
	bad := model.NewPart("Broken", -10, 400, 18, 1, "MDF-18")
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(context.Background(), []model.Part{bad}, nil, standardPalette())
	require.NoError(t, err)

	require.Len(t, result.GroupErrors, 1)
	assert.Equal(t, model.ErrKindValidation, result.GroupErrors[0].Kind)
}

func TestRunProduction_NoOverlapAndInBounds(t *testing.T) {
	cfg := testConfig()
	cfg.Kerf = 3.2
	runner := testRunner(cfg)

	parts := []model.Part{
		model.NewPart("A", 600, 400, 18, 5, "MDF-18"),
		model.NewPart("B", 450, 450, 18, 4, "MDF-18"),
		model.NewPart("C", 1200, 300, 18, 3, "MDF-18"),
		model.NewPart("D", 250, 180, 18, 7, "MDF-18"),
	}

	result, err := runner.RunProduction(context.Background(), parts, nil, standardPalette())
	require.NoError(t, err)
	require.Empty(t, result.GroupErrors)
	assert.Equal(t, 19, result.PlacementCount())

	for _, sheet := range result.Sheets {
		for i, p := range sheet.Placements {
			assert.True(t, p.Rect().Inside(sheet.SheetLength, sheet.SheetWidth),
				"placement %s must stay inside the sheet", p.UnitID)
			for j := i + 1; j < len(sheet.Placements); j++ {
				q := sheet.Placements[j]
				assert.False(t, p.KerfRect(cfg.Kerf).Intersects(q.Rect()),
					"placements %s and %s must be separated by kerf", p.UnitID, q.UnitID)
			}
		}
	}
}

func TestRunProduction_Deterministic(t *testing.T) {
	parts := []model.Part{
		model.NewPart("A", 600, 400, 18, 3, "MDF-18"),
		model.NewPart("B", 450, 450, 18, 3, "MDF-18"),
		model.NewPart("C", 400, 300, 12, 4, "PLY-12"),
	}
	cfg := testConfig()
	cfg.Kerf = 3.2
	runner := testRunner(cfg)

	first, err := runner.RunProduction(context.Background(), parts, nil, standardPalette())
	require.NoError(t, err)
	second, err := runner.RunProduction(context.Background(), parts, nil, standardPalette())
	require.NoError(t, err)

	assert.Equal(t, first.Sheets, second.Sheets)
	assert.Equal(t, first.Cuts, second.Cuts)
	assert.Equal(t, first.Offcuts, second.Offcuts)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.OptimizedYield, second.OptimizedYield)
}

func TestRunProduction_SheetIndexesAreGlobal(t *testing.T) {
	parts := []model.Part{
		model.NewPart("A", 2700, 2000, 18, 2, "MDF-18"), // one per sheet
		model.NewPart("B", 2400, 1200, 12, 1, "PLY-12"),
	}
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(context.Background(), parts, nil, standardPalette())
	require.NoError(t, err)
	require.Empty(t, result.GroupErrors)
	require.Len(t, result.Sheets, 3)

	for i, sheet := range result.Sheets {
		assert.Equal(t, i, sheet.SheetIndex)
		for _, p := range sheet.Placements {
			assert.Equal(t, i, p.SheetIndex)
		}
	}

	// Material groups are processed in sorted key order
	assert.Equal(t, "MDF-18", result.Sheets[0].MaterialKey)
	assert.Equal(t, "PLY-12", result.Sheets[2].MaterialKey)
}

func TestRunProduction_RequiredQuantityMultiplier(t *testing.T) {
	part := model.NewPart("Side", 600, 400, 18, 2, "MDF-18")
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(context.Background(), []model.Part{part},
		QuantityMap{part.ID: 3}, standardPalette())
	require.NoError(t, err)

	assert.Equal(t, 6, result.PlacementCount())
}

func TestRunProduction_YieldAndTarget(t *testing.T) {
	part := model.NewPart("Panel", 600, 400, 18, 10, "MDF-18")
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(context.Background(), []model.Part{part}, nil, standardPalette())
	require.NoError(t, err)

	// 2.4m² of parts on one 5.796m² sheet
	assert.InDelta(t, 41.4, result.OptimizedYield, 0.1)
	assert.False(t, result.MeetsTarget)
	assert.Equal(t, 80.0, result.TargetYieldPercent)
}

func TestRunProduction_Cancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	part := model.NewPart("Panel", 600, 400, 18, 10, "MDF-18")
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(ctx, []model.Part{part}, nil, standardPalette())
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunProduction_BudgetExceededIsBestEffort(t *testing.T) {
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	parts := []model.Part{
		model.NewPart("A", 600, 400, 18, 1, "MDF-18"),
		model.NewPart("B", 400, 300, 12, 1, "PLY-12"),
	}
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(ctx, parts, nil, standardPalette())
	require.NoError(t, err)

	assert.True(t, result.BestEffort)
	require.Len(t, result.GroupErrors, 2)
	for _, ge := range result.GroupErrors {
		assert.Equal(t, model.ErrKindBudget, ge.Kind)
	}
}

func TestRunProduction_RejectsInvalidConfig(t *testing.T) {
	part := model.NewPart("Panel", 600, 400, 18, 1, "MDF-18")

	bad := testConfig()
	bad.TargetYieldPercent = 0
	_, err := testRunner(bad).RunProduction(context.Background(), []model.Part{part}, nil, standardPalette())
	assert.Error(t, err)

	bad = testConfig()
	bad.Kerf = -1
	_, err = testRunner(bad).RunProduction(context.Background(), []model.Part{part}, nil, standardPalette())
	assert.Error(t, err)
}

func TestRunProduction_OffcutsDetected(t *testing.T) {
	part := model.NewPart("Panel", 600, 400, 18, 2, "MDF-18")
	runner := testRunner(testConfig())

	result, err := runner.RunProduction(context.Background(), []model.Part{part}, nil, standardPalette())
	require.NoError(t, err)
	require.NotEmpty(t, result.Offcuts)
	assert.Equal(t, "MDF-18", result.Offcuts[0].MaterialKey)
}

func TestRunEstimation_ClosedForm(t *testing.T) {
	part := model.NewPart("Panel", 600, 400, 18, 10, "MDF-18")
	runner := testRunner(testConfig())

	result, err := runner.RunEstimation(context.Background(), []model.Part{part}, nil, standardPalette())
	require.NoError(t, err)

	est := result.Materials["MDF-18"]
	// ceil(2,400,000 / (5,796,000 * 0.8)) = 1
	assert.Equal(t, 1, est.SheetsRequired)
	assert.Equal(t, 10, est.Units)
	assert.InDelta(t, 100.0-(2400000.0/5796000.0)*100.0, est.WasteEstimatePercent, 1e-9)
	assert.Equal(t, 45.0, est.MaterialCost)
	assert.Equal(t, 1, result.SheetsRequired)
}

func TestRunEstimation_FloorOfOneSheet(t *testing.T) {
	part := model.NewPart("Tiny", 100, 100, 18, 1, "MDF-18")
	runner := testRunner(testConfig())

	result, err := runner.RunEstimation(context.Background(), []model.Part{part}, nil, standardPalette())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Materials["MDF-18"].SheetsRequired)
}

func TestRunEstimation_SheetsNonIncreasingInTargetYield(t *testing.T) {
	part := model.NewPart("Panel", 600, 400, 18, 60, "MDF-18")

	prev := int(^uint(0) >> 1)
	for _, yield := range []float64{40, 50, 60, 70, 80, 90, 95} {
		cfg := testConfig()
		cfg.TargetYieldPercent = yield
		result, err := testRunner(cfg).RunEstimation(context.Background(), []model.Part{part}, nil, standardPalette())
		require.NoError(t, err)

		sheets := result.Materials["MDF-18"].SheetsRequired
		assert.LessOrEqual(t, sheets, prev, "raising the assumed yield cannot require more sheets")
		prev = sheets
	}
}

func TestRunEstimation_MissingMaterialIsGroupError(t *testing.T) {
	part := model.NewPart("Panel", 600, 400, 18, 1, "OAK-25")
	runner := testRunner(testConfig())

	result, err := runner.RunEstimation(context.Background(), []model.Part{part}, nil, standardPalette())
	require.NoError(t, err)

	assert.Empty(t, result.Materials)
	require.Len(t, result.GroupErrors, 1)
	assert.Equal(t, model.ErrKindMissingMaterial, result.GroupErrors[0].Kind)
}

func TestExpandGroups_SortedAndExpanded(t *testing.T) {
	a := model.NewPart("A", 600, 400, 18, 2, "PLY-12")
	b := model.NewPart("B", 500, 300, 18, 1, "MDF-18")

	groups := expandGroups([]model.Part{a, b}, nil)
	require.Len(t, groups, 2)
	assert.Equal(t, "MDF-18", groups[0].materialKey)
	assert.Equal(t, "PLY-12", groups[1].materialKey)
	assert.Len(t, groups[1].units, 2)
	assert.Equal(t, a.ID+"#1", groups[1].units[0].UnitID)
	assert.Equal(t, a.ID+"#2", groups[1].units[1].UnitID)
}

func TestSortUnits_DeterministicOrder(t *testing.T) {
	big := model.NewPart("Big", 800, 600, 18, 1, "MDF-18")
	long := model.NewPart("Long", 1200, 200, 18, 1, "MDF-18")
	square := model.NewPart("Square", 490, 490, 18, 1, "MDF-18")

	units := []unitPart{
		{Part: square, UnitID: square.ID + "#1", Seq: 1},
		{Part: long, UnitID: long.ID + "#1", Seq: 1},
		{Part: big, UnitID: big.ID + "#1", Seq: 1},
	}
	sortUnits(units)

	// Area descending: big (480,000), square (240,100), long (240,000)
	assert.Equal(t, "Big", units[0].Name)
	assert.Equal(t, "Square", units[1].Name)
	assert.Equal(t, "Long", units[2].Name)
}

func TestCompareScenarios(t *testing.T) {
	parts := []model.Part{model.NewPart("Panel", 600, 400, 18, 4, "MDF-18")}
	cfg := testConfig()
	cfg.Kerf = 3.2

	scenarios := BuildDefaultScenarios(cfg)
	require.GreaterOrEqual(t, len(scenarios), 3)
	assert.Equal(t, "Current Settings", scenarios[0].Name)

	results := CompareScenarios(context.Background(), scenarios, parts, nil, standardPalette(), cutplan.DefaultTimeConfig())
	require.Len(t, results, len(scenarios))
	for _, cr := range results {
		require.NoError(t, cr.Err)
		assert.Equal(t, 1, cr.SheetsUsed)
	}
}
