package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/panelnest/internal/cutplan"
	"github.com/piwi3910/panelnest/internal/model"
)

// ComparisonScenario defines a named configuration to compare.
type ComparisonScenario struct {
	Name   string
	Config model.OptimizationConfig
}

// ComparisonResult holds the production result and headline statistics
// for a single scenario. Err is set when the whole run failed; group
// errors inside a partial result leave Err nil.
type ComparisonResult struct {
	Scenario     ComparisonScenario
	Result       *model.ProductionResult
	SheetsUsed   int
	TotalCuts    int
	WastePercent float64
	FailedGroups int
	Err          error
}

// CompareScenarios runs a production nest for each scenario and returns
// the results in scenario order for side-by-side comparison.
func CompareScenarios(ctx context.Context, scenarios []ComparisonScenario, parts []model.Part, required QuantityMap, palette map[string]model.SheetStock, tc cutplan.TimeConfig) []ComparisonResult {
	results := make([]ComparisonResult, 0, len(scenarios))

	for _, scenario := range scenarios {
		runner := New(scenario.Config, tc)
		result, err := runner.RunProduction(ctx, parts, required, palette)

		cr := ComparisonResult{Scenario: scenario, Result: result, Err: err}
		if result != nil {
			cr.SheetsUsed = len(result.Sheets)
			cr.TotalCuts = len(result.Cuts)
			cr.WastePercent = 100.0 - result.OptimizedYield
			cr.FailedGroups = len(result.GroupErrors)
		}
		results = append(results, cr)
	}

	return results
}

// BuildDefaultScenarios generates what-if scenarios from the current
// configuration, varying the parameters that most influence yield.
func BuildDefaultScenarios(base model.OptimizationConfig) []ComparisonScenario {
	scenarios := []ComparisonScenario{
		{Name: "Current Settings", Config: base},
	}

	// Scenario: thinner blade
	if base.Kerf > 1.0 {
		tightKerf := base
		tightKerf.Kerf = base.Kerf * 0.5
		scenarios = append(scenarios, ComparisonScenario{
			Name:   fmt.Sprintf("Kerf %.1fmm (half)", tightKerf.Kerf),
			Config: tightKerf,
		})
	}

	// Scenario: toggle rotation
	altRotation := base
	altRotation.AllowRotation = !base.AllowRotation
	name := "Rotation Allowed"
	if !altRotation.AllowRotation {
		name = "Rotation Disabled"
	}
	scenarios = append(scenarios, ComparisonScenario{Name: name, Config: altRotation})

	// Scenario: ignore grain direction
	if base.GrainMatching {
		noGrain := base
		noGrain.GrainMatching = false
		scenarios = append(scenarios, ComparisonScenario{
			Name:   "Grain Ignored",
			Config: noGrain,
		})
	}

	return scenarios
}
