// Package engine implements the panel nesting and cut-optimization
// runs: fast material estimation and deterministic production nesting.
// The engine is a pure function of (parts, palette, config); it holds
// no shared state and performs no I/O.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/piwi3910/panelnest/internal/cutplan"
	"github.com/piwi3910/panelnest/internal/model"
	"github.com/piwi3910/panelnest/internal/staleness"
)

// Runner executes estimation and production runs with a fixed
// configuration, one material group at a time. Groups fail
// independently: a bad group is reported on the result alongside the
// groups that succeeded.
type Runner struct {
	Config model.OptimizationConfig
	Time   cutplan.TimeConfig
}

func New(cfg model.OptimizationConfig, tc cutplan.TimeConfig) *Runner {
	return &Runner{Config: cfg, Time: tc}
}

func (r *Runner) validateConfig() error {
	if r.Config.Kerf < 0 {
		return fmt.Errorf("kerf must not be negative, got %.3f", r.Config.Kerf)
	}
	if r.Config.TargetYieldPercent <= 0 || r.Config.TargetYieldPercent > 100 {
		return fmt.Errorf("target yield must be in (0, 100], got %.1f", r.Config.TargetYieldPercent)
	}
	return nil
}

// RunEstimation computes the closed-form sheet-count estimate for every
// material group. Standard/special part costs on the result are caller
// pass-through fields and are left at zero here.
func (r *Runner) RunEstimation(ctx context.Context, parts []model.Part, required QuantityMap, palette map[string]model.SheetStock) (*model.EstimationResult, error) {
	if err := r.validateConfig(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &model.EstimationResult{
		Materials:   make(map[string]model.MaterialEstimate),
		GeneratedAt: time.Now().UTC(),
	}

	var totalSheetArea float64
	for _, g := range expandGroups(parts, required) {
		if len(g.errs) > 0 {
			for _, err := range g.errs {
				result.GroupErrors = append(result.GroupErrors, model.NewGroupError(g.materialKey, err))
			}
			continue
		}
		stock, ok := palette[g.materialKey]
		if !ok {
			result.GroupErrors = append(result.GroupErrors,
				model.NewGroupError(g.materialKey, &model.MissingMaterialMappingError{MaterialKey: g.materialKey}))
			continue
		}

		est := estimateGroup(g.units, stock, r.Config)
		result.Materials[g.materialKey] = est
		result.TotalParts += est.Units
		result.TotalPartArea += est.TotalPartArea
		result.SheetsRequired += est.SheetsRequired
		result.MaterialCost += est.MaterialCost
		totalSheetArea += float64(est.SheetsRequired) * est.SheetArea
	}

	if totalSheetArea > 0 {
		result.WasteEstimatePercent = 100.0 - (result.TotalPartArea/totalSheetArea)*100.0
	}
	return result, nil
}

// RunProduction places every unit part onto concrete sheets, derives
// the cut sequence, and stamps the result with the input fingerprint.
// Cancellation discards all in-progress state; a deadline that expires
// mid-run yields a best-effort result with the unfinished groups
// reported, never a silently truncated layout.
func (r *Runner) RunProduction(ctx context.Context, parts []model.Part, required QuantityMap, palette map[string]model.SheetStock) (*model.ProductionResult, error) {
	if err := r.validateConfig(); err != nil {
		return nil, err
	}

	result := &model.ProductionResult{
		TargetYieldPercent: r.Config.TargetYieldPercent,
		GeneratedAt:        time.Now().UTC(),
	}

	groups := expandGroups(parts, required)
	nextSheet := 0
	for gi, g := range groups {
		if err := ctx.Err(); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				markBudgetExceeded(result, groups[gi:])
				break
			}
			return nil, err
		}

		if len(g.errs) > 0 {
			for _, err := range g.errs {
				result.GroupErrors = append(result.GroupErrors, model.NewGroupError(g.materialKey, err))
			}
			continue
		}
		stock, ok := palette[g.materialKey]
		if !ok {
			result.GroupErrors = append(result.GroupErrors,
				model.NewGroupError(g.materialKey, &model.MissingMaterialMappingError{MaterialKey: g.materialKey}))
			continue
		}

		sheets, err := newGroupNester(stock, r.Config).nest(ctx, g.units)
		if err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				markBudgetExceeded(result, groups[gi:])
				break
			}
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			result.GroupErrors = append(result.GroupErrors, model.NewGroupError(g.materialKey, err))
			continue
		}

		// Renumber sheet indexes sequentially across groups.
		for i := range sheets {
			sheets[i].SheetIndex = nextSheet
			for j := range sheets[i].Placements {
				sheets[i].Placements[j].SheetIndex = nextSheet
			}
			nextSheet++
		}
		result.Sheets = append(result.Sheets, sheets...)
	}

	var placedArea, sheetArea float64
	for _, s := range result.Sheets {
		placedArea += s.PlacedArea()
		sheetArea += s.SheetArea()
	}
	if sheetArea > 0 {
		result.OptimizedYield = (placedArea / sheetArea) * 100.0
	}
	result.MeetsTarget = result.OptimizedYield >= r.Config.TargetYieldPercent

	result.Cuts = cutplan.Generate(result.Sheets)
	result.EstimatedCutTimeMinutes = cutplan.EstimateCutTime(result.Cuts, r.Time)
	result.Offcuts = model.DetectAllOffcuts(result.Sheets, palette, r.Config.Kerf)

	result.Fingerprint, result.Snapshot = staleness.Compute(parts, required, palette, r.Config)
	return result, nil
}

// markBudgetExceeded flags the result as best effort and records every
// group that was not completed before the caller's deadline expired.
func markBudgetExceeded(result *model.ProductionResult, remaining []materialGroup) {
	result.BestEffort = true
	for _, g := range remaining {
		result.GroupErrors = append(result.GroupErrors, model.GroupError{
			MaterialKey: g.materialKey,
			Kind:        model.ErrKindBudget,
			Message:     fmt.Sprintf("material %s not nested: run budget exceeded", g.materialKey),
		})
	}
}
