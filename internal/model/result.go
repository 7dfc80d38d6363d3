package model

import (
	"math"
	"time"
)

// CutKind distinguishes the two passes of the cut sequence.
type CutKind string

const (
	CutRip   CutKind = "rip"   // parallel to the sheet length axis, separates shelves
	CutCross CutKind = "cross" // parallel to the width axis, separates parts in a shelf
)

// Cut is a single saw operation on a sheet, expressed as a segment in
// sheet coordinates.
type Cut struct {
	SheetIndex int     `json:"sheet_index"`
	Kind       CutKind `json:"kind"`
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
}

// Length returns the cut length in mm.
func (c Cut) Length() float64 {
	dx := c.X2 - c.X1
	dy := c.Y2 - c.Y1
	return math.Sqrt(dx*dx + dy*dy)
}

// GroupError records a material group that failed while other groups
// were still processed. Kind is one of the ErrKind constants.
type GroupError struct {
	MaterialKey string `json:"material_key"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
}

const (
	ErrKindValidation      = "validation"
	ErrKindUnplaceable     = "unplaceable"
	ErrKindMissingMaterial = "missing_material"
	ErrKindBudget          = "budget_exceeded"
)

// MaterialEstimate is the closed-form estimate for one material group.
type MaterialEstimate struct {
	MaterialKey          string  `json:"material_key"`
	Units                int     `json:"units"` // expanded unit-part count
	TotalPartArea        float64 `json:"total_part_area"`
	SheetArea            float64 `json:"sheet_area"`
	SheetsRequired       int     `json:"sheets_required"`
	WasteEstimatePercent float64 `json:"waste_estimate_percent"`
	MaterialCost         float64 `json:"material_cost"` // sheets x unit cost
}

// EstimationResult is the fast material-quantity estimate across all
// material groups. StandardPartsCost and SpecialPartsCost are caller
// pass-through values; the engine never computes them.
type EstimationResult struct {
	Materials            map[string]MaterialEstimate `json:"materials"`
	TotalParts           int                         `json:"total_parts"`
	TotalPartArea        float64                     `json:"total_part_area"`
	SheetsRequired       int                         `json:"sheets_required"`
	WasteEstimatePercent float64                     `json:"waste_estimate_percent"`
	MaterialCost         float64                     `json:"material_cost"`
	StandardPartsCost    float64                     `json:"standard_parts_cost"`
	SpecialPartsCost     float64                     `json:"special_parts_cost"`
	GeneratedAt          time.Time                   `json:"generated_at"`
	GroupErrors          []GroupError                `json:"group_errors,omitempty"`
}

// RecordField is a single named value inside a fingerprint record.
type RecordField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// FingerprintRecord is one canonicalized input entry (a part, a palette
// mapping, or the config) that feeds the staleness fingerprint. Storing
// the records alongside the hash lets the tracker explain diffs.
type FingerprintRecord struct {
	Kind   string        `json:"kind"` // "part", "material", "config"
	Key    string        `json:"key"`
	Fields []RecordField `json:"fields"`
}

// ProductionResult is the concrete layout produced by a production run.
// It is created once, consumed read-only, and superseded (never mutated)
// by the next successful run.
type ProductionResult struct {
	Sheets                  []NestingSheet      `json:"sheets"`
	Cuts                    []Cut               `json:"cuts"`
	OptimizedYield          float64             `json:"optimized_yield"` // area-weighted mean utilization
	EstimatedCutTimeMinutes float64             `json:"estimated_cut_time_minutes"`
	TargetYieldPercent      float64             `json:"target_yield_percent"`
	MeetsTarget             bool                `json:"meets_target"` // advisory: optimized yield vs target
	BestEffort              bool                `json:"best_effort"`  // true when a caller budget cut the run short
	Offcuts                 []Offcut            `json:"offcuts,omitempty"`
	GeneratedAt             time.Time           `json:"generated_at"`
	Fingerprint             string              `json:"fingerprint"`
	Snapshot                []FingerprintRecord `json:"snapshot,omitempty"`
	GroupErrors             []GroupError        `json:"group_errors,omitempty"`
}

// PlacementCount returns the total number of placed unit parts.
func (pr ProductionResult) PlacementCount() int {
	total := 0
	for _, s := range pr.Sheets {
		total += len(s.Placements)
	}
	return total
}

// SheetsByMaterial returns how many sheets each material group consumed.
func (pr ProductionResult) SheetsByMaterial() map[string]int {
	counts := make(map[string]int)
	for _, s := range pr.Sheets {
		counts[s.MaterialKey]++
	}
	return counts
}

// InvalidationState marks a stored result as stale without destroying
// it. A nil InvalidatedAt means the result is still current.
type InvalidationState struct {
	InvalidatedAt *time.Time `json:"invalidated_at,omitempty"`
	Reasons       []string   `json:"invalidation_reasons,omitempty"`
}

// Stale reports whether the tracked result has been invalidated.
func (s InvalidationState) Stale() bool {
	return s.InvalidatedAt != nil
}
