package model

import "github.com/google/uuid"

// Grain represents the grain direction constraint for a part.
type Grain int

const (
	GrainNone   Grain = iota // No grain constraint, can rotate freely
	GrainLength              // Grain runs along the part's length
	GrainWidth               // Grain runs along the part's width
)

func (g Grain) String() string {
	switch g {
	case GrainLength:
		return "Length"
	case GrainWidth:
		return "Width"
	default:
		return "None"
	}
}

// Part represents a required piece to be cut. Dimensions are in mm.
// Parts are immutable inputs to a run; the engine never mutates them.
type Part struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Length      float64 `json:"length"` // mm
	Width       float64 `json:"width"`  // mm
	Thickness   float64 `json:"thickness"`
	Quantity    int     `json:"quantity"`
	MaterialKey string  `json:"material_key"` // material name + thickness, e.g. "MDF-18"
	Grain       Grain   `json:"grain"`
	Priority    int     `json:"priority,omitempty"` // optional ordering hint
}

func NewPart(name string, length, width, thickness float64, qty int, materialKey string) Part {
	return Part{
		ID:          uuid.New().String()[:8],
		Name:        name,
		Length:      length,
		Width:       width,
		Thickness:   thickness,
		Quantity:    qty,
		MaterialKey: materialKey,
		Grain:       GrainNone,
	}
}

// Area returns the area of a single unit of this part in square mm.
func (p Part) Area() float64 {
	return p.Length * p.Width
}

// SheetStock represents the physical sheet a material key resolves to.
// The grain axis of the stock is assumed parallel to SheetLength.
type SheetStock struct {
	MaterialKey string  `json:"material_key"`
	SheetLength float64 `json:"sheet_length"` // mm
	SheetWidth  float64 `json:"sheet_width"`  // mm
	UnitCost    float64 `json:"unit_cost"`
}

// Area returns the sheet area in square mm.
func (s SheetStock) Area() float64 {
	return s.SheetLength * s.SheetWidth
}

// OptimizationConfig holds the per-run optimizer parameters.
// There are no persisted defaults inside the engine; the caller supplies
// a complete config for every run.
type OptimizationConfig struct {
	Kerf               float64 `json:"kerf"`                 // blade width consumed between placements, mm
	TargetYieldPercent float64 `json:"target_yield_percent"` // estimation divisor, advisory for production
	GrainMatching      bool    `json:"grain_matching"`
	AllowRotation      bool    `json:"allow_rotation"`
}

// DefaultConfig returns the configuration used when the caller has not
// resolved one of its own (CLI convenience, not an engine default).
func DefaultConfig() OptimizationConfig {
	return OptimizationConfig{
		Kerf:               3.2,
		TargetYieldPercent: 80.0,
		GrainMatching:      true,
		AllowRotation:      true,
	}
}

// geomEps is the tolerance used for geometric comparisons, matching the
// sub-micrometre slack the placer allows when testing fits.
const geomEps = 0.001

// Rect is an axis-aligned rectangle on a sheet. X runs along the sheet
// length axis, Y along the width axis.
type Rect struct {
	X, Y, Length, Width float64
}

// Intersects reports whether two rectangles overlap by more than the
// geometric tolerance. Touching edges do not count as overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.X < o.X+o.Length-geomEps && r.X+r.Length > o.X+geomEps &&
		r.Y < o.Y+o.Width-geomEps && r.Y+r.Width > o.Y+geomEps
}

// Inside reports whether r lies entirely within the rectangle
// [0, length] x [0, width], within tolerance.
func (r Rect) Inside(length, width float64) bool {
	return r.X >= -geomEps && r.Y >= -geomEps &&
		r.X+r.Length <= length+geomEps && r.Y+r.Width <= width+geomEps
}

// Placement represents a single unit part placed on a sheet.
// Length and Width are the post-rotation dimensions.
type Placement struct {
	PartID     string  `json:"part_id"`
	PartName   string  `json:"part_name"`
	UnitID     string  `json:"unit_id"` // "<part id>#<n>" for the n-th expanded unit
	SheetIndex int     `json:"sheet_index"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Length     float64 `json:"length"`
	Width      float64 `json:"width"`
	Rotated    bool    `json:"rotated"`
}

// Rect returns the placement's rectangle.
func (p Placement) Rect() Rect {
	return Rect{X: p.X, Y: p.Y, Length: p.Length, Width: p.Width}
}

// KerfRect returns the placement's rectangle grown by the kerf margin on
// the far edges. This is the region the no-overlap invariant covers.
func (p Placement) KerfRect(kerf float64) Rect {
	return Rect{X: p.X, Y: p.Y, Length: p.Length + kerf, Width: p.Width + kerf}
}

// Area returns the placed area in square mm.
func (p Placement) Area() float64 {
	return p.Length * p.Width
}

// NestingSheet represents one physical sheet with its placed parts.
// Sheets are immutable once their material group is sealed.
type NestingSheet struct {
	SheetIndex         int         `json:"sheet_index"`
	MaterialKey        string      `json:"material_key"`
	SheetLength        float64     `json:"sheet_length"`
	SheetWidth         float64     `json:"sheet_width"`
	Placements         []Placement `json:"placements"`
	UtilizationPercent float64     `json:"utilization_percent"`
}

// SheetArea returns the full sheet area in square mm.
func (ns NestingSheet) SheetArea() float64 {
	return ns.SheetLength * ns.SheetWidth
}

// PlacedArea returns the total area covered by placed parts.
func (ns NestingSheet) PlacedArea() float64 {
	var total float64
	for _, p := range ns.Placements {
		total += p.Area()
	}
	return total
}

// PackedUtilization returns the placed area as a percentage of the
// bounding box of all placements, i.e. how tight the packed region
// itself is, independent of leftover stock beyond it.
func (ns NestingSheet) PackedUtilization() float64 {
	if len(ns.Placements) == 0 {
		return 0
	}
	var maxX, maxY float64
	for _, p := range ns.Placements {
		if right := p.X + p.Length; right > maxX {
			maxX = right
		}
		if top := p.Y + p.Width; top > maxY {
			maxY = top
		}
	}
	box := maxX * maxY
	if box == 0 {
		return 0
	}
	return (ns.PlacedArea() / box) * 100.0
}
