package model

import (
	"fmt"
	"math"
	"sort"
)

// Offcut represents a usable rectangular remnant left on a sheet after
// all parts have been placed.
type Offcut struct {
	ID          string  `json:"id"`
	SheetIndex  int     `json:"sheet_index"`
	MaterialKey string  `json:"material_key"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	Length      float64 `json:"length"`
	Width       float64 `json:"width"`
	Cost        float64 `json:"cost"` // area-proportional share of the sheet cost
}

// Area returns the offcut area in square mm.
func (o Offcut) Area() float64 {
	return o.Length * o.Width
}

// MinOffcutDimension is the minimum length or width (mm) for a remnant
// to be worth keeping. Anything narrower is waste.
const MinOffcutDimension = 50.0

// MinOffcutArea is the minimum area (sq mm) for a usable remnant.
const MinOffcutArea = 10000.0

// DetectOffcuts identifies the remnant strips of a sealed sheet: the
// strip beyond the rightmost placement and the strip above the topmost
// placement. Strips smaller than the usability thresholds are dropped.
// Offcut IDs are derived from the sheet index and strip position so two
// identical runs produce identical offcut lists.
func DetectOffcuts(sheet NestingSheet, unitCost, kerf float64) []Offcut {
	if len(sheet.Placements) == 0 {
		return []Offcut{{
			ID:          fmt.Sprintf("%d-full", sheet.SheetIndex),
			SheetIndex:  sheet.SheetIndex,
			MaterialKey: sheet.MaterialKey,
			Length:      sheet.SheetLength,
			Width:       sheet.SheetWidth,
			Cost:        unitCost,
		}}
	}

	var maxRight, maxTop float64
	for _, p := range sheet.Placements {
		if right := p.X + p.Length + kerf; right > maxRight {
			maxRight = right
		}
		if top := p.Y + p.Width + kerf; top > maxTop {
			maxTop = top
		}
	}

	var offcuts []Offcut

	// Strip beyond the rightmost placement, full sheet width.
	endStrip := sheet.SheetLength - maxRight
	if endStrip >= MinOffcutDimension && sheet.SheetWidth >= MinOffcutDimension && endStrip*sheet.SheetWidth >= MinOffcutArea {
		offcuts = append(offcuts, Offcut{
			ID:          fmt.Sprintf("%d-end", sheet.SheetIndex),
			SheetIndex:  sheet.SheetIndex,
			MaterialKey: sheet.MaterialKey,
			X:           maxRight,
			Y:           0,
			Length:      endStrip,
			Width:       sheet.SheetWidth,
		})
	}

	// Strip above the topmost placement, limited to the placed span so it
	// does not overlap the end strip.
	topStrip := sheet.SheetWidth - maxTop
	topLength := math.Min(maxRight, sheet.SheetLength)
	if topStrip >= MinOffcutDimension && topLength >= MinOffcutDimension && topStrip*topLength >= MinOffcutArea {
		offcuts = append(offcuts, Offcut{
			ID:          fmt.Sprintf("%d-top", sheet.SheetIndex),
			SheetIndex:  sheet.SheetIndex,
			MaterialKey: sheet.MaterialKey,
			X:           0,
			Y:           maxTop,
			Length:      topLength,
			Width:       topStrip,
		})
	}

	if unitCost > 0 {
		sheetArea := sheet.SheetArea()
		for i := range offcuts {
			offcuts[i].Cost = (offcuts[i].Area() / sheetArea) * unitCost
		}
	}

	sort.Slice(offcuts, func(i, j int) bool {
		return offcuts[i].Area() > offcuts[j].Area()
	})
	return offcuts
}

// DetectAllOffcuts finds offcuts across every sheet of a production
// result using the palette for cost attribution.
func DetectAllOffcuts(sheets []NestingSheet, palette map[string]SheetStock, kerf float64) []Offcut {
	var all []Offcut
	for _, sheet := range sheets {
		all = append(all, DetectOffcuts(sheet, palette[sheet.MaterialKey].UnitCost, kerf)...)
	}
	return all
}

// TotalOffcutArea returns the total usable remnant area in square mm.
func TotalOffcutArea(offcuts []Offcut) float64 {
	var total float64
	for _, o := range offcuts {
		total += o.Area()
	}
	return total
}
