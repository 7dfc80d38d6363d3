// Package cutplan derives guillotine cut sequences and saw-time
// estimates from a nested sheet layout.
package cutplan

import (
	"fmt"
	"sort"
	"strings"

	"github.com/piwi3910/panelnest/internal/model"
)

// TimeConfig parameterizes the cut-time estimate.
type TimeConfig struct {
	MinutesPerMM      float64 `json:"minutes_per_mm"`
	RepositionMinutes float64 `json:"reposition_minutes"` // fixed handling cost per cut
}

// DefaultTimeConfig returns timings for a typical panel saw.
func DefaultTimeConfig() TimeConfig {
	return TimeConfig{
		MinutesPerMM:      0.0001,
		RepositionMinutes: 0.25,
	}
}

// Shelves are reconstructed from placement Y origins; placements whose
// origins differ by less than this belong to the same shelf.
const shelfTolerance = 0.5

// edgeEps treats a cut that coincides with the sheet boundary as
// already made by the sheet edge.
const edgeEps = 0.001

type shelf struct {
	y          float64
	top        float64 // y + tallest placed width in the shelf
	placements []model.Placement
}

// Generate produces the two-pass cut sequence for every sheet: first
// the rip cuts separating shelves, then the cross cuts separating
// parts within each shelf. Cuts along a sheet edge are omitted.
func Generate(sheets []model.NestingSheet) []model.Cut {
	var cuts []model.Cut
	for _, s := range sheets {
		cuts = append(cuts, GenerateSheet(s)...)
	}
	return cuts
}

// GenerateSheet produces the cut sequence for a single sheet.
func GenerateSheet(sheet model.NestingSheet) []model.Cut {
	shelves := buildShelves(sheet.Placements)
	if len(shelves) == 0 {
		return nil
	}

	var cuts []model.Cut

	// Pass 1: full-length rips at each shelf top, bottom shelf first.
	for _, sh := range shelves {
		if sh.top >= sheet.SheetWidth-edgeEps {
			continue
		}
		cuts = append(cuts, model.Cut{
			SheetIndex: sheet.SheetIndex,
			Kind:       model.CutRip,
			X1:         0, Y1: sh.top,
			X2: sheet.SheetLength, Y2: sh.top,
		})
	}

	// Pass 2: cross cuts inside each shelf strip, left to right.
	for _, sh := range shelves {
		for _, p := range sh.placements {
			x := p.X + p.Length
			if x >= sheet.SheetLength-edgeEps {
				continue
			}
			cuts = append(cuts, model.Cut{
				SheetIndex: sheet.SheetIndex,
				Kind:       model.CutCross,
				X1:         x, Y1: sh.y,
				X2: x, Y2: sh.top,
			})
		}
	}
	return cuts
}

func buildShelves(placements []model.Placement) []shelf {
	var shelves []shelf
	for _, p := range placements {
		idx := -1
		for i := range shelves {
			if p.Y >= shelves[i].y-shelfTolerance && p.Y <= shelves[i].y+shelfTolerance {
				idx = i
				break
			}
		}
		if idx < 0 {
			shelves = append(shelves, shelf{y: p.Y, top: p.Y})
			idx = len(shelves) - 1
		}
		if top := p.Y + p.Width; top > shelves[idx].top {
			shelves[idx].top = top
		}
		shelves[idx].placements = append(shelves[idx].placements, p)
	}

	sort.Slice(shelves, func(i, j int) bool { return shelves[i].y < shelves[j].y })
	for i := range shelves {
		sort.Slice(shelves[i].placements, func(a, b int) bool {
			return shelves[i].placements[a].X < shelves[i].placements[b].X
		})
	}
	return shelves
}

// EstimateCutTime returns the total saw time in minutes: cutting time
// proportional to total cut length plus a fixed reposition cost per cut.
func EstimateCutTime(cuts []model.Cut, tc TimeConfig) float64 {
	var length float64
	for _, c := range cuts {
		length += c.Length()
	}
	return length*tc.MinutesPerMM + float64(len(cuts))*tc.RepositionMinutes
}

// RenderSheet formats the cut sequence for one sheet as an operator
// checklist.
func RenderSheet(sheet model.NestingSheet, cuts []model.Cut) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Sheet %d (%s, %.0fx%.0f mm)\n",
		sheet.SheetIndex+1, sheet.MaterialKey, sheet.SheetLength, sheet.SheetWidth)

	step := 0
	for _, c := range cuts {
		if c.SheetIndex != sheet.SheetIndex {
			continue
		}
		step++
		switch c.Kind {
		case model.CutRip:
			fmt.Fprintf(&b, "  %2d. rip   at Y=%.1f (full length, %.0f mm)\n", step, c.Y1, c.Length())
		case model.CutCross:
			fmt.Fprintf(&b, "  %2d. cross at X=%.1f (Y %.1f to %.1f, %.0f mm)\n", step, c.X1, c.Y1, c.Y2, c.Length())
		}
	}
	if step == 0 {
		b.WriteString("  no cuts required\n")
	}
	return b.String()
}
