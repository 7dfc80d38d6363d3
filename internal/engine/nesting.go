package engine

import (
	"context"
	"fmt"

	"github.com/piwi3910/panelnest/internal/model"
)

// fitEps is the slack allowed when testing whether a part fits, so that
// exact-fit placements are not rejected over float rounding.
const fitEps = 0.001

// nestState is the lifecycle of a material group's nesting run.
type nestState int

const (
	statePending nestState = iota
	stateSorting
	statePlacing
	stateSealed
)

// orientation is one candidate way to lay a unit part on the sheet.
type orientation struct {
	length  float64
	width   float64
	rotated bool
}

func (o orientation) String() string {
	return fmt.Sprintf("%.0fx%.0f", o.length, o.width)
}

// shelf is a horizontal band of the sheet. Parts are placed side by
// side along the length axis; the shelf height is fixed by the first
// part placed in it.
type shelf struct {
	y      float64
	height float64
	cursor float64 // next free X position
}

// sheetBuilder accumulates placements for one physical sheet while the
// group is in the Placing state.
type sheetBuilder struct {
	shelves    []shelf
	placements []model.Placement
	yCursor    float64 // Y where the next shelf would open
}

// groupNester runs the Pending -> Sorting -> Placing -> Sealed state
// machine for a single material group. Sealing produces immutable
// NestingSheet values; the builder is not reusable afterwards.
type groupNester struct {
	stock  model.SheetStock
	cfg    model.OptimizationConfig
	state  nestState
	sheets []*sheetBuilder
}

func newGroupNester(stock model.SheetStock, cfg model.OptimizationConfig) *groupNester {
	return &groupNester{stock: stock, cfg: cfg, state: statePending}
}

// nest places every unit part of the group and seals the layout.
// The context is checked between parts; cancellation discards all
// in-progress state without side effects.
func (n *groupNester) nest(ctx context.Context, units []unitPart) ([]model.NestingSheet, error) {
	if n.state != statePending {
		return nil, fmt.Errorf("material group %s already nested", n.stock.MaterialKey)
	}

	n.state = stateSorting
	sorted := make([]unitPart, len(units))
	copy(sorted, units)
	sortUnits(sorted)

	n.state = statePlacing
	for _, u := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := n.place(u); err != nil {
			return nil, err
		}
	}

	return n.seal(), nil
}

// orientations returns the candidate orientations for a part in
// deterministic order. Grain matching locks a grained part to the
// orientation that keeps its grain parallel to the sheet length axis;
// optimization rotation is only a candidate for unconstrained parts
// when rotation is enabled.
func (n *groupNester) orientations(p model.Part) []orientation {
	normal := orientation{length: p.Length, width: p.Width, rotated: false}
	rotated := orientation{length: p.Width, width: p.Length, rotated: true}

	if n.cfg.GrainMatching {
		switch p.Grain {
		case model.GrainLength:
			return []orientation{normal}
		case model.GrainWidth:
			return []orientation{rotated}
		}
	}
	if n.cfg.AllowRotation && p.Length != p.Width {
		return []orientation{normal, rotated}
	}
	return []orientation{normal}
}

// place finds a position for one unit part: first on an open shelf of
// the current sheet, then on a new shelf, then on a fresh sheet. A part
// that cannot fit even an empty sheet in any permitted orientation is a
// hard error, never a dropped item.
func (n *groupNester) place(u unitPart) error {
	candidates := n.orientations(u.Part)

	if len(n.sheets) == 0 {
		n.sheets = append(n.sheets, &sheetBuilder{})
	}
	sheet := n.sheets[len(n.sheets)-1]

	// Open shelves first, in the order they were created.
	for i := range sheet.shelves {
		s := &sheet.shelves[i]
		for _, o := range candidates {
			if n.fitsShelf(*s, o) {
				n.placeAt(sheet, s, u, o, len(n.sheets)-1)
				return nil
			}
		}
	}

	// No open shelf fits: open a new shelf on the current sheet.
	for _, o := range candidates {
		if n.fitsNewShelf(sheet, o) {
			s := n.openShelf(sheet, o.width)
			n.placeAt(sheet, s, u, o, len(n.sheets)-1)
			return nil
		}
	}

	// No shelf fits this sheet: open a fresh sheet of the same material.
	fresh := &sheetBuilder{}
	for _, o := range candidates {
		if n.fitsNewShelf(fresh, o) {
			n.sheets = append(n.sheets, fresh)
			s := n.openShelf(fresh, o.width)
			n.placeAt(fresh, s, u, o, len(n.sheets)-1)
			return nil
		}
	}

	attempted := make([]string, 0, len(candidates))
	for _, o := range candidates {
		attempted = append(attempted, o.String())
	}
	return &model.UnplaceablePartError{
		PartID:       u.ID,
		MaterialKey:  n.stock.MaterialKey,
		Orientations: attempted,
	}
}

// fitsShelf reports whether the orientation fits the remaining run of
// an open shelf. The placement plus its kerf margin must stay inside
// the sheet, and the part must not be taller than the shelf.
func (n *groupNester) fitsShelf(s shelf, o orientation) bool {
	if o.width > s.height+fitEps {
		return false
	}
	return s.cursor+o.length+n.cfg.Kerf <= n.stock.SheetLength+fitEps
}

// fitsNewShelf reports whether a shelf of the orientation's height can
// still open on the sheet, consuming kerf height from the shelf below.
func (n *groupNester) fitsNewShelf(sheet *sheetBuilder, o orientation) bool {
	if o.length+n.cfg.Kerf > n.stock.SheetLength+fitEps {
		return false
	}
	return sheet.yCursor+o.width+n.cfg.Kerf <= n.stock.SheetWidth+fitEps
}

func (n *groupNester) openShelf(sheet *sheetBuilder, height float64) *shelf {
	sheet.shelves = append(sheet.shelves, shelf{y: sheet.yCursor, height: height})
	sheet.yCursor += height + n.cfg.Kerf
	return &sheet.shelves[len(sheet.shelves)-1]
}

func (n *groupNester) placeAt(sheet *sheetBuilder, s *shelf, u unitPart, o orientation, sheetIdx int) {
	sheet.placements = append(sheet.placements, model.Placement{
		PartID:     u.ID,
		PartName:   u.Name,
		UnitID:     u.UnitID,
		SheetIndex: sheetIdx,
		X:          s.cursor,
		Y:          s.y,
		Length:     o.length,
		Width:      o.width,
		Rotated:    o.rotated,
	})
	s.cursor += o.length + n.cfg.Kerf
}

// seal freezes the layout into immutable NestingSheet values and
// computes per-sheet utilization. Sheet indexes are local to the group;
// the caller renumbers them across groups.
func (n *groupNester) seal() []model.NestingSheet {
	n.state = stateSealed

	sealed := make([]model.NestingSheet, 0, len(n.sheets))
	for i, sb := range n.sheets {
		placements := make([]model.Placement, len(sb.placements))
		copy(placements, sb.placements)

		ns := model.NestingSheet{
			SheetIndex:  i,
			MaterialKey: n.stock.MaterialKey,
			SheetLength: n.stock.SheetLength,
			SheetWidth:  n.stock.SheetWidth,
			Placements:  placements,
		}
		util := 0.0
		if area := ns.SheetArea(); area > 0 {
			util = (ns.PlacedArea() / area) * 100.0
		}
		if util < 0 {
			util = 0
		}
		if util > 100 {
			util = 100
		}
		ns.UtilizationPercent = util
		sealed = append(sealed, ns)
	}
	return sealed
}
