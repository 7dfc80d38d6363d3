package engine

import (
	"fmt"
	"sort"

	"github.com/piwi3910/panelnest/internal/model"
)

// QuantityMap maps a part id to the required-quantity multiplier of its
// owning item. Parts without an entry default to a multiplier of 1.
type QuantityMap map[string]int

func (q QuantityMap) multiplier(partID string) int {
	if q == nil {
		return 1
	}
	if m, ok := q[partID]; ok {
		return m
	}
	return 1
}

// unitPart is one discrete placement candidate expanded from a Part.
// Seq is the 1-based expansion index used for deterministic tie-breaks.
type unitPart struct {
	model.Part
	UnitID string
	Seq    int
}

// materialGroup holds the expanded unit parts for one material key.
type materialGroup struct {
	materialKey string
	units       []unitPart
	errs        []error
}

// expandGroups buckets parts by material key and expands each into
// multiplier x quantity unit parts. Parts with non-positive dimensions,
// quantity, or multiplier fail their group with a ValidationError; the
// remaining groups are unaffected.
func expandGroups(parts []model.Part, required QuantityMap) []materialGroup {
	byKey := make(map[string]*materialGroup)
	var order []string

	group := func(key string) *materialGroup {
		g, ok := byKey[key]
		if !ok {
			g = &materialGroup{materialKey: key}
			byKey[key] = g
			order = append(order, key)
		}
		return g
	}

	for _, p := range parts {
		g := group(p.MaterialKey)

		if err := validatePart(p, required.multiplier(p.ID)); err != nil {
			g.errs = append(g.errs, err)
			continue
		}

		total := p.Quantity * required.multiplier(p.ID)
		for i := 1; i <= total; i++ {
			g.units = append(g.units, unitPart{
				Part:   p,
				UnitID: fmt.Sprintf("%s#%d", p.ID, i),
				Seq:    i,
			})
		}
	}

	sort.Strings(order)
	groups := make([]materialGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, *byKey[key])
	}
	return groups
}

func validatePart(p model.Part, multiplier int) error {
	switch {
	case p.Length <= 0:
		return &model.ValidationError{PartID: p.ID, Reason: fmt.Sprintf("length must be positive, got %.3f", p.Length)}
	case p.Width <= 0:
		return &model.ValidationError{PartID: p.ID, Reason: fmt.Sprintf("width must be positive, got %.3f", p.Width)}
	case p.Thickness < 0:
		return &model.ValidationError{PartID: p.ID, Reason: fmt.Sprintf("thickness must not be negative, got %.3f", p.Thickness)}
	case p.Quantity < 1:
		return &model.ValidationError{PartID: p.ID, Reason: fmt.Sprintf("quantity must be at least 1, got %d", p.Quantity)}
	case multiplier < 1:
		return &model.ValidationError{PartID: p.ID, Reason: fmt.Sprintf("required-quantity multiplier must be at least 1, got %d", multiplier)}
	}
	return nil
}

// sortUnits orders unit parts by the fixed placement key: area
// descending, then length descending, then width descending, then part
// id ascending, then expansion index ascending. Map iteration order
// must never leak into this ordering.
func sortUnits(units []unitPart) {
	sort.SliceStable(units, func(i, j int) bool {
		ai, aj := units[i].Area(), units[j].Area()
		if ai != aj {
			return ai > aj
		}
		if units[i].Length != units[j].Length {
			return units[i].Length > units[j].Length
		}
		if units[i].Width != units[j].Width {
			return units[i].Width > units[j].Width
		}
		if units[i].ID != units[j].ID {
			return units[i].ID < units[j].ID
		}
		return units[i].Seq < units[j].Seq
	})
}
