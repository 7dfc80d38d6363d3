// Package staleness fingerprints engine inputs and detects when a
// stored production result no longer matches them. The fingerprint is
// an FNV-64a hash over a canonical, order-independent encoding of the
// parts, the material palette, and the optimization config; the
// canonical records are kept alongside the hash so a mismatch can be
// explained field by field.
package staleness

import (
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/piwi3910/panelnest/internal/model"
)

const (
	KindPart     = "part"
	KindMaterial = "material"
	KindConfig   = "config"
)

// Compute returns the fingerprint and the canonical record snapshot for
// the given inputs. Equal inputs always produce equal fingerprints
// regardless of slice or map ordering.
func Compute(parts []model.Part, required map[string]int, palette map[string]model.SheetStock, cfg model.OptimizationConfig) (string, []model.FingerprintRecord) {
	records := Canonicalize(parts, required, palette, cfg)

	h := fnv.New64a()
	for _, rec := range records {
		fmt.Fprintf(h, "%s\x1f%s\x1f", rec.Kind, rec.Key)
		for _, f := range rec.Fields {
			fmt.Fprintf(h, "%s=%s\x1f", f.Name, f.Value)
		}
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%016x", h.Sum64()), records
}

// Canonicalize flattens the inputs into deterministic records: parts
// sorted by ID, palette entries sorted by material key, then the config.
func Canonicalize(parts []model.Part, required map[string]int, palette map[string]model.SheetStock, cfg model.OptimizationConfig) []model.FingerprintRecord {
	records := make([]model.FingerprintRecord, 0, len(parts)+len(palette)+1)

	sorted := make([]model.Part, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })
	for _, p := range sorted {
		mult := 1
		if required != nil {
			if m, ok := required[p.ID]; ok && m > 0 {
				mult = m
			}
		}
		records = append(records, model.FingerprintRecord{
			Kind: KindPart,
			Key:  p.ID,
			Fields: []model.RecordField{
				{Name: "name", Value: p.Name},
				{Name: "length", Value: fmt.Sprintf("%.3f", p.Length)},
				{Name: "width", Value: fmt.Sprintf("%.3f", p.Width)},
				{Name: "thickness", Value: fmt.Sprintf("%.3f", p.Thickness)},
				{Name: "quantity", Value: fmt.Sprintf("%d", p.Quantity*mult)},
				{Name: "material", Value: p.MaterialKey},
				{Name: "grain", Value: p.Grain.String()},
			},
		})
	}

	keys := make([]string, 0, len(palette))
	for k := range palette {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s := palette[k]
		records = append(records, model.FingerprintRecord{
			Kind: KindMaterial,
			Key:  k,
			Fields: []model.RecordField{
				{Name: "sheet_length", Value: fmt.Sprintf("%.3f", s.SheetLength)},
				{Name: "sheet_width", Value: fmt.Sprintf("%.3f", s.SheetWidth)},
				{Name: "unit_cost", Value: fmt.Sprintf("%.4f", s.UnitCost)},
			},
		})
	}

	records = append(records, model.FingerprintRecord{
		Kind: KindConfig,
		Key:  "optimization",
		Fields: []model.RecordField{
			{Name: "kerf", Value: fmt.Sprintf("%.3f", cfg.Kerf)},
			{Name: "target_yield", Value: fmt.Sprintf("%.1f", cfg.TargetYieldPercent)},
			{Name: "grain_matching", Value: fmt.Sprintf("%t", cfg.GrainMatching)},
			{Name: "allow_rotation", Value: fmt.Sprintf("%t", cfg.AllowRotation)},
		},
	})
	return records
}

// Check compares a stored result against the current inputs. On a
// mismatch it returns a stale InvalidationState whose reasons describe
// the differing records; otherwise the zero (current) state.
func Check(result *model.ProductionResult, parts []model.Part, required map[string]int, palette map[string]model.SheetStock, cfg model.OptimizationConfig) model.InvalidationState {
	fingerprint, records := Compute(parts, required, palette, cfg)
	if result.Fingerprint == fingerprint {
		return model.InvalidationState{}
	}

	reasons := Diff(result.Snapshot, records)
	if len(reasons) == 0 {
		reasons = []string{"inputs changed since the result was generated"}
	}
	now := time.Now().UTC()
	return model.InvalidationState{InvalidatedAt: &now, Reasons: reasons}
}

// Diff returns human-readable descriptions of the record changes
// between a stored snapshot and the current canonical records.
func Diff(old, current []model.FingerprintRecord) []string {
	type recKey struct{ kind, key string }
	index := func(recs []model.FingerprintRecord) map[recKey]model.FingerprintRecord {
		m := make(map[recKey]model.FingerprintRecord, len(recs))
		for _, r := range recs {
			m[recKey{r.Kind, r.Key}] = r
		}
		return m
	}
	oldIdx, curIdx := index(old), index(current)

	var reasons []string
	for _, r := range old {
		k := recKey{r.Kind, r.Key}
		cur, ok := curIdx[k]
		if !ok {
			reasons = append(reasons, fmt.Sprintf("%s %s removed", r.Kind, label(r)))
			continue
		}
		for _, change := range fieldChanges(r, cur) {
			reasons = append(reasons, fmt.Sprintf("%s %s: %s", r.Kind, label(r), change))
		}
	}
	for _, r := range current {
		if _, ok := oldIdx[recKey{r.Kind, r.Key}]; !ok {
			reasons = append(reasons, fmt.Sprintf("%s %s added", r.Kind, label(r)))
		}
	}
	return reasons
}

// label identifies a record by its key, with the part's human name
// alongside when one exists. The key always appears so a reason can be
// traced back to the exact part id.
func label(r model.FingerprintRecord) string {
	if r.Kind == KindPart {
		for _, f := range r.Fields {
			if f.Name == "name" && f.Value != "" {
				return fmt.Sprintf("%s (%q)", r.Key, f.Value)
			}
		}
	}
	return r.Key
}

func fieldChanges(old, current model.FingerprintRecord) []string {
	curFields := make(map[string]string, len(current.Fields))
	for _, f := range current.Fields {
		curFields[f.Name] = f.Value
	}
	var changes []string
	for _, f := range old.Fields {
		if cur, ok := curFields[f.Name]; ok && cur != f.Value {
			changes = append(changes, fmt.Sprintf("%s changed %s -> %s", f.Name, f.Value, cur))
		}
	}
	return changes
}
