// Package project handles persistence of panel nesting projects and the
// shared material palette as JSON files.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/piwi3910/panelnest/internal/model"
)

// Project bundles the inputs and the latest results of a nesting job.
// Estimation and Result are nil until the corresponding run succeeds.
type Project struct {
	Name        string                      `json:"name"`
	Parts       []model.Part                `json:"parts"`
	Palette     map[string]model.SheetStock `json:"palette"`
	RequiredQty map[string]int              `json:"required_qty,omitempty"` // per-part multiplier, part ID -> count
	Config      model.OptimizationConfig    `json:"config"`
	Estimation  *model.EstimationResult     `json:"estimation,omitempty"`
	Result      *model.ProductionResult     `json:"result,omitempty"`
	Staleness   model.InvalidationState     `json:"staleness,omitempty"`
}

// New returns an empty project with the default configuration.
func New(name string) *Project {
	return &Project{
		Name:    name,
		Palette: make(map[string]model.SheetStock),
		Config:  model.DefaultConfig(),
	}
}

// DefaultPalettePath returns the default file path for the shared
// material palette, located at ~/.panelnest/palette.json.
func DefaultPalettePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".panelnest", "palette.json"), nil
}

// Save writes the project to the given JSON file, creating parent
// directories if they do not exist.
func Save(path string, p *Project) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Load reads a project from the given JSON file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project %s: %w", path, err)
	}
	if p.Palette == nil {
		p.Palette = make(map[string]model.SheetStock)
	}
	return &p, nil
}

// SavePalette writes a material palette to the specified JSON file.
func SavePalette(path string, palette map[string]model.SheetStock) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(palette, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// LoadPalette reads a material palette from the specified JSON file.
// A missing file yields an empty palette rather than an error.
func LoadPalette(path string) (map[string]model.SheetStock, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]model.SheetStock), nil
		}
		return nil, err
	}
	var palette map[string]model.SheetStock
	if err := json.Unmarshal(data, &palette); err != nil {
		return nil, fmt.Errorf("parse palette %s: %w", path, err)
	}
	return palette, nil
}

// MergePalette merges imported stock entries into an existing palette.
// Existing material keys are kept; only new keys are added.
func MergePalette(existing, imported map[string]model.SheetStock) map[string]model.SheetStock {
	merged := make(map[string]model.SheetStock, len(existing)+len(imported))
	for k, v := range existing {
		merged[k] = v
	}
	for k, v := range imported {
		if _, ok := merged[k]; !ok {
			merged[k] = v
		}
	}
	return merged
}
