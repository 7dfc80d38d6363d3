package project

import (
	"path/filepath"
	"testing"

	"github.com/piwi3910/panelnest/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "kitchen.json")

	p := New("Kitchen")
	part := model.NewPart("Side", 600, 400, 18, 2, "MDF-18")
	p.Parts = []model.Part{part}
	p.Palette["MDF-18"] = model.SheetStock{MaterialKey: "MDF-18", SheetLength: 2800, SheetWidth: 2070, UnitCost: 45}
	p.RequiredQty = map[string]int{part.ID: 3}

	require.NoError(t, Save(path, p))

	loaded, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "Kitchen", loaded.Name)
	require.Len(t, loaded.Parts, 1)
	assert.Equal(t, part.ID, loaded.Parts[0].ID)
	assert.Equal(t, 3, loaded.RequiredQty[part.ID])
	assert.Equal(t, 2800.0, loaded.Palette["MDF-18"].SheetLength)
	assert.Equal(t, model.DefaultConfig(), loaded.Config)
	assert.Nil(t, loaded.Result)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoad_NilPaletteBecomesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bare.json")
	require.NoError(t, Save(path, &Project{Name: "Bare"}))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.NotNil(t, loaded.Palette)
}

func TestPalette_SaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "palette.json")
	palette := map[string]model.SheetStock{
		"PLY-12": {MaterialKey: "PLY-12", SheetLength: 2440, SheetWidth: 1220, UnitCost: 60},
	}

	require.NoError(t, SavePalette(path, palette))

	loaded, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, palette, loaded)
}

func TestLoadPalette_MissingFileIsEmpty(t *testing.T) {
	loaded, err := LoadPalette(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestMergePalette_KeepsExistingKeys(t *testing.T) {
	existing := map[string]model.SheetStock{
		"MDF-18": {MaterialKey: "MDF-18", SheetLength: 2800, SheetWidth: 2070, UnitCost: 45},
	}
	imported := map[string]model.SheetStock{
		"MDF-18": {MaterialKey: "MDF-18", SheetLength: 3050, SheetWidth: 2070, UnitCost: 50},
		"PLY-12": {MaterialKey: "PLY-12", SheetLength: 2440, SheetWidth: 1220, UnitCost: 60},
	}

	merged := MergePalette(existing, imported)

	assert.Len(t, merged, 2)
	assert.Equal(t, 2800.0, merged["MDF-18"].SheetLength, "existing entry wins")
	assert.Equal(t, 60.0, merged["PLY-12"].UnitCost)
}
