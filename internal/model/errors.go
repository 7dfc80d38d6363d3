package model

import (
	"fmt"
	"strings"
)

// ValidationError reports a part with unusable dimensions or quantity.
// It fails the part's material group; other groups are still processed.
type ValidationError struct {
	PartID string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("part %s: %s", e.PartID, e.Reason)
}

// UnplaceablePartError reports a part that cannot fit any sheet of its
// material in any permitted orientation. This is fatal for the group's
// production run, never a silently dropped item.
type UnplaceablePartError struct {
	PartID       string
	MaterialKey  string
	Orientations []string // orientations that were attempted, e.g. "2000x3000"
}

func (e *UnplaceablePartError) Error() string {
	return fmt.Sprintf("part %s cannot be placed on any %s sheet (tried %s)",
		e.PartID, e.MaterialKey, strings.Join(e.Orientations, ", "))
}

// MissingMaterialMappingError reports a material key the palette cannot
// resolve to a physical sheet.
type MissingMaterialMappingError struct {
	MaterialKey string
}

func (e *MissingMaterialMappingError) Error() string {
	return fmt.Sprintf("no sheet stock mapped for material %q", e.MaterialKey)
}

// NewGroupError converts a typed engine error into the serializable
// per-group form carried on results.
func NewGroupError(materialKey string, err error) GroupError {
	kind := ErrKindValidation
	switch err.(type) {
	case *UnplaceablePartError:
		kind = ErrKindUnplaceable
	case *MissingMaterialMappingError:
		kind = ErrKindMissingMaterial
	}
	return GroupError{MaterialKey: materialKey, Kind: kind, Message: err.Error()}
}
