package model

import "strings"

// CrateType is a category of reusable crate, keyed by a short business code.
// Archived types are hidden from new movement entry but stay valid for
// history and filters.
type CrateType struct {
	ID       string `json:"id" db:"id"`
	Label    string `json:"label" db:"label"`
	Archived bool   `json:"archived" db:"archived"`
	HasImage bool   `json:"has_image" db:"has_image"`
}

// CrateTypePatch is a partial crate type update.
type CrateTypePatch struct {
	Label    *string `json:"label,omitempty"`
	Archived *bool   `json:"archived,omitempty"`
}

// NormalizeCrateTypeID trims and uppercases a crate type code.
func NormalizeCrateTypeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// CrateTypesByID indexes crate types by id.
func CrateTypesByID(types []CrateType) map[string]CrateType {
	m := make(map[string]CrateType, len(types))
	for _, c := range types {
		m[c.ID] = c
	}
	return m
}

// ActiveCrateTypes returns the crate types that are offered for new movements.
func ActiveCrateTypes(types []CrateType) []CrateType {
	var active []CrateType
	for _, c := range types {
		if !c.Archived {
			active = append(active, c)
		}
	}
	return active
}
