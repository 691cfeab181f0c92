package api

import (
	"strings"

	"github.com/erazemk/ladak/internal/model"
)

// Write inputs shared by the JSON API and the web forms. Callers run
// Normalize, then ValidateStruct, before touching the store.

// PartnerInput creates a partner. An empty id is generated by the store.
type PartnerInput struct {
	ID      string `json:"id" validate:"max=64"`
	Name    string `json:"name" validate:"required,max=200"`
	Contact string `json:"contact" validate:"max=200"`
	Note    string `json:"note" validate:"max=1000"`
}

// Normalize trims every field.
func (in *PartnerInput) Normalize() {
	in.ID = strings.TrimSpace(in.ID)
	in.Name = strings.TrimSpace(in.Name)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Note = strings.TrimSpace(in.Note)
}

// Partner converts the input to a model partner.
func (in PartnerInput) Partner() model.Partner {
	return model.Partner{ID: in.ID, Name: in.Name, Contact: in.Contact, Note: in.Note}
}

// PartnerPatchInput is a partial partner update; a present name must not be
// blank.
type PartnerPatchInput struct {
	Name    *string `json:"name" validate:"omitempty,min=1,max=200"`
	Contact *string `json:"contact" validate:"omitempty,max=200"`
	Note    *string `json:"note" validate:"omitempty,max=1000"`
}

// Normalize trims the present fields.
func (in *PartnerPatchInput) Normalize() {
	trimPtr(in.Name)
	trimPtr(in.Contact)
	trimPtr(in.Note)
}

// Patch converts the input to a store patch; nil fields stay unchanged.
func (in PartnerPatchInput) Patch() model.PartnerPatch {
	return model.PartnerPatch{Name: in.Name, Contact: in.Contact, Note: in.Note}
}

// CrateTypeInput creates a crate type. The id is uppercased and the label
// defaults to it.
type CrateTypeInput struct {
	ID    string `json:"id" validate:"required,max=32"`
	Label string `json:"label" validate:"max=100"`
}

// Normalize uppercases the id and fills in a missing label.
func (in *CrateTypeInput) Normalize() {
	in.ID = model.NormalizeCrateTypeID(in.ID)
	in.Label = strings.TrimSpace(in.Label)
	if in.Label == "" {
		in.Label = in.ID
	}
}

// CrateTypePatchInput relabels or archives a crate type.
type CrateTypePatchInput struct {
	Label    *string `json:"label" validate:"omitempty,min=1,max=100"`
	Archived *bool   `json:"archived"`
}

// Normalize trims a present label.
func (in *CrateTypePatchInput) Normalize() {
	trimPtr(in.Label)
}

// Patch converts the input to a store patch.
func (in CrateTypePatchInput) Patch() model.CrateTypePatch {
	return model.CrateTypePatch{Label: in.Label, Archived: in.Archived}
}

// MovementInput records a movement. An empty date means today.
type MovementInput struct {
	PartnerID   string `json:"partner_id" validate:"required"`
	CrateTypeID string `json:"crate_type_id" validate:"required"`
	Direction   string `json:"direction" validate:"required,oneof=out in"`
	Qty         int    `json:"qty" validate:"gt=0"`
	Date        string `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Note        string `json:"note" validate:"max=500"`
}

// Normalize trims the fields, uppercases the crate type id and lowercases
// the direction.
func (in *MovementInput) Normalize() {
	in.PartnerID = strings.TrimSpace(in.PartnerID)
	in.CrateTypeID = model.NormalizeCrateTypeID(in.CrateTypeID)
	in.Direction = strings.ToLower(strings.TrimSpace(in.Direction))
	in.Date = strings.TrimSpace(in.Date)
	in.Note = strings.TrimSpace(in.Note)
}

// trimPtr trims a present optional string in place.
func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}
