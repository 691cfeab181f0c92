package ledger

import "github.com/erazemk/ladak/internal/model"

// Filter narrows a movement list. Empty fields impose no constraint.
type Filter struct {
	PartnerID   string `json:"partner_id,omitempty"`
	CrateTypeID string `json:"crate_type_id,omitempty"`
	From        string `json:"from,omitempty"`
	To          string `json:"to,omitempty"`
}

// Active reports whether any constraint is set.
func (f Filter) Active() bool {
	return f.PartnerID != "" || f.CrateTypeID != "" || f.From != "" || f.To != ""
}

// MatchesFilters reports whether m passes f.
//
// A partner or crate type filter only applies while the referenced id is in
// the known set; a filter left pointing at a deleted entity degrades to no
// filter. Dates are ISO YYYY-MM-DD and compare as strings. A movement without
// a date compares as "", so it fails any From bound and passes any To bound.
func MatchesFilters(m model.Movement, f Filter, partners map[string]model.Partner, crateTypes map[string]model.CrateType) bool {
	partnerOK := true
	if f.PartnerID != "" {
		if _, known := partners[f.PartnerID]; known {
			partnerOK = m.PartnerID == f.PartnerID
		}
	}

	typeOK := true
	if f.CrateTypeID != "" {
		if _, known := crateTypes[f.CrateTypeID]; known {
			typeOK = m.CrateTypeID == f.CrateTypeID
		}
	}

	fromOK := f.From == "" || m.Date >= f.From
	toOK := f.To == "" || m.Date <= f.To

	return partnerOK && typeOK && fromOK && toOK
}

// FilterMovements returns the movements that pass f, in input order.
func FilterMovements(movements []model.Movement, f Filter, partners map[string]model.Partner, crateTypes map[string]model.CrateType) []model.Movement {
	out := make([]model.Movement, 0, len(movements))
	for _, m := range movements {
		if MatchesFilters(m, f, partners, crateTypes) {
			out = append(out, m)
		}
	}
	return out
}
