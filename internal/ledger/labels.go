package ledger

import "github.com/erazemk/ladak/internal/model"

// DeletedSuffix marks references to partners or crate types that no longer exist.
const DeletedSuffix = " (deleted)"

// PartnerName returns the partner's name, or a deleted placeholder.
func PartnerName(partners map[string]model.Partner, id string) string {
	if p, ok := partners[id]; ok {
		return p.Name
	}
	return id + DeletedSuffix
}

// CrateTypeLabel returns the crate type's label, or a deleted placeholder.
func CrateTypeLabel(crateTypes map[string]model.CrateType, id string) string {
	if c, ok := crateTypes[id]; ok {
		return c.Label
	}
	return id + DeletedSuffix
}

// CountByCrateType returns how many movements reference the crate type.
func CountByCrateType(movements []model.Movement, crateTypeID string) int {
	n := 0
	for _, m := range movements {
		if m.CrateTypeID == crateTypeID {
			n++
		}
	}
	return n
}
