package model

// Partner is a customer or supplier that borrows crates.
type Partner struct {
	ID      string `json:"id" db:"id"`
	Name    string `json:"name" db:"name"`
	Contact string `json:"contact,omitempty" db:"contact"`
	Note    string `json:"note,omitempty" db:"note"`
}

// PartnerPatch is a partial partner update. Nil fields are left unchanged;
// an empty Contact or Note clears the stored value.
type PartnerPatch struct {
	Name    *string `json:"name,omitempty"`
	Contact *string `json:"contact,omitempty"`
	Note    *string `json:"note,omitempty"`
}

// PartnersByID indexes partners by id.
func PartnersByID(partners []Partner) map[string]Partner {
	m := make(map[string]Partner, len(partners))
	for _, p := range partners {
		m[p.ID] = p
	}
	return m
}
