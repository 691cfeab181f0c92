package store

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/erazemk/ladak/internal/model"
)

// SortPartners orders partners by name using Hungarian collation, then by id.
// Collators are not safe for concurrent use, so one is built per call.
func SortPartners(partners []model.Partner) {
	c := collate.New(language.Hungarian, collate.IgnoreCase)
	sort.SliceStable(partners, func(i, j int) bool {
		if r := c.CompareString(partners[i].Name, partners[j].Name); r != 0 {
			return r < 0
		}
		return partners[i].ID < partners[j].ID
	})
}
