package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/erazemk/ladak/internal/model"
)

var (
	knownPartners = map[string]model.Partner{
		"P1": {ID: "P1", Name: "Partner One"},
		"P2": {ID: "P2", Name: "Partner Two"},
	}
	knownCrateTypes = map[string]model.CrateType{
		"M10": {ID: "M10", Label: "M10"},
		"E2":  {ID: "E2", Label: "E2", Archived: true},
	}
	fixtures = []model.Movement{
		{ID: "1", PartnerID: "P1", CrateTypeID: "M10", Direction: model.DirectionOut, Qty: 5, Date: "2024-03-15"},
		{ID: "2", PartnerID: "P2", CrateTypeID: "E2", Direction: model.DirectionIn, Qty: 2, Date: "2024-02-01"},
		{ID: "3", PartnerID: "GONE", CrateTypeID: "M10", Direction: model.DirectionOut, Qty: 1, Date: "2024-04-20"},
		{ID: "4", PartnerID: "P1", CrateTypeID: "E2", Direction: model.DirectionOut, Qty: 3},
	}
)

func matches(f Filter, m model.Movement) bool {
	return MatchesFilters(m, f, knownPartners, knownCrateTypes)
}

func TestEmptyFilterPassesEverything(t *testing.T) {
	for _, m := range fixtures {
		assert.True(t, matches(Filter{}, m), "movement %s", m.ID)
	}
	assert.False(t, Filter{}.Active())
}

func TestPartnerFilter(t *testing.T) {
	f := Filter{PartnerID: "P1"}
	assert.True(t, matches(f, fixtures[0]))
	assert.False(t, matches(f, fixtures[1]))
	assert.False(t, matches(f, fixtures[2]))
	assert.True(t, matches(f, fixtures[3]))
}

func TestStalePartnerFilterIsNoOp(t *testing.T) {
	f := Filter{PartnerID: "DELETED"}
	for _, m := range fixtures {
		assert.True(t, matches(f, m), "movement %s", m.ID)
	}
}

func TestCrateTypeFilter(t *testing.T) {
	f := Filter{CrateTypeID: "E2"}
	assert.False(t, matches(f, fixtures[0]))
	assert.True(t, matches(f, fixtures[1]), "archived crate types still filter")
	assert.True(t, matches(f, fixtures[3]))

	stale := Filter{CrateTypeID: "X99"}
	for _, m := range fixtures {
		assert.True(t, matches(stale, m), "movement %s", m.ID)
	}
}

func TestDateWindow(t *testing.T) {
	m := model.Movement{PartnerID: "P1", CrateTypeID: "M10", Date: "2024-03-15"}
	assert.True(t, matches(Filter{From: "2024-03-01", To: "2024-03-31"}, m))
	assert.False(t, matches(Filter{From: "2024-03-01", To: "2024-03-10"}, m))
	assert.True(t, matches(Filter{From: "2024-03-15", To: "2024-03-15"}, m), "bounds are inclusive")
	assert.False(t, matches(Filter{From: "2024-03-16"}, m))
}

func TestMissingDate(t *testing.T) {
	m := fixtures[3]
	assert.False(t, matches(Filter{From: "2024-01-01"}, m))
	assert.True(t, matches(Filter{To: "2024-01-01"}, m))
	assert.True(t, matches(Filter{}, m))
}

func TestFiltersAreANDed(t *testing.T) {
	f := Filter{PartnerID: "P1", CrateTypeID: "M10", From: "2024-03-01"}
	got := FilterMovements(fixtures, f, knownPartners, knownCrateTypes)
	if assert.Len(t, got, 1) {
		assert.Equal(t, "1", got[0].ID)
	}
}

func TestFilterMovementsKeepsOrder(t *testing.T) {
	got := FilterMovements(fixtures, Filter{CrateTypeID: "M10"}, knownPartners, knownCrateTypes)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "1", got[0].ID)
		assert.Equal(t, "3", got[1].ID)
	}
}
