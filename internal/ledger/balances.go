package ledger

import (
	"math"
	"sort"

	"github.com/erazemk/ladak/internal/model"
)

// Key identifies a (partner, crate type) pair.
type Key struct {
	PartnerID   string
	CrateTypeID string
}

// Balances maps each observed pair to its net out-minus-in count. Pairs with
// no movements are absent and read as zero.
type Balances map[Key]int

// Get returns the balance for a pair, zero when absent.
func (b Balances) Get(partnerID, crateTypeID string) int {
	return b[Key{PartnerID: partnerID, CrateTypeID: crateTypeID}]
}

// ComputeBalances sums the signed contribution of every movement: +qty for
// out, -qty for in. A non-finite quantity contributes zero; fractional
// quantities round to the nearest whole crate and magnitudes are capped at
// MaxContribution.
func ComputeBalances(movements []model.Movement) Balances {
	balances := make(Balances)
	for _, m := range movements {
		key := Key{PartnerID: m.PartnerID, CrateTypeID: m.CrateTypeID}
		balances[key] += contribution(m)
	}
	return balances
}

// MaxContribution bounds a single movement's effect on a balance.
const MaxContribution = math.MaxInt32

func contribution(m model.Movement) int {
	if math.IsNaN(m.Qty) || math.IsInf(m.Qty, 0) {
		return 0
	}
	qty := int(math.Max(-MaxContribution, math.Min(MaxContribution, math.Round(m.Qty))))
	if m.Direction == model.DirectionOut {
		return qty
	}
	return -qty
}

// BalanceRow is one partner's line in the balance table.
type BalanceRow struct {
	PartnerID   string         `json:"partner_id"`
	PartnerName string         `json:"partner_name"`
	Sums        map[string]int `json:"sums"`
	Total       int            `json:"total"`
}

// BalanceRows builds one row per known partner, including partners without
// movements, with a column per known crate type. Rows are ordered by total
// descending; ties keep the partners' input order.
func BalanceRows(balances Balances, partners []model.Partner, crateTypes []model.CrateType) []BalanceRow {
	rows := make([]BalanceRow, 0, len(partners))
	for _, p := range partners {
		row := BalanceRow{
			PartnerID:   p.ID,
			PartnerName: p.Name,
			Sums:        make(map[string]int, len(crateTypes)),
		}
		for _, ct := range crateTypes {
			v := balances.Get(p.ID, ct.ID)
			row.Sums[ct.ID] = v
			row.Total += v
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	return rows
}

// Outstanding returns the sum of positive partner totals: crates currently
// out with partners who have not returned them.
func Outstanding(rows []BalanceRow) int {
	total := 0
	for _, r := range rows {
		if r.Total > 0 {
			total += r.Total
		}
	}
	return total
}
