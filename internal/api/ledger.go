package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/export"
	"github.com/erazemk/ladak/internal/ledger"
	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

// LedgerHandler serves derived views: balances and the CSV export.
type LedgerHandler struct {
	Store   store.Store
	Log     zerolog.Logger
	Charset string
	Now     func() time.Time
}

// BalancesView is the balance table: one column per crate type, one row per
// partner.
type BalancesView struct {
	CrateTypes  []model.CrateType   `json:"crate_types"`
	Rows        []ledger.BalanceRow `json:"rows"`
	Outstanding int                 `json:"outstanding"`
}

// ComputeBalancesView derives the balance table from a snapshot.
func ComputeBalancesView(snap *store.Snapshot) BalancesView {
	rows := ledger.BalanceRows(ledger.ComputeBalances(snap.Movements), snap.Partners, snap.CrateTypes)
	return BalancesView{
		CrateTypes:  snap.CrateTypes,
		Rows:        rows,
		Outstanding: ledger.Outstanding(rows),
	}
}

// Balances handles GET /api/balances.
func (h *LedgerHandler) Balances(w http.ResponseWriter, r *http.Request) {
	snap, err := store.LoadAll(r.Context(), h.Store)
	if err != nil {
		jsonError(w, StoreError(h.Log, "balance", "", err))
		return
	}
	jsonResponse(w, http.StatusOK, ComputeBalancesView(snap))
}

// Export handles GET /api/export.csv. ?charset= overrides the configured
// output encoding.
func (h *LedgerHandler) Export(w http.ResponseWriter, r *http.Request) {
	charset := h.Charset
	if c := r.URL.Query().Get("charset"); c != "" {
		charset = c
	}
	if !export.SupportedCharset(charset) {
		jsonError(w, errValidation(map[string]string{"charset": fmt.Sprintf("unsupported charset %q", charset)}))
		return
	}

	snap, err := store.LoadAll(r.Context(), h.Store)
	if err != nil {
		jsonError(w, StoreError(h.Log, "movement", "", err))
		return
	}

	if apiErr := WriteExport(w, h.Log, charset, snap, h.Now()); apiErr != nil {
		jsonError(w, apiErr)
		return
	}
	h.Log.Info().Str("user", actor(r)).Int("movements", len(snap.Movements)).Msg("ledger exported")
}

// WriteExport encodes the CSV export and sends it as a file download. An
// export the charset cannot represent is rejected before anything is written.
func WriteExport(w http.ResponseWriter, log zerolog.Logger, charset string, snap *store.Snapshot, now time.Time) *Error {
	data, err := export.Encode(charset, snap.Partners, snap.CrateTypes, snap.Movements)
	if err != nil {
		log.Warn().Err(err).Str("charset", charset).Msg("encoding export")
		return errValidation(map[string]string{"charset": fmt.Sprintf("export cannot be encoded as %s: %v", charset, err)})
	}

	w.Header().Set("Content-Type", export.ContentType(charset))
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(now)))
	if _, err := w.Write(data); err != nil {
		log.Error().Err(err).Msg("writing export")
	}
	return nil
}
