package web

import (
	"net/http"

	"github.com/erazemk/ladak/internal/api"
	"github.com/erazemk/ladak/internal/export"
	"github.com/erazemk/ladak/internal/store"
)

// BalancesPage handles GET /balances.
func (s *Server) BalancesPage(w http.ResponseWriter, r *http.Request) {
	data := &struct {
		PageData
		api.BalancesView
	}{PageData: s.page(r, "Balances", "balances")}

	snap, err := store.LoadAll(r.Context(), s.Store)
	if err != nil {
		s.Log.Error().Err(err).Msg("loading balances")
		data.Error = "Could not load data: " + err.Error()
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "balances.html", data)
		return
	}

	data.BalancesView = api.ComputeBalancesView(snap)
	s.Templates.Render(w, "balances.html", data)
}

// ExportCSV handles GET /export.csv.
func (s *Server) ExportCSV(w http.ResponseWriter, r *http.Request) {
	charset := s.Charset
	if c := r.URL.Query().Get("charset"); c != "" {
		charset = c
	}
	if !export.SupportedCharset(charset) {
		redirectError(w, r, "/balances", "Unsupported charset "+charset+".")
		return
	}

	snap, err := store.LoadAll(r.Context(), s.Store)
	if err != nil {
		redirectError(w, r, "/balances", api.StoreError(s.Log, "movement", "", err).Summary())
		return
	}

	if apiErr := api.WriteExport(w, s.Log, charset, snap, s.Now()); apiErr != nil {
		redirectError(w, r, "/balances", apiErr.Summary())
		return
	}
	s.Log.Info().Str("user", userName(r)).Int("movements", len(snap.Movements)).Msg("ledger exported")
}
