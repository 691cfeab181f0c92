package web

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/erazemk/ladak/internal/api"
	"github.com/erazemk/ladak/internal/ledger"
	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

type movementsPage struct {
	PageData
	Partners   []model.Partner
	CrateTypes []model.CrateType
	Active     []model.CrateType
	Filter     ledger.Filter
	Movements  []api.MovementView
	Total      int
	Shown      int
	More       bool
	MoreURL    string
	Return     string
	Today      string
}

// MovementsPage handles GET /movements: the entry form, the filter bar and
// the paged movement table.
func (s *Server) MovementsPage(w http.ResponseWriter, r *http.Request) {
	data := &movementsPage{
		PageData: s.page(r, "Movements", "movements"),
		Filter:   api.ParseFilter(r),
		Return:   r.URL.RequestURI(),
		Today:    s.Now().Format(model.DateLayout),
	}

	snap, err := store.LoadAll(r.Context(), s.Store)
	if err != nil {
		s.Log.Error().Err(err).Msg("loading movements")
		data.Error = "Could not load data: " + err.Error()
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "movements.html", data)
		return
	}
	data.Partners = snap.Partners
	data.CrateTypes = snap.CrateTypes
	data.Active = model.ActiveCrateTypes(snap.CrateTypes)

	f := data.Filter
	if f.From != "" && !validDate(f.From) || f.To != "" && !validDate(f.To) {
		data.Error = "Dates must be in format YYYY-MM-DD."
		f.From, f.To = "", ""
	}

	shown, _ := strconv.Atoi(r.URL.Query().Get("show"))
	filtered := ledger.FilterMovements(snap.Movements, f, snap.PartnersByID(), snap.CrateTypesByID())
	data.Total = len(filtered)
	data.Shown, data.More = ledger.Page(len(filtered), shown)
	data.Movements = api.ViewMovements(filtered[:data.Shown], snap)
	if data.More {
		data.MoreURL = moreURL(data.Filter, ledger.NextPage(len(filtered), data.Shown))
	}

	s.Templates.Render(w, "movements.html", data)
}

func moreURL(f ledger.Filter, show int) string {
	q := url.Values{}
	for k, v := range map[string]string{
		"partner_id":    f.PartnerID,
		"crate_type_id": f.CrateTypeID,
		"from":          f.From,
		"to":            f.To,
	} {
		if v != "" {
			q.Set(k, v)
		}
	}
	q.Set("show", strconv.Itoa(show))
	return "/movements?" + q.Encode()
}

func validDate(s string) bool {
	return api.ValidateStruct(struct {
		D string `json:"date" validate:"datetime=2006-01-02"`
	}{s}) == nil
}

// MovementCreateSubmit handles POST /movements. Any signed-in user may record
// movements; the user's name is stored as driver.
func (s *Server) MovementCreateSubmit(w http.ResponseWriter, r *http.Request) {
	ret := back(r, "/movements")

	qty, err := strconv.Atoi(r.FormValue("qty"))
	if err != nil {
		redirectError(w, r, ret, "Quantity must be a whole number.")
		return
	}
	in := api.MovementInput{
		PartnerID:   r.FormValue("partner_id"),
		CrateTypeID: r.FormValue("crate_type_id"),
		Direction:   r.FormValue("direction"),
		Qty:         qty,
		Date:        r.FormValue("date"),
		Note:        r.FormValue("note"),
	}
	in.Normalize()
	if apiErr := api.ValidateStruct(in); apiErr != nil {
		redirectError(w, r, ret, apiErr.Summary())
		return
	}

	if _, apiErr := api.RecordMovement(r.Context(), s.Store, s.Metrics, s.Log, s.Now(), userName(r), in); apiErr != nil {
		redirectError(w, r, ret, apiErr.Summary())
		return
	}
	redirectOK(w, r, ret, "Movement saved.")
}

// MovementDeleteSubmit handles POST /movements/{id}/delete (admin only).
func (s *Server) MovementDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	ret := back(r, "/movements")
	id := r.PathValue("id")

	if err := s.Store.DeleteMovement(r.Context(), id); err != nil {
		redirectError(w, r, ret, api.StoreError(s.Log, "movement", id, err).Summary())
		return
	}

	s.Log.Info().Str("user", userName(r)).Str("movement", id).Msg("movement deleted")
	redirectOK(w, r, ret, "Movement deleted.")
}
