package api

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/ledger"
	"github.com/erazemk/ladak/internal/metrics"
	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

// MovementsHandler handles movement endpoints.
type MovementsHandler struct {
	Store   store.Store
	Metrics *metrics.Metrics
	Log     zerolog.Logger
	Now     func() time.Time
}

type movementFilterQuery struct {
	From string `json:"from" validate:"omitempty,datetime=2006-01-02"`
	To   string `json:"to" validate:"omitempty,datetime=2006-01-02"`
}

// MovementView is a movement with resolved display labels.
type MovementView struct {
	model.Movement
	PartnerName    string `json:"partner_name"`
	CrateTypeLabel string `json:"crate_type_label"`
}

type movementsResponse struct {
	Movements []MovementView `json:"movements"`
	Total     int            `json:"total"`
	Shown     int            `json:"shown"`
	More      bool           `json:"more"`
	Next      int            `json:"next,omitempty"`
}

// ParseFilter reads the movement filter from query parameters.
func ParseFilter(r *http.Request) ledger.Filter {
	q := r.URL.Query()
	return ledger.Filter{
		PartnerID:   strings.TrimSpace(q.Get("partner_id")),
		CrateTypeID: strings.TrimSpace(q.Get("crate_type_id")),
		From:        strings.TrimSpace(q.Get("from")),
		To:          strings.TrimSpace(q.Get("to")),
	}
}

// ViewMovements resolves partner names and crate type labels.
func ViewMovements(movements []model.Movement, snap *store.Snapshot) []MovementView {
	partners := snap.PartnersByID()
	crateTypes := snap.CrateTypesByID()

	views := make([]MovementView, 0, len(movements))
	for _, m := range movements {
		views = append(views, MovementView{
			Movement:       m,
			PartnerName:    ledger.PartnerName(partners, m.PartnerID),
			CrateTypeLabel: ledger.CrateTypeLabel(crateTypes, m.CrateTypeID),
		})
	}
	return views
}

// List handles GET /api/movements. Filters: partner_id, crate_type_id, from,
// to. show sets how many rows of the filtered list are returned.
func (h *MovementsHandler) List(w http.ResponseWriter, r *http.Request) {
	filter := ParseFilter(r)
	if apiErr := ValidateStruct(movementFilterQuery{From: filter.From, To: filter.To}); apiErr != nil {
		jsonError(w, apiErr)
		return
	}

	shown := 0
	if s := r.URL.Query().Get("show"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			jsonError(w, errValidation(map[string]string{"show": "show must be a number"}))
			return
		}
		shown = n
	}

	snap, err := store.LoadAll(r.Context(), h.Store)
	if err != nil {
		jsonError(w, StoreError(h.Log, "movement", "", err))
		return
	}

	filtered := ledger.FilterMovements(snap.Movements, filter, snap.PartnersByID(), snap.CrateTypesByID())
	visible, more := ledger.Page(len(filtered), shown)

	resp := movementsResponse{
		Movements: ViewMovements(filtered[:visible], snap),
		Total:     len(filtered),
		Shown:     visible,
		More:      more,
	}
	if more {
		resp.Next = ledger.NextPage(len(filtered), visible)
	}
	jsonResponse(w, http.StatusOK, resp)
}

// Create handles POST /api/movements. The acting user is recorded as driver.
func (h *MovementsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in MovementInput
	if apiErr := decodeAndValidate(w, r, &in, in.Normalize); apiErr != nil {
		jsonError(w, apiErr)
		return
	}

	m, apiErr := RecordMovement(r.Context(), h.Store, h.Metrics, h.Log, h.Now(), actor(r), in)
	if apiErr != nil {
		jsonError(w, apiErr)
		return
	}
	jsonResponse(w, http.StatusCreated, m)
}

// RecordMovement stores a normalized, validated movement for driver. The
// partner must exist and the crate type must exist and be active. An empty
// date becomes the date of now.
func RecordMovement(ctx context.Context, s store.Store, m *metrics.Metrics, log zerolog.Logger,
	now time.Time, driver string, in MovementInput,
) (*model.Movement, *Error) {
	if apiErr := checkReferences(ctx, s, log, in.PartnerID, in.CrateTypeID); apiErr != nil {
		return nil, apiErr
	}

	if in.Date == "" {
		in.Date = now.Format(model.DateLayout)
	}

	mv, err := s.CreateMovement(ctx, model.NewMovement{
		PartnerID:   in.PartnerID,
		CrateTypeID: in.CrateTypeID,
		Direction:   model.Direction(in.Direction),
		Qty:         in.Qty,
		Date:        in.Date,
		Note:        in.Note,
		DriverName:  driver,
	})
	if err != nil {
		return nil, StoreError(log, "movement", "", err)
	}

	if m != nil {
		m.RecordMovement(mv.Direction, in.Qty)
	}
	log.Info().
		Str("user", driver).
		Str("movement", mv.ID).
		Str("partner", mv.PartnerID).
		Str("crate_type", mv.CrateTypeID).
		Str("direction", string(mv.Direction)).
		Int("qty", in.Qty).
		Msg("movement recorded")
	return mv, nil
}

func checkReferences(ctx context.Context, s store.Store, log zerolog.Logger, partnerID, crateTypeID string) *Error {
	partners, err := s.ListPartners(ctx)
	if err != nil {
		return StoreError(log, "partner", "", err)
	}
	crateTypes, err := s.ListCrateTypes(ctx)
	if err != nil {
		return StoreError(log, "crate type", "", err)
	}

	fields := map[string]string{}
	if _, ok := model.PartnersByID(partners)[partnerID]; !ok {
		fields["partner_id"] = "unknown partner"
	}
	ct, ok := model.CrateTypesByID(crateTypes)[crateTypeID]
	switch {
	case !ok:
		fields["crate_type_id"] = "unknown crate type"
	case ct.Archived:
		fields["crate_type_id"] = "crate type is archived"
	}
	if len(fields) > 0 {
		return errValidation(fields)
	}
	return nil
}

// Delete handles DELETE /api/movements/{id}.
func (h *MovementsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	if err := h.Store.DeleteMovement(r.Context(), id); err != nil {
		jsonError(w, StoreError(h.Log, "movement", id, err))
		return
	}

	h.Log.Info().Str("user", actor(r)).Str("movement", id).Msg("movement deleted")
	w.WriteHeader(http.StatusNoContent)
}
