package api

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/store"
)

// PartnersHandler handles partner CRUD endpoints.
type PartnersHandler struct {
	Store store.Store
	Log   zerolog.Logger
}

// List handles GET /api/partners.
func (h *PartnersHandler) List(w http.ResponseWriter, r *http.Request) {
	partners, err := h.Store.ListPartners(r.Context())
	if err != nil {
		jsonError(w, StoreError(h.Log, "partner", "", err))
		return
	}
	jsonResponse(w, http.StatusOK, partners)
}

// Create handles POST /api/partners.
func (h *PartnersHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in PartnerInput
	if apiErr := decodeAndValidate(w, r, &in, in.Normalize); apiErr != nil {
		jsonError(w, apiErr)
		return
	}

	p, err := h.Store.CreatePartner(r.Context(), in.Partner())
	if err != nil {
		jsonError(w, StoreError(h.Log, "partner", in.ID, err))
		return
	}

	h.Log.Info().Str("user", actor(r)).Str("partner", p.ID).Str("name", p.Name).Msg("partner created")
	jsonResponse(w, http.StatusCreated, p)
}

// Update handles PATCH /api/partners/{id}.
func (h *PartnersHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var in PartnerPatchInput
	if apiErr := decodeAndValidate(w, r, &in, in.Normalize); apiErr != nil {
		jsonError(w, apiErr)
		return
	}

	p, err := h.Store.UpdatePartner(r.Context(), id, in.Patch())
	if err != nil {
		jsonError(w, StoreError(h.Log, "partner", id, err))
		return
	}

	h.Log.Info().Str("user", actor(r)).Str("partner", id).Msg("partner updated")
	jsonResponse(w, http.StatusOK, p)
}

// Delete handles DELETE /api/partners/{id}. Movements of the partner stay.
func (h *PartnersHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	if err := h.Store.DeletePartner(r.Context(), id); err != nil {
		jsonError(w, StoreError(h.Log, "partner", id, err))
		return
	}

	h.Log.Info().Str("user", actor(r)).Str("partner", id).Msg("partner deleted")
	w.WriteHeader(http.StatusNoContent)
}
