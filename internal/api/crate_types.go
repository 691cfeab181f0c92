package api

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/erazemk/ladak/internal/imaging"
	"github.com/erazemk/ladak/internal/ledger"
	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

// CrateTypesHandler handles crate type endpoints.
type CrateTypesHandler struct {
	Store store.Store
	Log   zerolog.Logger
}

type usageResponse struct {
	CrateTypeID string `json:"crate_type_id"`
	Movements   int    `json:"movements"`
}

// List handles GET /api/crate-types. With ?active=1 archived types are left out.
func (h *CrateTypesHandler) List(w http.ResponseWriter, r *http.Request) {
	types, err := h.Store.ListCrateTypes(r.Context())
	if err != nil {
		jsonError(w, StoreError(h.Log, "crate type", "", err))
		return
	}

	if active := r.URL.Query().Get("active"); active == "1" || active == "true" {
		types = model.ActiveCrateTypes(types)
		if types == nil {
			types = []model.CrateType{}
		}
	}
	jsonResponse(w, http.StatusOK, types)
}

// Create handles POST /api/crate-types. The id is uppercased and the label
// defaults to it.
func (h *CrateTypesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in CrateTypeInput
	if apiErr := decodeAndValidate(w, r, &in, in.Normalize); apiErr != nil {
		jsonError(w, apiErr)
		return
	}

	c, err := h.Store.CreateCrateType(r.Context(), model.CrateType{ID: in.ID, Label: in.Label})
	if err != nil {
		jsonError(w, StoreError(h.Log, "crate type", in.ID, err))
		return
	}

	h.Log.Info().Str("user", actor(r)).Str("crate_type", c.ID).Msg("crate type created")
	jsonResponse(w, http.StatusCreated, c)
}

// Update handles PATCH /api/crate-types/{id}: relabel, archive or restore.
func (h *CrateTypesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	var in CrateTypePatchInput
	if apiErr := decodeAndValidate(w, r, &in, in.Normalize); apiErr != nil {
		jsonError(w, apiErr)
		return
	}

	c, err := h.Store.UpdateCrateType(r.Context(), id, in.Patch())
	if err != nil {
		jsonError(w, StoreError(h.Log, "crate type", id, err))
		return
	}

	h.Log.Info().Str("user", actor(r)).Str("crate_type", id).Bool("archived", c.Archived).Msg("crate type updated")
	jsonResponse(w, http.StatusOK, c)
}

// usage counts movements referencing id.
func (h *CrateTypesHandler) usage(r *http.Request, id string) (int, error) {
	movements, err := h.Store.ListMovements(r.Context())
	if err != nil {
		return 0, err
	}
	return ledger.CountByCrateType(movements, id), nil
}

// Usage handles GET /api/crate-types/{id}/usage.
func (h *CrateTypesHandler) Usage(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	n, err := h.usage(r, id)
	if err != nil {
		jsonError(w, StoreError(h.Log, "movement", "", err))
		return
	}
	jsonResponse(w, http.StatusOK, usageResponse{CrateTypeID: id, Movements: n})
}

// Delete handles DELETE /api/crate-types/{id}. Referencing movements are kept
// and their count is reported back.
func (h *CrateTypesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	n, err := h.usage(r, id)
	if err != nil {
		jsonError(w, StoreError(h.Log, "movement", "", err))
		return
	}

	if err := h.Store.DeleteCrateType(r.Context(), id); err != nil {
		jsonError(w, StoreError(h.Log, "crate type", id, err))
		return
	}

	h.Log.Info().Str("user", actor(r)).Str("crate_type", id).Int("movements", n).Msg("crate type deleted")
	jsonResponse(w, http.StatusOK, usageResponse{CrateTypeID: id, Movements: n})
}

// UploadImage handles PUT /api/crate-types/{id}/image with a multipart
// "image" field.
func (h *CrateTypesHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(64<<10))
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		jsonError(w, errBadRequest("file too large or invalid multipart form"))
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		jsonError(w, errValidation(map[string]string{"image": "image file required"}))
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
			jsonError(w, errValidation(map[string]string{"image": err.Error()}))
			return
		}
		jsonError(w, errBadRequest(err.Error()))
		return
	}

	if err := h.Store.SetCrateTypeImage(r.Context(), id, photo.Data, photo.MIME); err != nil {
		jsonError(w, StoreError(h.Log, "crate type", id, err))
		return
	}

	h.Log.Info().Str("user", actor(r)).Str("crate_type", id).Int("bytes", len(photo.Data)).Msg("crate type photo uploaded")
	w.WriteHeader(http.StatusNoContent)
}

// GetImage handles GET /api/crate-types/{id}/image. ?thumb=1 returns a
// thumbnail.
func (h *CrateTypesHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id := pathID(r)

	data, mime, err := h.Store.GetCrateTypeImage(r.Context(), id)
	if err != nil {
		jsonError(w, StoreError(h.Log, "crate type image", id, err))
		return
	}

	if r.URL.Query().Get("thumb") == "1" {
		thumb, err := imaging.Thumbnail(data)
		if err != nil {
			jsonError(w, newError(http.StatusInternalServerError, CodeInternal, err.Error()))
			return
		}
		data, mime = thumb.Data, thumb.MIME
	}

	ServeImage(w, data, mime)
}

// ServeImage writes a stored photo inline.
func ServeImage(w http.ResponseWriter, data []byte, mime string) {
	w.Header().Set("Content-Type", mime)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("Cache-Control", "private, max-age=3600")
	w.Write(data)
}
