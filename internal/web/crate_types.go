package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/erazemk/ladak/internal/api"
	"github.com/erazemk/ladak/internal/imaging"
	"github.com/erazemk/ladak/internal/ledger"
	"github.com/erazemk/ladak/internal/model"
	"github.com/erazemk/ladak/internal/store"
)

type crateTypeRow struct {
	model.CrateType
	Usage int
}

// CrateTypesPage handles GET /crate-types. Each row carries the number of
// movements referencing the type so deletion can be confirmed with it.
func (s *Server) CrateTypesPage(w http.ResponseWriter, r *http.Request) {
	data := &struct {
		PageData
		CrateTypes []crateTypeRow
	}{PageData: s.page(r, "Crate types", "crate-types")}

	snap, err := store.LoadAll(r.Context(), s.Store)
	if err != nil {
		s.Log.Error().Err(err).Msg("listing crate types")
		data.Error = "Could not load crate types: " + err.Error()
		s.Templates.RenderStatus(w, http.StatusInternalServerError, "crate_types.html", data)
		return
	}

	for _, c := range snap.CrateTypes {
		data.CrateTypes = append(data.CrateTypes, crateTypeRow{
			CrateType: c,
			Usage:     ledger.CountByCrateType(snap.Movements, c.ID),
		})
	}
	s.Templates.Render(w, "crate_types.html", data)
}

// CrateTypeCreateSubmit handles POST /crate-types (admin only).
func (s *Server) CrateTypeCreateSubmit(w http.ResponseWriter, r *http.Request) {
	in := api.CrateTypeInput{ID: r.FormValue("id"), Label: r.FormValue("label")}
	in.Normalize()
	if apiErr := api.ValidateStruct(in); apiErr != nil {
		redirectError(w, r, "/crate-types", apiErr.Summary())
		return
	}

	c, err := s.Store.CreateCrateType(r.Context(), model.CrateType{ID: in.ID, Label: in.Label})
	if err != nil {
		redirectError(w, r, "/crate-types", api.StoreError(s.Log, "crate type", in.ID, err).Summary())
		return
	}

	s.Log.Info().Str("user", userName(r)).Str("crate_type", c.ID).Msg("crate type created")
	redirectOK(w, r, "/crate-types", "Crate type "+c.ID+" added.")
}

// CrateTypeUpdateSubmit handles POST /crate-types/{id} (admin only): relabel.
func (s *Server) CrateTypeUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	label := r.FormValue("label")
	in := api.CrateTypePatchInput{Label: &label}
	s.patchCrateType(w, r, id, in, "Crate type "+id+" saved.")
}

// CrateTypeArchiveSubmit handles POST /crate-types/{id}/archive (admin only).
// archived=1 hides the type from movement entry, archived=0 restores it.
func (s *Server) CrateTypeArchiveSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	archived := r.FormValue("archived") == "1"
	msg := "Crate type " + id + " restored."
	if archived {
		msg = "Crate type " + id + " archived."
	}
	s.patchCrateType(w, r, id, api.CrateTypePatchInput{Archived: &archived}, msg)
}

func (s *Server) patchCrateType(w http.ResponseWriter, r *http.Request, id string, in api.CrateTypePatchInput, msg string) {
	in.Normalize()
	if apiErr := api.ValidateStruct(in); apiErr != nil {
		redirectError(w, r, "/crate-types", apiErr.Summary())
		return
	}

	c, err := s.Store.UpdateCrateType(r.Context(), id, in.Patch())
	if err != nil {
		redirectError(w, r, "/crate-types", api.StoreError(s.Log, "crate type", id, err).Summary())
		return
	}

	s.Log.Info().Str("user", userName(r)).Str("crate_type", id).Bool("archived", c.Archived).Msg("crate type updated")
	redirectOK(w, r, "/crate-types", msg)
}

// CrateTypeDeleteSubmit handles POST /crate-types/{id}/delete (admin only).
// Referencing movements are kept and show a deleted placeholder.
func (s *Server) CrateTypeDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	movements, err := s.Store.ListMovements(r.Context())
	if err != nil {
		redirectError(w, r, "/crate-types", api.StoreError(s.Log, "movement", "", err).Summary())
		return
	}
	n := ledger.CountByCrateType(movements, id)

	if err := s.Store.DeleteCrateType(r.Context(), id); err != nil {
		redirectError(w, r, "/crate-types", api.StoreError(s.Log, "crate type", id, err).Summary())
		return
	}

	s.Log.Info().Str("user", userName(r)).Str("crate_type", id).Int("movements", n).Msg("crate type deleted")
	redirectOK(w, r, "/crate-types", fmt.Sprintf("Crate type %s deleted; %d movements still reference it.", id, n))
}

// CrateTypeImageSubmit handles POST /crate-types/{id}/image (admin only).
func (s *Server) CrateTypeImageSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	r.Body = http.MaxBytesReader(w, r.Body, imaging.MaxUploadBytes+(64<<10))
	if err := r.ParseMultipartForm(imaging.MaxUploadBytes); err != nil {
		redirectError(w, r, "/crate-types", "Photo is too large.")
		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		redirectError(w, r, "/crate-types", "Choose a photo to upload.")
		return
	}
	defer file.Close()

	photo, err := imaging.Process(file)
	if err != nil {
		msg := "Photo could not be read."
		if errors.Is(err, imaging.ErrUnsupported) || errors.Is(err, imaging.ErrTooLarge) {
			msg = "Photo rejected: " + err.Error()
		}
		redirectError(w, r, "/crate-types", msg)
		return
	}

	if err := s.Store.SetCrateTypeImage(r.Context(), id, photo.Data, photo.MIME); err != nil {
		redirectError(w, r, "/crate-types", api.StoreError(s.Log, "crate type", id, err).Summary())
		return
	}

	s.Log.Info().Str("user", userName(r)).Str("crate_type", id).Int("bytes", len(photo.Data)).Msg("crate type photo uploaded")
	redirectOK(w, r, "/crate-types", "Photo saved.")
}

// CrateTypeImageGet handles GET /crate-types/{id}/image. ?thumb=1 returns a
// thumbnail.
func (s *Server) CrateTypeImageGet(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	data, mime, err := s.Store.GetCrateTypeImage(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		s.Log.Error().Err(err).Str("crate_type", id).Msg("loading crate type photo")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	if r.URL.Query().Get("thumb") == "1" {
		thumb, err := imaging.Thumbnail(data)
		if err != nil {
			s.Log.Error().Err(err).Str("crate_type", id).Msg("building thumbnail")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		data, mime = thumb.Data, thumb.MIME
	}

	api.ServeImage(w, data, mime)
}
