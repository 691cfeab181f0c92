package web

import (
	"net/http"

	"github.com/erazemk/ladak/internal/api"
	"github.com/erazemk/ladak/internal/model"
)

// PartnersPage handles GET /partners.
func (s *Server) PartnersPage(w http.ResponseWriter, r *http.Request) {
	data := &struct {
		PageData
		Partners []model.Partner
	}{PageData: s.page(r, "Partners", "partners")}

	partners, err := s.Store.ListPartners(r.Context())
	if err != nil {
		s.Log.Error().Err(err).Msg("listing partners")
		data.Error = "Could not load partners: " + err.Error()
	}
	data.Partners = partners

	s.Templates.Render(w, "partners.html", data)
}

// PartnerCreateSubmit handles POST /partners (admin only).
func (s *Server) PartnerCreateSubmit(w http.ResponseWriter, r *http.Request) {
	in := api.PartnerInput{
		ID:      r.FormValue("id"),
		Name:    r.FormValue("name"),
		Contact: r.FormValue("contact"),
		Note:    r.FormValue("note"),
	}
	in.Normalize()
	if apiErr := api.ValidateStruct(in); apiErr != nil {
		redirectError(w, r, "/partners", apiErr.Summary())
		return
	}

	p, err := s.Store.CreatePartner(r.Context(), in.Partner())
	if err != nil {
		redirectError(w, r, "/partners", api.StoreError(s.Log, "partner", in.ID, err).Summary())
		return
	}

	s.Log.Info().Str("user", userName(r)).Str("partner", p.ID).Str("name", p.Name).Msg("partner created")
	redirectOK(w, r, "/partners", "Partner "+p.Name+" added.")
}

// PartnerUpdateSubmit handles POST /partners/{id} (admin only). The form
// always carries every field.
func (s *Server) PartnerUpdateSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	name, contact, note := r.FormValue("name"), r.FormValue("contact"), r.FormValue("note")
	in := api.PartnerPatchInput{Name: &name, Contact: &contact, Note: &note}
	in.Normalize()
	if apiErr := api.ValidateStruct(in); apiErr != nil {
		redirectError(w, r, "/partners", apiErr.Summary())
		return
	}

	p, err := s.Store.UpdatePartner(r.Context(), id, in.Patch())
	if err != nil {
		redirectError(w, r, "/partners", api.StoreError(s.Log, "partner", id, err).Summary())
		return
	}

	s.Log.Info().Str("user", userName(r)).Str("partner", id).Msg("partner updated")
	redirectOK(w, r, "/partners", "Partner "+p.Name+" saved.")
}

// PartnerDeleteSubmit handles POST /partners/{id}/delete (admin only).
// Movements of the partner stay and show a placeholder name.
func (s *Server) PartnerDeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := s.Store.DeletePartner(r.Context(), id); err != nil {
		redirectError(w, r, "/partners", api.StoreError(s.Log, "partner", id, err).Summary())
		return
	}

	s.Log.Info().Str("user", userName(r)).Str("partner", id).Msg("partner deleted")
	redirectOK(w, r, "/partners", "Partner deleted.")
}
