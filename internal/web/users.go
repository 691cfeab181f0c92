package web

import (
	"net/http"

	"github.com/erazemk/ladak/internal/model"
)

// UsersPage handles GET /users (admin only): the configured PIN holders.
// PINs themselves are never shown.
func (s *Server) UsersPage(w http.ResponseWriter, r *http.Request) {
	s.Templates.Render(w, "users.html", &struct {
		PageData
		Users []model.User
	}{
		PageData: s.page(r, "Users", "users"),
		Users:    s.Users.Users(),
	})
}
