package profile

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kedarnag/invoiceflow/internal/http/respond"
	"github.com/kedarnag/invoiceflow/internal/session"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.current)
}

type profileResponse struct {
	FullName       string `json:"full_name"`
	Role           string `json:"role"`
	ProfilePicture string `json:"profile_picture"`
}

// current echoes back the identity decoded from the caller's bearer token.
// The token is not verified here; authorization is enforced upstream.
func (h *Handler) current(w http.ResponseWriter, r *http.Request) {
	s, err := session.FromToken(r.Header.Get("Authorization"))
	if err != nil {
		respond.Err(w, http.StatusUnauthorized, "missing or malformed auth token")
		return
	}

	respond.OK(w, profileResponse{
		FullName:       s.FullName,
		Role:           string(s.Role),
		ProfilePicture: s.ProfilePicture,
	})
}
