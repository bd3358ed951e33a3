// internal/app/features/groups/routes.go
package groups

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes builds the group subrouter. joinGuard wraps the join endpoint,
// the one route where clients submit guessable codes.
func Routes(h *Handler, joinGuard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.HandleCreate)
	r.With(joinGuard).Post("/join", h.HandleJoin)
	r.Get("/", h.HandleList)
	r.Get("/{id}", h.HandleDetail)
	r.Post("/{id}/draw", h.HandleDraw)
	r.Get("/{id}/match", h.HandleMatch)
	r.Post("/{id}/leave", h.HandleLeave)
	r.Delete("/{id}", h.HandleDisband)
	return r
}
