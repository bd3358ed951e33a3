// internal/app/features/gifts/routes.go
package gifts

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleAdd)
	r.Delete("/{id}", h.HandleDelete)
	return r
}
