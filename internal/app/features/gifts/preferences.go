// internal/app/features/gifts/preferences.go
package gifts

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"underwraps/internal/app/system/respond"
)

type preferenceView struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// HandleList returns the acting user's wish list.
//
// GET /preferences → 200 {"preferences": [...]}.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	prefs, err := h.Preferences.ListByUser(r.Context(), userID)
	if err != nil {
		h.Log.Error("listing preferences", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not load preferences")
		return
	}

	out := make([]preferenceView, 0, len(prefs))
	for _, p := range prefs {
		out = append(out, preferenceView{ID: p.ID.Hex(), Text: p.Text})
	}
	respond.JSON(w, http.StatusOK, map[string]any{"preferences": out})
}

// HandleAdd appends one gift idea to the acting user's wish list.
//
// POST /preferences {text} → 201 preference.
func (h *Handler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	p, err := h.Preferences.Add(r.Context(), userID, req.Text)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	respond.JSON(w, http.StatusCreated, preferenceView{ID: p.ID.Hex(), Text: p.Text})
}

// HandleDelete removes one of the acting user's preferences.
//
// DELETE /preferences/{id} → 204; someone else's preference is a 404.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	prefID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "preference_not_found", "preference not found")
		return
	}

	err = h.Preferences.Delete(r.Context(), userID, prefID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusNotFound, "preference_not_found", "preference not found")
		return
	}
	if err != nil {
		h.Log.Error("deleting preference", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not delete preference")
		return
	}
	respond.NoContent(w)
}
