// internal/app/features/groups/create.go
package groups

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"underwraps/internal/app/system/respond"
	"underwraps/internal/domain/models"
)

type createRequest struct {
	Name string `json:"name"`
}

// groupView is the group shape every group endpoint returns. Code is
// included so the admin can share it; IsAdmin and Drawn describe the
// acting user's relationship to the group.
type groupView struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Code    string `json:"code"`
	Closed  bool   `json:"closed"`
	IsAdmin bool   `json:"is_admin"`
	Drawn   bool   `json:"drawn"`
}

func newGroupView(g models.Group, isAdmin, drawn bool) groupView {
	return groupView{
		ID:      g.ID.Hex(),
		Name:    g.Name,
		Code:    g.Code,
		Closed:  g.Closed,
		IsAdmin: isAdmin,
		Drawn:   drawn,
	}
}

// HandleCreate starts a new group with the acting user as admin.
//
// POST /groups {name} → 201 group view with the shareable join code.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	g, err := h.Exchange.Create(r.Context(), req.Name, userID)
	if err != nil {
		h.Log.Warn("group create failed", zap.Error(err))
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	respond.JSON(w, http.StatusCreated, newGroupView(g, true, false))
}
