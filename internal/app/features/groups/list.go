// internal/app/features/groups/list.go
package groups

import (
	"net/http"

	"go.uber.org/zap"

	"underwraps/internal/app/system/respond"
)

// HandleList returns every group the acting user belongs to.
//
// GET /groups → 200 {"groups": [...]}. Always returns an array, empty
// when the user has no groups.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	views, err := h.Exchange.ListForUser(r.Context(), userID)
	if err != nil {
		h.Log.Error("listing groups", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not list groups")
		return
	}

	out := make([]groupView, 0, len(views))
	for _, v := range views {
		out = append(out, newGroupView(v.Group, v.IsAdmin, v.Drawn))
	}
	respond.JSON(w, http.StatusOK, map[string]any{"groups": out})
}
