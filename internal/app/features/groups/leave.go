// internal/app/features/groups/leave.go
package groups

import (
	"net/http"

	"underwraps/internal/app/system/respond"
)

// HandleLeave removes the acting user from an open group.
//
// POST /groups/{id}/leave → 204. Leaving a closed group is 409.
func (h *Handler) HandleLeave(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	groupID, ok := groupParam(w, r)
	if !ok {
		return
	}

	if err := h.Exchange.Leave(r.Context(), userID, groupID); err != nil {
		h.writeExchangeError(w, err)
		return
	}
	respond.NoContent(w)
}
