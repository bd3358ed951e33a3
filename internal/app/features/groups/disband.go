// internal/app/features/groups/disband.go
package groups

import (
	"net/http"

	"go.uber.org/zap"

	"underwraps/internal/app/system/respond"
)

// HandleDisband deletes the group and every membership in it, freeing
// its join code. Members must belong to the group to disband it; the
// admin flag is data for the client, which hides the button from
// non-admins.
//
// DELETE /groups/{id} → 204.
func (h *Handler) HandleDisband(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	groupID, ok := groupParam(w, r)
	if !ok {
		return
	}

	if _, err := h.Exchange.Membership(r.Context(), userID, groupID); err != nil {
		h.writeExchangeError(w, err)
		return
	}

	if err := h.Exchange.Disband(r.Context(), groupID); err != nil {
		h.writeExchangeError(w, err)
		return
	}
	h.Log.Info("group disbanded via api",
		zap.String("group_id", groupID.Hex()),
		zap.String("user_id", userID.Hex()))
	respond.NoContent(w)
}
