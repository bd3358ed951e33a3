// internal/app/features/groups/draw.go
package groups

import (
	"errors"
	"net/http"

	"underwraps/internal/app/matching"
	"underwraps/internal/app/system/respond"
)

// HandleDraw assigns matches for the group and closes it.
//
// POST /groups/{id}/draw → 200 with the closed group view. A closed
// group or one with fewer than two members is 409.
func (h *Handler) HandleDraw(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	groupID, ok := groupParam(w, r)
	if !ok {
		return
	}

	m, err := h.Exchange.Membership(r.Context(), userID, groupID)
	if err != nil {
		h.writeExchangeError(w, err)
		return
	}

	if err := h.Exchange.Draw(r.Context(), groupID); err != nil {
		if errors.Is(err, matching.ErrInsufficientMembers) {
			respond.Error(w, http.StatusConflict, "too_few_members", err.Error())
			return
		}
		h.writeExchangeError(w, err)
		return
	}

	g, err := h.Exchange.Group(r.Context(), groupID)
	if err != nil {
		h.writeExchangeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, newGroupView(*g, m.IsAdmin, true))
}
