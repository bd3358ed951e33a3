// internal/app/features/groups/join.go
package groups

import (
	"encoding/json"
	"net/http"

	"underwraps/internal/app/system/respond"
)

type joinRequest struct {
	Code string `json:"code"`
}

// HandleJoin adds the acting user to the group carrying the code.
//
// POST /groups/join {code} → 200 group view. Unknown codes are 404;
// closed groups and repeat joins are 409.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req joinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	g, err := h.Exchange.JoinByCode(r.Context(), userID, req.Code)
	if err != nil {
		h.writeExchangeError(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, newGroupView(g, false, false))
}
