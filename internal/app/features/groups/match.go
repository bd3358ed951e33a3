// internal/app/features/groups/match.go
package groups

import (
	"net/http"

	"go.uber.org/zap"

	"underwraps/internal/app/system/respond"
)

type matchResponse struct {
	Recipient   memberView `json:"recipient"`
	Preferences []string   `json:"preferences"`
}

// HandleMatch returns the member the acting user is gifting, with that
// member's gift preferences.
//
// GET /groups/{id}/match → 200 {recipient, preferences}; 404 until the
// draw has happened.
func (h *Handler) HandleMatch(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	groupID, ok := groupParam(w, r)
	if !ok {
		return
	}

	matchID, err := h.Exchange.Match(r.Context(), userID, groupID)
	if err != nil {
		h.writeExchangeError(w, err)
		return
	}

	recipient, err := h.Users.GetByID(r.Context(), matchID)
	if err != nil {
		h.Log.Error("resolving match recipient",
			zap.String("match_id", matchID.Hex()), zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not load your match")
		return
	}

	prefs, err := h.Preferences.ListByUser(r.Context(), matchID)
	if err != nil {
		h.Log.Error("loading recipient preferences", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not load your match")
		return
	}
	texts := make([]string, 0, len(prefs))
	for _, p := range prefs {
		texts = append(texts, p.Text)
	}

	respond.JSON(w, http.StatusOK, matchResponse{
		Recipient: memberView{
			ID:       recipient.ID.Hex(),
			Username: recipient.Username,
		},
		Preferences: texts,
	})
}
