// internal/app/features/groups/detail.go
package groups

import (
	"net/http"

	"go.uber.org/zap"

	"underwraps/internal/app/system/respond"
)

type memberView struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsAdmin  bool   `json:"is_admin"`
}

type detailResponse struct {
	Group   groupView    `json:"group"`
	Members []memberView `json:"members"`
}

// HandleDetail returns one group with its resolved member list.
// Only members can see a group's detail.
//
// GET /groups/{id} → 200 {group, members}.
func (h *Handler) HandleDetail(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}
	groupID, ok := groupParam(w, r)
	if !ok {
		return
	}

	g, err := h.Exchange.Group(r.Context(), groupID)
	if err != nil {
		h.writeExchangeError(w, err)
		return
	}

	m, err := h.Exchange.Membership(r.Context(), userID, groupID)
	if err != nil {
		h.writeExchangeError(w, err)
		return
	}

	memberIDs, err := h.Exchange.MemberIDs(r.Context(), groupID)
	if err != nil {
		h.Log.Error("listing members", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not load group")
		return
	}
	users, err := h.Users.GetManyByID(r.Context(), memberIDs)
	if err != nil {
		h.Log.Error("resolving members", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not load group")
		return
	}

	members := make([]memberView, 0, len(users))
	for _, u := range users {
		members = append(members, memberView{
			ID:       u.ID.Hex(),
			Username: u.Username,
			IsAdmin:  u.ID == g.AdminID,
		})
	}

	respond.JSON(w, http.StatusOK, detailResponse{
		Group:   newGroupView(*g, m.IsAdmin, m.MatchID != nil),
		Members: members,
	})
}
