// internal/app/features/profile/profile.go
package profile

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	userstore "underwraps/internal/app/store/users"
	"underwraps/internal/app/system/respond"
	"underwraps/internal/domain/models"
)

type profileView struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profile_pic"`
}

func newProfileView(u *models.User) profileView {
	return profileView{
		ID:         u.ID.Hex(),
		Email:      u.Email,
		Username:   u.Username,
		Bio:        u.Bio,
		ProfilePic: u.ProfilePic,
	}
}

// ServeProfile returns the acting user's profile.
//
// GET /profile → 200 profile.
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.Log.Error("loading profile", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not load profile")
		return
	}
	respond.JSON(w, http.StatusOK, newProfileView(u))
}

type updateRequest struct {
	Username   string `json:"username"`
	Bio        string `json:"bio"`
	ProfilePic string `json:"profile_pic"`
}

// HandleUpdate replaces the acting user's editable profile fields.
// Email is not editable; it is the login identity.
//
// PUT /profile {username, bio, profile_pic} → 200 updated profile.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	userID, ok := actingUser(w, r)
	if !ok {
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	err := h.Users.UpdateProfile(r.Context(), userID, userstore.ProfileUpdate{
		Username:   req.Username,
		Bio:        req.Bio,
		ProfilePic: req.ProfilePic,
	})
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	u, err := h.Users.GetByID(r.Context(), userID)
	if err != nil {
		h.Log.Error("reloading profile after update", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not load profile")
		return
	}
	respond.JSON(w, http.StatusOK, newProfileView(u))
}
