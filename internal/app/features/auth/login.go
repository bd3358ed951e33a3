// internal/app/features/auth/login.go
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"underwraps/internal/app/system/authutil"
	"underwraps/internal/app/system/respond"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin verifies credentials and signs the user in.
//
// POST /auth/login {email, password}
// 200 {user, token} on success. A wrong password and an unknown email
// return the same 401 so the endpoint cannot be used to probe for
// accounts.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}

	u, err := h.Users.GetByEmail(r.Context(), req.Email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		respond.Error(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
		return
	}
	if err != nil {
		h.Log.Error("loading user for login", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not sign in")
		return
	}

	if !authutil.CheckPassword(u.PasswordHash, req.Password) {
		respond.Error(w, http.StatusUnauthorized, "invalid_credentials", "email or password is incorrect")
		return
	}

	h.finishSignIn(w, r, *u, http.StatusOK)
}

// HandleLogout clears the session cookie. Bearer tokens are not
// revocable; they simply expire.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.Auth.SignOut(w, r); err != nil {
		h.Log.Error("clearing session", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not sign out")
		return
	}
	respond.NoContent(w)
}
