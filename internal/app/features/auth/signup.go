// internal/app/features/auth/signup.go
package auth

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	systemauth "underwraps/internal/app/system/auth"
	"underwraps/internal/app/system/authutil"
	"underwraps/internal/app/system/respond"
	userstore "underwraps/internal/app/store/users"
	"underwraps/internal/domain/models"
)

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	User  models.User `json:"user"`
	Token string      `json:"token"`
}

// HandleSignup creates an account and signs the new user in.
//
// POST /auth/signup {email, username, password}
// 201 {user, token} on success, 409 on a duplicate email.
func (h *Handler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", "request body must be JSON")
		return
	}
	if !authutil.ValidEmail(req.Email) {
		respond.Error(w, http.StatusBadRequest, "invalid_email", "a valid email address is required")
		return
	}

	hash, err := authutil.HashPassword(req.Password)
	if errors.Is(err, authutil.ErrPasswordTooShort) {
		respond.Error(w, http.StatusBadRequest, "weak_password", err.Error())
		return
	}
	if err != nil {
		h.Log.Error("hashing password", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not create account")
		return
	}

	u, err := h.Users.Create(r.Context(), models.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	})
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		respond.Error(w, http.StatusConflict, "duplicate_email", err.Error())
		return
	}
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	h.Log.Info("account created", zap.String("user_id", u.ID.Hex()))
	h.finishSignIn(w, r, u, http.StatusCreated)
}

// finishSignIn sets the session cookie, mints a bearer token, and
// writes the auth response.
func (h *Handler) finishSignIn(w http.ResponseWriter, r *http.Request, u models.User, status int) {
	su := &systemauth.SessionUser{ID: u.ID.Hex(), Username: u.Username, Email: u.Email}
	if err := h.Auth.SignIn(w, r, su); err != nil {
		h.Log.Error("writing session cookie", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not start session")
		return
	}
	token, err := h.Auth.IssueToken(su)
	if err != nil {
		h.Log.Error("issuing token", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "could not issue token")
		return
	}
	respond.JSON(w, status, authResponse{User: u, Token: token})
}
