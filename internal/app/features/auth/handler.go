// internal/app/features/auth/handler.go
package auth

import (
	"go.uber.org/zap"

	systemauth "underwraps/internal/app/system/auth"
	userstore "underwraps/internal/app/store/users"
)

// Handler owns the signup, login, and logout endpoints.
type Handler struct {
	Users *userstore.Store
	Auth  *systemauth.Manager
	Log   *zap.Logger
}

// NewHandler constructs a Handler bound to the user store and session
// manager.
func NewHandler(users *userstore.Store, mgr *systemauth.Manager, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Auth: mgr, Log: logger}
}
