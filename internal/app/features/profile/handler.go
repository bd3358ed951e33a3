// internal/app/features/profile/handler.go
package profile

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	userstore "underwraps/internal/app/store/users"
	"underwraps/internal/app/system/auth"
	"underwraps/internal/app/system/respond"
)

// Handler owns the profile endpoints.
type Handler struct {
	Users *userstore.Store
	Log   *zap.Logger
}

// NewHandler constructs a Handler bound to the user store.
func NewHandler(users *userstore.Store, logger *zap.Logger) *Handler {
	return &Handler{Users: users, Log: logger}
}

func actingUser(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "unauthorized", "sign in required")
		return primitive.NilObjectID, false
	}
	id, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		respond.Error(w, http.StatusUnauthorized, "unauthorized", "invalid session")
		return primitive.NilObjectID, false
	}
	return id, true
}
