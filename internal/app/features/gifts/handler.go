// internal/app/features/gifts/handler.go
package gifts

import (
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	preferencestore "underwraps/internal/app/store/preferences"
	"underwraps/internal/app/system/auth"
	"underwraps/internal/app/system/respond"
)

// Handler owns the gift preference endpoints. Preferences belong to a
// user, not a group, so a member's wish list follows them into every
// exchange they join.
type Handler struct {
	Preferences *preferencestore.Store
	Log         *zap.Logger
}

func NewHandler(prefs *preferencestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Preferences: prefs, Log: logger}
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
