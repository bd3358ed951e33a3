// internal/app/features/groups/handler.go
package groups

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"underwraps/internal/app/exchange"
	groupstore "underwraps/internal/app/store/groups"
	preferencestore "underwraps/internal/app/store/preferences"
	userstore "underwraps/internal/app/store/users"
	"underwraps/internal/app/system/auth"
	"underwraps/internal/app/system/respond"
)

// Handler owns the group lifecycle endpoints.
type Handler struct {
	Exchange    *exchange.Service
	Users       *userstore.Store
	Preferences *preferencestore.Store
	Log         *zap.Logger
}

// NewHandler constructs a Handler bound to the lifecycle service and
// the read stores the group views need.
func NewHandler(svc *exchange.Service, users *userstore.Store, prefs *preferencestore.Store, logger *zap.Logger) *Handler {
	return &Handler{Exchange: svc, Users: users, Preferences: prefs, Log: logger}
}

// actingUser resolves the signed-in user's ObjectID. The router mounts
// these handlers behind RequireSignedIn, so a missing user is a wiring
// bug, not a client error.
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

// groupParam parses the {id} URL parameter.
func groupParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusNotFound, "group_not_found", "group not found")
		return primitive.NilObjectID, false
	}
	return id, true
}

// writeExchangeError maps lifecycle errors onto the error envelope.
func (h *Handler) writeExchangeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exchange.ErrGroupNotFound), errors.Is(err, groupstore.ErrCodeNotFound):
		respond.Error(w, http.StatusNotFound, "group_not_found", err.Error())
	case errors.Is(err, exchange.ErrGroupClosed):
		respond.Error(w, http.StatusConflict, "group_closed", err.Error())
	case errors.Is(err, exchange.ErrAlreadyMember):
		respond.Error(w, http.StatusConflict, "already_member", err.Error())
	case errors.Is(err, exchange.ErrNotMember):
		respond.Error(w, http.StatusForbidden, "not_member", err.Error())
	case errors.Is(err, exchange.ErrNotDrawn):
		respond.Error(w, http.StatusNotFound, "not_drawn", err.Error())
	default:
		h.Log.Error("group operation failed", zap.Error(err))
		respond.Error(w, http.StatusInternalServerError, "internal", "something went wrong")
	}
}
