// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"underwraps/internal/app/exchange"
	authfeature "underwraps/internal/app/features/auth"
	giftsfeature "underwraps/internal/app/features/gifts"
	groupsfeature "underwraps/internal/app/features/groups"
	healthfeature "underwraps/internal/app/features/health"
	profilefeature "underwraps/internal/app/features/profile"
	"underwraps/internal/app/link"
	"underwraps/internal/app/matching"
	groupstore "underwraps/internal/app/store/groups"
	memberstore "underwraps/internal/app/store/members"
	membershipstore "underwraps/internal/app/store/memberships"
	preferencestore "underwraps/internal/app/store/preferences"
	userstore "underwraps/internal/app/store/users"
	"underwraps/internal/app/system/auth"
	"underwraps/internal/app/system/limits"
	"underwraps/internal/app/system/ratelimit"
)

// BuildHandler constructs the root HTTP handler (router) for this
// WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. It wires the stores into the
// lifecycle service, builds the auth manager, and mounts the feature
// routers: health, auth, groups, preferences, and profile.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	authMgr, err := auth.NewManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, appCfg.TokenTTL, logger)
	if err != nil {
		logger.Error("auth manager init failed", zap.Error(err))
		return nil, err
	}

	db := deps.MongoDatabase
	users := userstore.New(db)
	groupsStore := groupstore.New(db)
	members := memberstore.New(db)
	memberships := membershipstore.New(db)
	prefs := preferencestore.New(db)

	linker := link.NewManager(members, memberships, logger)
	engine := matching.NewEngine(memberships, logger)
	svc := exchange.NewService(groupsStore, members, memberships, linker, engine, logger)

	r := chi.NewRouter()

	r.Use(limits.JSONBody)

	// Global auth middleware: resolves a bearer token or session cookie
	// into the request context. Anonymous requests pass through.
	r.Use(authMgr.LoadUser)

	// Credential and join-code endpoints get a per-IP limiter; codes
	// live in a 36^5 space, so unthrottled guessing would be cheap.
	guessLimiter := ratelimit.New(20, time.Minute)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	authHandler := authfeature.NewHandler(users, authMgr, logger)
	r.Group(func(r chi.Router) {
		r.Use(guessLimiter.Middleware)
		r.Mount("/auth", authfeature.Routes(authHandler))
	})

	// Everything below requires a signed-in user.
	groupsHandler := groupsfeature.NewHandler(svc, users, prefs, logger)
	giftsHandler := giftsfeature.NewHandler(prefs, logger)
	profileHandler := profilefeature.NewHandler(users, logger)

	r.Group(func(r chi.Router) {
		r.Use(authMgr.RequireSignedIn)
		r.Mount("/groups", groupsfeature.Routes(groupsHandler, guessLimiter.Middleware))
		r.Mount("/preferences", giftsfeature.Routes(giftsHandler))
		r.Mount("/profile", profilefeature.Routes(profileHandler))
	})

	return r, nil
}
