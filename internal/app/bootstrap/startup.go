// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	groupstore "underwraps/internal/app/store/groups"
	memberstore "underwraps/internal/app/store/members"
	membershipstore "underwraps/internal/app/store/memberships"
	"underwraps/internal/app/system/workers"
)

// reconciler is started here and stopped in Shutdown. Membership link
// records are written as two inserts, so the reconciler sweeps for
// records an interrupted write left one-sided.
var reconciler *workers.Reconciler

// Startup runs one-time application initialization after DB connections
// and schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	reconciler = workers.NewReconciler(
		groupstore.New(deps.MongoDatabase),
		memberstore.New(deps.MongoDatabase),
		membershipstore.New(deps.MongoDatabase),
		logger,
		appCfg.ReconcileInterval,
	)
	reconciler.Start()
	return nil
}
