// internal/app/system/workers/reconciler.go
package workers

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	groupstore "underwraps/internal/app/store/groups"
	memberstore "underwraps/internal/app/store/members"
	membershipstore "underwraps/internal/app/store/memberships"
	"underwraps/internal/domain/models"
)

// Reconciler is a background worker that heals one-sided link records.
// A membership and its group-side member record are written as two
// separate inserts, so a crash between them leaves a record on one
// side only. The membership record is treated as authoritative: a
// membership with no member record gets the member record re-inserted,
// a member record with no membership is deleted, and records naming a
// group that no longer exists are purged on both sides.
type Reconciler struct {
	groups      *groupstore.Store
	members     *memberstore.Store
	memberships *membershipstore.Store
	log         *zap.Logger
	interval    time.Duration
	stopCh      chan struct{}
	wg          sync.WaitGroup
}

// NewReconciler creates a link reconciler worker.
func NewReconciler(
	groups *groupstore.Store,
	members *memberstore.Store,
	memberships *membershipstore.Store,
	logger *zap.Logger,
	interval time.Duration,
) *Reconciler {
	return &Reconciler{
		groups:      groups,
		members:     members,
		memberships: memberships,
		log:         logger,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start begins the background reconcile loop.
func (w *Reconciler) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("link reconciler started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Reconciler) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("link reconciler stopped")
}

func (w *Reconciler) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if _, err := w.Reconcile(ctx); err != nil {
				w.log.Error("link reconcile pass failed", zap.Error(err))
			}
			cancel()
		}
	}
}

// Stats counts the repairs one reconcile pass made.
type Stats struct {
	MembersRestored    int
	MembersRemoved     int
	MembershipsRemoved int
}

// Reconcile runs one full repair pass. Exported so tests and admin
// tooling can trigger a sweep without the ticker.
func (w *Reconciler) Reconcile(ctx context.Context) (Stats, error) {
	var stats Stats

	memberships, err := w.allMemberships(ctx)
	if err != nil {
		return stats, err
	}
	memberRows, err := w.allMembers(ctx)
	if err != nil {
		return stats, err
	}

	liveGroups, err := w.liveGroups(ctx, memberships, memberRows)
	if err != nil {
		return stats, err
	}

	type pair struct{ user, group primitive.ObjectID }
	onUserSide := make(map[pair]bool, len(memberships))
	for _, m := range memberships {
		onUserSide[pair{m.UserID, m.GroupID}] = true
	}
	onGroupSide := make(map[pair]bool, len(memberRows))
	for _, m := range memberRows {
		onGroupSide[pair{m.MemberID, m.GroupID}] = true
	}

	for _, m := range memberships {
		if !liveGroups[m.GroupID] {
			if err := w.memberships.Remove(ctx, m.UserID, m.GroupID); err != nil {
				return stats, err
			}
			stats.MembershipsRemoved++
			continue
		}
		if !onGroupSide[pair{m.UserID, m.GroupID}] {
			if _, err := w.members.Add(ctx, m.GroupID, m.UserID); err != nil {
				return stats, err
			}
			stats.MembersRestored++
		}
	}

	for _, m := range memberRows {
		if liveGroups[m.GroupID] && onUserSide[pair{m.MemberID, m.GroupID}] {
			continue
		}
		if err := w.members.Remove(ctx, m.GroupID, m.MemberID); err != nil {
			return stats, err
		}
		stats.MembersRemoved++
	}

	if stats != (Stats{}) {
		w.log.Info("healed one-sided link records",
			zap.Int("members_restored", stats.MembersRestored),
			zap.Int("members_removed", stats.MembersRemoved),
			zap.Int("memberships_removed", stats.MembershipsRemoved))
	}
	return stats, nil
}

func (w *Reconciler) allMemberships(ctx context.Context) ([]models.Membership, error) {
	groupIDs, err := w.memberships.DistinctGroupIDs(ctx)
	if err != nil {
		return nil, err
	}
	var all []models.Membership
	for _, gid := range groupIDs {
		ms, err := w.memberships.ListByGroup(ctx, gid)
		if err != nil {
			return nil, err
		}
		all = append(all, ms...)
	}
	return all, nil
}

func (w *Reconciler) allMembers(ctx context.Context) ([]models.Member, error) {
	groupIDs, err := w.members.DistinctGroupIDs(ctx)
	if err != nil {
		return nil, err
	}
	var all []models.Member
	for _, gid := range groupIDs {
		ms, err := w.members.ListByGroup(ctx, gid)
		if err != nil {
			return nil, err
		}
		all = append(all, ms...)
	}
	return all, nil
}

// liveGroups resolves which referenced groups still exist.
func (w *Reconciler) liveGroups(ctx context.Context, memberships []models.Membership, members []models.Member) (map[primitive.ObjectID]bool, error) {
	idSet := map[primitive.ObjectID]bool{}
	for _, m := range memberships {
		idSet[m.GroupID] = true
	}
	for _, m := range members {
		idSet[m.GroupID] = true
	}
	ids := make([]primitive.ObjectID, 0, len(idSet))
	for id := range idSet {
		ids = append(ids, id)
	}

	gs, err := w.groups.GetManyByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	live := make(map[primitive.ObjectID]bool, len(gs))
	for _, g := range gs {
		live[g.ID] = true
	}
	return live, nil
}
