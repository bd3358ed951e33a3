package workers_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"

	groupstore "underwraps/internal/app/store/groups"
	memberstore "underwraps/internal/app/store/members"
	membershipstore "underwraps/internal/app/store/memberships"
	"underwraps/internal/app/system/workers"
	"underwraps/internal/testutil"
)

func newReconciler(t *testing.T) (*workers.Reconciler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	w := workers.NewReconciler(
		groupstore.New(db),
		memberstore.New(db),
		membershipstore.New(db),
		zap.NewNop(),
		time.Minute,
	)
	return w, testutil.NewFixtures(t, db)
}

func TestReconcileRestoresMissingMemberRecord(t *testing.T) {
	w, fixtures := newReconciler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	g := fixtures.CreateGroup(ctx, "Office Exchange", admin.ID)
	u := fixtures.CreateUser(ctx, "Theo", "")
	fixtures.CreateStrandedMembership(ctx, u.ID, g.ID)

	stats, err := w.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if stats.MembersRestored != 1 {
		t.Errorf("MembersRestored = %d, want 1", stats.MembersRestored)
	}

	n, err := fixtures.DB().Collection("group_members").CountDocuments(ctx,
		bson.M{"group_id": g.ID, "member_id": u.ID})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("member record count = %d, want 1", n)
	}
}

func TestReconcileRemovesStrayMemberRecord(t *testing.T) {
	w, fixtures := newReconciler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	g := fixtures.CreateGroup(ctx, "Office Exchange", admin.ID)
	u := fixtures.CreateUser(ctx, "Theo", "")
	fixtures.CreateStrandedMember(ctx, u.ID, g.ID)

	stats, err := w.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if stats.MembersRemoved != 1 {
		t.Errorf("MembersRemoved = %d, want 1", stats.MembersRemoved)
	}

	n, err := fixtures.DB().Collection("group_members").CountDocuments(ctx, bson.M{})
	if err != nil {
		t.Fatal(err)
	}
	if n != 0 {
		t.Errorf("member records left = %d, want 0", n)
	}
}

func TestReconcilePurgesRecordsOfDeletedGroup(t *testing.T) {
	w, fixtures := newReconciler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Theo", "")
	g := fixtures.CreateGroup(ctx, "Office Exchange", u.ID)
	fixtures.LinkMember(ctx, u.ID, g.ID, true)

	// Delete the group out from under its link records.
	if _, err := fixtures.DB().Collection("groups").DeleteOne(ctx, bson.M{"_id": g.ID}); err != nil {
		t.Fatal(err)
	}

	stats, err := w.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if stats.MembershipsRemoved != 1 || stats.MembersRemoved != 1 {
		t.Errorf("stats = %+v, want one removal per side", stats)
	}

	for _, coll := range []string{"user_groups", "group_members"} {
		n, err := fixtures.DB().Collection(coll).CountDocuments(ctx, bson.M{})
		if err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%s: %d records left, want 0", coll, n)
		}
	}
}

func TestReconcileLeavesHealthyRecordsAlone(t *testing.T) {
	w, fixtures := newReconciler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	g := fixtures.CreateGroup(ctx, "Office Exchange", admin.ID)
	fixtures.LinkMember(ctx, admin.ID, g.ID, true)
	u := fixtures.CreateUser(ctx, "Theo", "")
	fixtures.LinkMember(ctx, u.ID, g.ID, false)

	stats, err := w.Reconcile(ctx)
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if stats != (workers.Stats{}) {
		t.Errorf("healthy state repaired: %+v", stats)
	}
}
