package link_test

import (
	"testing"

	"underwraps/internal/app/link"
	memberstore "underwraps/internal/app/store/members"
	membershipstore "underwraps/internal/app/store/memberships"
	"underwraps/internal/testutil"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// assertSymmetric checks that the group_members and user_groups
// collections describe the same set of user↔group pairs.
func assertSymmetric(t *testing.T, members *memberstore.Store, memberships *membershipstore.Store, groupID primitive.ObjectID) {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupSide, err := members.ListByGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	userSide, err := memberships.ListByGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}

	want := make(map[primitive.ObjectID]bool, len(groupSide))
	for _, m := range groupSide {
		want[m.MemberID] = true
	}
	if len(userSide) != len(groupSide) {
		t.Fatalf("asymmetric link state: %d group-side vs %d user-side records", len(groupSide), len(userSide))
	}
	for _, m := range userSide {
		if !want[m.UserID] {
			t.Errorf("membership for user %v has no group-side record", m.UserID)
		}
	}
}

func TestManager_LinkUnlinkSymmetry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	members := memberstore.New(db)
	memberships := membershipstore.New(db)
	mgr := link.NewManager(members, memberships, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	users := make([]primitive.ObjectID, 4)
	for i := range users {
		users[i] = primitive.NewObjectID()
		if _, err := mgr.Link(ctx, users[i], groupID, i == 0); err != nil {
			t.Fatalf("Link failed: %v", err)
		}
	}
	assertSymmetric(t, members, memberships, groupID)

	if err := mgr.Unlink(ctx, users[2], groupID); err != nil {
		t.Fatalf("Unlink failed: %v", err)
	}
	assertSymmetric(t, members, memberships, groupID)

	if ok, err := members.Exists(ctx, groupID, users[2]); err != nil || ok {
		t.Errorf("unlinked member still on group side (ok=%v err=%v)", ok, err)
	}
}

func TestManager_UnlinkAllSymmetry(t *testing.T) {
	db := testutil.SetupTestDB(t)
	members := memberstore.New(db)
	memberships := membershipstore.New(db)
	mgr := link.NewManager(members, memberships, zap.NewNop())
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	otherGroup := primitive.NewObjectID()
	stays := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		if _, err := mgr.Link(ctx, primitive.NewObjectID(), groupID, false); err != nil {
			t.Fatalf("Link failed: %v", err)
		}
	}
	if _, err := mgr.Link(ctx, stays, otherGroup, true); err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	if err := mgr.UnlinkAll(ctx, groupID); err != nil {
		t.Fatalf("UnlinkAll failed: %v", err)
	}
	assertSymmetric(t, members, memberships, groupID)

	groupSide, err := members.ListByGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(groupSide) != 0 {
		t.Errorf("got %d group-side records after UnlinkAll, want 0", len(groupSide))
	}
	assertSymmetric(t, members, memberships, otherGroup)
	if ok, err := memberships.Exists(ctx, stays, otherGroup); err != nil || !ok {
		t.Errorf("membership in untouched group should survive (ok=%v err=%v)", ok, err)
	}
}
