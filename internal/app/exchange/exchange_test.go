package exchange_test

import (
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"underwraps/internal/app/exchange"
	"underwraps/internal/app/link"
	"underwraps/internal/app/matching"
	groupstore "underwraps/internal/app/store/groups"
	memberstore "underwraps/internal/app/store/members"
	membershipstore "underwraps/internal/app/store/memberships"
	"underwraps/internal/testutil"
)

func newService(t *testing.T) (*exchange.Service, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)

	groups := groupstore.New(db)
	members := memberstore.New(db)
	memberships := membershipstore.New(db)
	logger := zap.NewNop()
	linker := link.NewManager(members, memberships, logger)
	engine := matching.NewEngine(memberships, logger)

	svc := exchange.NewService(groups, members, memberships, linker, engine, logger)
	return svc, testutil.NewFixtures(t, db)
}

func TestCreateLinksAdmin(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	g, err := svc.Create(ctx, "Office Exchange", admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if g.Code == "" {
		t.Error("group has no join code")
	}
	if g.Closed {
		t.Error("new group should be open")
	}

	views, err := svc.ListForUser(ctx, admin.ID)
	if err != nil {
		t.Fatalf("ListForUser: %v", err)
	}
	if len(views) != 1 || !views[0].IsAdmin {
		t.Fatalf("creator should have exactly one admin membership, got %+v", views)
	}

	// Both link sides must exist.
	for _, coll := range []string{"group_members", "user_groups"} {
		n, err := fixtures.DB().Collection(coll).CountDocuments(ctx, bson.M{"group_id": g.ID})
		if err != nil {
			t.Fatalf("CountDocuments %s: %v", coll, err)
		}
		if n != 1 {
			t.Errorf("%s: got %d records, want 1", coll, n)
		}
	}
}

func TestJoinByCode(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	joiner := fixtures.CreateUser(ctx, "Theo", "")
	g, err := svc.Create(ctx, "Office Exchange", admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.JoinByCode(ctx, joiner.ID, g.Code)
	if err != nil {
		t.Fatalf("JoinByCode: %v", err)
	}
	if got.ID != g.ID {
		t.Fatalf("joined wrong group: %s", got.ID.Hex())
	}

	// Join is case-insensitive on the code but a second join must fail
	// and leave exactly one record per side.
	_, err = svc.JoinByCode(ctx, joiner.ID, g.Code)
	if !errors.Is(err, exchange.ErrAlreadyMember) {
		t.Fatalf("second join err = %v, want ErrAlreadyMember", err)
	}
	n, err := fixtures.DB().Collection("user_groups").CountDocuments(ctx,
		bson.M{"user_id": joiner.ID, "group_id": g.ID})
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("membership records after double join: got %d, want 1", n)
	}
}

func TestJoinUnknownCode(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fixtures.CreateUser(ctx, "Theo", "")
	_, err := svc.JoinByCode(ctx, u.ID, "zzzzz")
	if !errors.Is(err, groupstore.ErrCodeNotFound) {
		t.Fatalf("err = %v, want ErrCodeNotFound", err)
	}
}

func TestJoinClosedGroup(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	b := fixtures.CreateUser(ctx, "Theo", "")
	late := fixtures.CreateUser(ctx, "Iris", "")

	g, err := svc.Create(ctx, "Office Exchange", admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.JoinByCode(ctx, b.ID, g.Code); err != nil {
		t.Fatalf("JoinByCode: %v", err)
	}
	if err := svc.Draw(ctx, g.ID); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	_, err = svc.JoinByCode(ctx, late.ID, g.Code)
	if !errors.Is(err, exchange.ErrGroupClosed) {
		t.Fatalf("err = %v, want ErrGroupClosed", err)
	}
	n, err := fixtures.DB().Collection("user_groups").CountDocuments(ctx, bson.M{"group_id": g.ID})
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("membership count changed by rejected join: got %d, want 2", n)
	}
}

func TestDrawRequiresTwoMembers(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	g, err := svc.Create(ctx, "Solo", admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if err := svc.Draw(ctx, g.ID); !errors.Is(err, matching.ErrInsufficientMembers) {
		t.Fatalf("err = %v, want ErrInsufficientMembers", err)
	}
	got, err := svc.Group(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Closed {
		t.Error("failed draw must not close the group")
	}
}

func TestDrawAssignsAndCloses(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	g, err := svc.Create(ctx, "Potlatch", admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	others := make([]primitive.ObjectID, 2)
	for i, name := range []string{"Theo", "Iris"} {
		u := fixtures.CreateUser(ctx, name, "")
		others[i] = u.ID
		if _, err := svc.JoinByCode(ctx, u.ID, g.Code); err != nil {
			t.Fatalf("JoinByCode: %v", err)
		}
	}

	if err := svc.Draw(ctx, g.ID); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	got, err := svc.Group(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Closed {
		t.Error("draw must close the group")
	}

	// Every member has a match, nobody drew themselves, and every
	// member is drawn exactly once.
	all := append([]primitive.ObjectID{admin.ID}, others...)
	drawn := map[primitive.ObjectID]int{}
	for _, userID := range all {
		matchID, err := svc.Match(ctx, userID, g.ID)
		if err != nil {
			t.Fatalf("Match(%s): %v", userID.Hex(), err)
		}
		if matchID == userID {
			t.Errorf("member %s drew themselves", userID.Hex())
		}
		drawn[matchID]++
	}
	for _, userID := range all {
		if drawn[userID] != 1 {
			t.Errorf("member %s drawn %d times, want 1", userID.Hex(), drawn[userID])
		}
	}

	// A second draw on the now-closed group is rejected.
	if err := svc.Draw(ctx, g.ID); !errors.Is(err, exchange.ErrGroupClosed) {
		t.Fatalf("redraw err = %v, want ErrGroupClosed", err)
	}
}

func TestMatchBeforeDraw(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	g, err := svc.Create(ctx, "Office Exchange", admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Match(ctx, admin.ID, g.ID); !errors.Is(err, exchange.ErrNotDrawn) {
		t.Fatalf("err = %v, want ErrNotDrawn", err)
	}
	if _, err := svc.Match(ctx, primitive.NewObjectID(), g.ID); !errors.Is(err, exchange.ErrNotMember) {
		t.Fatalf("stranger err = %v, want ErrNotMember", err)
	}
}

func TestLeave(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	u := fixtures.CreateUser(ctx, "Theo", "")
	g, err := svc.Create(ctx, "Office Exchange", admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.JoinByCode(ctx, u.ID, g.Code); err != nil {
		t.Fatalf("JoinByCode: %v", err)
	}

	if err := svc.Leave(ctx, u.ID, g.ID); err != nil {
		t.Fatalf("Leave: %v", err)
	}
	if err := svc.Leave(ctx, u.ID, g.ID); !errors.Is(err, exchange.ErrNotMember) {
		t.Fatalf("second leave err = %v, want ErrNotMember", err)
	}

	for _, coll := range []string{"group_members", "user_groups"} {
		n, err := fixtures.DB().Collection(coll).CountDocuments(ctx, bson.M{"group_id": g.ID})
		if err != nil {
			t.Fatal(err)
		}
		if n != 1 {
			t.Errorf("%s: got %d records after leave, want 1 (the admin)", coll, n)
		}
	}
}

func TestLeaveClosedGroup(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	u := fixtures.CreateUser(ctx, "Theo", "")
	g, err := svc.Create(ctx, "Office Exchange", admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.JoinByCode(ctx, u.ID, g.Code); err != nil {
		t.Fatalf("JoinByCode: %v", err)
	}
	if err := svc.Draw(ctx, g.ID); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	if err := svc.Leave(ctx, u.ID, g.ID); !errors.Is(err, exchange.ErrGroupClosed) {
		t.Fatalf("err = %v, want ErrGroupClosed", err)
	}
}

func TestDisbandLeavesNoDanglingRecords(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	admin := fixtures.CreateUser(ctx, "Mara", "")
	g, err := svc.Create(ctx, "Office Exchange", admin.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, name := range []string{"Theo", "Iris"} {
		u := fixtures.CreateUser(ctx, name, "")
		if _, err := svc.JoinByCode(ctx, u.ID, g.Code); err != nil {
			t.Fatalf("JoinByCode: %v", err)
		}
	}

	if err := svc.Disband(ctx, g.ID); err != nil {
		t.Fatalf("Disband: %v", err)
	}
	if err := svc.Disband(ctx, g.ID); !errors.Is(err, exchange.ErrGroupNotFound) {
		t.Fatalf("second disband err = %v, want ErrGroupNotFound", err)
	}

	for _, coll := range []string{"groups", "group_members", "user_groups"} {
		n, err := fixtures.DB().Collection(coll).CountDocuments(ctx, bson.M{})
		if err != nil {
			t.Fatal(err)
		}
		if n != 0 {
			t.Errorf("%s: %d records left after disband", coll, n)
		}
	}
}

// The original three-friend walkthrough: create, two joins by code,
// draw, everyone sees a match that is not themselves.
func TestPotlatchScenario(t *testing.T) {
	svc, fixtures := newService(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	alice := fixtures.CreateUser(ctx, "Alice", "")
	bob := fixtures.CreateUser(ctx, "Bob", "")
	carol := fixtures.CreateUser(ctx, "Carol", "")

	g, err := svc.Create(ctx, "Potlatch", alice.ID)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, id := range []primitive.ObjectID{bob.ID, carol.ID} {
		if _, err := svc.JoinByCode(ctx, id, g.Code); err != nil {
			t.Fatalf("JoinByCode: %v", err)
		}
	}
	if err := svc.Draw(ctx, g.ID); err != nil {
		t.Fatalf("Draw: %v", err)
	}

	// With three members the only derangements are the two 3-cycles,
	// so following the matches from Alice must visit all three.
	cur := alice.ID
	seen := map[primitive.ObjectID]bool{}
	for i := 0; i < 3; i++ {
		if seen[cur] {
			t.Fatalf("match chain revisited %s before covering the group", cur.Hex())
		}
		seen[cur] = true
		next, err := svc.Match(ctx, cur, g.ID)
		if err != nil {
			t.Fatalf("Match: %v", err)
		}
		cur = next
	}
	if cur != alice.ID {
		t.Error("three-member match chain must return to its start")
	}
}
