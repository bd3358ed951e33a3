package memberstore_test

import (
	"errors"
	"testing"

	memberstore "underwraps/internal/app/store/members"
	"underwraps/internal/testutil"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Add_Duplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()

	if _, err := store.Add(ctx, groupID, memberID); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if _, err := store.Add(ctx, groupID, memberID); !errors.Is(err, memberstore.ErrDuplicateMember) {
		t.Fatalf("got %v, want ErrDuplicateMember", err)
	}
}

func TestStore_RemoveAndExists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	memberID := primitive.NewObjectID()

	if _, err := store.Add(ctx, groupID, memberID); err != nil {
		t.Fatalf("Add failed: %v", err)
	}
	if ok, err := store.Exists(ctx, groupID, memberID); err != nil || !ok {
		t.Fatalf("Exists after Add: ok=%v err=%v", ok, err)
	}

	if err := store.Remove(ctx, groupID, memberID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if ok, err := store.Exists(ctx, groupID, memberID); err != nil || ok {
		t.Fatalf("Exists after Remove: ok=%v err=%v", ok, err)
	}
}

func TestStore_ListByGroup(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := memberstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	groupID := primitive.NewObjectID()
	for i := 0; i < 3; i++ {
		if _, err := store.Add(ctx, groupID, primitive.NewObjectID()); err != nil {
			t.Fatalf("Add failed: %v", err)
		}
	}
	if _, err := store.Add(ctx, primitive.NewObjectID(), primitive.NewObjectID()); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	list, err := store.ListByGroup(ctx, groupID)
	if err != nil {
		t.Fatalf("ListByGroup failed: %v", err)
	}
	if len(list) != 3 {
		t.Errorf("got %d members, want 3", len(list))
	}
	for _, m := range list {
		if m.GroupID != groupID {
			t.Errorf("member %v belongs to group %v, want %v", m.MemberID, m.GroupID, groupID)
		}
	}
}
