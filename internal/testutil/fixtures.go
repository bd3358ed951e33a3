package testutil

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"underwraps/internal/app/system/joincode"
	"underwraps/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
	n  int
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a test user. Email defaults to a unique address
// when empty.
func (f *Fixtures) CreateUser(ctx context.Context, username, email string) models.User {
	f.t.Helper()

	f.n++
	if email == "" {
		email = fmt.Sprintf("user%d@example.com", f.n)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		Email:        email,
		Username:     username,
		PasswordHash: "$2a$10$fixturefixturefixturefixturefixturefixturefixturefix",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateGroup inserts an open test group with a fresh join code.
func (f *Fixtures) CreateGroup(ctx context.Context, name string, adminID primitive.ObjectID) models.Group {
	f.t.Helper()

	now := time.Now().UTC()
	g := models.Group{
		ID:        primitive.NewObjectID(),
		Name:      name,
		Code:      joincode.New(),
		AdminID:   adminID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("groups").InsertOne(ctx, g); err != nil {
		f.t.Fatalf("failed to create test group: %v", err)
	}
	return g
}

// LinkMember inserts both sides of a membership, the state a successful
// link leaves behind.
func (f *Fixtures) LinkMember(ctx context.Context, userID, groupID primitive.ObjectID, isAdmin bool) models.Membership {
	f.t.Helper()

	now := time.Now().UTC()
	member := models.Member{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		MemberID:  userID,
		CreatedAt: now,
	}
	if _, err := f.db.Collection("group_members").InsertOne(ctx, member); err != nil {
		f.t.Fatalf("failed to create test member record: %v", err)
	}

	m := models.Membership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		GroupID:   groupID,
		IsAdmin:   isAdmin,
		CreatedAt: now,
	}
	if _, err := f.db.Collection("user_groups").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership record: %v", err)
	}
	return m
}

// CreateStrandedMember inserts a group-side record with no user-side
// twin, the state an interrupted link leaves behind.
func (f *Fixtures) CreateStrandedMember(ctx context.Context, userID, groupID primitive.ObjectID) models.Member {
	f.t.Helper()

	m := models.Member{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		MemberID:  userID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("group_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create stranded member record: %v", err)
	}
	return m
}

// CreateStrandedMembership inserts a user-side record with no
// group-side twin.
func (f *Fixtures) CreateStrandedMembership(ctx context.Context, userID, groupID primitive.ObjectID) models.Membership {
	f.t.Helper()

	m := models.Membership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		GroupID:   groupID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("user_groups").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create stranded membership record: %v", err)
	}
	return m
}

// CreatePreference inserts a gift preference for the user.
func (f *Fixtures) CreatePreference(ctx context.Context, userID primitive.ObjectID, text string) models.Preference {
	f.t.Helper()

	p := models.Preference{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("preferences").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test preference: %v", err)
	}
	return p
}
