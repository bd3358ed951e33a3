// Package membershipstore manages the user-side link records. Each
// document records one user's membership in one group, including the
// user's admin flag and assigned match. The group-side twin lives in
// memberstore; the two are kept in step by the link package.
package membershipstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"underwraps/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("user_groups")}
}

// ErrDuplicateMembership is returned when the user already has a
// membership record for the group.
var ErrDuplicateMembership = errors.New("user is already a member of this group")

// Add inserts a membership record. The compound unique index on
// (user_id, group_id) makes this safe under concurrent joins.
func (s *Store) Add(ctx context.Context, userID, groupID primitive.ObjectID, isAdmin bool) (models.Membership, error) {
	m := models.Membership{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		GroupID:   groupID,
		IsAdmin:   isAdmin,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Membership{}, ErrDuplicateMembership
		}
		return models.Membership{}, err
	}
	return m, nil
}

// Remove deletes the user's membership record for the group. Removing
// a record that does not exist is not an error.
func (s *Store) Remove(ctx context.Context, userID, groupID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"user_id": userID, "group_id": groupID})
	return err
}

// Get loads the membership record for one user in one group.
func (s *Store) Get(ctx context.Context, userID, groupID primitive.ObjectID) (*models.Membership, error) {
	var m models.Membership
	if err := s.c.FindOne(ctx, bson.M{"user_id": userID, "group_id": groupID}).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

// Exists reports whether the user has a membership record for the group.
func (s *Store) Exists(ctx context.Context, userID, groupID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "group_id": groupID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByUser returns all of a user's memberships.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Membership, error) {
	return s.list(ctx, bson.M{"user_id": userID})
}

// ListByGroup returns all membership records for a group.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.Membership, error) {
	return s.list(ctx, bson.M{"group_id": groupID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Membership, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ms []models.Membership
	if err := cur.All(ctx, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// DistinctGroupIDs returns every group referenced by a membership
// record.
func (s *Store) DistinctGroupIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	raw, err := s.c.Distinct(ctx, "group_id", bson.M{})
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, 0, len(raw))
	for _, v := range raw {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// DeleteByGroup removes every membership record for the group. Used
// when a group is disbanded.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// SetMatch records the user's drawn match on their membership record.
func (s *Store) SetMatch(ctx context.Context, userID, groupID, matchID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "group_id": groupID},
		bson.M{"$set": bson.M{"match_id": matchID}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
