// Package memberstore manages the group-side link records, the twin of
// membershipstore's user-side records. A member record answers "who is
// in this group" without scanning the whole user_groups collection.
package memberstore

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
	return &Store{c: db.Collection("group_members")}
}

// ErrDuplicateMember is returned when the group already lists the user.
var ErrDuplicateMember = errors.New("group already lists this member")

// Add inserts a member record for the group.
func (s *Store) Add(ctx context.Context, groupID, memberID primitive.ObjectID) (models.Member, error) {
	m := models.Member{
		ID:        primitive.NewObjectID(),
		GroupID:   groupID,
		MemberID:  memberID,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Member{}, ErrDuplicateMember
		}
		return models.Member{}, err
	}
	return m, nil
}

// Remove deletes the member record. Removing a record that does not
// exist is not an error.
func (s *Store) Remove(ctx context.Context, groupID, memberID primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"group_id": groupID, "member_id": memberID})
	return err
}

// Exists reports whether the group lists the user as a member.
func (s *Store) Exists(ctx context.Context, groupID, memberID primitive.ObjectID) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{"group_id": groupID, "member_id": memberID},
		options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByGroup returns the group's member records.
func (s *Store) ListByGroup(ctx context.Context, groupID primitive.ObjectID) ([]models.Member, error) {
	return s.list(ctx, bson.M{"group_id": groupID})
}

// ListByMember returns every group-side record naming the user. Mostly
// useful to the reconciler when cross-checking against user_groups.
func (s *Store) ListByMember(ctx context.Context, memberID primitive.ObjectID) ([]models.Member, error) {
	return s.list(ctx, bson.M{"member_id": memberID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.Member, error) {
	cur, err := s.c.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ms []models.Member
	if err := cur.All(ctx, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// DistinctGroupIDs returns every group referenced by a member record.
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

// DeleteByGroup removes every member record for the group.
func (s *Store) DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"group_id": groupID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
