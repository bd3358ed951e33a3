package preferencestore

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"underwraps/internal/app/system/htmlsanitize"
	"underwraps/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("preferences")}
}

var errTextRequired = errors.New("preference text is required")

// Add appends a gift preference to the user's wish list.
func (s *Store) Add(ctx context.Context, userID primitive.ObjectID, text string) (models.Preference, error) {
	text = htmlsanitize.Plain(text)
	if text == "" {
		return models.Preference{}, errTextRequired
	}
	p := models.Preference{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Preference{}, err
	}
	return p, nil
}

// ListByUser returns the user's preferences oldest first, the order
// they were added in.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Preference, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var ps []models.Preference
	if err := cur.All(ctx, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// Delete removes one preference, scoped to its owner so a user cannot
// delete another user's entries.
func (s *Store) Delete(ctx context.Context, userID, prefID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": prefID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
