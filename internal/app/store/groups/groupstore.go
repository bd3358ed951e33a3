package groupstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"underwraps/internal/app/system/htmlsanitize"
	"underwraps/internal/app/system/joincode"
	"underwraps/internal/app/system/normalize"
	"underwraps/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("groups")}
}

var (
	// ErrCodeNotFound is returned when no group carries the given join code.
	ErrCodeNotFound = errors.New("no group found for this code")

	// ErrCodeSpaceExhausted means repeated code collisions prevented a
	// group insert. With a 36^5 code space this indicates something is
	// badly wrong, not bad luck.
	ErrCodeSpaceExhausted = errors.New("could not allocate a unique join code")

	errNameRequired = errors.New("group name is required")
)

// maxCodeAttempts bounds the reservation loop. At any plausible group
// count the collision probability per attempt is tiny, so hitting this
// cap means the index is missing or the database is misbehaving.
const maxCodeAttempts = 25

// Create inserts a new open group with a freshly generated join code.
// The insert against the unique code index IS the code reservation:
// on a duplicate-key error we generate a new code and retry.
func (s *Store) Create(ctx context.Context, name string, adminID primitive.ObjectID) (models.Group, error) {
	name = htmlsanitize.Plain(name)
	if name == "" {
		return models.Group{}, errNameRequired
	}

	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		now := time.Now().UTC()
		g := models.Group{
			ID:        primitive.NewObjectID(),
			Name:      name,
			Code:      joincode.New(),
			AdminID:   adminID,
			Closed:    false,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := s.c.InsertOne(ctx, g); err != nil {
			if wafflemongo.IsDup(err) {
				continue
			}
			return models.Group{}, err
		}
		return g, nil
	}
	return models.Group{}, ErrCodeSpaceExhausted
}

// GetByID loads a group by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Group, error) {
	var g models.Group
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&g); err != nil {
		return nil, err
	}
	return &g, nil
}

// GetByCode looks up a group by join code. Codes are stored lowercase,
// so lookup normalizes first.
func (s *Store) GetByCode(ctx context.Context, code string) (*models.Group, error) {
	code = normalize.Code(code)
	if !joincode.Valid(code) {
		return nil, ErrCodeNotFound
	}
	var g models.Group
	err := s.c.FindOne(ctx, bson.M{"code": code}).Decode(&g)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrCodeNotFound
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// GetManyByID resolves a set of groups in one query. Missing IDs are
// silently absent from the result.
func (s *Store) GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var gs []models.Group
	if err := cur.All(ctx, &gs); err != nil {
		return nil, err
	}
	return gs, nil
}

// Close marks a group closed. Closing is one-way; a closed group never
// reopens.
func (s *Store) Close(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"closed": true, "updated_at": time.Now().UTC()}})
	return err
}

// Delete removes the group document. Callers are responsible for
// removing link records first so the code frees only after members are
// detached.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
