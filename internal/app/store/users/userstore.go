package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"underwraps/internal/app/system/htmlsanitize"
	"underwraps/internal/app/system/normalize"
	"underwraps/internal/domain/models"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when the email already belongs to an account.
	ErrDuplicateEmail = errors.New("an account with this email already exists")

	errEmailRequired    = errors.New("email is required")
	errUsernameRequired = errors.New("username is required")
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetManyByID resolves a set of user references in one query. Missing IDs
// are silently absent from the result; callers merge what resolved.
func (s *Store) GetManyByID(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := s.c.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Create inserts a new user after normalizing fields. PasswordHash must
// already be set by the caller.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.Email = normalize.Email(u.Email)
	u.Username = htmlsanitize.Plain(u.Username)
	u.Bio = htmlsanitize.Plain(u.Bio)

	if u.Email == "" {
		return models.User{}, errEmailRequired
	}
	if u.Username == "" {
		return models.User{}, errUsernameRequired
	}

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// ProfileUpdate holds the fields a user can change about themselves.
type ProfileUpdate struct {
	Username   string
	Bio        string
	ProfilePic string
}

// UpdateProfile updates a user's profile fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	username := htmlsanitize.Plain(upd.Username)
	if username == "" {
		return errUsernameRequired
	}
	set := bson.M{
		"username":    username,
		"bio":         htmlsanitize.Plain(upd.Bio),
		"profile_pic": normalize.Name(upd.ProfilePic),
		"updated_at":  time.Now().UTC(),
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}
