// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a participant account.
//
// NOTE:
//   - Group membership is not embedded on User. The user's side of each
//     user↔group relationship lives in the user_groups collection.
//   - Email is unique (case-insensitive; stored lowercased).
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	Username     string             `bson:"username" json:"username"`
	Bio          string             `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePic   string             `bson:"profile_pic,omitempty" json:"profile_pic,omitempty"`
	PasswordHash string             `bson:"password_hash" json:"-"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
