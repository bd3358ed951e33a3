// internal/domain/models/preference.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Preference is a single gift idea on a user's wish list
// (collection: preferences). A member's assigned giver reads these.
type Preference struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`
	Text   string             `bson:"text" json:"text"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
