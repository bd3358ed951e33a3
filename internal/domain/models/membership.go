// internal/domain/models/membership.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Membership is the user-side half of a user↔group relationship
// (collection: user_groups). Exactly one document per (user_id, group_id).
//
// For every Membership there must be a matching Member document in
// group_members, and vice versa. The two are written separately, so the
// pair can be briefly (or, after a partial failure, persistently)
// one-sided; the link manager and the reconciler own that invariant.
//
// MatchID is set when the group's matches are drawn: it references the
// user this member buys a gift for. It is never the member themselves.
type Membership struct {
	ID      primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID  primitive.ObjectID  `bson:"user_id" json:"user_id"`
	GroupID primitive.ObjectID  `bson:"group_id" json:"group_id"`
	IsAdmin bool                `bson:"is_admin" json:"is_admin"`
	MatchID *primitive.ObjectID `bson:"match_id,omitempty" json:"match_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
