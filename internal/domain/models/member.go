// internal/domain/models/member.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Member is the group-side half of a user↔group relationship
// (collection: group_members). Exactly one document per (group_id, member_id).
// See Membership for the pairing invariant.
type Member struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID  primitive.ObjectID `bson:"group_id" json:"group_id"`
	MemberID primitive.ObjectID `bson:"member_id" json:"member_id"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
