// internal/domain/models/group.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Group is one gift exchange.
//
// NOTE:
//   - Member lists are not embedded on Group. The group's side of each
//     user↔group relationship lives in the group_members collection.
//   - Code is the unique join code participants type to enter the group.
//     It is stored lowercased and matched case-insensitively.
//   - Closed flips to true when matches have been drawn; a closed group
//     accepts no further joins.
type Group struct {
	ID      primitive.ObjectID `bson:"_id" json:"id"`
	Name    string             `bson:"name" json:"name"`
	Code    string             `bson:"code" json:"code"`
	AdminID primitive.ObjectID `bson:"admin_id" json:"admin_id"`
	Closed  bool               `bson:"closed" json:"closed"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
