// Package link keeps the two sides of a group membership in step.
//
// A membership is stored twice: once in group_members (the group's view)
// and once in user_groups (the user's view). Mongo has no transaction
// spanning the two writes in our standalone deployment, so the link
// manager writes them in a fixed order and reports exactly which side
// failed. The reconciler worker heals any one-sided records left behind.
package link

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	memberstore "underwraps/internal/app/store/members"
	membershipstore "underwraps/internal/app/store/memberships"
	"underwraps/internal/domain/models"
)

var (
	// ErrAlreadyLinked is returned when the user is already a member of
	// the group on either side.
	ErrAlreadyLinked = errors.New("user is already linked to this group")

	// ErrNotLinked is returned by Unlink when neither side has a record.
	ErrNotLinked = errors.New("user is not linked to this group")
)

// Side names which half of a link record an operation touched.
type Side string

const (
	SideGroup Side = "group_members"
	SideUser  Side = "user_groups"
)

// PartialError reports a link operation that completed one side but not
// the other, leaving a one-sided record for the reconciler.
type PartialError struct {
	Op     string // "link" or "unlink"
	Done   Side   // the side that was written
	Failed Side   // the side whose write failed
	Err    error
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s wrote %s but failed on %s: %v", e.Op, e.Done, e.Failed, e.Err)
}

func (e *PartialError) Unwrap() error { return e.Err }

// MemberWriter is the group-side store surface the manager needs.
type MemberWriter interface {
	Add(ctx context.Context, groupID, memberID primitive.ObjectID) (models.Member, error)
	Remove(ctx context.Context, groupID, memberID primitive.ObjectID) error
	Exists(ctx context.Context, groupID, memberID primitive.ObjectID) (bool, error)
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

// MembershipWriter is the user-side store surface the manager needs.
type MembershipWriter interface {
	Add(ctx context.Context, userID, groupID primitive.ObjectID, isAdmin bool) (models.Membership, error)
	Remove(ctx context.Context, userID, groupID primitive.ObjectID) error
	Exists(ctx context.Context, userID, groupID primitive.ObjectID) (bool, error)
	DeleteByGroup(ctx context.Context, groupID primitive.ObjectID) (int64, error)
}

// Manager performs paired writes across the two link collections.
type Manager struct {
	members     MemberWriter
	memberships MembershipWriter
	log         *zap.Logger
}

func NewManager(members MemberWriter, memberships MembershipWriter, logger *zap.Logger) *Manager {
	return &Manager{members: members, memberships: memberships, log: logger}
}

var _ MemberWriter = (*memberstore.Store)(nil)
var _ MembershipWriter = (*membershipstore.Store)(nil)

// Link records the user as a member of the group on both sides. The
// group side is written first so a user-visible membership record never
// exists without its group-side twin; on a second-write failure the
// returned PartialError names the stranded side.
func (m *Manager) Link(ctx context.Context, userID, groupID primitive.ObjectID, isAdmin bool) (models.Membership, error) {
	_, err := m.members.Add(ctx, groupID, userID)
	if errors.Is(err, memberstore.ErrDuplicateMember) {
		return models.Membership{}, ErrAlreadyLinked
	}
	if err != nil {
		return models.Membership{}, err
	}

	ms, err := m.memberships.Add(ctx, userID, groupID, isAdmin)
	if errors.Is(err, membershipstore.ErrDuplicateMembership) {
		// Group side inserted but user side already existed. The records
		// are now consistent, but the caller asked to link twice.
		return models.Membership{}, ErrAlreadyLinked
	}
	if err != nil {
		m.log.Warn("membership write failed after member write",
			zap.String("user_id", userID.Hex()),
			zap.String("group_id", groupID.Hex()),
			zap.Error(err))
		return models.Membership{}, &PartialError{Op: "link", Done: SideGroup, Failed: SideUser, Err: err}
	}
	return ms, nil
}

// Unlink removes the user's membership from both sides. The user side
// is removed first, the reverse of Link, so an interrupted unlink never
// leaves a membership record pointing at a group that no longer lists
// the user.
func (m *Manager) Unlink(ctx context.Context, userID, groupID primitive.ObjectID) error {
	onUser, err := m.memberships.Exists(ctx, userID, groupID)
	if err != nil {
		return err
	}
	onGroup, err := m.members.Exists(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !onUser && !onGroup {
		return ErrNotLinked
	}

	if onUser {
		if err := m.memberships.Remove(ctx, userID, groupID); err != nil {
			return err
		}
	}
	if onGroup {
		if err := m.members.Remove(ctx, groupID, userID); err != nil {
			m.log.Warn("member removal failed after membership removal",
				zap.String("user_id", userID.Hex()),
				zap.String("group_id", groupID.Hex()),
				zap.Error(err))
			return &PartialError{Op: "unlink", Done: SideUser, Failed: SideGroup, Err: err}
		}
	}
	return nil
}

// UnlinkAll removes every link record for the group, both sides. Used
// when a group is disbanded. Membership records go first for the same
// reason Unlink removes the user side first.
func (m *Manager) UnlinkAll(ctx context.Context, groupID primitive.ObjectID) error {
	n, err := m.memberships.DeleteByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if _, err := m.members.DeleteByGroup(ctx, groupID); err != nil {
		m.log.Warn("member purge failed after membership purge",
			zap.String("group_id", groupID.Hex()),
			zap.Int64("memberships_removed", n),
			zap.Error(err))
		return &PartialError{Op: "unlink", Done: SideUser, Failed: SideGroup, Err: err}
	}
	return nil
}
