// Package exchange is the group lifecycle manager. A group moves
// through three states: open (accepting joins), closed (matches drawn,
// membership frozen), and deleted. Closing is one-way and deletion is
// final; the join code frees only when the group document goes away.
package exchange

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"underwraps/internal/app/link"
	"underwraps/internal/app/matching"
	groupstore "underwraps/internal/app/store/groups"
	memberstore "underwraps/internal/app/store/members"
	membershipstore "underwraps/internal/app/store/memberships"
	"underwraps/internal/domain/models"
)

var (
	// ErrGroupNotFound is returned when the group does not exist.
	ErrGroupNotFound = errors.New("group not found")

	// ErrGroupClosed is returned for join, leave, and draw attempts on a
	// closed group.
	ErrGroupClosed = errors.New("group is closed")

	// ErrAlreadyMember is returned when the user is already in the group.
	ErrAlreadyMember = errors.New("you are already a member of this group")

	// ErrNotMember is returned when the acting user has no membership in
	// the group.
	ErrNotMember = errors.New("you are not a member of this group")

	// ErrNotDrawn is returned when matches have not been drawn yet.
	ErrNotDrawn = errors.New("matches have not been drawn for this group")
)

// Service coordinates the group, membership, and matching stores.
type Service struct {
	groups      *groupstore.Store
	members     *memberstore.Store
	memberships *membershipstore.Store
	linker      *link.Manager
	engine      *matching.Engine
	log         *zap.Logger
}

func NewService(
	groups *groupstore.Store,
	members *memberstore.Store,
	memberships *membershipstore.Store,
	linker *link.Manager,
	engine *matching.Engine,
	logger *zap.Logger,
) *Service {
	return &Service{
		groups:      groups,
		members:     members,
		memberships: memberships,
		linker:      linker,
		engine:      engine,
		log:         logger,
	}
}

// Create inserts a new open group and links the creator as its admin.
// If the link fails the group is rolled back so no group exists without
// at least one member.
func (s *Service) Create(ctx context.Context, name string, adminID primitive.ObjectID) (models.Group, error) {
	g, err := s.groups.Create(ctx, name, adminID)
	if err != nil {
		return models.Group{}, err
	}

	if _, err := s.linker.Link(ctx, adminID, g.ID, true); err != nil {
		s.log.Error("rolling back group after failed admin link",
			zap.String("group_id", g.ID.Hex()),
			zap.Error(err))
		if delErr := s.groups.Delete(ctx, g.ID); delErr != nil {
			s.log.Error("group rollback failed, reconciler will purge",
				zap.String("group_id", g.ID.Hex()),
				zap.Error(delErr))
		}
		return models.Group{}, err
	}

	s.log.Info("group created",
		zap.String("group_id", g.ID.Hex()),
		zap.String("code", g.Code))
	return g, nil
}

// JoinByCode adds the user to the open group carrying the code.
func (s *Service) JoinByCode(ctx context.Context, userID primitive.ObjectID, code string) (models.Group, error) {
	g, err := s.groups.GetByCode(ctx, code)
	if err != nil {
		return models.Group{}, err
	}
	if g.Closed {
		return models.Group{}, ErrGroupClosed
	}

	if _, err := s.linker.Link(ctx, userID, g.ID, false); err != nil {
		if errors.Is(err, link.ErrAlreadyLinked) {
			return models.Group{}, ErrAlreadyMember
		}
		return models.Group{}, err
	}
	return *g, nil
}

// Leave removes the user from an open group. Members of a closed group
// cannot leave; their match assignments would dangle.
func (s *Service) Leave(ctx context.Context, userID, groupID primitive.ObjectID) error {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if g.Closed {
		return ErrGroupClosed
	}

	err = s.linker.Unlink(ctx, userID, groupID)
	if errors.Is(err, link.ErrNotLinked) {
		return ErrNotMember
	}
	return err
}

// Draw assigns every member another member to gift and closes the
// group. Requires an open group with at least two members.
func (s *Service) Draw(ctx context.Context, groupID primitive.ObjectID) error {
	g, err := s.getGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if g.Closed {
		return ErrGroupClosed
	}

	rows, err := s.members.ListByGroup(ctx, groupID)
	if err != nil {
		return err
	}
	memberIDs := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		memberIDs[i] = r.MemberID
	}

	if err := s.engine.Assign(ctx, groupID, memberIDs); err != nil {
		return err
	}
	return s.groups.Close(ctx, groupID)
}

// Match returns the ID of the member the user is gifting in the group.
func (s *Service) Match(ctx context.Context, userID, groupID primitive.ObjectID) (primitive.ObjectID, error) {
	m, err := s.memberships.Get(ctx, userID, groupID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return primitive.NilObjectID, ErrNotMember
	}
	if err != nil {
		return primitive.NilObjectID, err
	}
	if m.MatchID == nil {
		return primitive.NilObjectID, ErrNotDrawn
	}
	return *m.MatchID, nil
}

// Membership loads the acting user's membership in the group, mapping
// a missing record to ErrNotMember.
func (s *Service) Membership(ctx context.Context, userID, groupID primitive.ObjectID) (*models.Membership, error) {
	m, err := s.memberships.Get(ctx, userID, groupID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotMember
	}
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Disband removes the group and all of its link records. Link records
// go first so the join code, which frees when the group document is
// deleted, never points at leftover memberships.
func (s *Service) Disband(ctx context.Context, groupID primitive.ObjectID) error {
	if _, err := s.getGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.linker.UnlinkAll(ctx, groupID); err != nil {
		return err
	}
	if err := s.groups.Delete(ctx, groupID); err != nil {
		return err
	}
	s.log.Info("group disbanded", zap.String("group_id", groupID.Hex()))
	return nil
}

// GroupView pairs a group with the acting user's membership details.
type GroupView struct {
	Group   models.Group
	IsAdmin bool
	Drawn   bool
}

// ListForUser returns every group the user belongs to, with their
// admin flag and whether their match has been drawn.
func (s *Service) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]GroupView, error) {
	ms, err := s.memberships.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(ms) == 0 {
		return nil, nil
	}

	ids := make([]primitive.ObjectID, len(ms))
	for i, m := range ms {
		ids[i] = m.GroupID
	}
	gs, err := s.groups.GetManyByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[primitive.ObjectID]models.Group, len(gs))
	for _, g := range gs {
		byID[g.ID] = g
	}

	views := make([]GroupView, 0, len(ms))
	for _, m := range ms {
		g, ok := byID[m.GroupID]
		if !ok {
			// Membership referencing a deleted group; the reconciler
			// will remove it.
			continue
		}
		views = append(views, GroupView{Group: g, IsAdmin: m.IsAdmin, Drawn: m.MatchID != nil})
	}
	return views, nil
}

// MemberIDs returns the IDs of the group's members.
func (s *Service) MemberIDs(ctx context.Context, groupID primitive.ObjectID) ([]primitive.ObjectID, error) {
	rows, err := s.members.ListByGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	ids := make([]primitive.ObjectID, len(rows))
	for i, r := range rows {
		ids[i] = r.MemberID
	}
	return ids, nil
}

// Group loads one group, mapping a missing document to ErrGroupNotFound.
func (s *Service) Group(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error) {
	return s.getGroup(ctx, groupID)
}

func (s *Service) getGroup(ctx context.Context, groupID primitive.ObjectID) (*models.Group, error) {
	g, err := s.groups.GetByID(ctx, groupID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}
