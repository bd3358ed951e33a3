// Package matching assigns every group member another member to gift,
// with nobody drawing themselves. The assignment is a derangement of
// the member list: a permutation with no fixed points.
package matching

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var (
	// ErrInsufficientMembers means the group has fewer than two members,
	// so no derangement exists.
	ErrInsufficientMembers = errors.New("at least two members are required to draw matches")

	// ErrMatchingFailed means repeated shuffle attempts failed to
	// produce a derangement. With the swap repair this is effectively
	// unreachable; the cap exists so a bug cannot spin forever.
	ErrMatchingFailed = errors.New("could not produce a valid matching")
)

// maxRestarts bounds full reshuffles in Derange. The swap repair
// resolves almost every fixed point in place, so restarts are rare.
const maxRestarts = 100

// Derange returns a permutation of ids with assignment[i] != ids[i] for
// every index. The input slice is not modified. Returns
// ErrInsufficientMembers for fewer than two ids and ErrMatchingFailed
// if the restart cap is hit.
func Derange(ids []primitive.ObjectID) ([]primitive.ObjectID, error) {
	if len(ids) < 2 {
		return nil, ErrInsufficientMembers
	}

	out := make([]primitive.ObjectID, len(ids))
	for restart := 0; restart < maxRestarts; restart++ {
		copy(out, ids)
		rand.Shuffle(len(out), func(i, j int) {
			out[i], out[j] = out[j], out[i]
		})
		if repair(ids, out) {
			return out, nil
		}
	}
	return nil, ErrMatchingFailed
}

// repair fixes any fixed points left by the shuffle via swaps that do
// not introduce a new fixed point at either index. Reports false when a
// fixed point has no eligible swap partner, which tells the caller to
// reshuffle.
func repair(ids, out []primitive.ObjectID) bool {
	for i := range out {
		if out[i] != ids[i] {
			continue
		}
		swapped := false
		for j := range out {
			if j == i {
				continue
			}
			// The swap must not pin out[j] at position i or out[i] at j.
			if out[j] != ids[i] && out[i] != ids[j] {
				out[i], out[j] = out[j], out[i]
				swapped = true
				break
			}
		}
		if !swapped {
			return false
		}
	}
	return true
}

// MatchWriter records one drawn assignment on a membership record.
type MatchWriter interface {
	SetMatch(ctx context.Context, userID, groupID, matchID primitive.ObjectID) error
}

// Engine draws and persists matches for a group.
type Engine struct {
	writer MatchWriter
	log    *zap.Logger
}

func NewEngine(writer MatchWriter, logger *zap.Logger) *Engine {
	return &Engine{writer: writer, log: logger}
}

// Assign draws a derangement over memberIDs and writes each member's
// match to their membership record. Nothing is written unless the draw
// itself succeeds. Write failures are reported with the member whose
// record could not be updated; earlier writes are not rolled back, and
// a retry of the whole draw simply overwrites them.
func (e *Engine) Assign(ctx context.Context, groupID primitive.ObjectID, memberIDs []primitive.ObjectID) error {
	matches, err := Derange(memberIDs)
	if err != nil {
		return err
	}

	for i, userID := range memberIDs {
		if err := e.writer.SetMatch(ctx, userID, groupID, matches[i]); err != nil {
			e.log.Error("match write failed mid-draw",
				zap.String("group_id", groupID.Hex()),
				zap.String("user_id", userID.Hex()),
				zap.Int("written", i),
				zap.Error(err))
			return fmt.Errorf("writing match for member %s: %w", userID.Hex(), err)
		}
	}

	e.log.Info("matches assigned",
		zap.String("group_id", groupID.Hex()),
		zap.Int("members", len(memberIDs)))
	return nil
}
