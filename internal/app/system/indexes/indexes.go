// Package indexes creates the MongoDB indexes the service depends on.
//
// The unique indexes are load-bearing, not advisory: code reservation and
// the already-linked guard both work by inserting against a unique index
// and treating a duplicate-key error as "taken". Startup fails fast if an
// index cannot be ensured.
package indexes

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// EnsureAll is called at startup. Each ensure* function is idempotent.
// Errors are aggregated so every problem is visible at once.
func EnsureAll(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	var problems []string

	if err := ensureUsers(ctx, db, logger); err != nil {
		problems = append(problems, "users: "+err.Error())
	}
	if err := ensureGroups(ctx, db, logger); err != nil {
		problems = append(problems, "groups: "+err.Error())
	}
	if err := ensureUserGroups(ctx, db, logger); err != nil {
		problems = append(problems, "user_groups: "+err.Error())
	}
	if err := ensureGroupMembers(ctx, db, logger); err != nil {
		problems = append(problems, "group_members: "+err.Error())
	}
	if err := ensurePreferences(ctx, db, logger); err != nil {
		problems = append(problems, "preferences: "+err.Error())
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

func ensureUsers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("users"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetName("uniq_email").SetUnique(true),
		},
	})
}

func ensureGroups(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("groups"), logger, []mongo.IndexModel{
		{
			// Reservation index: a group insert IS the code reservation.
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetName("uniq_code").SetUnique(true),
		},
	})
}

func ensureUserGroups(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("user_groups"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}, {Key: "group_id", Value: 1}},
			Options: options.Index().SetName("uniq_user_group").SetUnique(true),
		},
		{
			// Reverse scans: every membership of a group (disband, reconcile).
			Keys:    bson.D{{Key: "group_id", Value: 1}},
			Options: options.Index().SetName("by_group"),
		},
	})
}

func ensureGroupMembers(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("group_members"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "member_id", Value: 1}},
			Options: options.Index().SetName("uniq_group_member").SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "member_id", Value: 1}},
			Options: options.Index().SetName("by_member"),
		},
	})
}

func ensurePreferences(ctx context.Context, db *mongo.Database, logger *zap.Logger) error {
	return ensureIndexSet(ctx, db.Collection("preferences"), logger, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("by_user"),
		},
	})
}

// ensureIndexSet creates each desired index, reusing any existing index with
// the same key pattern and options. CreateOne is idempotent for identical
// definitions, so the common restart path is a no-op.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, logger *zap.Logger, models []mongo.IndexModel) error {
	var errs []string

	for _, m := range models {
		name := ""
		unique := false
		if m.Options != nil {
			if m.Options.Name != nil {
				name = *m.Options.Name
			}
			if m.Options.Unique != nil {
				unique = *m.Options.Unique
			}
		}

		start := time.Now()
		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isOptionsConflictErr(err) {
				// Same keys exist under a different name or options; drop the
				// stale definition and recreate ours.
				if _, dropErr := coll.Indexes().DropOne(ctx, name); dropErr != nil {
					logger.Warn("drop conflicting index failed",
						zap.String("collection", coll.Name()),
						zap.String("name", name),
						zap.Error(dropErr))
				}
				if _, err2 := coll.Indexes().CreateOne(ctx, m); err2 != nil {
					errs = append(errs, coll.Name()+"("+name+"): "+err2.Error())
					continue
				}
			} else if isDuplicateKeyErr(err) && unique {
				errs = append(errs, coll.Name()+"("+name+"): cannot create unique index (duplicates present)")
				continue
			} else {
				errs = append(errs, coll.Name()+"("+name+"): "+err.Error())
				continue
			}
		}

		logger.Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", name),
			zap.Bool("unique", unique),
			zap.Duration("took", time.Since(start)))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// isDuplicateKeyErr is a best-effort duplicate detector (works cross-vendors).
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if e.Code == 11000 {
				return true
			}
		}
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

// Mongo/DocDB sometimes returns IndexOptionsConflict when an index with the
// same keys already exists under a different name or options.
func isOptionsConflictErr(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "IndexOptionsConflict")
}
