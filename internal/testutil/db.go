package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"underwraps/internal/app/system/indexes"
)

// mongoEnvVar names the connection string for integration tests.
// Tests that need a live database skip when it is unset.
const mongoEnvVar = "UNDERWRAPS_TEST_MONGO_URI"

// SetupTestDB connects to the test Mongo instance, creates a database
// unique to this test, ensures the indexes the app relies on, and
// registers cleanup that drops the database. Skips the test when
// UNDERWRAPS_TEST_MONGO_URI is unset.
func SetupTestDB(t *testing.T) *mongo.Database {
	t.Helper()

	uri := os.Getenv(mongoEnvVar)
	if uri == "" {
		t.Skipf("%s not set; skipping database test", mongoEnvVar)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		t.Fatalf("connecting to test mongo: %v", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		t.Fatalf("pinging test mongo: %v", err)
	}

	name := fmt.Sprintf("underwraps_test_%s", primitive.NewObjectID().Hex())
	db := client.Database(name)

	if err := indexes.EnsureAll(ctx, db, zap.NewNop()); err != nil {
		t.Fatalf("ensuring indexes: %v", err)
	}

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := db.Drop(ctx); err != nil {
			t.Logf("dropping test database %s: %v", name, err)
		}
		_ = client.Disconnect(ctx)
	})

	return db
}

// TestContext returns a context with a deadline suitable for a single
// database-backed test.
func TestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}
