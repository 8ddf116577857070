package sqlite

import (
	"context"
	"testing"

	"github.com/VTGare/magpie/ctxzap"
	"go.uber.org/zap"
)

// newTestDB creates an in-memory database with all migrations applied.
func newTestDB(t *testing.T) (*DB, context.Context) {
	t.Helper()

	ctx := ctxzap.ToContext(context.Background(), zap.NewNop().Sugar())

	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	if err := db.Init(ctx); err != nil {
		db.Close(ctx)
		t.Fatalf("Init() error = %v", err)
	}

	t.Cleanup(func() {
		db.Close(context.Background())
	})

	return db, ctx
}

func TestMigrations(t *testing.T) {
	t.Run("init is idempotent", func(t *testing.T) {
		db, ctx := newTestDB(t)

		if err := db.Init(ctx); err != nil {
			t.Fatalf("second Init() error = %v", err)
		}
	})

	t.Run("reply columns are nullable", func(t *testing.T) {
		db, _ := newTestDB(t)

		// A row written without reply context, as migration 1 would have
		// stored it.
		_, err := db.db.Exec(
			"INSERT INTO snipes (channel_id, message_id, author_id, author_name, content, sent_at) VALUES (1, 2, 3, 'bob#0001', 'hi', 0)",
		)
		if err != nil {
			t.Fatalf("insert error = %v", err)
		}
	})
}
