package sqlite

import (
	"testing"

	"github.com/diamondburned/arikawa/v3/discord"
)

func TestCounters(t *testing.T) {
	t.Run("returns zero for an uncounted user", func(t *testing.T) {
		db, ctx := newTestDB(t)

		count, err := db.MessageCount(ctx, 10, 2)
		if err != nil {
			t.Fatalf("MessageCount() error = %v", err)
		}
		if count != 0 {
			t.Errorf("MessageCount() = %v, want 0", count)
		}
	})

	t.Run("increments accumulate", func(t *testing.T) {
		db, ctx := newTestDB(t)

		for i := 0; i < 3; i++ {
			if err := db.IncrementMessageCount(ctx, 10, 2); err != nil {
				t.Fatalf("IncrementMessageCount() error = %v", err)
			}
		}

		count, err := db.MessageCount(ctx, 10, 2)
		if err != nil {
			t.Fatalf("MessageCount() error = %v", err)
		}
		if count != 3 {
			t.Errorf("MessageCount() = %v, want 3", count)
		}
	})

	t.Run("counts are scoped per guild", func(t *testing.T) {
		db, ctx := newTestDB(t)

		if err := db.IncrementMessageCount(ctx, 10, 2); err != nil {
			t.Fatalf("IncrementMessageCount() error = %v", err)
		}

		count, err := db.MessageCount(ctx, 11, 2)
		if err != nil {
			t.Fatalf("MessageCount() error = %v", err)
		}
		if count != 0 {
			t.Errorf("MessageCount() = %v, want 0 in another guild", count)
		}
	})

	t.Run("leaderboard orders by count and honors the limit", func(t *testing.T) {
		db, ctx := newTestDB(t)

		increments := map[int64]int{2: 3, 3: 5, 4: 1}
		for userID, n := range increments {
			for i := 0; i < n; i++ {
				if err := db.IncrementMessageCount(ctx, 10, discord.UserID(userID)); err != nil {
					t.Fatalf("IncrementMessageCount() error = %v", err)
				}
			}
		}

		entries, err := db.Leaderboard(ctx, 10, 2)
		if err != nil {
			t.Fatalf("Leaderboard() error = %v", err)
		}

		if len(entries) != 2 {
			t.Fatalf("len(entries) = %v, want 2", len(entries))
		}
		if entries[0].UserID != 3 || entries[0].Count != 5 {
			t.Errorf("entries[0] = %+v, want user 3 with 5", entries[0])
		}
		if entries[1].UserID != 2 || entries[1].Count != 3 {
			t.Errorf("entries[1] = %+v, want user 2 with 3", entries[1])
		}
	})
}
