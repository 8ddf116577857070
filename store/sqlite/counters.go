package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/VTGare/magpie/ctxzap"
	"github.com/VTGare/magpie/store"
	"github.com/diamondburned/arikawa/v3/discord"
)

const incrementCountQuery = `
INSERT INTO message_counts (guild_id, user_id, message_count)
VALUES (?, ?, 1)
ON CONFLICT (guild_id, user_id) DO UPDATE SET message_count = message_count + 1
`

func (db *DB) IncrementMessageCount(ctx context.Context, guildID discord.GuildID, userID discord.UserID) error {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	_, err := db.db.ExecContext(ctx, incrementCountQuery, int64(guildID), int64(userID))
	if err != nil {
		log.With("guild_id", guildID, "user_id", userID, "error", err).
			Error("failed to increment a message count")
		return store.ErrInternal
	}

	return nil
}

func (db *DB) MessageCount(ctx context.Context, guildID discord.GuildID, userID discord.UserID) (int64, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	var count int64
	err := db.db.GetContext(ctx, &count,
		"SELECT message_count FROM message_counts WHERE guild_id = ? AND user_id = ?",
		int64(guildID), int64(userID),
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// A user with no messages yet.
			return 0, nil
		}

		log.With("guild_id", guildID, "user_id", userID, "error", err).
			Error("failed to select a message count")
		return 0, store.ErrInternal
	}

	return count, nil
}

func (db *DB) Leaderboard(ctx context.Context, guildID discord.GuildID, limit int) ([]store.LeaderboardEntry, error) {
	log := ctxzap.Extract(ctx)

	ctx, cancel := context.WithTimeout(ctx, 1*time.Minute)
	defer cancel()

	var entries []store.LeaderboardEntry
	err := db.db.SelectContext(ctx, &entries,
		"SELECT user_id, message_count FROM message_counts WHERE guild_id = ? ORDER BY message_count DESC LIMIT ?",
		int64(guildID), limit,
	)
	if err != nil {
		log.With("guild_id", guildID, "error", err).
			Error("failed to select a leaderboard")
		return nil, store.ErrInternal
	}

	return entries, nil
}
