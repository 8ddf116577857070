package store

import (
	"context"

	"github.com/diamondburned/arikawa/v3/discord"
)

type CounterStore interface {
	IncrementMessageCount(ctx context.Context, guildID discord.GuildID, userID discord.UserID) error
	MessageCount(ctx context.Context, guildID discord.GuildID, userID discord.UserID) (int64, error)
	Leaderboard(ctx context.Context, guildID discord.GuildID, limit int) ([]LeaderboardEntry, error)
}

type LeaderboardEntry struct {
	UserID discord.UserID `db:"user_id"`
	Count  int64          `db:"message_count"`
}
