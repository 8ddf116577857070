package leaderboard

import (
	"context"

	"github.com/VTGare/magpie/ctxzap"
	"github.com/VTGare/magpie/store"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"go.uber.org/zap"
)

// Register counts every guild message per author. Bots and DMs are skipped.
func Register(s *state.State, counters store.CounterStore, log *zap.SugaredLogger) {
	s.AddHandler(func(ev *gateway.MessageCreateEvent) {
		if ev.Author.Bot || !ev.GuildID.IsValid() {
			return
		}

		ctx := ctxzap.ToContext(context.Background(), log)
		if err := counters.IncrementMessageCount(ctx, ev.GuildID, ev.Author.ID); err != nil {
			log.With("guild_id", ev.GuildID, "user_id", ev.Author.ID, "error", err).
				Error("failed to count a message")
		}
	})
}
