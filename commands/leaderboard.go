package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/VTGare/magpie/arikawautils/embeds"
	"github.com/VTGare/magpie/bot"
	"github.com/VTGare/magpie/ctxzap"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
)

func stats(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:           "stats",
		Description:    "Show how many messages a user has sent in this server",
		Type:           discord.ChatInputCommand,
		NoDMPermission: true,
		Options: discord.CommandOptions{
			discord.NewUserOption("user", "Whose count to show, defaults to you", false),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		target := data.Event.SenderID()
		if sf, err := data.Options.Find("user").SnowflakeValue(); err == nil && sf.IsValid() {
			target = discord.UserID(sf)
		}

		ctx = ctxzap.ToContext(ctx, b.Log)
		count, err := b.Store.MessageCount(ctx, data.Event.GuildID, target)
		if err != nil {
			return errorResponse("Something went wrong while looking that up.")
		}

		plural := "s"
		if count == 1 {
			plural = ""
		}

		return &api.InteractionResponseData{
			Content: option.NewNullableString(
				fmt.Sprintf("%v has sent %v message%v in this server.", memberName(b, data.Event.GuildID, target), count, plural),
			),
		}
	}
}

func leaderboard(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:           "leaderboard",
		Description:    "Show the top message senders in this server",
		Type:           discord.ChatInputCommand,
		NoDMPermission: true,
		Options: discord.CommandOptions{
			discord.NewIntegerOption("limit", "How many users to show, defaults to 10", false),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		limit := 10
		if n, err := data.Options.Find("limit").IntValue(); err == nil && n > 0 {
			limit = int(n)
		}
		if limit > 25 {
			limit = 25
		}

		ctx = ctxzap.ToContext(ctx, b.Log)
		entries, err := b.Store.Leaderboard(ctx, data.Event.GuildID, limit)
		if err != nil {
			return errorResponse("Something went wrong while looking that up.")
		}

		if len(entries) == 0 {
			return &api.InteractionResponseData{
				Content: option.NewNullableString("No message data available yet."),
			}
		}

		lines := make([]string, 0, len(entries))
		for i, entry := range entries {
			lines = append(lines, fmt.Sprintf("%v. %v — %v messages", i+1, memberName(b, data.Event.GuildID, entry.UserID), entry.Count))
		}

		eb := embeds.NewBuilder()
		eb.Title("Message leaderboard").Description(strings.Join(lines, "\n"))

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{
				eb.Build(),
			},
		}
	}
}

// memberName resolves a member's username, falling back to a mention that
// the client renders from its own cache.
func memberName(b *bot.Bot, guildID discord.GuildID, userID discord.UserID) string {
	member, err := b.State.Member(guildID, userID)
	if err != nil {
		return userID.Mention()
	}

	if member.Nick != "" {
		return member.Nick
	}

	return member.User.Username
}
