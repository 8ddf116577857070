package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/VTGare/magpie/arikawautils/embeds"
	"github.com/VTGare/magpie/bot"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
)

func ping(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "ping",
		Description: "Get the bot's response time",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		latency := b.State.Gateway().Latency().Round(time.Millisecond).String()

		eb := embeds.NewBuilder()
		eb.Title("🏓 Pong!").AddField("Latency", latency)

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{
				eb.Build(),
			},
		}
	}
}

func uptime(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "uptime",
		Description: "See how long the bot has been online",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		eb := embeds.NewBuilder()
		eb.Title("Bot uptime")
		eb.AddField("Start time", fmt.Sprintf("<t:%v>", b.StartTime.Unix()), true)
		eb.AddField("Uptime", humanDuration(time.Since(b.StartTime)), true)

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{
				eb.Build(),
			},
		}
	}
}

func avatar(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "avatar",
		Description: "Get a user's avatar",
		Type:        discord.ChatInputCommand,
		Options: discord.CommandOptions{
			discord.NewUserOption("user", "Whose avatar to get, defaults to you", false),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		user := data.Event.Sender()
		if sf, err := data.Options.Find("user").SnowflakeValue(); err == nil && sf.IsValid() {
			fetched, err := b.State.User(discord.UserID(sf))
			if err != nil {
				return errorResponse("Couldn't find that user.")
			}

			user = fetched
		}

		eb := embeds.NewBuilder()
		eb.Title(user.Tag()).Image(user.AvatarURL() + "?size=1024")

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{
				eb.Build(),
			},
		}
	}
}

func errorResponse(message string) *api.InteractionResponseData {
	return &api.InteractionResponseData{
		Content: option.NewNullableString(message),
		Flags:   discord.EphemeralMessage,
	}
}

func humanDuration(d time.Duration) string {
	seconds := int64(d.Seconds())

	days, rem := seconds/86400, seconds%86400
	hours, rem := rem/3600, rem%3600
	minutes, seconds := rem/60, rem%60

	parts := make([]string, 0, 4)
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%vd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%vh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%vm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%vs", seconds))
	}

	return strings.Join(parts, " ")
}
