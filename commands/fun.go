package commands

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/VTGare/magpie/arikawautils/embeds"
	"github.com/VTGare/magpie/bot"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
)

const maxTimerSeconds = 43200

func coinflip(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "coinflip",
		Description: "Do a coin flip (50/50)",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		result := "Heads"
		if rand.Intn(2) == 1 {
			result = "Tails"
		}

		return &api.InteractionResponseData{
			Content: option.NewNullableString(result),
		}
	}
}

func roll(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "roll",
		Description: "Get a random number between a and b (inclusive)",
		Type:        discord.ChatInputCommand,
		Options: discord.CommandOptions{
			discord.NewIntegerOption("a", "Lower bound", true),
			discord.NewIntegerOption("b", "Upper bound", true),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		lo, errLo := data.Options.Find("a").IntValue()
		hi, errHi := data.Options.Find("b").IntValue()
		if errLo != nil || errHi != nil {
			return errorResponse("Both bounds have to be whole numbers.")
		}

		if lo > hi {
			lo, hi = hi, lo
		}

		return &api.InteractionResponseData{
			Content: option.NewNullableString(fmt.Sprint(lo + rand.Int63n(hi-lo+1))),
		}
	}
}

func timer(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "timer",
		Description: "Get pinged after a certain amount of time",
		Type:        discord.ChatInputCommand,
		Options: discord.CommandOptions{
			discord.NewIntegerOption("seconds", "How long to wait", true),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		seconds, err := data.Options.Find("seconds").IntValue()
		if err != nil || seconds <= 0 {
			return errorResponse("The duration has to be a positive number of seconds.")
		}

		if seconds > maxTimerSeconds {
			return errorResponse(fmt.Sprintf("Timer must be under 12 hours (%v seconds).", maxTimerSeconds))
		}

		var (
			duration  = time.Duration(seconds) * time.Second
			mention   = data.Event.SenderID().Mention()
			channelID = data.Event.ChannelID
			futureTS  = time.Now().Add(duration).Unix()
		)

		// Fire-and-forget, same as every other per-event reaction. A
		// restart drops pending timers.
		go func() {
			time.Sleep(duration)

			_, err := b.State.SendMessage(channelID, fmt.Sprintf("%v - Timer finished. (%vs)", mention, seconds))
			if err != nil {
				b.Log.With("channel_id", channelID, "error", err).
					Warn("failed to send a timer ping")
			}
		}()

		eb := embeds.NewBuilder()
		eb.Title("Timer").Description(
			fmt.Sprintf("You'll get a ping %v seconds from now. (<t:%v> - <t:%v:R>)", seconds, futureTS, futureTS),
		)

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{
				eb.Build(),
			},
		}
	}
}
