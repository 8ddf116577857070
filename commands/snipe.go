package commands

import (
	"context"

	"github.com/VTGare/magpie/bot"
	"github.com/VTGare/magpie/ctxzap"
	"github.com/VTGare/magpie/snipe"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
)

func snipeCommand(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:           "snipe",
		Description:    "Recover the most recently deleted message in a channel",
		Type:           discord.ChatInputCommand,
		NoDMPermission: true,
		Options: discord.CommandOptions{
			discord.NewChannelOption("channel", "Channel to snipe, defaults to this one", false),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		if !data.Event.GuildID.IsValid() {
			return errorResponse("Snipes only work in servers.")
		}

		channelID := targetChannel(data)

		ctx = ctxzap.ToContext(ctx, b.Log)
		rec, err := b.Snipes.Snipe(ctx, data.Event.GuildID, channelID)
		if err != nil {
			return errorResponse("Something went wrong while looking that up.")
		}

		if rec == nil {
			return &api.InteractionResponseData{
				Content: option.NewNullableString("There's nothing to snipe in " + channelID.Mention() + "."),
			}
		}

		embed := snipe.DeleteEmbed(rec, data.Event.GuildID, b.MemberAvatar(data.Event.GuildID, rec.AuthorID))

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{embed},
		}
	}
}

func editsnipeCommand(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:           "editsnipe",
		Description:    "Recover the previous content of the most recently edited message in a channel",
		Type:           discord.ChatInputCommand,
		NoDMPermission: true,
		Options: discord.CommandOptions{
			discord.NewChannelOption("channel", "Channel to snipe, defaults to this one", false),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		if !data.Event.GuildID.IsValid() {
			return errorResponse("Snipes only work in servers.")
		}

		channelID := targetChannel(data)

		ctx = ctxzap.ToContext(ctx, b.Log)
		rec, err := b.Snipes.Edit(ctx, data.Event.GuildID, channelID)
		if err != nil {
			return errorResponse("Something went wrong while looking that up.")
		}

		if rec == nil {
			return &api.InteractionResponseData{
				Content: option.NewNullableString("There's nothing to editsnipe in " + channelID.Mention() + "."),
			}
		}

		embed := snipe.EditEmbed(rec, data.Event.GuildID, b.MemberAvatar(data.Event.GuildID, rec.AuthorID))

		return &api.InteractionResponseData{
			Embeds: &[]discord.Embed{embed},
		}
	}
}

func targetChannel(data cmdroute.CommandData) discord.ChannelID {
	channelID := data.Event.ChannelID
	if sf, err := data.Options.Find("channel").SnowflakeValue(); err == nil && sf.IsValid() {
		channelID = discord.ChannelID(sf)
	}

	return channelID
}
