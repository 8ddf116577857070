package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/VTGare/magpie/bot"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/utils/json/option"
)

func setLogChannel(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:                     "setlogchannel",
		Description:              "Set the channel deleted and edited messages are logged to",
		Type:                     discord.ChatInputCommand,
		NoDMPermission:           true,
		DefaultMemberPermissions: discord.NewPermissions(discord.PermissionManageGuild),
		Options: discord.CommandOptions{
			discord.NewChannelOption("channel", "The log channel", true),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		sf, err := data.Options.Find("channel").SnowflakeValue()
		if err != nil || !sf.IsValid() {
			return errorResponse("That doesn't look like a channel.")
		}

		channelID := discord.ChannelID(sf)
		b.Guilds.SetLogChannel(data.Event.GuildID, channelID)

		message := "Log channel set to " + channelID.Mention() + "."
		if err := b.Guilds.Persist(); err != nil {
			b.Log.With("guild_id", data.Event.GuildID, "error", err).
				Error("failed to persist guild config")
			message += "\n⚠️ Couldn't save the config to disk; the setting lasts until restart."
		}

		return &api.InteractionResponseData{
			Content: option.NewNullableString(message),
		}
	}
}

func ignoreChannel(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:                     "ignorechannel",
		Description:              "Toggle logging for a channel",
		Type:                     discord.ChatInputCommand,
		NoDMPermission:           true,
		DefaultMemberPermissions: discord.NewPermissions(discord.PermissionManageGuild),
		Options: discord.CommandOptions{
			discord.NewChannelOption("channel", "The channel to toggle", true),
		},
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		sf, err := data.Options.Find("channel").SnowflakeValue()
		if err != nil || !sf.IsValid() {
			return errorResponse("That doesn't look like a channel.")
		}

		var (
			channelID = discord.ChannelID(sf)
			action    = "removed from"
		)

		if b.Guilds.ToggleIgnored(data.Event.GuildID, channelID) {
			action = "added to"
		}

		message := fmt.Sprintf("%v %v the ignore list.", channelID.Mention(), action)
		if err := b.Guilds.Persist(); err != nil {
			b.Log.With("guild_id", data.Event.GuildID, "error", err).
				Error("failed to persist guild config")
			message += "\n⚠️ Couldn't save the config to disk; the setting lasts until restart."
		}

		return &api.InteractionResponseData{
			Content: option.NewNullableString(message),
		}
	}
}

func ignoredChannels(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:           "ignoredchannels",
		Description:    "List channels ignored by the logger",
		Type:           discord.ChatInputCommand,
		NoDMPermission: true,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		guild := b.Guilds.Guild(data.Event.GuildID)
		if len(guild.IgnoredChannels) == 0 {
			return &api.InteractionResponseData{
				Content: option.NewNullableString("No ignored channels."),
			}
		}

		mentions := make([]string, 0, len(guild.IgnoredChannels))
		for _, id := range guild.IgnoredChannels {
			mentions = append(mentions, id.Mention())
		}

		return &api.InteractionResponseData{
			Content: option.NewNullableString("Ignored channels: " + strings.Join(mentions, ", ")),
		}
	}
}

func dumpConfig(b *bot.Bot) (api.CreateCommandData, cmdroute.CommandHandlerFunc) {
	cmd := api.CreateCommandData{
		Name:        "dumpconfig",
		Description: "(Debug) Dump the raw config JSON",
		Type:        discord.ChatInputCommand,
	}

	return cmd, func(ctx context.Context, data cmdroute.CommandData) *api.InteractionResponseData {
		if data.Event.SenderID() != b.Guilds.OwnerID() {
			return errorResponse("Owner only.")
		}

		raw, err := b.Guilds.Dump()
		if err != nil {
			return errorResponse("Something went wrong while dumping the config.")
		}

		// Stay under the message length limit.
		dump := string(raw)
		if len(dump) > 1900 {
			dump = dump[:1900] + "\n…"
		}

		return &api.InteractionResponseData{
			Content: option.NewNullableString("```json\n" + dump + "\n```"),
			Flags:   discord.EphemeralMessage,
		}
	}
}
