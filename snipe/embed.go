package snipe

import (
	"fmt"
	"strings"

	"github.com/VTGare/magpie/arikawautils/embeds"
	"github.com/VTGare/magpie/store"
	"github.com/diamondburned/arikawa/v3/discord"
)

const noContentPlaceholder = "*No text content*"

// DeleteEmbed formats a deletion record. The snipe command and the log
// notification use the same formatting on purpose.
func DeleteEmbed(snipe *store.Snipe, guildID discord.GuildID, avatarURL string) discord.Embed {
	eb := embeds.NewBuilder()
	eb.Title("🗑️ Message deleted").Color(int(embeds.ColorRed))
	eb.Author(snipe.AuthorName, avatarURL, "")

	content := snipe.Content
	if content == "" {
		content = noContentPlaceholder
	}
	eb.Description(truncate(content, 4096))

	eb.AddField("Channel", snipe.ChannelID.Mention(), true)
	if field, ok := replyField(snipe.Reply, guildID); ok {
		eb.AddField("Replying to", field)
	}
	addAttachments(eb, snipe.Attachments)

	eb.Timestamp(snipe.SentAt)
	eb.Footer(fmt.Sprintf("Message ID: %v", snipe.MessageID), "")

	return eb.Build()
}

// EditEmbed formats an edit record, including a jump link back to the
// message, which still exists and needs no fetch to link to.
func EditEmbed(edit *store.Edit, guildID discord.GuildID, avatarURL string) discord.Embed {
	eb := embeds.NewBuilder()
	eb.Title("✏️ Message edited").Color(int(embeds.ColorYellow))
	eb.Author(edit.AuthorName, avatarURL, "")

	before, after := edit.Before, edit.After
	if before == "" {
		before = noContentPlaceholder
	}
	if after == "" {
		after = noContentPlaceholder
	}
	eb.AddField("Before", truncate(before, 1024))
	eb.AddField("After", truncate(after, 1024))

	eb.AddField("Channel", edit.ChannelID.Mention(), true)
	eb.AddField("Message", fmt.Sprintf("[Jump](%v)", messageURL(guildID, edit.ChannelID, edit.MessageID)), true)
	if field, ok := replyField(edit.Reply, guildID); ok {
		eb.AddField("Replying to", field)
	}

	eb.Timestamp(edit.EditedAt)
	eb.Footer(fmt.Sprintf("Message ID: %v", edit.MessageID), "")

	return eb.Build()
}

func replyField(reply *store.Reply, guildID discord.GuildID) (string, bool) {
	if reply == nil {
		return "", false
	}

	value := "@" + reply.AuthorName
	if reply.Content != "" {
		value += ": " + truncate(reply.Content, 256)
	}
	if reply.MessageID.IsValid() {
		value += fmt.Sprintf("\n[Jump](%v)", messageURL(guildID, reply.ChannelID, reply.MessageID))
	}

	return value, true
}

func addAttachments(eb *embeds.Builder, urls []string) {
	if len(urls) == 0 {
		return
	}

	if url, ok := firstImage(urls); ok {
		eb.Image(url)
	}

	links := make([]string, 0, len(urls))
	for i, url := range urls {
		links = append(links, fmt.Sprintf("[Attachment %v](%v)", i+1, url))
	}
	eb.AddField("Attachments", truncate(strings.Join(links, "\n"), 1024))
}

func firstImage(urls []string) (string, bool) {
	for _, url := range urls {
		path := url
		if i := strings.IndexByte(path, '?'); i != -1 {
			path = path[:i]
		}

		if hasSuffixes(path, "jpg", "jpeg", "png", "webp", "gif") {
			return url, true
		}
	}

	return "", false
}

func messageURL(guildID discord.GuildID, channelID discord.ChannelID, messageID discord.MessageID) string {
	return fmt.Sprintf("https://discord.com/channels/%v/%v/%v", guildID, channelID, messageID)
}

func hasSuffixes(str string, suffixes ...string) bool {
	for _, suffix := range suffixes {
		if strings.HasSuffix(str, suffix) {
			return true
		}
	}

	return false
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}

	runes := []rune(s)
	if len(runes) <= max {
		return s
	}

	return string(runes[:max-1]) + "…"
}
