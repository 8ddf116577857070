package snipe

import (
	"context"

	"github.com/VTGare/magpie/ctxzap"
	"github.com/VTGare/magpie/guildconfig"
	"github.com/VTGare/magpie/store"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/diamondburned/arikawa/v3/utils/handler"
	"go.uber.org/zap"
)

// UnknownAuthor is recorded when the message a snipe was replying to can no
// longer be fetched.
const UnknownAuthor = "Unknown"

// Session is the subset of the Discord state the feature talks to.
type Session interface {
	Message(channelID discord.ChannelID, messageID discord.MessageID) (*discord.Message, error)
	Member(guildID discord.GuildID, userID discord.UserID) (*discord.Member, error)
	SendEmbeds(channelID discord.ChannelID, embeds ...discord.Embed) (*discord.Message, error)
}

// Feature captures deleted and edited messages, keeps the freshest record
// per channel in memory and in the durable store, and reports them to the
// guild's log channel. Everything past the store write is best-effort.
type Feature struct {
	state  *state.State
	client Session
	store  store.SnipeStore
	guilds *guildconfig.Store
	cache  *Cache
	log    *zap.SugaredLogger
}

func New(s *state.State, st store.SnipeStore, guilds *guildconfig.Store, log *zap.SugaredLogger) *Feature {
	return &Feature{
		state:  s,
		client: s,
		store:  st,
		guilds: guilds,
		cache:  NewCache(),
		log:    log,
	}
}

// Register hooks the feature in before the state applies gateway events,
// which is the only point where the payload of a deleted or pre-edit
// message is still readable from the cache.
func (f *Feature) Register() {
	pre := handler.New()
	pre.AddSyncHandler(f.onDelete)
	pre.AddSyncHandler(f.onEdit)

	f.state.PreHandler = pre
}

func (f *Feature) onDelete(ev *gateway.MessageDeleteEvent) {
	// DMs have no guild-scoped configuration.
	if !ev.GuildID.IsValid() {
		return
	}

	msg, err := f.state.Cabinet.Message(ev.ChannelID, ev.ID)
	if err != nil {
		// Not in the gateway cache, nothing to snipe.
		return
	}

	f.handleDelete(msg, ev.GuildID)
}

func (f *Feature) onEdit(ev *gateway.MessageUpdateEvent) {
	if !ev.GuildID.IsValid() || ev.Author.Bot {
		return
	}

	old, err := f.state.Cabinet.Message(ev.ChannelID, ev.ID)
	if err != nil {
		return
	}

	f.handleEdit(old, &ev.Message, ev.GuildID)
}

func (f *Feature) handleDelete(msg *discord.Message, guildID discord.GuildID) {
	guild := f.guilds.Guild(guildID)
	if !guild.LogChannelID.IsValid() || guild.IsIgnored(msg.ChannelID) {
		return
	}

	snipe := &store.Snipe{
		ChannelID:   msg.ChannelID,
		MessageID:   msg.ID,
		AuthorID:    msg.Author.ID,
		AuthorName:  msg.Author.Tag(),
		Content:     msg.Content,
		SentAt:      msg.Timestamp.Time(),
		Attachments: attachmentURLs(msg.Attachments),
		Reply:       f.resolveReply(msg),
	}

	f.cache.PutSnipe(snipe)

	ctx := ctxzap.ToContext(context.Background(), f.log)
	if err := f.store.UpsertSnipe(ctx, snipe); err != nil {
		f.log.With("channel_id", snipe.ChannelID, "error", err).
			Error("failed to persist a snipe")
	}

	embed := DeleteEmbed(snipe, guildID, msg.Author.AvatarURL())
	if _, err := f.client.SendEmbeds(guild.LogChannelID, embed); err != nil {
		f.log.With("log_channel_id", guild.LogChannelID, "error", err).
			Warn("failed to send a deletion log")
	}
}

func (f *Feature) handleEdit(old, updated *discord.Message, guildID discord.GuildID) {
	// Embed-only updates (link previews resolving) arrive as partial
	// payloads without an edit timestamp. Real edits always carry one.
	if !updated.EditedTimestamp.IsValid() {
		return
	}

	if old.Content == updated.Content {
		return
	}

	guild := f.guilds.Guild(guildID)
	if !guild.LogChannelID.IsValid() || guild.IsIgnored(updated.ChannelID) {
		return
	}

	author := updated.Author
	if !author.ID.IsValid() {
		author = old.Author
	}

	edit := &store.Edit{
		ChannelID:  updated.ChannelID,
		MessageID:  updated.ID,
		AuthorID:   author.ID,
		AuthorName: author.Tag(),
		Before:     old.Content,
		After:      updated.Content,
		SentAt:     old.Timestamp.Time(),
		EditedAt:   updated.EditedTimestamp.Time(),
		Reply:      f.resolveReply(old),
	}

	f.cache.PutEdit(edit)

	ctx := ctxzap.ToContext(context.Background(), f.log)
	if err := f.store.UpsertEdit(ctx, edit); err != nil {
		f.log.With("channel_id", edit.ChannelID, "error", err).
			Error("failed to persist an edit")
	}

	embed := EditEmbed(edit, guildID, author.AvatarURL())
	if _, err := f.client.SendEmbeds(guild.LogChannelID, embed); err != nil {
		f.log.With("log_channel_id", guild.LogChannelID, "error", err).
			Warn("failed to send an edit log")
	}
}

// resolveReply fetches the context of the message msg was replying to. A
// fetch failure degrades to an Unknown author instead of aborting the
// pipeline; the referenced ids are kept for the jump link.
func (f *Feature) resolveReply(msg *discord.Message) *store.Reply {
	ref := msg.Reference
	if ref == nil {
		return nil
	}

	reply := &store.Reply{
		ChannelID: ref.ChannelID,
		MessageID: ref.MessageID,
	}

	referenced := msg.ReferencedMessage
	if referenced == nil {
		var err error
		referenced, err = f.client.Message(ref.ChannelID, ref.MessageID)
		if err != nil {
			reply.AuthorName = UnknownAuthor
			return reply
		}
	}

	reply.AuthorName = referenced.Author.Tag()
	reply.Content = referenced.Content

	return reply
}

func attachmentURLs(attachments []discord.Attachment) []string {
	if len(attachments) == 0 {
		return nil
	}

	urls := make([]string, 0, len(attachments))
	for _, a := range attachments {
		urls = append(urls, a.URL)
	}

	return urls
}
