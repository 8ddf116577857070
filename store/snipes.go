package store

import (
	"context"
	"time"

	"github.com/diamondburned/arikawa/v3/discord"
)

type SnipeStore interface {
	UpsertSnipe(ctx context.Context, snipe *Snipe) error
	Snipe(ctx context.Context, channelID discord.ChannelID) (*Snipe, error)
	UpsertEdit(ctx context.Context, edit *Edit) error
	Edit(ctx context.Context, channelID discord.ChannelID) (*Edit, error)
}

// Snipe is the most recent deleted message in a channel. Each channel holds
// at most one; a newer deletion overwrites the previous one.
type Snipe struct {
	ChannelID   discord.ChannelID
	MessageID   discord.MessageID
	AuthorID    discord.UserID
	AuthorName  string
	Content     string
	SentAt      time.Time
	Attachments []string
	Reply       *Reply
}

// Edit is the most recent edited message in a channel, holding both the
// pre-edit and post-edit content. Same single-slot semantics as Snipe.
type Edit struct {
	ChannelID  discord.ChannelID
	MessageID  discord.MessageID
	AuthorID   discord.UserID
	AuthorName string
	Before     string
	After      string
	SentAt     time.Time
	EditedAt   time.Time
	Reply      *Reply
}

// Reply is the context of the message a sniped message was replying to.
// AuthorName is "Unknown" when the referenced message could not be fetched;
// the channel and message ids still allow building a jump link.
type Reply struct {
	AuthorName string
	Content    string
	ChannelID  discord.ChannelID
	MessageID  discord.MessageID
}
