package snipe

import (
	"context"
	"errors"

	"github.com/VTGare/magpie/store"
	"github.com/diamondburned/arikawa/v3/discord"
)

// Snipe returns the most recent deletion for the channel: the in-memory
// cache first, the durable store on a miss, nil when neither tier has data.
// The cache is authoritative; every cache write is followed by a store
// write, so it is always at least as fresh.
func (f *Feature) Snipe(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) (*store.Snipe, error) {
	if snipe, ok := f.cache.Snipe(channelID); ok {
		return snipe, nil
	}

	snipe, err := f.store.Snipe(ctx, channelID)
	if err != nil {
		if errors.Is(err, store.ErrSnipeNotFound) {
			return nil, nil
		}

		return nil, err
	}

	// The row predates this process. Prefer a live member tag over the
	// persisted display name when the author still resolves.
	if member, err := f.client.Member(guildID, snipe.AuthorID); err == nil {
		snipe.AuthorName = member.User.Tag()
	}

	return snipe, nil
}

// Edit is the edit counterpart of Snipe, with identical tiering.
func (f *Feature) Edit(ctx context.Context, guildID discord.GuildID, channelID discord.ChannelID) (*store.Edit, error) {
	if edit, ok := f.cache.Edit(channelID); ok {
		return edit, nil
	}

	edit, err := f.store.Edit(ctx, channelID)
	if err != nil {
		if errors.Is(err, store.ErrEditNotFound) {
			return nil, nil
		}

		return nil, err
	}

	if member, err := f.client.Member(guildID, edit.AuthorID); err == nil {
		edit.AuthorName = member.User.Tag()
	}

	return edit, nil
}
