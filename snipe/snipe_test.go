package snipe

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/VTGare/magpie/ctxzap"
	"github.com/VTGare/magpie/guildconfig"
	"github.com/VTGare/magpie/store"
	"github.com/VTGare/magpie/store/sqlite"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"go.uber.org/zap"
)

type sentEmbeds struct {
	channelID discord.ChannelID
	embeds    []discord.Embed
}

// fakeSession stands in for the Discord state: message fetches resolve from
// a fixed map, member lookups from a single member, and sends are recorded.
type fakeSession struct {
	messages map[discord.MessageID]*discord.Message
	member   *discord.Member
	sent     []sentEmbeds
	sendErr  error
	fetchErr error
}

func (f *fakeSession) Message(channelID discord.ChannelID, messageID discord.MessageID) (*discord.Message, error) {
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	msg, ok := f.messages[messageID]
	if !ok {
		return nil, errors.New("message not found")
	}

	return msg, nil
}

func (f *fakeSession) Member(guildID discord.GuildID, userID discord.UserID) (*discord.Member, error) {
	if f.member == nil {
		return nil, errors.New("member not found")
	}

	return f.member, nil
}

func (f *fakeSession) SendEmbeds(channelID discord.ChannelID, embeds ...discord.Embed) (*discord.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}

	f.sent = append(f.sent, sentEmbeds{channelID: channelID, embeds: embeds})
	return &discord.Message{}, nil
}

func newTestFeature(t *testing.T, client *fakeSession) (*Feature, *guildconfig.Store, store.Store) {
	t.Helper()

	log := zap.NewNop().Sugar()
	ctx := ctxzap.ToContext(context.Background(), log)

	db, err := sqlite.New(":memory:")
	if err != nil {
		t.Fatalf("sqlite.New() error = %v", err)
	}
	if err := db.Init(ctx); err != nil {
		db.Close(ctx)
		t.Fatalf("Init() error = %v", err)
	}
	t.Cleanup(func() {
		db.Close(context.Background())
	})

	guilds, err := guildconfig.Load(filepath.Join(t.TempDir(), "guilds.json"), log)
	if err != nil {
		t.Fatalf("guildconfig.Load() error = %v", err)
	}

	f := &Feature{
		client: client,
		store:  db,
		guilds: guilds,
		cache:  NewCache(),
		log:    log,
	}

	return f, guilds, db
}

func testContext(t *testing.T) context.Context {
	t.Helper()
	return ctxzap.ToContext(context.Background(), zap.NewNop().Sugar())
}

func deletedMessage() *discord.Message {
	return &discord.Message{
		ID:        1,
		ChannelID: 5,
		Author: discord.User{
			ID:            2,
			Username:      "bob",
			Discriminator: "0001",
		},
		Content:   "hello",
		Timestamp: discord.NewTimestamp(time.Unix(1700000000, 0)),
	}
}

func TestRegister(t *testing.T) {
	t.Run("delete events dispatch through the pre-handler", func(t *testing.T) {
		client := &fakeSession{}
		f, guilds, _ := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		s := state.New("Bot test")
		f.state = s
		f.Register()

		msg := deletedMessage()
		msg.GuildID = 10
		if err := s.Cabinet.MessageSet(msg, false); err != nil {
			t.Fatalf("MessageSet() error = %v", err)
		}

		// The handlers run synchronously: the payload must be read from
		// the cabinet before the state applies the delete.
		s.PreHandler.Call(&gateway.MessageDeleteEvent{
			ID:        msg.ID,
			ChannelID: msg.ChannelID,
			GuildID:   10,
		})

		cached, ok := f.cache.Snipe(msg.ChannelID)
		if !ok {
			t.Fatal("cache missed after dispatching a delete")
		}
		if cached.Content != "hello" {
			t.Errorf("cached content = %q, want hello", cached.Content)
		}
		if len(client.sent) != 1 || client.sent[0].channelID != 100 {
			t.Errorf("sent = %+v, want one notification to channel 100", client.sent)
		}
	})

	t.Run("uncached deletes are skipped", func(t *testing.T) {
		client := &fakeSession{}
		f, guilds, _ := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		s := state.New("Bot test")
		f.state = s
		f.Register()

		s.PreHandler.Call(&gateway.MessageDeleteEvent{
			ID:        404,
			ChannelID: 5,
			GuildID:   10,
		})

		if _, ok := f.cache.Snipe(5); ok {
			t.Error("cache has a record for a payload the state never held")
		}
		if len(client.sent) != 0 {
			t.Errorf("sent %v notifications, want 0", len(client.sent))
		}
	})
}

func TestHandleDelete(t *testing.T) {
	t.Run("unconfigured guild stores and sends nothing", func(t *testing.T) {
		client := &fakeSession{}
		f, _, db := newTestFeature(t, client)

		f.handleDelete(deletedMessage(), 10)

		if _, ok := f.cache.Snipe(5); ok {
			t.Error("cache has a record, want none")
		}
		if _, err := db.Snipe(testContext(t), 5); !errors.Is(err, store.ErrSnipeNotFound) {
			t.Errorf("store error = %v, want ErrSnipeNotFound", err)
		}
		if len(client.sent) != 0 {
			t.Errorf("sent %v notifications, want 0", len(client.sent))
		}
	})

	t.Run("qualifying deletion is cached, stored and reported", func(t *testing.T) {
		client := &fakeSession{}
		f, guilds, db := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		f.handleDelete(deletedMessage(), 10)

		cached, ok := f.cache.Snipe(5)
		if !ok {
			t.Fatal("cache missed")
		}
		if cached.Content != "hello" || cached.AuthorName != "bob#0001" {
			t.Errorf("cached = %+v, want hello by bob#0001", cached)
		}

		stored, err := db.Snipe(testContext(t), 5)
		if err != nil {
			t.Fatalf("store error = %v", err)
		}
		if stored.Content != "hello" || stored.AuthorID != 2 {
			t.Errorf("stored = %+v, want hello by author 2", stored)
		}

		if len(client.sent) != 1 || client.sent[0].channelID != 100 {
			t.Fatalf("sent = %+v, want one notification to channel 100", client.sent)
		}
	})

	t.Run("ignored channel stores and sends nothing", func(t *testing.T) {
		client := &fakeSession{}
		f, guilds, db := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)
		guilds.ToggleIgnored(10, 5)

		f.handleDelete(deletedMessage(), 10)

		if _, ok := f.cache.Snipe(5); ok {
			t.Error("cache has a record, want none")
		}
		if _, err := db.Snipe(testContext(t), 5); !errors.Is(err, store.ErrSnipeNotFound) {
			t.Errorf("store error = %v, want ErrSnipeNotFound", err)
		}
		if len(client.sent) != 0 {
			t.Errorf("sent %v notifications, want 0", len(client.sent))
		}
	})

	t.Run("failed notification does not roll back the record", func(t *testing.T) {
		client := &fakeSession{sendErr: errors.New("channel gone")}
		f, guilds, db := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		f.handleDelete(deletedMessage(), 10)

		if _, ok := f.cache.Snipe(5); !ok {
			t.Error("cache missed, want a record despite the send failure")
		}
		if _, err := db.Snipe(testContext(t), 5); err != nil {
			t.Errorf("store error = %v, want a record despite the send failure", err)
		}
	})

	t.Run("failed reply fetch degrades to an unknown author", func(t *testing.T) {
		client := &fakeSession{fetchErr: errors.New("message gone")}
		f, guilds, db := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		msg := deletedMessage()
		msg.Reference = &discord.MessageReference{
			ChannelID: 5,
			MessageID: 9,
		}

		f.handleDelete(msg, 10)

		stored, err := db.Snipe(testContext(t), 5)
		if err != nil {
			t.Fatalf("store error = %v", err)
		}
		if stored.Reply == nil {
			t.Fatal("Reply = nil, want a degraded reply context")
		}
		if stored.Reply.AuthorName != UnknownAuthor {
			t.Errorf("Reply.AuthorName = %q, want %q", stored.Reply.AuthorName, UnknownAuthor)
		}
		if stored.Reply.Content != "" {
			t.Errorf("Reply.Content = %q, want empty", stored.Reply.Content)
		}
		if stored.Reply.MessageID != 9 {
			t.Errorf("Reply.MessageID = %v, want 9 for the jump link", stored.Reply.MessageID)
		}
	})

	t.Run("resolved reply keeps author and content", func(t *testing.T) {
		client := &fakeSession{
			messages: map[discord.MessageID]*discord.Message{
				9: {
					ID:        9,
					ChannelID: 5,
					Author:    discord.User{ID: 3, Username: "alice", Discriminator: "0002"},
					Content:   "original",
				},
			},
		}
		f, guilds, db := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		msg := deletedMessage()
		msg.Reference = &discord.MessageReference{ChannelID: 5, MessageID: 9}

		f.handleDelete(msg, 10)

		stored, err := db.Snipe(testContext(t), 5)
		if err != nil {
			t.Fatalf("store error = %v", err)
		}
		if stored.Reply == nil || stored.Reply.AuthorName != "alice#0002" || stored.Reply.Content != "original" {
			t.Errorf("Reply = %+v, want alice#0002 saying original", stored.Reply)
		}
	})
}

func TestHandleEdit(t *testing.T) {
	editPair := func() (*discord.Message, *discord.Message) {
		old := &discord.Message{
			ID:        1,
			ChannelID: 7,
			Author:    discord.User{ID: 2, Username: "bob", Discriminator: "0001"},
			Content:   "foo",
			Timestamp: discord.NewTimestamp(time.Unix(1700000000, 0)),
		}
		updated := &discord.Message{
			ID:              1,
			ChannelID:       7,
			Author:          discord.User{ID: 2, Username: "bob", Discriminator: "0001"},
			Content:         "bar",
			Timestamp:       old.Timestamp,
			EditedTimestamp: discord.NewTimestamp(time.Unix(1700000060, 0)),
		}

		return old, updated
	}

	t.Run("content change is cached, stored and reported", func(t *testing.T) {
		client := &fakeSession{}
		f, guilds, db := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		old, updated := editPair()
		f.handleEdit(old, updated, 10)

		cached, ok := f.cache.Edit(7)
		if !ok {
			t.Fatal("cache missed")
		}
		if cached.Before != "foo" || cached.After != "bar" {
			t.Errorf("cached = before %q after %q, want foo/bar", cached.Before, cached.After)
		}

		stored, err := db.Edit(testContext(t), 7)
		if err != nil {
			t.Fatalf("store error = %v", err)
		}
		if stored.Before != "foo" || stored.After != "bar" {
			t.Errorf("stored = before %q after %q, want foo/bar", stored.Before, stored.After)
		}

		if len(client.sent) != 1 || client.sent[0].channelID != 100 {
			t.Fatalf("sent = %+v, want one notification to channel 100", client.sent)
		}
	})

	t.Run("embed-only update is ignored", func(t *testing.T) {
		client := &fakeSession{}
		f, guilds, db := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		old, _ := editPair()
		old.Content = "https://example.com"

		// A resolving link preview: partial payload, no content, no edit
		// timestamp.
		partial := &discord.Message{
			ID:        old.ID,
			ChannelID: old.ChannelID,
			Embeds:    []discord.Embed{{Title: "Example Domain", URL: "https://example.com"}},
		}

		f.handleEdit(old, partial, 10)

		if _, ok := f.cache.Edit(7); ok {
			t.Error("cache has a record for an embed-only update")
		}
		if _, err := db.Edit(testContext(t), 7); !errors.Is(err, store.ErrEditNotFound) {
			t.Errorf("store error = %v, want ErrEditNotFound", err)
		}
		if len(client.sent) != 0 {
			t.Errorf("sent %v notifications, want 0", len(client.sent))
		}
	})

	t.Run("identical content is a no-op", func(t *testing.T) {
		client := &fakeSession{}
		f, guilds, db := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		old, updated := editPair()
		updated.Content = old.Content
		f.handleEdit(old, updated, 10)

		if _, ok := f.cache.Edit(7); ok {
			t.Error("cache has a record for an unchanged edit")
		}
		if _, err := db.Edit(testContext(t), 7); !errors.Is(err, store.ErrEditNotFound) {
			t.Errorf("store error = %v, want ErrEditNotFound", err)
		}
		if len(client.sent) != 0 {
			t.Errorf("sent %v notifications, want 0", len(client.sent))
		}
	})

	t.Run("ignored channel is a no-op", func(t *testing.T) {
		client := &fakeSession{}
		f, guilds, _ := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)
		guilds.ToggleIgnored(10, 7)

		old, updated := editPair()
		f.handleEdit(old, updated, 10)

		if _, ok := f.cache.Edit(7); ok {
			t.Error("cache has a record for an ignored channel")
		}
		if len(client.sent) != 0 {
			t.Errorf("sent %v notifications, want 0", len(client.sent))
		}
	})
}

func TestLookup(t *testing.T) {
	t.Run("returns nil when neither tier has data", func(t *testing.T) {
		f, _, _ := newTestFeature(t, &fakeSession{})

		rec, err := f.Snipe(testContext(t), 10, 5)
		if err != nil {
			t.Fatalf("Snipe() error = %v", err)
		}
		if rec != nil {
			t.Errorf("Snipe() = %+v, want nil", rec)
		}
	})

	t.Run("prefers the cache over the store", func(t *testing.T) {
		f, _, db := newTestFeature(t, &fakeSession{})

		if err := db.UpsertSnipe(testContext(t), &store.Snipe{ChannelID: 5, MessageID: 1, AuthorName: "stale"}); err != nil {
			t.Fatalf("UpsertSnipe() error = %v", err)
		}
		f.cache.PutSnipe(&store.Snipe{ChannelID: 5, MessageID: 2, AuthorName: "fresh"})

		rec, err := f.Snipe(testContext(t), 10, 5)
		if err != nil {
			t.Fatalf("Snipe() error = %v", err)
		}
		if rec.MessageID != 2 || rec.AuthorName != "fresh" {
			t.Errorf("Snipe() = %+v, want the cached record", rec)
		}
	})

	t.Run("falls back to the store after a restart", func(t *testing.T) {
		client := &fakeSession{}
		f, guilds, db := newTestFeature(t, client)
		guilds.SetLogChannel(10, 100)

		f.handleDelete(deletedMessage(), 10)

		// A restart loses the cache but keeps the database.
		restarted := &Feature{
			client: client,
			store:  db,
			guilds: guilds,
			cache:  NewCache(),
			log:    f.log,
		}

		rec, err := restarted.Snipe(testContext(t), 10, 5)
		if err != nil {
			t.Fatalf("Snipe() error = %v", err)
		}
		if rec == nil {
			t.Fatal("Snipe() = nil, want the persisted record")
		}
		if rec.Content != "hello" || rec.AuthorName != "bob#0001" {
			t.Errorf("Snipe() = %+v, want hello by bob#0001", rec)
		}
	})

	t.Run("resolves a live member name on a store hit", func(t *testing.T) {
		client := &fakeSession{
			member: &discord.Member{
				User: discord.User{ID: 2, Username: "bobby", Discriminator: "0001"},
			},
		}
		f, _, db := newTestFeature(t, client)

		if err := db.UpsertSnipe(testContext(t), &store.Snipe{ChannelID: 5, MessageID: 1, AuthorID: 2, AuthorName: "bob#0001"}); err != nil {
			t.Fatalf("UpsertSnipe() error = %v", err)
		}

		rec, err := f.Snipe(testContext(t), 10, 5)
		if err != nil {
			t.Fatalf("Snipe() error = %v", err)
		}
		if rec.AuthorName != "bobby#0001" {
			t.Errorf("AuthorName = %q, want the live member tag", rec.AuthorName)
		}
	})

	t.Run("edit lookup round-trips through the store", func(t *testing.T) {
		f, _, db := newTestFeature(t, &fakeSession{})

		want := &store.Edit{ChannelID: 7, MessageID: 1, AuthorID: 2, AuthorName: "bob#0001", Before: "foo", After: "bar"}
		if err := db.UpsertEdit(testContext(t), want); err != nil {
			t.Fatalf("UpsertEdit() error = %v", err)
		}

		rec, err := f.Edit(testContext(t), 10, 7)
		if err != nil {
			t.Fatalf("Edit() error = %v", err)
		}
		if rec == nil || rec.Before != "foo" || rec.After != "bar" {
			t.Errorf("Edit() = %+v, want before foo after bar", rec)
		}
	})
}
