package snipe

import (
	"testing"

	"github.com/VTGare/magpie/store"
)

func TestCache(t *testing.T) {
	t.Run("misses for an unseen channel", func(t *testing.T) {
		c := NewCache()

		if _, ok := c.Snipe(5); ok {
			t.Error("Snipe(5) hit an empty cache")
		}
		if _, ok := c.Edit(5); ok {
			t.Error("Edit(5) hit an empty cache")
		}
	})

	t.Run("latest write wins per channel", func(t *testing.T) {
		c := NewCache()

		c.PutSnipe(&store.Snipe{ChannelID: 5, MessageID: 1, Content: "old"})
		c.PutSnipe(&store.Snipe{ChannelID: 5, MessageID: 2, Content: "new"})

		got, ok := c.Snipe(5)
		if !ok {
			t.Fatal("Snipe(5) missed")
		}
		if got.MessageID != 2 || got.Content != "new" {
			t.Errorf("Snipe(5) = %+v, want the newer record", got)
		}
	})

	t.Run("channels and record kinds are independent", func(t *testing.T) {
		c := NewCache()

		c.PutSnipe(&store.Snipe{ChannelID: 5, MessageID: 1})
		c.PutEdit(&store.Edit{ChannelID: 6, MessageID: 2})

		if _, ok := c.Snipe(6); ok {
			t.Error("Snipe(6) hit, want miss")
		}
		if _, ok := c.Edit(5); ok {
			t.Error("Edit(5) hit, want miss")
		}
		if _, ok := c.Snipe(5); !ok {
			t.Error("Snipe(5) missed")
		}
		if _, ok := c.Edit(6); !ok {
			t.Error("Edit(6) missed")
		}
	})
}
