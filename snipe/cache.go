package snipe

import (
	"sync"

	"github.com/VTGare/magpie/store"
	"github.com/diamondburned/arikawa/v3/discord"
)

// Cache is the process-lifetime fast path: one slot per channel for the
// latest deletion and the latest edit. Nothing loads it from the durable
// store, so a restart starts it empty by construction.
type Cache struct {
	mu     sync.RWMutex
	snipes map[discord.ChannelID]*store.Snipe
	edits  map[discord.ChannelID]*store.Edit
}

func NewCache() *Cache {
	return &Cache{
		snipes: make(map[discord.ChannelID]*store.Snipe),
		edits:  make(map[discord.ChannelID]*store.Edit),
	}
}

func (c *Cache) Snipe(channelID discord.ChannelID) (*store.Snipe, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snipe, ok := c.snipes[channelID]
	return snipe, ok
}

func (c *Cache) PutSnipe(snipe *store.Snipe) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.snipes[snipe.ChannelID] = snipe
}

func (c *Cache) Edit(channelID discord.ChannelID) (*store.Edit, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	edit, ok := c.edits[channelID]
	return edit, ok
}

func (c *Cache) PutEdit(edit *store.Edit) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.edits[edit.ChannelID] = edit
}
