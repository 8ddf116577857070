package guildconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/diamondburned/arikawa/v3/discord"
	"go.uber.org/zap"
)

// Store holds per-guild settings as a single JSON document rewritten in
// full on every mutation. Guilds are created lazily: a guild absent from
// the document behaves exactly like one configured with defaults.
type Store struct {
	mu   sync.RWMutex
	path string
	log  *zap.SugaredLogger
	doc  document
}

type document struct {
	// CommandPrefix is legacy on-disk data; slash commands never read
	// it, but rewrites must not drop it.
	CommandPrefix string                      `json:"command_prefix"`
	OwnerID       discord.UserID              `json:"owner_id"`
	Guilds        map[discord.GuildID]*Guild `json:"guilds"`
}

// Guild is the configuration of a single guild. Logging is opt-in: events
// are dropped until a log channel is set.
type Guild struct {
	LogChannelID    discord.ChannelID   `json:"log_channel_id"`
	IgnoredChannels []discord.ChannelID `json:"ignored_channels"`
}

// IsIgnored reports whether channelID is excluded from logging.
func (g Guild) IsIgnored(channelID discord.ChannelID) bool {
	for _, id := range g.IgnoredChannels {
		if id == channelID {
			return true
		}
	}

	return false
}

// Load reads the document at path. A missing file is not an error; it
// yields an empty document that will be created on the first Persist.
func Load(path string, log *zap.SugaredLogger) (*Store, error) {
	s := &Store{
		path: path,
		log:  log,
		doc: document{
			Guilds: make(map[discord.GuildID]*Guild),
		},
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.With("path", path).Info("guild config file not found, starting empty")
			return s, nil
		}

		return nil, fmt.Errorf("failed to read guild config: %w", err)
	}

	if err := json.Unmarshal(raw, &s.doc); err != nil {
		return nil, fmt.Errorf("failed to parse guild config: %w", err)
	}

	if s.doc.Guilds == nil {
		s.doc.Guilds = make(map[discord.GuildID]*Guild)
	}

	return s, nil
}

func (s *Store) OwnerID() discord.UserID {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.doc.OwnerID
}

// Guild returns the configuration for guildID, creating a default entry if
// the guild has not been seen before. It returns a copy; mutation goes
// through SetLogChannel and ToggleIgnored.
func (s *Store) Guild(guildID discord.GuildID) Guild {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guild(guildID)

	copied := *guild
	copied.IgnoredChannels = append([]discord.ChannelID(nil), guild.IgnoredChannels...)

	return copied
}

// SetLogChannel takes effect immediately for subsequent events. The caller
// is responsible for calling Persist.
func (s *Store) SetLogChannel(guildID discord.GuildID, channelID discord.ChannelID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guild(guildID).LogChannelID = channelID
}

// ToggleIgnored adds channelID to the guild's ignore list if absent and
// removes it if present. It reports whether the channel is now ignored.
func (s *Store) ToggleIgnored(guildID discord.GuildID, channelID discord.ChannelID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	guild := s.guild(guildID)
	for i, id := range guild.IgnoredChannels {
		if id == channelID {
			guild.IgnoredChannels = append(guild.IgnoredChannels[:i], guild.IgnoredChannels[i+1:]...)
			return false
		}
	}

	guild.IgnoredChannels = append(guild.IgnoredChannels, channelID)
	return true
}

// Persist rewrites the whole document. The write goes to a temporary file
// first and is renamed over the old one, so a crash mid-write never
// corrupts the previously valid document. A failed write leaves the
// in-memory state intact.
func (s *Store) Persist() error {
	s.mu.RLock()
	raw, err := json.MarshalIndent(&s.doc, "", "    ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal guild config: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".guilds-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write guild config: %w", err)
	}

	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to replace guild config: %w", err)
	}

	return nil
}

// Dump returns the pretty-printed document for the debug command.
func (s *Store) Dump() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return json.MarshalIndent(&s.doc, "", "    ")
}

// guild must be called with the write lock held.
func (s *Store) guild(guildID discord.GuildID) *Guild {
	if g, ok := s.doc.Guilds[guildID]; ok {
		return g
	}

	g := &Guild{}
	s.doc.Guilds[guildID] = g

	return g
}
