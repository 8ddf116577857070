package bot

import (
	"context"
	"fmt"
	"time"

	"github.com/VTGare/magpie/guildconfig"
	"github.com/VTGare/magpie/snipe"
	"github.com/VTGare/magpie/store"
	"github.com/diamondburned/arikawa/v3/api"
	"github.com/diamondburned/arikawa/v3/api/cmdroute"
	"github.com/diamondburned/arikawa/v3/discord"
	"github.com/diamondburned/arikawa/v3/gateway"
	"github.com/diamondburned/arikawa/v3/state"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

type Bot struct {
	Config    *koanf.Koanf
	State     *state.State
	Store     store.Store
	Guilds    *guildconfig.Store
	Snipes    *snipe.Feature
	Log       *zap.SugaredLogger
	StartTime time.Time

	router   *cmdroute.Router
	commands []api.CreateCommandData
}

func New(log *zap.SugaredLogger, config *koanf.Koanf, st store.Store, guilds *guildconfig.Store) *Bot {
	var (
		r = cmdroute.NewRouter()
		s = state.New("Bot " + config.String("bot.token"))
	)

	s.AddIntents(gateway.IntentGuilds |
		gateway.IntentGuildMembers |
		gateway.IntentGuildMessages |
		gateway.IntentMessageContent |
		gateway.IntentDirectMessages,
	)

	snipes := snipe.New(s, st, guilds, log)
	snipes.Register()

	return &Bot{
		Config:    config,
		State:     s,
		Store:     st,
		Guilds:    guilds,
		Snipes:    snipes,
		Log:       log,
		StartTime: time.Now(),

		router:   r,
		commands: make([]api.CreateCommandData, 0),
	}
}

// MemberAvatar resolves a member's avatar URL, or "" when the member does
// not resolve. Snipe embeds degrade to no avatar in that case.
func (b *Bot) MemberAvatar(guildID discord.GuildID, userID discord.UserID) string {
	member, err := b.State.Member(guildID, userID)
	if err != nil {
		return ""
	}

	return member.User.AvatarURL()
}

func (b *Bot) AddCommand(f func(b *Bot) (command api.CreateCommandData, handler cmdroute.CommandHandlerFunc)) {
	cmd, handler := f(b)

	b.commands = append(b.commands, cmd)
	b.router.AddFunc(cmd.Name, handler)
}

func (b *Bot) AddMiddleware(mw cmdroute.Middleware) {
	b.router.Use(mw)
}

func (b *Bot) Start(ctx context.Context) error {
	b.State.AddInteractionHandler(b.router)

	if err := cmdroute.OverwriteCommands(b.State, b.commands); err != nil {
		return fmt.Errorf("failed to overwrite commands: %w", err)
	}

	if err := b.State.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}

	return nil
}
