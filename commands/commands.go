package commands

import "github.com/VTGare/magpie/bot"

func RegisterCommands(b *bot.Bot) {
	b.AddCommand(ping)
	b.AddCommand(uptime)
	b.AddCommand(avatar)

	b.AddCommand(snipeCommand)
	b.AddCommand(editsnipeCommand)

	b.AddCommand(setLogChannel)
	b.AddCommand(ignoreChannel)
	b.AddCommand(ignoredChannels)
	b.AddCommand(dumpConfig)

	b.AddCommand(stats)
	b.AddCommand(leaderboard)

	b.AddCommand(coinflip)
	b.AddCommand(roll)
	b.AddCommand(timer)
}
