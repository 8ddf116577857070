package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/VTGare/magpie/arikawautils/middlewares"
	"github.com/VTGare/magpie/bot"
	"github.com/VTGare/magpie/commands"
	"github.com/VTGare/magpie/ctxzap"
	"github.com/VTGare/magpie/guildconfig"
	"github.com/VTGare/magpie/leaderboard"
	"github.com/VTGare/magpie/store/sqlite"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

var config = koanf.NewWithConf(koanf.Conf{
	Delim:       ".",
	StrictMerge: true,
})

func main() {
	if err := initializeConfig(); err != nil {
		log.Fatalf("failed to intialize config: %v", err)
	}

	logger, err := initializeLogger()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, os.Kill, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = ctxzap.ToContext(ctx, logger)

	db, err := sqlite.New(stringOr("database.path", "magpie.db"))
	if err != nil {
		logger.With("error", err).Fatal("failed to open the database")
	}

	if err := db.Init(ctx); err != nil {
		db.Close(context.Background())
		logger.With("error", err).Fatal("failed to migrate the database")
	}

	guilds, err := guildconfig.Load(stringOr("guilds.path", "guilds.json"), logger)
	if err != nil {
		db.Close(context.Background())
		logger.With("error", err).Fatal("failed to load the guild config")
	}

	b := bot.New(logger, config, db, guilds)

	b.AddMiddleware(middlewares.CommandLog(logger))
	commands.RegisterCommands(b)
	leaderboard.Register(b.State, db, logger)

	// Fatal exits skip deferred calls, so the store is closed explicitly
	// on every path out of here.
	err = b.Start(ctx)
	if closeErr := db.Close(context.Background()); closeErr != nil {
		logger.With("error", closeErr).Error("failed to close the database")
	}
	if err != nil {
		logger.With("error", err).Fatal("failed to start the bot")
	}
}

func initializeLogger() (*zap.SugaredLogger, error) {
	if config.Bool("dev.mode") {
		log, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}

		return log.Sugar(), nil
	}

	log, err := zap.NewProduction()
	if err != nil {
		return nil, err
	}

	return log.Sugar(), nil
}

func initializeConfig() error {
	// Load JSON config
	jsonPath := "config.json"
	if fileExists(jsonPath) {
		if err := config.Load(file.Provider(jsonPath), json.Parser()); err != nil {
			return err
		}
	}

	// Load environment variables
	err := config.Load(env.Provider("MAGPIE_", ".", func(s string) string {
		return strings.Replace(strings.ToLower(
			strings.TrimPrefix(s, "MAGPIE_")), "_", ".", -1)
	}), nil)
	if err != nil {
		return err
	}

	// Load .env file
	dotenvPath := ".env"
	if fileExists(dotenvPath) {
		dotenvParser := dotenv.ParserEnv("MAGPIE_", ".", func(s string) string {
			return strings.Replace(strings.ToLower(
				strings.TrimPrefix(s, "MAGPIE_")), "_", ".", -1)
		})

		if err := config.Load(file.Provider(".env"), dotenvParser); err != nil {
			return err
		}
	}

	return nil
}

func stringOr(key, fallback string) string {
	if v := config.String(key); v != "" {
		return v
	}

	return fallback
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)
	return err == nil
}
