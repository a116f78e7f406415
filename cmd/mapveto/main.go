package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"mapveto/internal/app"
	"mapveto/internal/config"
	"mapveto/internal/ports/discord"
)

func main() {
	configPath := pflag.String("config", "config.yaml", "path to the bot configuration file")
	logLevel := pflag.String("log-level", "info", "log level (debug, info, warn, error)")
	pflag.Parse()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level, err := logrus.ParseLevel(*logLevel); err == nil {
		log.SetLevel(level)
	} else {
		log.WithField("level", *logLevel).Warn("unknown log level, using info")
	}

	// Missing .env is fine; the token may come from the environment.
	if err := godotenv.Load(); err == nil {
		log.Debug("loaded environment from .env")
	}

	token := os.Getenv("DISCORD_TOKEN")
	if token == "" {
		log.Fatal("DISCORD_TOKEN environment variable is required")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration")
	}
	log.WithFields(logrus.Fields{
		"teams": len(cfg.Teams),
		"pools": len(cfg.Pools),
	}).Info("configuration loaded")

	svc := app.NewService(cfg.Directory(), cfg, nil)
	bot, err := discord.New(token, cfg, svc, log)
	if err != nil {
		log.WithError(err).Fatal("failed to create bot")
	}
	if err := bot.Start(); err != nil {
		log.WithError(err).Fatal("failed to start bot")
	}

	log.Info("bot is running, press Ctrl+C to exit")
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM)
	<-sc

	log.Info("shutting down")
	bot.Stop()
}
