package main

import (
	"context"
	"log"

	"voice_relay/config"
	"voice_relay/internal/bot"

	_ "voice_relay/cmd/bot/docs"
)

func main() {
	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}
	if err := cfg.ValidateBot(); err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	if err := bot.New(cfg).Run(context.Background()); err != nil {
		log.Fatalf("Bot error: %s", err)
	}
}
