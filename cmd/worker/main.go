package main

import (
	"context"
	"log"

	"voice_relay/config"
	"voice_relay/internal/worker"
)

func main() {
	// Configuration
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Config error: %s", err)
	}
	if err := cfg.ValidateWorker(); err != nil {
		log.Fatalf("Config error: %s", err)
	}

	// Run
	if err := worker.New(cfg).Run(context.Background()); err != nil {
		log.Fatalf("Worker error: %s", err)
	}
}
