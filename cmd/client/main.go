package main

import (
	"context"
	"log"
	"os"

	"github.com/railohail/timeline-rail/internal/client/cli"
	"github.com/railohail/timeline-rail/internal/client/config"
	"github.com/railohail/timeline-rail/internal/logging"
	"github.com/rs/zerolog"
)

func main() {
	ctx := context.Background()
	cfg := config.LoadConfig()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := logging.NewConsoleLogger(os.Stderr, level)

	app, err := cli.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
