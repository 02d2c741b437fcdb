package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/betterimg/betterimg/internal/client/cli"
	"github.com/betterimg/betterimg/internal/client/config"
	"github.com/betterimg/betterimg/internal/logging"
)

func main() {

	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	cfg := config.LoadConfig()

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		logger.Error(context.Background(), "failed to start", "error", err)
		os.Exit(1)
	}

	app.Run(context.Background())
}
