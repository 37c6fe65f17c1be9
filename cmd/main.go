package main

import (
	"context"
	"errors"
	"os"

	"github.com/desertthunder/uptrack/internal/platforms"
	"github.com/desertthunder/uptrack/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := shared.NewLogger(nil)

	configPath := "config.toml"
	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		}
	}

	bilibiliService := platforms.NewBilibiliService(platforms.BilibiliOpts{
		Cookie:    config.Credentials.Bilibili.Cookie,
		UserAgent: config.Credentials.Bilibili.UserAgent,
		RateLimit: config.Sync.RateLimit,
	})

	var youtubeService platforms.Platform
	if config.Credentials.YouTube.APIKey != "" {
		youtubeService = platforms.NewYouTubeService("", config.Credentials.YouTube.APIKey)
	}

	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: configPath,
		Bilibili:   bilibiliService,
		YouTube:    youtubeService,
		Logger:     logger,
	})

	app := &cli.Command{
		Name:     "uptrack",
		Usage:    "Track new uploads from Bilibili & YouTube creators",
		Version:  "0.3.0",
		Commands: runner.register(),
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		err_ := errors.Unwrap(err)
		if errors.Is(err_, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Initialize database and run migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
		},
		Action: r.Setup,
	}
}
