package main

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/repositories"
	"github.com/desertthunder/spotdash/internal/services"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/urfave/cli/v3"
)

func main() {
	ctx := context.Background()
	logger := shared.NewLogger(nil)

	configPath := os.Getenv("SPOTDASH_CONFIG")
	if configPath == "" {
		configPath = "config.toml"
	}

	config := shared.DefaultConfig()
	if _, err := os.Stat(configPath); err == nil {
		if loadedConfig, err := shared.LoadConfig(configPath); err == nil {
			config = loadedConfig
		} else {
			logger.Warn("failed to load config, using defaults", "path", configPath, "error", err)
		}
	}

	var repos *repositories.Repositories
	if _, err := os.Stat(config.Database.Path); err == nil {
		if db, err := shared.OpenDatabase(config.Database); err == nil {
			defer db.Close()
			repos = repositories.New(db)
		} else {
			logger.Warn("database unavailable", "path", config.Database.Path, "error", err)
		}
	}

	runner := NewRunner(RunnerOpts{
		Config:       config,
		ConfigPath:   configPath,
		Gateway:      newGateway(ctx, config, repos, logger),
		Repositories: repos,
		Logger:       logger,
	})

	app := &cli.Command{
		Name:     "spotdash",
		Usage:    "Search, inspect and control Spotify from the terminal",
		Version:  "0.1.0",
		Commands: runner.register(),
		After:    runner.persistToken,
	}

	if err := app.Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			os.Exit(0)
		} else {
			logger.Fatalf("application error: %v", err)
		}
	}
}

// newGateway builds an authenticated client from saved credentials. Returns nil until `spotdash auth` has run.
func newGateway(ctx context.Context, config *shared.Config, repos *repositories.Repositories, logger *log.Logger) Gateway {
	creds := config.Credentials.Spotify
	token := creds.Token()
	if creds.ClientID == "" || creds.ClientSecret == "" || token == nil {
		return nil
	}

	spotify, err := services.NewSpotifyService(creds.Map())
	if err != nil {
		logger.Warn("failed to create Spotify service", "error", err)
		return nil
	}
	spotify.SetRateLimit(config.API.RequestsPerSecond, config.API.Burst)
	if err := spotify.OAuthenticate(ctx, token); err != nil {
		logger.Warn("failed to load saved token", "error", err)
		return nil
	}

	var assist *services.AssistService
	if config.Credentials.Assist.APIKey != "" {
		assist = services.NewAssistService(config.Credentials.Assist, nil)
	}

	var cache services.ResolutionCacher
	if repos != nil {
		cache = repos.Resolutions
	}
	return services.NewGateway(spotify, assist, cache, shared.WithLogger(logger, "component", "gateway"))
}
