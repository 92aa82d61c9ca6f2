package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotdash/internal/location"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/desertthunder/spotdash/internal/ui"
	"github.com/mattn/go-isatty"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive dashboard.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}
	if fd := os.Stdout.Fd(); !isatty.IsTerminal(fd) && !isatty.IsCygwinTerminal(fd) {
		return fmt.Errorf("%w: the dashboard needs an interactive terminal, try `spotdash search`", shared.ErrInvalidArgument)
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	logPath := r.config.UI.LogPath
	if logPath == "" {
		logPath = "./tmp/spotdash-tui.log"
	}
	fileLogger, err := shared.NewFileLogger(logPath)
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	start, err := r.startLocation(cmd.String("location"), cmd.Bool("fresh"))
	if err != nil {
		return err
	}

	var store *location.Store
	if r.repos != nil {
		store = location.NewStore(start, r.repos.Sessions, r.logger)
	} else {
		store = location.NewStore(start, nil, r.logger)
	}

	model := ui.NewModel(ctx, ui.Options{
		Gateway: r.gateway,
		Mutator: r.engine,
		Store:   store,
		Config:  r.config.UI,
		Logger:  r.logger,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}

// startLocation picks the first of: an explicit link, the saved location, the default dashboard.
func (r *Runner) startLocation(raw string, fresh bool) (location.Location, error) {
	if raw != "" {
		loc, err := location.Parse(raw)
		if err != nil {
			return location.Location{}, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		return loc, nil
	}
	if fresh || r.repos == nil {
		return location.New(), nil
	}

	saved, err := r.repos.Sessions.LoadLocation()
	if err != nil {
		r.logger.Warn("failed to load saved location", "error", err)
		return location.New(), nil
	}
	loc, err := location.Parse(saved)
	if err != nil {
		r.logger.Warn("ignoring unreadable saved location", "raw", saved, "error", err)
		return location.New(), nil
	}
	return loc, nil
}

// Location prints or clears the persisted dashboard link.
func (r *Runner) Location(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRepositories(); err != nil {
		return err
	}

	if cmd.Bool("clear") {
		if err := r.repos.Sessions.SaveLocation(location.New().String()); err != nil {
			return err
		}
		return r.writePlain("✓ Saved location cleared\n")
	}

	loc, err := r.startLocation("", false)
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", loc)
}
