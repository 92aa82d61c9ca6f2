package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/urfave/cli/v3"
)

// Play starts a track or context, or resumes when no URI is given.
func (r *Runner) Play(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}

	uri := cmd.Args().First()
	if uri == "" {
		if err := r.gateway.Resume(ctx); err != nil {
			return err
		}
		return r.writePlain("▶ Resumed\n")
	}

	req, err := playRequest(uri)
	if err != nil {
		return err
	}
	req.DeviceID = cmd.String("device")

	if err := r.gateway.Play(ctx, req); err != nil {
		return err
	}
	return r.writePlain("▶ Playing %s\n", uri)
}

// playRequest plays tracks and episodes directly and everything else as a context.
func playRequest(uri string) (models.PlayRequest, error) {
	parts := strings.Split(uri, ":")
	if len(parts) != 3 || parts[0] != "spotify" || parts[2] == "" {
		return models.PlayRequest{}, fmt.Errorf("%w: not a spotify uri: %q", shared.ErrInvalidArgument, uri)
	}
	switch parts[1] {
	case "track", "episode":
		return models.PlayRequest{URIs: []string{uri}}, nil
	case "album", "artist", "playlist", "show":
		return models.PlayRequest{ContextURI: uri}, nil
	default:
		return models.PlayRequest{}, fmt.Errorf("%w: cannot play %s", shared.ErrInvalidArgument, parts[1])
	}
}

// PlaybackStatus prints the current item and device.
func (r *Runner) PlaybackStatus(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}

	playback, err := r.gateway.CurrentPlayback(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(playback, cmd.Bool("pretty"))
	}
	if playback == nil || playback.Item == nil {
		return r.writePlain("Nothing playing\n")
	}

	state := "⏸ Paused"
	if playback.IsPlaying {
		state = "▶ Playing"
	}
	t := playback.Item
	r.writePlain("%s: %s — %s\n", state, t.Name, t.ArtistLine())
	r.writePlain("   %s / %s\n", shared.FormatDuration(playback.ProgressMS), shared.FormatDuration(t.DurationMS))
	if playback.Device != nil {
		r.writePlain("   on %s (%s)\n", playback.Device.Name, playback.Device.Type)
	}
	return nil
}

func (r *Runner) Pause(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}
	if err := r.gateway.Pause(ctx); err != nil {
		return err
	}
	return r.writePlain("⏸ Paused\n")
}

func (r *Runner) Next(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}
	if err := r.gateway.Next(ctx); err != nil {
		return err
	}
	return r.writePlain("⏭ Skipped\n")
}

func (r *Runner) Previous(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}
	if err := r.gateway.Previous(ctx); err != nil {
		return err
	}
	return r.writePlain("⏮ Previous track\n")
}

// Devices lists Spotify Connect devices.
func (r *Runner) Devices(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}

	devices, err := r.gateway.Devices(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(devices, cmd.Bool("pretty"))
	}
	if len(devices) == 0 {
		return r.writePlain("No devices found. Open Spotify on a device first.\n")
	}

	for _, d := range devices {
		marker := " "
		if d.IsActive {
			marker = "*"
		}
		r.writePlain("%s %s (%s)\n    %s\n", marker, d.Name, d.Type, d.ID)
	}
	return nil
}

// Transfer moves playback to a device and keeps it playing.
func (r *Runner) Transfer(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: device id", shared.ErrMissingArgument)
	}
	if err := r.requireGateway(); err != nil {
		return err
	}
	if err := r.gateway.TransferPlayback(ctx, id, true); err != nil {
		return err
	}
	return r.writePlain("✓ Playback moved to %s\n", id)
}
