package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/spotdash/internal/inspector"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
	"github.com/desertthunder/spotdash/internal/tasks"
	"github.com/urfave/cli/v3"
)

// PlaylistList lists the viewer's playlists, marking the ones they can edit.
func (r *Runner) PlaylistList(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireGateway(); err != nil {
		return err
	}

	playlists, err := r.gateway.AllUserPlaylists(ctx)
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(playlists, cmd.Bool("pretty"))
	}

	viewer, err := r.gateway.ViewerID(ctx)
	if err != nil {
		r.logger.Warn("viewer lookup failed", "error", err)
	}

	r.writePlain("Found %d playlists:\n\n", len(playlists))
	for i, p := range playlists {
		access := "read-only"
		if viewer != "" && p.OwnedBy(viewer) {
			access = "owned"
		}
		r.writePlain("%d. %s\n", i+1, p.Name)
		r.writePlain("   ID: %s\n", p.ID)
		r.writePlain("   Tracks: %d · %s\n", p.TrackCount(), access)
	}
	return nil
}

// PlaylistShow prints every track of a playlist, optionally filtered like the browser's filter field.
func (r *Runner) PlaylistShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.Args().First()
	if id == "" {
		return fmt.Errorf("%w: playlist id", shared.ErrMissingArgument)
	}
	if err := r.requireGateway(); err != nil {
		return err
	}

	snapshot, err := r.collect(ctx, id)
	if err != nil {
		return err
	}

	rows := inspector.Filter(snapshot.Entries, cmd.String("filter"))
	if cmd.Bool("json") {
		entries := make([]models.PlaylistEntry, 0, len(rows))
		for _, row := range rows {
			entries = append(entries, row.Entry)
		}
		return r.writeJSON(entries, cmd.Bool("pretty"))
	}

	r.writePlainHeader(snapshot.Playlist.Name)
	if snapshot.Playlist.Description != "" {
		r.writePlain("%s\n", snapshot.Playlist.Description)
	}
	r.writePlain("%d shown • %d total\n\n", len(rows), len(snapshot.Entries))
	for _, row := range rows {
		t := row.Track()
		r.writePlain("%4d. %s · %s · %s\n", row.Position, t.Name, t.ArtistLine(), shared.FormatDuration(t.DurationMS))
		r.writePlain("      %s\n", t.URI)
	}
	return nil
}

// PlaylistRemove removes URIs from a playlist the viewer owns.
func (r *Runner) PlaylistRemove(ctx context.Context, cmd *cli.Command) error {
	id, uris, err := playlistArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.requireGateway(); err != nil {
		return err
	}

	playlist, err := r.gateway.PlaylistMetadata(ctx, id)
	if err != nil {
		return err
	}
	viewer, err := r.gateway.ViewerID(ctx)
	if err != nil {
		return err
	}
	if !playlist.OwnedBy(viewer) {
		return fmt.Errorf("%w: %s", shared.ErrReadOnly, inspector.ReadOnlyReason)
	}

	result, err := r.mutate(ctx, tasks.MutationRequest{PlaylistID: id, Op: models.OpRemove, URIs: uris})
	if err != nil {
		return err
	}
	return r.writePlain("✓ Removed %d tracks from %s\n", result.Applied, playlist.Name)
}

// PlaylistAdd adds URIs to a playlist.
func (r *Runner) PlaylistAdd(ctx context.Context, cmd *cli.Command) error {
	id, uris, err := playlistArgs(cmd)
	if err != nil {
		return err
	}
	if err := r.requireGateway(); err != nil {
		return err
	}

	result, err := r.mutate(ctx, tasks.MutationRequest{PlaylistID: id, Op: models.OpAdd, URIs: uris})
	if err != nil {
		return err
	}
	return r.writePlain("✓ Added %d tracks\n", result.Applied)
}

// mutate runs req through the engine, streaming chunk progress to the output.
func (r *Runner) mutate(ctx context.Context, req tasks.MutationRequest) (*tasks.MutationResult, error) {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := r.printProgress(progress)

	result, err := r.engine.Mutate(ctx, req, progress)
	close(progress)
	<-done

	if err != nil && result != nil && result.Applied > 0 {
		r.writePlain("⚠ %d of %d tracks were applied before the failure\n", result.Applied, len(req.URIs))
	}
	return result, err
}

// PlaylistExport writes playlists to disk in the chosen format.
func (r *Runner) PlaylistExport(ctx context.Context, cmd *cli.Command) error {
	ids := cmd.Args().Slice()
	if len(ids) == 0 {
		return fmt.Errorf("%w: at least one playlist id", shared.ErrMissingArgument)
	}
	format := strings.ToLower(cmd.String("format"))
	switch format {
	case "json", "csv", "markdown", "txt":
	default:
		return fmt.Errorf("%w: unknown format %q", shared.ErrInvalidArgument, format)
	}
	if err := r.requireGateway(); err != nil {
		return err
	}

	r.logger.Info("exporting playlists", "count", len(ids), "format", format)

	progress := make(chan tasks.ProgressUpdate, 50)
	done := r.printProgress(progress)

	result, err := r.engine.BulkExport(ctx, progress, ids, tasks.BulkExportOpts{
		Format:     format,
		OutputDir:  cmd.String("output"),
		NumWorkers: cmd.Int("workers"),
		WithCovers: cmd.Bool("covers"),
	})
	close(progress)
	<-done

	if result != nil {
		r.writePlainln("Exported %d/%d playlists to %s", result.SuccessfulExports, result.TotalPlaylists, result.OutputDirectory)
		for _, res := range result.Results {
			if res.Error != nil {
				r.writePlain("  ✗ %s: %v\n", res.PlaylistName, res.Error)
			}
		}
	}
	return err
}

// PlaylistLog prints the mutation audit log, newest first.
func (r *Runner) PlaylistLog(ctx context.Context, cmd *cli.Command) error {
	if err := r.requireRepositories(); err != nil {
		return err
	}

	records, err := r.repos.Mutations.Recent(cmd.Args().First(), cmd.Int("limit"))
	if err != nil {
		return err
	}
	if cmd.Bool("json") {
		return r.writeJSON(records, cmd.Bool("pretty"))
	}
	if len(records) == 0 {
		return r.writePlain("No playlist changes recorded\n")
	}

	for _, rec := range records {
		status := "✓"
		if rec.Error != "" {
			status = "✗"
		}
		r.writePlain("%s %s %-6s %d/%d  %s\n", status, rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Op, rec.Applied, rec.Requested, rec.PlaylistID)
		if rec.Error != "" {
			r.writePlain("    %s\n", rec.Error)
		}
	}
	return nil
}

func (r *Runner) collect(ctx context.Context, id string) (*models.PlaylistSnapshot, error) {
	progress := make(chan tasks.ProgressUpdate, 50)
	go func() {
		for update := range progress {
			r.logger.Debug(update.Message, "phase", update.Phase)
		}
	}()
	defer close(progress)
	return r.engine.Collect(ctx, id, progress)
}

// printProgress writes updates as they arrive; the returned channel closes once progress is drained.
func (r *Runner) printProgress(progress <-chan tasks.ProgressUpdate) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for update := range progress {
			r.writePlain("%s\n", update.Message)
		}
	}()
	return done
}

func playlistArgs(cmd *cli.Command) (string, []string, error) {
	args := cmd.Args()
	if args.Len() < 2 {
		return "", nil, fmt.Errorf("%w: playlist id and at least one track uri", shared.ErrMissingArgument)
	}
	for _, uri := range args.Tail() {
		if !strings.HasPrefix(uri, "spotify:") {
			return "", nil, fmt.Errorf("%w: not a spotify uri: %q", shared.ErrInvalidArgument, uri)
		}
	}
	return args.First(), args.Tail(), nil
}
