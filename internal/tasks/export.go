package tasks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/desertthunder/spotdash/internal/formatter"
	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
	"golang.org/x/time/rate"
)

// PageSize is the number of entries requested per playlist page.
const PageSize = 100

// Collect fetches a playlist's metadata and every entry page.
func (e *Engine) Collect(ctx context.Context, playlistID string, progress chan<- ProgressUpdate) (*models.PlaylistSnapshot, error) {
	if e.gateway == nil {
		return nil, fmt.Errorf("%w: spotify service not initialized", shared.ErrServiceUnavailable)
	}

	e.sendProgress(progress, fetchMetadataUpdate(1, 1, playlistID))
	playlist, err := e.gateway.PlaylistMetadata(ctx, playlistID)
	if err != nil {
		return nil, err
	}

	snapshot := &models.PlaylistSnapshot{Playlist: *playlist}
	for {
		page, err := e.gateway.PlaylistPage(ctx, playlistID, PageSize, len(snapshot.Entries))
		if err != nil {
			return nil, fmt.Errorf("failed to fetch entries at offset %d: %w", len(snapshot.Entries), err)
		}
		snapshot.Entries = append(snapshot.Entries, page.Items...)
		e.sendProgress(progress, fetchEntriesUpdate(len(snapshot.Entries), page.Total, playlist))

		if len(page.Items) == 0 || page.Next == nil || len(snapshot.Entries) >= page.Total {
			break
		}
	}
	return snapshot, nil
}

// BulkExportOpts contains configuration for bulk playlist exports.
type BulkExportOpts struct {
	Format     string  // json, csv, markdown, txt
	OutputDir  string  // defaults to spotdash_export_{epoch}
	NumWorkers int     // concurrent writers, 1 to 10 (default 5)
	RateLimit  float64 // playlist collections per second (default 5)
	WithCovers bool    // download cover art for markdown exports
}

// PlaylistExportJob is one collected playlist waiting to be written.
type PlaylistExportJob struct {
	PlaylistID string
	Snapshot   *models.PlaylistSnapshot
}

// PlaylistExportResult is the outcome for one playlist.
type PlaylistExportResult struct {
	PlaylistID   string
	PlaylistName string
	Success      bool
	Files        []string
	Error        error
}

// BulkExportResult summarises a bulk export.
type BulkExportResult struct {
	TotalPlaylists    int
	SuccessfulExports int
	FailedExports     int
	OutputDirectory   string
	ManifestPath      string
	Results           []PlaylistExportResult
}

// BulkExport collects playlists under a rate limit and writes them with a pool of workers.
//
// Failures are per playlist; the run continues and the manifest lists every outcome.
func (e *Engine) BulkExport(ctx context.Context, prog chan<- ProgressUpdate, ids []string, opts BulkExportOpts) (*BulkExportResult, error) {
	if e.gateway == nil {
		return nil, fmt.Errorf("%w: spotify service not initialized", shared.ErrServiceUnavailable)
	}

	if opts.OutputDir == "" {
		opts.OutputDir = fmt.Sprintf("spotdash_export_%d", time.Now().Unix())
	}
	if opts.NumWorkers <= 0 {
		opts.NumWorkers = 5
	}
	if opts.NumWorkers > 10 {
		opts.NumWorkers = 10
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 5.0
	}

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	result := &BulkExportResult{
		TotalPlaylists:  len(ids),
		OutputDirectory: opts.OutputDir,
		Results:         make([]PlaylistExportResult, 0, len(ids)),
	}

	limiter := rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	jobs := make(chan PlaylistExportJob, len(ids))
	results := make(chan PlaylistExportResult, len(ids))

	var wg sync.WaitGroup
	for range opts.NumWorkers {
		wg.Add(1)
		go e.exportWorker(ctx, &wg, jobs, results, opts)
	}

	go func() {
		defer close(jobs)
		for i, playlistID := range ids {
			if err := limiter.Wait(ctx); err != nil {
				return
			}

			snapshot, err := e.Collect(ctx, playlistID, nil)
			if err != nil {
				results <- PlaylistExportResult{
					PlaylistID:   playlistID,
					PlaylistName: fmt.Sprintf("Unknown (%s)", playlistID),
					Error:        fmt.Errorf("failed to fetch playlist: %w", err),
				}
				continue
			}

			e.sendProgress(prog, exportingPlaylistUpdate(i+1, len(ids), snapshot.Playlist.Name))
			jobs <- PlaylistExportJob{PlaylistID: playlistID, Snapshot: snapshot}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	completed := 0
	for res := range results {
		completed++
		result.Results = append(result.Results, res)
		if res.Success {
			result.SuccessfulExports++
			e.sendProgress(prog, exportCompletedUpdate(completed, len(ids), res.PlaylistName, len(res.Files)))
		} else {
			result.FailedExports++
			e.sendProgress(prog, exportFailedUpdate(completed, len(ids), res.PlaylistName, res.Error))
		}
	}

	if err := ctx.Err(); err != nil {
		return result, err
	}

	manifestPath := filepath.Join(opts.OutputDir, "export_manifest.json")
	if err := formatter.WriteManifest(manifest(result, opts.Format), manifestPath); err != nil {
		return result, fmt.Errorf("export completed but failed to write manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func (e *Engine) exportWorker(
	ctx context.Context,
	wg *sync.WaitGroup,
	jobs <-chan PlaylistExportJob,
	results chan<- PlaylistExportResult,
	opts BulkExportOpts,
) {
	defer wg.Done()

	for job := range jobs {
		if ctx.Err() != nil {
			return
		}
		results <- e.exportSnapshot(job, opts)
	}
}

// exportSnapshot writes one collected playlist in the requested format.
func (e *Engine) exportSnapshot(j PlaylistExportJob, opts BulkExportOpts) PlaylistExportResult {
	result := PlaylistExportResult{
		PlaylistID:   j.PlaylistID,
		PlaylistName: j.Snapshot.Playlist.Name,
		Files:        []string{},
	}

	switch opts.Format {
	case "csv":
		base := filepath.Join(opts.OutputDir, j.PlaylistID)
		res, err := formatter.WriteCSVExport(j.Snapshot, base)
		if err != nil {
			result.Error = fmt.Errorf("CSV export failed: %w", err)
			return result
		}
		result.Files = []string{res.TracksFile, res.MetadataFile}
	case "markdown":
		imageURL := ""
		if opts.WithCovers {
			imageURL = j.Snapshot.Playlist.ImageURL()
		}
		res, err := formatter.WriteMarkdownExport(j.Snapshot, filepath.Join(opts.OutputDir, j.PlaylistID), imageURL)
		if err != nil {
			result.Error = fmt.Errorf("markdown export failed: %w", err)
			return result
		}
		for _, w := range res.Warnings {
			e.logger.Warn("markdown export", "playlist", j.PlaylistID, "warning", w)
		}
		result.Files = res.Files
	case "txt":
		path, err := formatter.WriteTextExport(j.Snapshot, filepath.Join(opts.OutputDir, j.PlaylistID+"_tracks.txt"))
		if err != nil {
			result.Error = fmt.Errorf("text export failed: %w", err)
			return result
		}
		result.Files = []string{path}
	default:
		path := filepath.Join(opts.OutputDir, j.PlaylistID+".json")
		data, err := shared.MarshalJSON(j.Snapshot, true)
		if err != nil {
			result.Error = fmt.Errorf("JSON marshal failed: %w", err)
			return result
		}
		if err := os.WriteFile(path, data, 0644); err != nil {
			result.Error = fmt.Errorf("JSON write failed: %w", err)
			return result
		}
		result.Files = []string{path}
	}

	result.Success = true
	return result
}

func manifest(result *BulkExportResult, format string) formatter.ExportManifest {
	if format == "" {
		format = "json"
	}
	m := formatter.ExportManifest{
		ExportedAt: time.Now().UTC(),
		Format:     format,
		Total:      result.TotalPlaylists,
		Successful: result.SuccessfulExports,
		Failed:     result.FailedExports,
		Playlists:  make([]formatter.ManifestEntry, 0, len(result.Results)),
	}
	for _, r := range result.Results {
		entry := formatter.ManifestEntry{ID: r.PlaylistID, Name: r.PlaylistName, Success: r.Success, Files: r.Files}
		if r.Error != nil {
			entry.Error = r.Error.Error()
		}
		m.Playlists = append(m.Playlists, entry)
	}
	return m
}
