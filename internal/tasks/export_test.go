package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/desertthunder/spotdash/internal/formatter"
	"github.com/desertthunder/spotdash/internal/models"
)

func exportGateway(n int) (*mockGateway, []string) {
	gw := &mockGateway{playlists: map[string]*models.Playlist{}, entries: map[string][]models.PlaylistEntry{}}
	ids := make([]string, n)
	for i := range ids {
		id := fmt.Sprintf("playlist%d", i+1)
		ids[i] = id
		gw.playlists[id] = &models.Playlist{ID: id, Name: fmt.Sprintf("Playlist %d", i+1)}
		gw.entries[id] = entries(2)
	}
	return gw, ids
}

func TestBulkExport(t *testing.T) {
	tests := []struct {
		name      string
		format    string
		count     int
		filesEach int
	}{
		{name: "json", format: "json", count: 1, filesEach: 1},
		{name: "csv", format: "csv", count: 3, filesEach: 2},
		{name: "text", format: "txt", count: 2, filesEach: 1},
		{name: "markdown", format: "markdown", count: 1, filesEach: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			gw, ids := exportGateway(tt.count)

			result, err := NewEngine(gw, nil, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{
				Format: tt.format, OutputDir: dir, RateLimit: 1000,
			})
			if err != nil {
				t.Fatalf("BulkExport() error = %v", err)
			}
			if result.SuccessfulExports != tt.count || result.FailedExports != 0 {
				t.Errorf("success=%d failed=%d", result.SuccessfulExports, result.FailedExports)
			}
			for _, r := range result.Results {
				if len(r.Files) != tt.filesEach {
					t.Errorf("%s wrote %d files, want %d", r.PlaylistID, len(r.Files), tt.filesEach)
				}
				for _, f := range r.Files {
					if _, err := os.Stat(f); err != nil {
						t.Errorf("missing file %s", f)
					}
				}
			}

			data, err := os.ReadFile(filepath.Join(dir, "export_manifest.json"))
			if err != nil {
				t.Fatalf("manifest not written: %v", err)
			}
			var manifest formatter.ExportManifest
			if err := json.Unmarshal(data, &manifest); err != nil {
				t.Fatal(err)
			}
			if manifest.Total != tt.count || len(manifest.Playlists) != tt.count {
				t.Errorf("manifest = %+v", manifest)
			}
		})
	}

	t.Run("partial failure", func(t *testing.T) {
		gw, ids := exportGateway(2)
		ids = append(ids, "missing")

		result, err := NewEngine(gw, nil, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{
			Format: "json", OutputDir: t.TempDir(), RateLimit: 1000,
		})
		if err != nil {
			t.Fatalf("BulkExport() error = %v", err)
		}
		if result.SuccessfulExports != 2 || result.FailedExports != 1 {
			t.Errorf("success=%d failed=%d", result.SuccessfulExports, result.FailedExports)
		}
	})

	t.Run("canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		gw, ids := exportGateway(3)

		_, err := NewEngine(gw, nil, nil).BulkExport(ctx, nil, ids, BulkExportOpts{OutputDir: t.TempDir()})
		if err == nil {
			t.Error("expected cancellation error")
		}
	})

	t.Run("invalid output directory", func(t *testing.T) {
		file := filepath.Join(t.TempDir(), "file")
		if err := os.WriteFile(file, nil, 0644); err != nil {
			t.Fatal(err)
		}
		gw, ids := exportGateway(1)
		if _, err := NewEngine(gw, nil, nil).BulkExport(context.Background(), nil, ids, BulkExportOpts{OutputDir: filepath.Join(file, "sub")}); err == nil {
			t.Error("expected error creating output directory under a file")
		}
	})
}
