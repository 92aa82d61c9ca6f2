// package formatter renders playlist snapshots as CSV, Markdown, plain text and JSON, and writes export files
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

var csvHeaders = []string{"Position", "ID", "Name", "Artists", "Album", "Duration", "AddedAt", "URI"}

// ExportToCSV converts a snapshot to CSV. Entries without a track are skipped; Position keeps their original index.
func ExportToCSV(snapshot *models.PlaylistSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(csvHeaders); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for i, entry := range snapshot.Entries {
		track := entry.Track
		if track == nil {
			continue
		}
		record := []string{
			strconv.Itoa(i + 1),
			track.ID,
			track.Name,
			track.ArtistLine(),
			track.Album.Name,
			shared.FormatDuration(track.DurationMS),
			entry.AddedAt,
			track.URI,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToMarkdown converts a snapshot to Markdown with an optional cover image reference.
func ExportToMarkdown(snapshot *models.PlaylistSnapshot, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer
	pl := snapshot.Playlist
	tracks := snapshot.Tracks()

	fmt.Fprintf(&buf, "# %s\n\n", pl.Name)
	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}
	if pl.Description != "" {
		fmt.Fprintf(&buf, "**Description**: %s\n\n", pl.Description)
	}
	if pl.Owner.DisplayName != "" {
		fmt.Fprintf(&buf, "**Owner**: %s\n", pl.Owner.DisplayName)
	}
	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(tracks))
	fmt.Fprintf(&buf, "**Visibility**: %s\n\n", visibility(pl))

	buf.WriteString("## Tracks\n\n")
	for i, t := range tracks {
		album := ""
		if t.Album.Name != "" {
			album = fmt.Sprintf(" (%s)", t.Album.Name)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, t.ArtistLine(), t.Name, album, shared.FormatDuration(t.DurationMS))
	}
	return buf.Bytes(), nil
}

// ExportToText converts a snapshot to plain text.
func ExportToText(snapshot *models.PlaylistSnapshot) ([]byte, error) {
	var buf bytes.Buffer
	tracks := snapshot.Tracks()

	fmt.Fprintf(&buf, "Playlist: %s\n", snapshot.Playlist.Name)
	if snapshot.Playlist.Description != "" {
		fmt.Fprintf(&buf, "Description: %s\n", snapshot.Playlist.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))
	for i, t := range tracks {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, t.ArtistLine(), t.Name)
	}
	return buf.Bytes(), nil
}

func visibility(pl models.Playlist) string {
	switch {
	case pl.Collaborative:
		return "Collaborative"
	case pl.Public:
		return "Public"
	default:
		return "Private"
	}
}

var imageClient = &http.Client{Timeout: 30 * time.Second}

// DownloadImage fetches an image and returns its bytes.
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL provided", shared.ErrInvalidInput)
	}

	resp, err := imageClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}
	return data, nil
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport writes {base}_tracks.csv and {base}_metadata.json. base defaults to the playlist ID.
func WriteCSVExport(snapshot *models.PlaylistSnapshot, base string) (*CSVExportResult, error) {
	if base == "" {
		base = snapshot.Playlist.ID
	}

	data, err := ExportToCSV(snapshot)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}
	tracksFile := base + "_tracks.csv"
	if err := os.WriteFile(tracksFile, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	meta, err := shared.MarshalJSON(snapshot.Playlist, true)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}
	metadataFile := base + "_metadata.json"
	if err := os.WriteFile(metadataFile, meta, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{TracksFile: tracksFile, MetadataFile: metadataFile}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
	Warnings   []string
}

// WriteMarkdownExport writes {dir}/README.md and, when imageURL downloads, {dir}/cover.jpg.
//
// A cover that cannot be fetched or saved is reported in Warnings and does not fail the export.
func WriteMarkdownExport(snapshot *models.PlaylistSnapshot, dir, imageURL string) (*MarkdownExportResult, error) {
	if dir == "" {
		dir = snapshot.Playlist.ID
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{Directory: dir, Files: []string{}}

	var cover string
	if imageURL != "" {
		if data, err := DownloadImage(imageURL); err != nil {
			result.Warnings = append(result.Warnings, fmt.Sprintf("failed to download cover image: %v", err))
		} else {
			path := filepath.Join(dir, "cover.jpg")
			if err := os.WriteFile(path, data, 0644); err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("failed to save cover image: %v", err))
			} else {
				cover = "cover.jpg"
				result.CoverImage = path
				result.Files = append(result.Files, path)
			}
		}
	}

	md, err := ExportToMarkdown(snapshot, cover)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}
	mdFile := filepath.Join(dir, "README.md")
	if err := os.WriteFile(mdFile, md, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}
	result.Files = append(result.Files, mdFile)
	return result, nil
}

// WriteTextExport writes the text rendering to path, defaulting to {playlist.ID}_tracks.txt.
func WriteTextExport(snapshot *models.PlaylistSnapshot, path string) (string, error) {
	if path == "" {
		path = snapshot.Playlist.ID + "_tracks.txt"
	}
	data, err := ExportToText(snapshot)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}
	return path, nil
}

// ExportManifest summarises a bulk export.
type ExportManifest struct {
	ExportedAt time.Time       `json:"exported_at"`
	Format     string          `json:"format"`
	Total      int             `json:"total"`
	Successful int             `json:"successful"`
	Failed     int             `json:"failed"`
	Playlists  []ManifestEntry `json:"playlists"`
}

// ManifestEntry is one playlist's outcome in an [ExportManifest].
type ManifestEntry struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Success bool     `json:"success"`
	Files   []string `json:"files,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// WriteManifest writes the manifest as indented JSON.
func WriteManifest(manifest ExportManifest, path string) error {
	data, err := shared.MarshalJSON(manifest, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
