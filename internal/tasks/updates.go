package tasks

import (
	"fmt"

	"github.com/desertthunder/spotdash/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchMetadata Phase = iota
	FetchEntries
	MutateChunk
	ExportPlaylist
)

func (p Phase) String() string {
	switch p {
	case FetchMetadata:
		return "fetch_metadata"
	case FetchEntries:
		return "fetch_entries"
	case MutateChunk:
		return "mutate_chunk"
	case ExportPlaylist:
		return "export_playlist"
	default:
		return ""
	}
}

func fetchMetadataUpdate(step, total int, playlistID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchMetadata,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Fetching playlist %s...", playlistID),
	}
}

func fetchEntriesUpdate(fetched, total int, pl *models.Playlist) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchEntries,
		Step:    fetched,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s", fetched, total, pl.Name),
		Data:    pl,
	}
}

func mutateChunkUpdate(step, total int, op models.MutationOp, size int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MutateChunk,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %d tracks...", step, total, op, size),
	}
}

func mutateFailedUpdate(step, total int, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MutateChunk,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %v", step, total, err),
	}
}

func mutateDoneUpdate(total int, op models.MutationOp, applied int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   MutateChunk,
		Step:    total,
		Total:   total,
		Message: fmt.Sprintf("✓ %s %d tracks", op, applied),
	}
}

func exportingPlaylistUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Exporting: %s...", step, total, name),
	}
}

func exportCompletedUpdate(step, total int, name string, filesCount int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d files)", step, total, name, filesCount),
	}
}

func exportFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExportPlaylist,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}
