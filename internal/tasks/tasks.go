package tasks

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spotdash/internal/models"
)

// PlaylistReader fetches playlist metadata and entry pages.
type PlaylistReader interface {
	PlaylistMetadata(ctx context.Context, playlistID string) (*models.Playlist, error)
	PlaylistPage(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.PlaylistEntry], error)
}

// PlaylistMutator applies one atomic membership change.
type PlaylistMutator interface {
	MutatePlaylistItems(ctx context.Context, playlistID string, op models.MutationOp, uris []string) error
}

// Gateway is the subset of the Spotify client the engine needs.
type Gateway interface {
	PlaylistReader
	PlaylistMutator
}

// Recorder persists mutation outcomes. Implemented by repositories.MutationLogRepository.
type Recorder interface {
	RecordMutation(ctx context.Context, record models.MutationRecord) error
}

// Engine runs chunked mutations, paged collection and exports against a [Gateway].
type Engine struct {
	gateway   Gateway
	recorder  Recorder
	logger    *log.Logger
	chunkSize int
}

// NewEngine creates an Engine. recorder may be nil.
func NewEngine(gateway Gateway, recorder Recorder, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		gateway:   gateway,
		recorder:  recorder,
		logger:    logger.WithPrefix("tasks"),
		chunkSize: ChunkSize,
	}
}

// sendProgress sends a progress update through the channel without blocking.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
