package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

// ChunkSize is the largest batch sent in one mutation request.
const ChunkSize = 100

// MutationRequest asks for URIs to be added to or removed from a playlist.
type MutationRequest struct {
	PlaylistID string
	Op         models.MutationOp
	URIs       []string
}

// MutationResult describes how far a mutation got.
type MutationResult struct {
	Request     MutationRequest
	Chunks      int // number of chunks planned
	Sent        int // chunks that were attempted
	Applied     int // URIs in chunks that succeeded
	FailedChunk int // index of the failed chunk, -1 when none failed
}

// Complete reports whether every chunk succeeded.
func (r *MutationResult) Complete() bool {
	return r.FailedChunk < 0 && r.Sent == r.Chunks
}

// Chunk splits uris into consecutive slices of at most size elements.
func Chunk(uris []string, size int) [][]string {
	if size <= 0 {
		size = ChunkSize
	}
	chunks := make([][]string, 0, (len(uris)+size-1)/size)
	for start := 0; start < len(uris); start += size {
		end := min(start+size, len(uris))
		chunks = append(chunks, uris[start:end])
	}
	return chunks
}

// Mutate sends req in chunks, sequentially, stopping at the first failure.
//
// An empty request is a no-op. On failure the returned error wraps [shared.ErrMutationFailed] and the cause,
// and the result still reports the chunks already applied.
func (e *Engine) Mutate(ctx context.Context, req MutationRequest, progress chan<- ProgressUpdate) (*MutationResult, error) {
	chunks := Chunk(req.URIs, e.chunkSize)
	result := &MutationResult{Request: req, Chunks: len(chunks), FailedChunk: -1}
	if len(chunks) == 0 {
		return result, nil
	}
	if req.PlaylistID == "" {
		return result, fmt.Errorf("%w: playlist id is required", shared.ErrMissingArgument)
	}

	var failure error
	for i, chunk := range chunks {
		if err := ctx.Err(); err != nil {
			failure = err
			result.FailedChunk = i
			break
		}

		e.sendProgress(progress, mutateChunkUpdate(i+1, len(chunks), req.Op, len(chunk)))
		result.Sent++

		if err := e.gateway.MutatePlaylistItems(ctx, req.PlaylistID, req.Op, chunk); err != nil {
			failure = err
			result.FailedChunk = i
			e.logger.Error("mutation chunk failed",
				"playlist", req.PlaylistID, "op", req.Op, "chunk", i+1, "of", len(chunks), "err", err)
			break
		}
		result.Applied += len(chunk)
	}

	e.record(ctx, result, failure)

	if failure != nil {
		e.sendProgress(progress, mutateFailedUpdate(result.FailedChunk+1, len(chunks), failure))
		return result, fmt.Errorf("%w: chunk %d of %d: %w", shared.ErrMutationFailed, result.FailedChunk+1, len(chunks), failure)
	}

	e.sendProgress(progress, mutateDoneUpdate(len(chunks), req.Op, result.Applied))
	return result, nil
}

func (e *Engine) record(ctx context.Context, result *MutationResult, failure error) {
	if e.recorder == nil {
		return
	}
	rec := models.MutationRecord{
		ID:         shared.GenerateID(),
		PlaylistID: result.Request.PlaylistID,
		Op:         result.Request.Op,
		Requested:  len(result.Request.URIs),
		Applied:    result.Applied,
		CreatedAt:  time.Now().UTC(),
	}
	if failure != nil {
		rec.Error = failure.Error()
	}
	if err := e.recorder.RecordMutation(context.WithoutCancel(ctx), rec); err != nil {
		e.logger.Warn("failed to record mutation", "playlist", rec.PlaylistID, "err", err)
	}
}
