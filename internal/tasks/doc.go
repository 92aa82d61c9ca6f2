// Package tasks runs multi-request playlist operations with progress reporting.
//
// # Bulk mutation
//
// [Engine.Mutate] adds or removes a set of URIs in chunks of at most [ChunkSize]:
//   - chunks are sent one after another, never concurrently
//   - the first failed chunk stops the run and later chunks are never sent
//   - chunks sent before the failure stay applied; [MutationResult] reports how far it got
//
// Every run is written to the mutation log through the optional [Recorder].
//
// # Snapshots and export
//
// [Engine.Collect] pages through a playlist into a [models.PlaylistSnapshot].
// [Engine.BulkExport] collects several playlists under a rate limit and writes them with a worker pool in JSON, CSV,
// Markdown or plain text, followed by a manifest.
//
// # Progress Reporting
//
// Operations accept a [ProgressUpdate] channel. Sends never block: when the channel is full the update is dropped.
package tasks
