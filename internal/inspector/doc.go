// Package inspector implements the playlist browser: a paginated, filterable,
// multi-select view over one playlist's entries with chunked add and remove.
//
// The browser loads metadata, the first page and the viewer identity together
// when a playlist is opened, pre-fetches the next page as the cursor nears the
// end of what has been loaded, and applies removals optimistically, reloading
// the first page when a chunk fails.
package inspector
