// Package palette implements the command-palette overlay used by the dashboard's search and assist features.
//
// An overlay is a [Controller] over a [Source]. The controller owns:
//   - a [Debouncer] that stabilises the query before it is sent (search only)
//   - a [Slot] that cancels the previous request when a new one starts and discards superseded results
//   - a [Focus] index over the flattened result list, wrapping at both ends
//   - visibility mirrored into a location parameter through [Controller.Sync] and [Controller.Apply]
//
// [SearchSource] runs federated catalog search and groups results under a prioritised top result.
// [AssistSource] runs the two-stage prompt → candidates → catalog resolution.
//
// Activating a row emits an [ActivateMsg]; the owning model decides what to do with it.
package palette
