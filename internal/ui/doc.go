// Package ui implements the interactive dashboard using bubbletea's Elm architecture.
//
// The root [Model] composes:
//  1. a now-playing header, polled on an interval and interpolated locally between polls
//  2. list panels for the viewer's playlists, top tracks, top artists and devices
//  3. the search and assist overlays from package palette, toggled by global hotkeys
//  4. the playlist browser from package inspector
//
// Key routing is strictly layered: global hotkeys first, then the topmost open layer
// (playlist picker, overlay, browser) and only then the dashboard panels.
//
// After every update the root mirrors overlay and browser state into the current
// [location.Location] with [location.Store.Replace]. History navigation (alt+left, alt+right)
// goes the other way: the new location is pushed into every layer with Sync.
package ui
