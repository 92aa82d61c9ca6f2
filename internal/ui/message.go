package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/spotdash/internal/models"
)

// MsgKind enumerates the dashboard's data messages.
type MsgKind int

// Msg carries the result of a dashboard request (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
	err  error
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgPlaylistsFetched MsgKind = iota
	MsgViewerFetched
	MsgPlaybackFetched
	MsgDevicesFetched
	MsgTopTracksFetched
	MsgTopArtistsFetched
	MsgCommandDone
	MsgAdded
)

func (m Msg) Kind() MsgKind { return m.kind }
func (m Msg) Err() error    { return m.err }

// playlistsFetchedMsg is the constructor for [MsgPlaylistsFetched]
func playlistsFetchedMsg(playlists []models.Playlist, err error) Msg {
	return Msg{kind: MsgPlaylistsFetched, data: playlists, err: err}
}

// viewerFetchedMsg is the constructor for [MsgViewerFetched]
func viewerFetchedMsg(id string, err error) Msg {
	return Msg{kind: MsgViewerFetched, data: id, err: err}
}

// playbackFetchedMsg is the constructor for [MsgPlaybackFetched]
func playbackFetchedMsg(playback *models.Playback, err error) Msg {
	return Msg{kind: MsgPlaybackFetched, data: playback, err: err}
}

// devicesFetchedMsg is the constructor for [MsgDevicesFetched]
func devicesFetchedMsg(devices []models.Device, err error) Msg {
	return Msg{kind: MsgDevicesFetched, data: devices, err: err}
}

type topTracks struct {
	window models.TimeRange
	tracks []models.Track
}

type topArtists struct {
	window  models.TimeRange
	artists []models.Artist
}

// topTracksFetchedMsg is the constructor for [MsgTopTracksFetched]
func topTracksFetchedMsg(window models.TimeRange, tracks []models.Track, err error) Msg {
	return Msg{kind: MsgTopTracksFetched, data: topTracks{window: window, tracks: tracks}, err: err}
}

// topArtistsFetchedMsg is the constructor for [MsgTopArtistsFetched]
func topArtistsFetchedMsg(window models.TimeRange, artists []models.Artist, err error) Msg {
	return Msg{kind: MsgTopArtistsFetched, data: topArtists{window: window, artists: artists}, err: err}
}

// commandDoneMsg is the constructor for [MsgCommandDone]; label names the playback command.
func commandDoneMsg(label string, err error) Msg {
	return Msg{kind: MsgCommandDone, data: label, err: err}
}

type added struct {
	uri    string
	target string
}

// addedMsg is the constructor for [MsgAdded]
func addedMsg(uri, target string, err error) Msg {
	return Msg{kind: MsgAdded, data: added{uri: uri, target: target}, err: err}
}

// pollMsg asks for a playback refresh. Stale generations are ignored.
type pollMsg struct{ gen int }

// clockMsg advances the interpolated progress by one second.
type clockMsg struct {
	gen int
	at  time.Time
}
