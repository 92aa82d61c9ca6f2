// Spotify Web API client
//
// Response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// MaxMutationBatch is the largest number of URIs the playlist items endpoint accepts per call.
	MaxMutationBatch = 100
)

var spotifyScopes = []string{
	"user-read-private",
	"user-read-email",
	"user-top-read",
	"user-read-playback-state",
	"user-modify-playback-state",
	"user-read-currently-playing",
	"playlist-read-private",
	"playlist-read-collaborative",
	"playlist-modify-public",
	"playlist-modify-private",
}

// SpotifyService talks to the Spotify Web API.
//
// Uses [oauth2] for authentication; the client returned by [oauth2.Config.Client] refreshes expired tokens.
// Every request waits on a [rate.Limiter] before it is sent.
type SpotifyService struct {
	config     *oauth2.Config
	token      *oauth2.Token
	source     oauth2.TokenSource
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter

	mu       sync.Mutex
	viewerID string
}

// NewSpotifyService creates a new Spotify service with the given OAuth2 credentials.
func NewSpotifyService(credentials map[string]string) (*SpotifyService, error) {
	clientID, ok := credentials["client_id"]
	if !ok || clientID == "" {
		return nil, fmt.Errorf("%w: missing client_id", shared.ErrMissingCredentials)
	}

	clientSecret, ok := credentials["client_secret"]
	if !ok || clientSecret == "" {
		return nil, fmt.Errorf("%w: missing client_secret", shared.ErrMissingCredentials)
	}

	redirectURI, ok := credentials["redirect_uri"]
	if !ok || redirectURI == "" {
		redirectURI = "http://127.0.0.1:3000/callback"
	}

	config := &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  spotifyAuthURL,
			TokenURL: spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: http.DefaultClient,
		baseURL:    spotifyBaseURL,
		limiter:    rate.NewLimiter(rate.Inf, 0),
	}, nil
}

// SetBaseURL points the client at a different API root.
func (s *SpotifyService) SetBaseURL(u string) {
	s.baseURL = strings.TrimRight(u, "/")
}

// SetRateLimit paces outgoing requests. A non-positive rps disables pacing.
func (s *SpotifyService) SetRateLimit(rps float64, burst int) {
	if rps <= 0 {
		s.limiter = rate.NewLimiter(rate.Inf, 0)
		return
	}
	if burst <= 0 {
		burst = 1
	}
	s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
}

// Authenticate installs credentials. Expects either an "access_token" (optionally with "refresh_token") or an "auth_code".
func (s *SpotifyService) Authenticate(ctx context.Context, credentials map[string]string) error {
	if accessToken := credentials["access_token"]; accessToken != "" {
		return s.OAuthenticate(ctx, &oauth2.Token{
			AccessToken:  accessToken,
			RefreshToken: credentials["refresh_token"],
			TokenType:    "Bearer",
		})
	}

	if authCode := credentials["auth_code"]; authCode != "" {
		token, err := s.config.Exchange(ctx, authCode)
		if err != nil {
			return fmt.Errorf("%w: failed to exchange auth code: %v", shared.ErrAuthFailed, err)
		}
		return s.OAuthenticate(ctx, token)
	}

	return fmt.Errorf("%w: missing access_token or auth_code", shared.ErrMissingCredentials)
}

// OAuthenticate installs a token issued elsewhere, e.g. loaded from config.
func (s *SpotifyService) OAuthenticate(ctx context.Context, token *oauth2.Token) error {
	if token == nil || token.AccessToken == "" {
		return fmt.Errorf("%w: empty token", shared.ErrMissingCredentials)
	}
	s.token = token
	s.source = s.config.TokenSource(ctx, token)
	s.httpClient = oauth2.NewClient(ctx, s.source)
	return nil
}

// CurrentToken returns the latest token, refreshed if the previous one expired.
func (s *SpotifyService) CurrentToken() (*oauth2.Token, error) {
	if s.source == nil {
		return nil, shared.ErrNotAuthenticated
	}
	return s.source.Token()
}

// GetAuthURL returns the OAuth2 authorization URL for user login.
func (s *SpotifyService) GetAuthURL(state string) string {
	return s.config.AuthCodeURL(state, oauth2.AccessTypeOffline)
}

// GetOAuthConfig exposes the OAuth2 configuration for the callback handler.
func (s *SpotifyService) GetOAuthConfig() *oauth2.Config {
	return s.config
}

// doRequest performs an authenticated request and decodes a JSON response into result.
//
// 204 responses and a nil result skip decoding.
func (s *SpotifyService) doRequest(ctx context.Context, method, endpoint string, body any, result any) error {
	if s.token == nil {
		return shared.ErrNotAuthenticated
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return shared.ErrTokenExpired
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s %s", shared.ErrNotFound, method, endpoint)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", shared.ErrAPIRequest, resp.StatusCode, strings.TrimSpace(string(snippet)))
	case resp.StatusCode == http.StatusNoContent || result == nil:
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}
	return nil
}

// Me retrieves the authenticated user's profile.
func (s *SpotifyService) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := s.doRequest(ctx, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ViewerID returns the authenticated user's id, fetched once and cached.
func (s *SpotifyService) ViewerID(ctx context.Context) (string, error) {
	s.mu.Lock()
	id := s.viewerID
	s.mu.Unlock()
	if id != "" {
		return id, nil
	}

	user, err := s.Me(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.viewerID = user.ID
	s.mu.Unlock()
	return user.ID, nil
}

type searchPage[T any] struct {
	Items []*T `json:"items"`
}

type searchResponse struct {
	Tracks    *searchPage[models.Track]    `json:"tracks"`
	Playlists *searchPage[models.Playlist] `json:"playlists"`
	Albums    *searchPage[models.Album]    `json:"albums"`
	Artists   *searchPage[models.Artist]   `json:"artists"`
}

func items[T any](p *searchPage[T]) []*T {
	if p == nil {
		return nil
	}
	return p.Items
}

// Search runs a catalog search across the given types. Null entries in the response are kept as nil.
func (s *SpotifyService) Search(ctx context.Context, query string, types []models.SearchType, limit int) (*models.SearchResults, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", shared.ErrInvalidInput)
	}
	if len(types) == 0 {
		types = models.AllSearchTypes
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("type", models.JoinSearchTypes(types))
	params.Set("limit", fmt.Sprint(limit))

	var resp searchResponse
	if err := s.doRequest(ctx, http.MethodGet, "/search?"+params.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	return &models.SearchResults{
		Tracks:    items(resp.Tracks),
		Playlists: items(resp.Playlists),
		Albums:    items(resp.Albums),
		Artists:   items(resp.Artists),
	}, nil
}

// PlaylistMetadata retrieves a playlist's name, owner and totals.
func (s *SpotifyService) PlaylistMetadata(ctx context.Context, playlistID string) (*models.Playlist, error) {
	var playlist models.Playlist
	endpoint := "/playlists/" + url.PathEscape(playlistID)
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &playlist); err != nil {
		if errorsIsNotFound(err) {
			return nil, fmt.Errorf("%w: %s", shared.ErrPlaylistNotFound, playlistID)
		}
		return nil, err
	}
	return &playlist, nil
}

// PlaylistPage retrieves one window of a playlist's entries.
func (s *SpotifyService) PlaylistPage(ctx context.Context, playlistID string, limit, offset int) (*models.Page[models.PlaylistEntry], error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	endpoint := fmt.Sprintf("/playlists/%s/tracks?limit=%d&offset=%d", url.PathEscape(playlistID), limit, offset)

	var page models.Page[models.PlaylistEntry]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

type trackURI struct {
	URI string `json:"uri"`
}

// MutatePlaylistItems adds or removes up to [MaxMutationBatch] URIs in a single call.
func (s *SpotifyService) MutatePlaylistItems(ctx context.Context, playlistID string, op models.MutationOp, uris []string) error {
	if len(uris) == 0 {
		return nil
	}
	if len(uris) > MaxMutationBatch {
		return fmt.Errorf("%w: at most %d uris per call, got %d", shared.ErrInvalidInput, MaxMutationBatch, len(uris))
	}

	endpoint := "/playlists/" + url.PathEscape(playlistID) + "/tracks"

	switch op {
	case models.OpAdd:
		return s.doRequest(ctx, http.MethodPost, endpoint, map[string]any{"uris": uris}, nil)
	case models.OpRemove:
		tracks := make([]trackURI, len(uris))
		for i, u := range uris {
			tracks[i] = trackURI{URI: u}
		}
		return s.doRequest(ctx, http.MethodDelete, endpoint, map[string]any{"tracks": tracks}, nil)
	default:
		return fmt.Errorf("%w: unknown mutation %v", shared.ErrInvalidArgument, op)
	}
}

// UserPlaylists retrieves one page of the viewer's playlists.
func (s *SpotifyService) UserPlaylists(ctx context.Context, limit, offset int) (*models.Page[models.Playlist], error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	endpoint := fmt.Sprintf("/me/playlists?limit=%d&offset=%d", limit, offset)

	var page models.Page[models.Playlist]
	if err := s.doRequest(ctx, http.MethodGet, endpoint, nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// AllUserPlaylists walks every page of the viewer's playlists.
func (s *SpotifyService) AllUserPlaylists(ctx context.Context) ([]models.Playlist, error) {
	var all []models.Playlist
	limit, offset := 50, 0

	for {
		page, err := s.UserPlaylists(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page.Items...)

		if page.Next == nil || len(page.Items) == 0 {
			break
		}
		offset += len(page.Items)
	}

	return all, nil
}

type playBody struct {
	URIs       []string          `json:"uris,omitempty"`
	ContextURI string            `json:"context_uri,omitempty"`
	Offset     map[string]string `json:"offset,omitempty"`
	PositionMS int               `json:"position_ms,omitempty"`
}

// Play starts playback of the request's URIs or context. An empty request resumes the current item.
func (s *SpotifyService) Play(ctx context.Context, req models.PlayRequest) error {
	endpoint := "/me/player/play"
	if req.DeviceID != "" {
		endpoint += "?device_id=" + url.QueryEscape(req.DeviceID)
	}

	body := playBody{URIs: req.URIs, ContextURI: req.ContextURI, PositionMS: req.PositionMS}
	if req.ContextURI != "" && req.OffsetURI != "" {
		body.Offset = map[string]string{"uri": req.OffsetURI}
	}

	if len(body.URIs) == 0 && body.ContextURI == "" && body.PositionMS == 0 {
		return s.doRequest(ctx, http.MethodPut, endpoint, nil, nil)
	}
	return s.doRequest(ctx, http.MethodPut, endpoint, body, nil)
}

// Resume continues the current item.
func (s *SpotifyService) Resume(ctx context.Context) error {
	return s.Play(ctx, models.PlayRequest{})
}

// Pause pauses playback.
func (s *SpotifyService) Pause(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPut, "/me/player/pause", nil, nil)
}

// Next skips to the next item.
func (s *SpotifyService) Next(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/next", nil, nil)
}

// Previous skips to the previous item.
func (s *SpotifyService) Previous(ctx context.Context) error {
	return s.doRequest(ctx, http.MethodPost, "/me/player/previous", nil, nil)
}

// CurrentPlayback returns the player state, or nil when nothing is playing.
func (s *SpotifyService) CurrentPlayback(ctx context.Context) (*models.Playback, error) {
	var playback models.Playback
	if err := s.doRequest(ctx, http.MethodGet, "/me/player", nil, &playback); err != nil {
		return nil, err
	}
	if playback.Item == nil && playback.Device == nil {
		return nil, nil
	}
	return &playback, nil
}

// Devices lists available Spotify Connect targets.
func (s *SpotifyService) Devices(ctx context.Context) ([]models.Device, error) {
	var resp struct {
		Devices []models.Device `json:"devices"`
	}
	if err := s.doRequest(ctx, http.MethodGet, "/me/player/devices", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Devices, nil
}

// TransferPlayback moves playback to deviceID, optionally starting it.
func (s *SpotifyService) TransferPlayback(ctx context.Context, deviceID string, play bool) error {
	if deviceID == "" {
		return fmt.Errorf("%w: device id", shared.ErrMissingArgument)
	}
	body := map[string]any{"device_ids": []string{deviceID}, "play": play}
	return s.doRequest(ctx, http.MethodPut, "/me/player", body, nil)
}

// TopTracks returns the viewer's most played tracks for the window.
func (s *SpotifyService) TopTracks(ctx context.Context, window models.TimeRange, limit int) ([]models.Track, error) {
	var page models.Page[models.Track]
	if err := s.doRequest(ctx, http.MethodGet, topEndpoint("tracks", window, limit), nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// TopArtists returns the viewer's most played artists for the window.
func (s *SpotifyService) TopArtists(ctx context.Context, window models.TimeRange, limit int) ([]models.Artist, error) {
	var page models.Page[models.Artist]
	if err := s.doRequest(ctx, http.MethodGet, topEndpoint("artists", window, limit), nil, &page); err != nil {
		return nil, err
	}
	return page.Items, nil
}

func topEndpoint(kind string, window models.TimeRange, limit int) string {
	if window == "" {
		window = models.MediumTerm
	}
	if limit <= 0 || limit > 50 {
		limit = 20
	}
	return fmt.Sprintf("/me/top/%s?time_range=%s&limit=%d", kind, window, limit)
}
