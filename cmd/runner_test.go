package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/repositories"
	"github.com/desertthunder/spotdash/internal/shared"
	tu "github.com/desertthunder/spotdash/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

func newTestRepositories(t *testing.T) *repositories.Repositories {
	t.Helper()
	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	if err := shared.RunMigrations(db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return repositories.New(db)
}

func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer, *tu.MockGateway) {
	t.Helper()
	gw := tu.NewMockGateway()
	gw.AddPlaylist("p1", "Mine", "me", 3)
	gw.AddPlaylist("p2", "Theirs", "someone", 2)

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Gateway:      gw,
		Repositories: newTestRepositories(t),
		Logger:       shared.NewLogger(io.Discard),
		Output:       output,
	})
	return runner, output, gw
}

func runCommand(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	app := &cli.Command{
		Name:      "spotdash",
		Commands:  r.register(),
		Writer:    io.Discard,
		ErrWriter: io.Discard,
	}
	return app.Run(context.Background(), append([]string{"spotdash"}, args...))
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}
			gw := tu.NewMockGateway()

			runner := NewRunner(RunnerOpts{
				Config:     config,
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
				Gateway:    gw,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.gateway != gw {
				t.Error("expected gateway to be set")
			}
			if runner.engine == nil {
				t.Error("expected engine to be built from the gateway")
			}
		})

		t.Run("with nil dependencies uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.engine != nil {
				t.Error("expected no engine without a gateway")
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/path/to/config.toml"})
			if runner.configPath != "/path/to/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, "\"key\": \"value\"") {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]int{"n": 1}, false); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got, want := output.String(), "{\"n\":1}\n"; got != want {
				t.Errorf("expected %q, got %q", want, got)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if output.String() != "hello world" {
				t.Errorf("expected 'hello world', got %q", output.String())
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Fatalf("command at index %d is nil", i)
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "tui", "search", "ask", "playlist", "play", "devices", "location", "cache"} {
			if !names[want] {
				t.Errorf("expected %q to be registered", want)
			}
		}
	})

	t.Run("requireGateway", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		if err := runner.requireGateway(); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
		if err := runner.requireRepositories(); !errors.Is(err, shared.ErrServiceUnavailable) {
			t.Errorf("expected ErrServiceUnavailable, got %v", err)
		}
	})

	t.Run("saveTokens", func(t *testing.T) {
		t.Run("saves tokens successfully", func(t *testing.T) {
			configPath := filepath.Join(t.TempDir(), "config.toml")

			config := shared.DefaultConfig()
			config.Credentials.Spotify.ClientID = "test_id"
			config.Credentials.Spotify.ClientSecret = "test_secret"
			if err := shared.SaveConfig(configPath, config); err != nil {
				t.Fatalf("failed to create test config: %v", err)
			}

			runner := NewRunner(RunnerOpts{Config: config, ConfigPath: configPath})
			token := &oauth2.Token{AccessToken: "new_access_token", RefreshToken: "new_refresh_token"}
			if err := runner.saveTokens(token); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			loaded, err := shared.LoadConfig(configPath)
			if err != nil {
				t.Fatalf("failed to reload config: %v", err)
			}
			if loaded.Credentials.Spotify.AccessToken != "new_access_token" {
				t.Errorf("expected access token to be updated, got %s", loaded.Credentials.Spotify.AccessToken)
			}
			if loaded.Credentials.Spotify.RefreshToken != "new_refresh_token" {
				t.Errorf("expected refresh token to be updated, got %s", loaded.Credentials.Spotify.RefreshToken)
			}
		})

		t.Run("handles nil config error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/tmp/test.toml"})
			runner.config = nil

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if !errors.Is(err, shared.ErrMissingConfig) || !strings.Contains(err.Error(), "config is nil") {
				t.Errorf("expected nil config error, got %v", err)
			}
		})

		t.Run("handles empty configPath", func(t *testing.T) {
			config := shared.DefaultConfig()
			runner := NewRunner(RunnerOpts{Config: config})

			if err := runner.saveTokens(&oauth2.Token{AccessToken: "new_token", RefreshToken: "new_refresh"}); err != nil {
				t.Fatalf("expected no error with empty path, got %v", err)
			}
			if config.Credentials.Spotify.AccessToken != "new_token" {
				t.Error("expected config to be updated in memory")
			}
		})

		t.Run("handles SaveConfig failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config:     shared.DefaultConfig(),
				ConfigPath: filepath.Join(t.TempDir(), "missing", "config.toml"),
			})

			err := runner.saveTokens(&oauth2.Token{AccessToken: "test"})
			if err == nil || !strings.Contains(err.Error(), "failed to save config") {
				t.Errorf("expected save config error, got %v", err)
			}
		})

		t.Run("handles Update error", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{
				Config:     shared.DefaultConfig(),
				ConfigPath: filepath.Join(t.TempDir(), "config.toml"),
			})

			err := runner.saveTokens(nil)
			if err == nil {
				t.Fatal("expected error when Update fails with nil token")
			}
			if !strings.Contains(err.Error(), "failed to update spotify configuration") {
				t.Errorf("expected update error, got %v", err)
			}
			if !errors.Is(err, shared.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials in chain, got %v", err)
			}
		})
	})
}

func TestPlayRequest(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		tracks  []string
		context string
		wantErr bool
	}{
		{name: "track plays directly", uri: "spotify:track:t1", tracks: []string{"spotify:track:t1"}},
		{name: "episode plays directly", uri: "spotify:episode:e1", tracks: []string{"spotify:episode:e1"}},
		{name: "playlist is a context", uri: "spotify:playlist:p1", context: "spotify:playlist:p1"},
		{name: "album is a context", uri: "spotify:album:a1", context: "spotify:album:a1"},
		{name: "artist is a context", uri: "spotify:artist:a1", context: "spotify:artist:a1"},
		{name: "user is not playable", uri: "spotify:user:me", wantErr: true},
		{name: "web link is rejected", uri: "https://open.spotify.com/track/t1", wantErr: true},
		{name: "empty id is rejected", uri: "spotify:track:", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := playRequest(tt.uri)
			if tt.wantErr {
				if !errors.Is(err, shared.ErrInvalidArgument) {
					t.Fatalf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.ContextURI != tt.context {
				t.Errorf("expected context %q, got %q", tt.context, req.ContextURI)
			}
			if strings.Join(req.URIs, ",") != strings.Join(tt.tracks, ",") {
				t.Errorf("expected uris %v, got %v", tt.tracks, req.URIs)
			}
		})
	}
}

func TestParseSearchTypes(t *testing.T) {
	t.Run("defaults to every type", func(t *testing.T) {
		types, err := parseSearchTypes(nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(types) != len(models.AllSearchTypes) {
			t.Errorf("expected %d types, got %v", len(models.AllSearchTypes), types)
		}
	})

	t.Run("splits commas and drops duplicates", func(t *testing.T) {
		types, err := parseSearchTypes([]string{"track, Artist", "track"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(types) != 2 || types[0] != models.SearchTrack || types[1] != models.SearchArtist {
			t.Errorf("expected [track artist], got %v", types)
		}
	})

	t.Run("rejects unknown types", func(t *testing.T) {
		if _, err := parseSearchTypes([]string{"podcast"}); !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestCommands(t *testing.T) {
	t.Run("playlist remove on an owned playlist", func(t *testing.T) {
		r, output, gw := newTestRunner(t)

		if err := runCommand(t, r, "playlist", "remove", "p1", "spotify:track:p1-0", "spotify:track:p1-2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Removed 2 tracks from Mine") {
			t.Errorf("unexpected output: %q", output.String())
		}
		if calls := gw.Calls("MutatePlaylistItems"); len(calls) != 1 {
			t.Errorf("expected one mutation call, got %d", len(calls))
		}

		output.Reset()
		if err := runCommand(t, r, "playlist", "log", "p1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "2/2") || !strings.Contains(output.String(), "p1") {
			t.Errorf("expected the removal in the log, got %q", output.String())
		}
	})

	t.Run("playlist remove on someone else's playlist", func(t *testing.T) {
		r, _, gw := newTestRunner(t)

		err := runCommand(t, r, "playlist", "remove", "p2", "spotify:track:p2-0")
		if !errors.Is(err, shared.ErrReadOnly) {
			t.Fatalf("expected ErrReadOnly, got %v", err)
		}
		if calls := gw.Calls("MutatePlaylistItems"); len(calls) != 0 {
			t.Errorf("expected no mutation calls, got %d", len(calls))
		}
	})

	t.Run("playlist add rejects non-spotify uris", func(t *testing.T) {
		r, _, _ := newTestRunner(t)

		err := runCommand(t, r, "playlist", "add", "p1", "https://open.spotify.com/track/x")
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Fatalf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("playlist add", func(t *testing.T) {
		r, output, _ := newTestRunner(t)

		if err := runCommand(t, r, "playlist", "add", "p1", "spotify:track:new"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "✓ Added 1 tracks") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("playlist show with filter", func(t *testing.T) {
		r, output, _ := newTestRunner(t)

		if err := runCommand(t, r, "playlist", "show", "--filter", "song 1", "p1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := output.String()
		if !strings.Contains(got, "1 shown • 3 total") {
			t.Errorf("expected filtered counts, got %q", got)
		}
		if !strings.Contains(got, "spotify:track:p1-1") || strings.Contains(got, "spotify:track:p1-0") {
			t.Errorf("expected only the matching row, got %q", got)
		}
	})

	t.Run("playlist list marks ownership", func(t *testing.T) {
		r, output, _ := newTestRunner(t)

		if err := runCommand(t, r, "playlist", "list"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := output.String()
		if !strings.Contains(got, "Found 2 playlists") || !strings.Contains(got, "owned") || !strings.Contains(got, "read-only") {
			t.Errorf("unexpected output: %q", got)
		}
	})

	t.Run("playlist export writes files and a manifest", func(t *testing.T) {
		r, output, _ := newTestRunner(t)
		dir := filepath.Join(t.TempDir(), "exports")

		if err := runCommand(t, r, "playlist", "export", "--output", dir, "--workers", "2", "p1", "p2"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Exported 2/2 playlists") {
			t.Errorf("unexpected output: %q", output.String())
		}

		tu.AssertFileExists(t, filepath.Join(dir, "p1.json"))
		tu.AssertFileExists(t, filepath.Join(dir, "p2.json"))
		manifest := tu.MustReadFile(t, filepath.Join(dir, "export_manifest.json"))
		if !strings.Contains(manifest, "Theirs") {
			t.Errorf("expected manifest to name every playlist, got %s", manifest)
		}
	})

	t.Run("search prints grouped results", func(t *testing.T) {
		r, output, gw := newTestRunner(t)
		gw.Results = &models.SearchResults{
			Tracks:  []*models.Track{{ID: "t1", Name: "Roygbiv", URI: "spotify:track:t1", Artists: []models.Artist{{Name: "Boards of Canada"}}}},
			Artists: []*models.Artist{{ID: "a1", Name: "Boards of Canada", URI: "spotify:artist:a1"}},
		}

		if err := runCommand(t, r, "search", "--type", "track,artist", "boards"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got := output.String()
		for _, want := range []string{"Top result", "Tracks", "Artists", "spotify:track:t1", "spotify:artist:a1"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in output, got %q", want, got)
			}
		}
	})

	t.Run("search without results", func(t *testing.T) {
		r, output, _ := newTestRunner(t)

		if err := runCommand(t, r, "search", "nothing"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "No results for nothing") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("play resumes without a uri", func(t *testing.T) {
		r, output, gw := newTestRunner(t)

		if err := runCommand(t, r, "play"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(gw.Calls("Resume")) != 1 || !strings.Contains(output.String(), "▶ Resumed") {
			t.Errorf("expected a resume, got %q", output.String())
		}
	})

	t.Run("play surfaces a missing device", func(t *testing.T) {
		r, _, gw := newTestRunner(t)
		gw.Errs["Play"] = shared.ErrNoActiveDevice

		err := runCommand(t, r, "play", "spotify:playlist:p1")
		if !errors.Is(err, shared.ErrNoActiveDevice) {
			t.Fatalf("expected ErrNoActiveDevice, got %v", err)
		}
	})

	t.Run("devices marks the active device", func(t *testing.T) {
		r, output, gw := newTestRunner(t)
		gw.DeviceList = []models.Device{
			{ID: "d1", Name: "Speaker", Type: "Speaker"},
			{ID: "d2", Name: "Laptop", Type: "Computer", IsActive: true},
		}

		if err := runCommand(t, r, "devices"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "* Laptop (Computer)") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("cache stats", func(t *testing.T) {
		r, output, _ := newTestRunner(t)
		if err := r.repos.Resolutions.StoreResolution("boc|roygbiv", models.Resolved{
			Query: "roygbiv",
			Type:  models.SearchTrack,
			Track: &models.Track{ID: "t1", Name: "Roygbiv", URI: "spotify:track:t1"},
		}); err != nil {
			t.Fatalf("failed to seed cache: %v", err)
		}

		if err := runCommand(t, r, "cache", "stats"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(output.String(), "Cached resolutions: 1") {
			t.Errorf("unexpected output: %q", output.String())
		}
	})

	t.Run("commands need a gateway", func(t *testing.T) {
		r := NewRunner(RunnerOpts{Output: &bytes.Buffer{}, Logger: shared.NewLogger(io.Discard)})

		if err := runCommand(t, r, "playlist", "list"); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})
}
