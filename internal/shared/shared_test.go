package shared

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
)

func TestNormalizeTrackKey(t *testing.T) {
	tc := []struct {
		name   string
		title  string
		artist string
		want   string
	}{
		{
			name:   "basic normalization",
			title:  "Song Title",
			artist: "Artist Name",
			want:   "song title|artist name",
		},
		{
			name:   "extra whitespace",
			title:  "  Song   Title  ",
			artist: "  Artist   Name  ",
			want:   "song title|artist name",
		},
		{
			name:   "mixed case",
			title:  "SoNg TiTlE",
			artist: "ArTiSt NaMe",
			want:   "song title|artist name",
		},
		{
			name:  "missing artist",
			title: "Solo",
			want:  "solo|",
		},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTrackKey(tt.title, tt.artist); got != tt.want {
				t.Errorf("NormalizeTrackKey() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tc := []struct {
		ms   int
		want string
	}{
		{0, "0:00"},
		{999, "0:00"},
		{61_000, "1:01"},
		{3_599_000, "59:59"},
		{-5, "0:00"},
	}

	for _, tt := range tc {
		if got := FormatDuration(tt.ms); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	tc := []struct {
		in    string
		width int
		want  string
	}{
		{"Roygbiv", 10, "Roygbiv"},
		{"Roygbiv", 7, "Roygbiv"},
		{"Roygbiv", 5, "Royg…"},
		{"東京タワー", 5, "東京…"},
		{"anything", 0, ""},
	}

	for _, tt := range tc {
		if got := Truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestExternalURL(t *testing.T) {
	tc := []struct {
		in   string
		want string
	}{
		{"spotify:artist:abc", "https://open.spotify.com/artist/abc"},
		{"spotify:track:xyz", "https://open.spotify.com/track/xyz"},
		{"https://example.com", "https://example.com"},
		{"spotify:user:x:playlist:y", "spotify:user:x:playlist:y"},
	}

	for _, tt := range tc {
		if got := ExternalURL(tt.in); got != tt.want {
			t.Errorf("ExternalURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOpenCommand(t *testing.T) {
	orig := getRuntime
	defer func() { getRuntime = orig }()

	getRuntime = func() string { return "plan9" }
	if _, err := openCommand("https://example.com"); err == nil {
		t.Error("expected unsupported platform error")
	}

	getRuntime = func() string { return "linux" }
	cmd, err := openCommand("https://example.com")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(cmd.Path, "xdg-open") && cmd.Args[0] != "xdg-open" {
		t.Errorf("expected xdg-open, got %v", cmd.Args)
	}
}

func TestLoggers(t *testing.T) {
	t.Run("NewLogger", func(t *testing.T) {
		var buf bytes.Buffer
		logger := WithLogger(NewLogger(&buf), "component", "test")
		logger.Info("hello")

		out := buf.String()
		if !strings.Contains(out, "hello") || !strings.Contains(out, "component=test") {
			t.Errorf("unexpected log output %q", out)
		}
	})

	t.Run("NewFileLogger", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "app.log")
		logger, err := NewFileLogger(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		logger.Info("written")
	})
}

func TestGenerateState(t *testing.T) {
	a, err := GenerateState()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, _ := GenerateState()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty states, got %q and %q", a, b)
	}
}
