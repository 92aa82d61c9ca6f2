package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/desertthunder/spotdash/internal/models"
	"github.com/desertthunder/spotdash/internal/shared"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	// each :memory: connection is a separate database
	db.SetMaxOpenConns(1)

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRepository(t *testing.T) {
	t.Run("Get missing key", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("Set then overwrite", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		if err := repo.Set(KeyDevice, "d1"); err != nil {
			t.Fatal(err)
		}
		if err := repo.Set(KeyDevice, "d2"); err != nil {
			t.Fatal(err)
		}
		got, err := repo.Get(KeyDevice)
		if err != nil || got != "d2" {
			t.Errorf("Get() = %q, %v", got, err)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		repo.Set("k", "v")
		if err := repo.Delete("k"); err != nil {
			t.Fatal(err)
		}
		if err := repo.Delete("k"); err != nil {
			t.Errorf("deleting missing key: %v", err)
		}
		if _, err := repo.Get("k"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("Location round trip", func(t *testing.T) {
		repo := NewSessionRepository(setupTestDB(t))
		raw, err := repo.LoadLocation()
		if err != nil || raw != "" {
			t.Fatalf("empty LoadLocation() = %q, %v", raw, err)
		}

		want := "spotdash://dashboard?q=drake"
		if err := repo.SaveLocation(want); err != nil {
			t.Fatal(err)
		}
		if raw, _ := repo.LoadLocation(); raw != want {
			t.Errorf("LoadLocation() = %q, want %q", raw, want)
		}
	})
}

func TestResolutionRepository(t *testing.T) {
	track := models.Resolved{
		Query: `track:"Hotline Bling" artist:"Drake"`,
		Type:  models.SearchTrack,
		Track: &models.Track{
			ID: "t1", Name: "Hotline Bling", URI: "spotify:track:t1", DurationMS: 267000,
			Artists: []models.Artist{{ID: "a1", Name: "Drake"}},
			Album:   models.Album{Name: "Views", Images: []models.Image{{URL: "https://img/1"}}},
		},
	}
	artist := models.Resolved{
		Query:  `artist:"Drake"`,
		Type:   models.SearchArtist,
		Artist: &models.Artist{ID: "a1", Name: "Drake", URI: "spotify:artist:a1"},
	}

	t.Run("miss", func(t *testing.T) {
		repo := NewResolutionRepository(setupTestDB(t))
		if _, err := repo.LookupResolution("track:x|y"); !errors.Is(err, shared.ErrNotFound) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("track round trip", func(t *testing.T) {
		repo := NewResolutionRepository(setupTestDB(t))
		if err := repo.StoreResolution("track:hotline bling|drake", track); err != nil {
			t.Fatal(err)
		}
		got, err := repo.LookupResolution("track:hotline bling|drake")
		if err != nil {
			t.Fatal(err)
		}
		if got.Type != models.SearchTrack || got.Track == nil || got.Artist != nil {
			t.Fatalf("got %+v", got)
		}
		if got.Track.ID != "t1" || got.Track.ImageURL() != "https://img/1" || got.Track.ArtistLine() != "Drake" || got.Query != track.Query {
			t.Errorf("track = %+v", got.Track)
		}
	})

	t.Run("artist overwrite", func(t *testing.T) {
		repo := NewResolutionRepository(setupTestDB(t))
		if err := repo.StoreResolution("artist:|drake", track); err != nil {
			t.Fatal(err)
		}
		if err := repo.StoreResolution("artist:|drake", artist); err != nil {
			t.Fatal(err)
		}
		got, err := repo.LookupResolution("artist:|drake")
		if err != nil || got.Artist == nil || got.Artist.URI != "spotify:artist:a1" || got.Track != nil {
			t.Errorf("got %+v, err %v", got, err)
		}
		if n, _ := repo.Count(); n != 1 {
			t.Errorf("Count() = %d, want 1", n)
		}
	})

	t.Run("empty entity rejected", func(t *testing.T) {
		repo := NewResolutionRepository(setupTestDB(t))
		if err := repo.StoreResolution("k", models.Resolved{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("prune", func(t *testing.T) {
		repo := NewResolutionRepository(setupTestDB(t))
		repo.StoreResolution("a", track)
		repo.StoreResolution("b", artist)

		n, err := repo.Prune(time.Now().Add(time.Hour))
		if err != nil || n != 2 {
			t.Errorf("Prune() = %d, %v", n, err)
		}
		if n, _ := repo.Count(); n != 0 {
			t.Errorf("Count() = %d after prune", n)
		}
	})
}

func TestMutationLogRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("record and list newest first", func(t *testing.T) {
		repo := NewMutationLogRepository(setupTestDB(t))
		base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
		records := []models.MutationRecord{
			{PlaylistID: "p1", Op: models.OpRemove, Requested: 250, Applied: 250, CreatedAt: base},
			{PlaylistID: "p2", Op: models.OpAdd, Requested: 1, Applied: 1, CreatedAt: base.Add(time.Minute)},
			{PlaylistID: "p1", Op: models.OpAdd, Requested: 150, Applied: 100, Error: "boom", CreatedAt: base.Add(2 * time.Minute)},
		}
		for _, rec := range records {
			if err := repo.RecordMutation(ctx, rec); err != nil {
				t.Fatal(err)
			}
		}

		all, err := repo.Recent("", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(all) != 3 || all[0].Error != "boom" || all[0].Op != models.OpAdd || all[0].ID == "" {
			t.Errorf("Recent(all) = %+v", all)
		}

		p1, err := repo.Recent("p1", 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(p1) != 2 || p1[1].Op != models.OpRemove || p1[1].Applied != 250 {
			t.Errorf("Recent(p1) = %+v", p1)
		}

		limited, _ := repo.Recent("", 1)
		if len(limited) != 1 {
			t.Errorf("limit ignored: %d", len(limited))
		}
	})

	t.Run("requires playlist", func(t *testing.T) {
		repo := NewMutationLogRepository(setupTestDB(t))
		if err := repo.RecordMutation(ctx, models.MutationRecord{}); !errors.Is(err, shared.ErrInvalidInput) {
			t.Errorf("err = %v", err)
		}
	})
}

func TestNew(t *testing.T) {
	repos := New(setupTestDB(t))
	if repos.Sessions == nil || repos.Resolutions == nil || repos.Mutations == nil {
		t.Errorf("New() = %+v", repos)
	}
}
