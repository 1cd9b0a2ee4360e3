package db

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/gorm/logger"

	"github.com/spotless-music/spotless-go/player"
	logpkg "github.com/spotless-music/spotless-go/player/logger"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()

	base := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	gormLogger := logpkg.NewDBLogger(base, logger.Silent)

	repo, err := NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), gormLogger)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func testAlbums(ids ...string) []player.Album {
	albums := make([]player.Album, 0, len(ids))
	for i, id := range ids {
		albums = append(albums, player.Album{
			ID:          id,
			Name:        "album " + id,
			ArtistName:  "artist",
			ArtistID:    "ar-1",
			ReleaseDate: time.Date(2020+i, 1, 1, 0, 0, 0, 0, time.UTC),
			Type:        player.AlbumTypeAlbum,
			TotalTracks: 2,
			TrackList: []player.Track{
				{ID: id + "-t1", Name: "one", TrackNumber: 1, LengthMs: 200_000},
				{ID: id + "-t2", Name: "two", TrackNumber: 2, LengthMs: 210_000},
			},
		})
	}
	return albums
}

func TestAlbumRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	count, err := repo.CountAlbums(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 0 {
		t.Fatal("expected empty db")
	}

	res, err := repo.BulkInsertAlbums(ctx, testAlbums("al-1", "al-2"))
	if err != nil {
		t.Fatalf("bulk insert: %v", err)
	}
	if res.Inserted != 2 || res.Skipped != 0 {
		t.Fatalf("unexpected result: %+v", res)
	}

	album, err := repo.AlbumByID(ctx, "al-1")
	if err != nil {
		t.Fatalf("album by id: %v", err)
	}
	if album == nil {
		t.Fatal("expected cached album")
	}
	if len(album.TrackList) != 2 || album.TrackList[0].ID != "al-1-t1" {
		t.Fatalf("track list not persisted: %+v", album.TrackList)
	}

	missing, err := repo.AlbumByID(ctx, "absent")
	if err != nil {
		t.Fatalf("album by id: %v", err)
	}
	if missing != nil {
		t.Fatal("expected nil for uncached album")
	}
}

func TestBulkInsertSkipsDuplicates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.BulkInsertAlbums(ctx, testAlbums("al-1", "al-2")); err != nil {
		t.Fatalf("first insert: %v", err)
	}

	res, err := repo.BulkInsertAlbums(ctx, testAlbums("al-2", "al-3"))
	if err != nil {
		t.Fatalf("second insert: %v", err)
	}
	if res.Inserted != 1 || res.Skipped != 1 {
		t.Fatalf("expected 1 inserted 1 skipped, got %+v", res)
	}

	count, err := repo.CountAlbums(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 albums, got %d", count)
	}
}

func TestAlbumsByArtistNewestFirst(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Release years ascend with insertion order: al-1 2020, al-2 2021, al-3 2022.
	if _, err := repo.BulkInsertAlbums(ctx, testAlbums("al-1", "al-2", "al-3")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	albums, err := repo.AlbumsByArtist(ctx, "ar-1")
	if err != nil {
		t.Fatalf("albums by artist: %v", err)
	}
	if len(albums) != 3 {
		t.Fatalf("expected 3 albums, got %d", len(albums))
	}
	if albums[0].ID != "al-3" || albums[2].ID != "al-1" {
		t.Fatalf("expected newest first, got %s..%s", albums[0].ID, albums[2].ID)
	}
}

func TestUpdateAlbumGenres(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.BulkInsertAlbums(ctx, testAlbums("al-1")); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if err := repo.UpdateAlbumGenres(ctx, "al-1", []string{"shoegaze", "dream pop"}); err != nil {
		t.Fatalf("update genres: %v", err)
	}

	album, err := repo.AlbumByID(ctx, "al-1")
	if err != nil {
		t.Fatalf("album by id: %v", err)
	}
	if len(album.Genres) != 2 || album.Genres[0] != "shoegaze" {
		t.Fatalf("genres not persisted: %v", album.Genres)
	}
}

func TestArtistRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	res, err := repo.BulkInsertArtists(ctx, []player.Artist{
		{ID: "ar-1", Name: "beach house"},
		{ID: "ar-2", Name: "alvvays"},
	})
	if err != nil {
		t.Fatalf("bulk insert: %v", err)
	}
	if res.Inserted != 2 {
		t.Fatalf("unexpected result: %+v", res)
	}

	res, err = repo.BulkInsertArtists(ctx, []player.Artist{{ID: "ar-1", Name: "beach house"}})
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if res.Inserted != 0 || res.Skipped != 1 {
		t.Fatalf("expected duplicate skipped, got %+v", res)
	}

	artists, err := repo.Artists(ctx)
	if err != nil {
		t.Fatalf("artists: %v", err)
	}
	if len(artists) != 2 || artists[0].Name != "alvvays" {
		t.Fatalf("expected name ordering, got %+v", artists)
	}
}

func TestAuthSessionLifecycle(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	user, err := repo.CachedUser(ctx)
	if err != nil {
		t.Fatalf("cached user: %v", err)
	}
	if user != nil {
		t.Fatal("expected no session initially")
	}

	saved := &player.AuthenticatedUser{
		AccessToken:         "access-1",
		RefreshToken:        "refresh-1",
		ExpirationTimestamp: time.Now().Add(time.Hour).UnixMilli(),
	}
	if err := repo.SaveUser(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}

	user, err = repo.CachedUser(ctx)
	if err != nil {
		t.Fatalf("cached user: %v", err)
	}
	if user == nil || user.AccessToken != "access-1" {
		t.Fatalf("unexpected session: %+v", user)
	}

	// A second save replaces the single record rather than adding one.
	saved.AccessToken = "access-2"
	if err := repo.SaveUser(ctx, saved); err != nil {
		t.Fatalf("second save: %v", err)
	}
	user, _ = repo.CachedUser(ctx)
	if user.AccessToken != "access-2" {
		t.Fatalf("expected replaced session, got %s", user.AccessToken)
	}

	if err := repo.DeleteUser(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	user, _ = repo.CachedUser(ctx)
	if user != nil {
		t.Fatal("expected session cleared")
	}
}

func TestWatchAuthEmitsOnChange(t *testing.T) {
	repo := newTestRepo(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := repo.WatchAuth(ctx)

	select {
	case user := <-ch:
		if user != nil {
			t.Fatalf("expected initial nil, got %+v", user)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial emission")
	}

	if err := repo.SaveUser(ctx, &player.AuthenticatedUser{AccessToken: "a"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	select {
	case user := <-ch:
		if user == nil || user.AccessToken != "a" {
			t.Fatalf("unexpected emission: %+v", user)
		}
	case <-time.After(time.Second):
		t.Fatal("no emission after save")
	}

	if err := repo.DeleteUser(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}

	select {
	case user := <-ch:
		if user != nil {
			t.Fatalf("expected nil after delete, got %+v", user)
		}
	case <-time.After(time.Second):
		t.Fatal("no emission after delete")
	}
}
