package hydrate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spotless-music/spotless-go/player"
)

type fakeRefresher struct {
	calls int
	err   error
}

func (r *fakeRefresher) Refresh(ctx context.Context) (*player.AuthenticatedUser, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return authedUser(), nil
}

func userExpiringIn(d time.Duration) *player.AuthenticatedUser {
	return &player.AuthenticatedUser{
		AccessToken:         "access",
		RefreshToken:        "refresh",
		ExpirationTimestamp: time.Now().Add(d).UnixMilli(),
	}
}

func TestTokenRefreshSkipsFreshToken(t *testing.T) {
	auth := &fakeAuth{user: userExpiringIn(time.Hour)}
	refresher := &fakeRefresher{}
	job := NewTokenRefreshJob(auth, refresher, noopLogger{})

	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, refresher.calls)
}

func TestTokenRefreshRefreshesNearExpiry(t *testing.T) {
	auth := &fakeAuth{user: userExpiringIn(100 * time.Second)}
	refresher := &fakeRefresher{}
	job := NewTokenRefreshJob(auth, refresher, noopLogger{})

	require.NoError(t, job.Run(context.Background()))
	assert.Equal(t, 1, refresher.calls)
}

func TestTokenRefreshSkipsWhenLoggedOut(t *testing.T) {
	auth := &fakeAuth{}
	refresher := &fakeRefresher{}
	job := NewTokenRefreshJob(auth, refresher, noopLogger{})

	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, refresher.calls)
}

func TestTokenRefreshFailureKeepsSession(t *testing.T) {
	user := userExpiringIn(100 * time.Second)
	auth := &fakeAuth{user: user}
	refresher := &fakeRefresher{err: errors.New("provider down")}
	job := NewTokenRefreshJob(auth, refresher, noopLogger{})

	err := job.Run(context.Background())
	require.Error(t, err)

	cached, _ := auth.CachedUser(context.Background())
	assert.Same(t, user, cached, "a failed refresh must not drop the session")
}

type fakeLibrary struct {
	albumPages  [][]player.Album
	artistPages [][]player.Artist
}

func (l *fakeLibrary) SavedAlbums(ctx context.Context, fn func(page []player.Album) error) error {
	for _, page := range l.albumPages {
		if err := fn(page); err != nil {
			return err
		}
	}
	return nil
}

func (l *fakeLibrary) FollowedArtists(ctx context.Context, fn func(page []player.Artist) error) error {
	for _, page := range l.artistPages {
		if err := fn(page); err != nil {
			return err
		}
	}
	return nil
}

type fakeLibraryStore struct {
	albums  map[string]player.Album
	artists map[string]player.Artist
}

func newFakeLibraryStore() *fakeLibraryStore {
	return &fakeLibraryStore{
		albums:  make(map[string]player.Album),
		artists: make(map[string]player.Artist),
	}
}

func (s *fakeLibraryStore) AlbumByID(ctx context.Context, id string) (*player.Album, error) {
	return nil, nil
}

func (s *fakeLibraryStore) AlbumsByArtist(ctx context.Context, artistID string) ([]player.Album, error) {
	return nil, nil
}

func (s *fakeLibraryStore) BulkInsertAlbums(ctx context.Context, albums []player.Album) (player.BulkResult, error) {
	var res player.BulkResult
	for _, album := range albums {
		if _, ok := s.albums[album.ID]; ok {
			res.Skipped++
			continue
		}
		s.albums[album.ID] = album
		res.Inserted++
	}
	return res, nil
}

func (s *fakeLibraryStore) CountAlbums(ctx context.Context) (int64, error) {
	return int64(len(s.albums)), nil
}

func (s *fakeLibraryStore) UpdateAlbumGenres(ctx context.Context, id string, genres []string) error {
	album := s.albums[id]
	album.Genres = genres
	s.albums[id] = album
	return nil
}

func (s *fakeLibraryStore) Artists(ctx context.Context) ([]player.Artist, error) {
	return nil, nil
}

func (s *fakeLibraryStore) BulkInsertArtists(ctx context.Context, artists []player.Artist) (player.BulkResult, error) {
	var res player.BulkResult
	for _, artist := range artists {
		if _, ok := s.artists[artist.ID]; ok {
			res.Skipped++
			continue
		}
		s.artists[artist.ID] = artist
		res.Inserted++
	}
	return res, nil
}

func TestLibraryHydrationStoresAllPages(t *testing.T) {
	library := &fakeLibrary{
		albumPages: [][]player.Album{
			{{ID: "a1"}, {ID: "a2"}},
			{{ID: "a3"}},
		},
		artistPages: [][]player.Artist{
			{{ID: "ar1"}, {ID: "ar2"}},
		},
	}
	store := newFakeLibraryStore()
	job := NewLibraryHydrationJob(library, store, store, noopLogger{})

	require.NoError(t, job.Run(context.Background()))

	assert.Len(t, store.albums, 3)
	assert.Len(t, store.artists, 2)
}

func TestLibraryHydrationTreatsDuplicatesAsNormal(t *testing.T) {
	library := &fakeLibrary{
		albumPages: [][]player.Album{{{ID: "a1"}, {ID: "a2"}}},
	}
	store := newFakeLibraryStore()
	job := NewLibraryHydrationJob(library, store, store, noopLogger{})

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()), "a rerun over known albums must not fail")
	assert.Len(t, store.albums, 2)
}

type fakeGenreSource struct {
	genres map[string][]string
	calls  int
}

func (g *fakeGenreSource) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	g.calls++
	return g.genres[artistID], nil
}

type fakeGenreStore struct {
	missing []player.Album
	updated map[string][]string
}

func (s *fakeGenreStore) AlbumsMissingGenres(ctx context.Context, limit int) ([]player.Album, error) {
	if len(s.missing) > limit {
		return s.missing[:limit], nil
	}
	return s.missing, nil
}

func (s *fakeGenreStore) UpdateAlbumGenres(ctx context.Context, id string, genres []string) error {
	if s.updated == nil {
		s.updated = make(map[string][]string)
	}
	s.updated[id] = genres
	return nil
}

func TestGenreEnrichmentFetchesEachArtistOnce(t *testing.T) {
	source := &fakeGenreSource{genres: map[string][]string{
		"ar1": {"dream pop"},
	}}
	store := &fakeGenreStore{missing: []player.Album{
		{ID: "a1", ArtistID: "ar1"},
		{ID: "a2", ArtistID: "ar1"},
	}}
	job := NewGenreEnrichmentJob(source, store, 10, noopLogger{})

	require.NoError(t, job.Run(context.Background()))

	assert.Equal(t, 1, source.calls)
	assert.Equal(t, []string{"dream pop"}, store.updated["a1"])
	assert.Equal(t, []string{"dream pop"}, store.updated["a2"])
}

func TestGenreEnrichmentSkipsArtistsWithoutGenres(t *testing.T) {
	source := &fakeGenreSource{genres: map[string][]string{}}
	store := &fakeGenreStore{missing: []player.Album{{ID: "a1", ArtistID: "ar1"}}}
	job := NewGenreEnrichmentJob(source, store, 10, noopLogger{})

	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, store.updated)
}
