package player

import "context"

// Logger is the minimal logging abstraction used across modules.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

// Config provides typed access to configuration values.
type Config interface {
	GetString(key string) string
	GetInt(key string) int
	GetBool(key string) bool
	GetFloat64(key string) float64
}

// BulkResult reports the outcome of a duplicate-tolerant bulk insert.
// Skipped rows are a normal outcome, not an error.
type BulkResult struct {
	Inserted int
	Skipped  int
}

// AlbumStore defines local storage operations for cached albums.
type AlbumStore interface {
	// AlbumByID returns the cached album, or nil when it is not cached.
	AlbumByID(ctx context.Context, id string) (*Album, error)
	// AlbumsByArtist returns all cached albums for the artist ordered by
	// release date descending (newest first).
	AlbumsByArtist(ctx context.Context, artistID string) ([]Album, error)
	BulkInsertAlbums(ctx context.Context, albums []Album) (BulkResult, error)
	CountAlbums(ctx context.Context) (int64, error)
	UpdateAlbumGenres(ctx context.Context, id string, genres []string) error
}

// ArtistStore defines local storage operations for followed artists.
type ArtistStore interface {
	Artists(ctx context.Context) ([]Artist, error)
	BulkInsertArtists(ctx context.Context, artists []Artist) (BulkResult, error)
}

// AuthStore holds the single cached session.
type AuthStore interface {
	// CachedUser returns the cached session, or nil when unauthenticated.
	CachedUser(ctx context.Context) (*AuthenticatedUser, error)
	SaveUser(ctx context.Context, user *AuthenticatedUser) error
	DeleteUser(ctx context.Context) error
	// WatchAuth emits the current session immediately and again after
	// every save or delete, until ctx is cancelled. A nil value means
	// unauthenticated.
	WatchAuth(ctx context.Context) <-chan *AuthenticatedUser
}

// RemotePlayback is the global playback snapshot from the remote API,
// used to decide whether another device is actively playing.
type RemotePlayback struct {
	Playing  bool
	DeviceID string
}

// PlayerAPI covers the remote player endpoints.
type PlayerAPI interface {
	// Play starts album playback from the top on the given device.
	Play(ctx context.Context, albumID, deviceID string) error
	// TransferPlayback selects the device as the active output.
	TransferPlayback(ctx context.Context, deviceID string) error
	SetShuffle(ctx context.Context, deviceID string, on bool) error
	SetRepeat(ctx context.Context, deviceID, state string) error
	// CurrentPlayback returns nil when there is no active playback.
	CurrentPlayback(ctx context.Context) (*RemotePlayback, error)
}

// LibraryAPI covers the paginated library endpoints. Implementations
// invoke fn once per fetched page and stop on the first error.
type LibraryAPI interface {
	SavedAlbums(ctx context.Context, fn func(page []Album) error) error
	FollowedArtists(ctx context.Context, fn func(page []Artist) error) error
}

// WorkerPool limits concurrency for background tasks.
type WorkerPool interface {
	Submit(task func()) error
	Shutdown(ctx context.Context) error
	Size() int
}
