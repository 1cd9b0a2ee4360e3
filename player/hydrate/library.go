package hydrate

import (
	"context"
	"fmt"
	"time"

	"github.com/spotless-music/spotless-go/player"
)

// LibraryHydrationJob mirrors the user's saved albums and followed
// artists into the local store. Albums already cached are skipped, so a
// run is cheap when nothing changed.
type LibraryHydrationJob struct {
	library player.LibraryAPI
	albums  player.AlbumStore
	artists player.ArtistStore
	logger  player.Logger
}

func NewLibraryHydrationJob(library player.LibraryAPI, albums player.AlbumStore, artists player.ArtistStore, logger player.Logger) *LibraryHydrationJob {
	return &LibraryHydrationJob{
		library: library,
		albums:  albums,
		artists: artists,
		logger:  logger.With("job", "library"),
	}
}

func (j *LibraryHydrationJob) Name() string            { return "library" }
func (j *LibraryHydrationJob) Interval() time.Duration { return 0 }

func (j *LibraryHydrationJob) Run(ctx context.Context) error {
	var albumResult player.BulkResult
	err := j.library.SavedAlbums(ctx, func(page []player.Album) error {
		res, err := j.albums.BulkInsertAlbums(ctx, page)
		if err != nil {
			return fmt.Errorf("store album page: %w", err)
		}
		albumResult.Inserted += res.Inserted
		albumResult.Skipped += res.Skipped
		return nil
	})
	if err != nil {
		return fmt.Errorf("sync saved albums: %w", err)
	}

	var artistResult player.BulkResult
	err = j.library.FollowedArtists(ctx, func(page []player.Artist) error {
		res, err := j.artists.BulkInsertArtists(ctx, page)
		if err != nil {
			return fmt.Errorf("store artist page: %w", err)
		}
		artistResult.Inserted += res.Inserted
		artistResult.Skipped += res.Skipped
		return nil
	})
	if err != nil {
		return fmt.Errorf("sync followed artists: %w", err)
	}

	j.logger.Info("library synced",
		"albums_new", albumResult.Inserted, "albums_known", albumResult.Skipped,
		"artists_new", artistResult.Inserted, "artists_known", artistResult.Skipped)
	return nil
}
