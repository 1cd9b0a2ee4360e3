package hydrate

import (
	"context"
	"fmt"
	"time"

	"github.com/spotless-music/spotless-go/player"
)

// GenreSource looks up the genres attributed to an artist.
type GenreSource interface {
	ArtistGenres(ctx context.Context, artistID string) ([]string, error)
}

// GenreStore lists albums awaiting genre data and stores the result.
type GenreStore interface {
	AlbumsMissingGenres(ctx context.Context, limit int) ([]player.Album, error)
	UpdateAlbumGenres(ctx context.Context, id string, genres []string) error
}

// GenreEnrichmentJob backfills album genres from the artist's genre
// list. The provider attaches genres to artists, not albums, so this is
// an approximation filled in after the initial sync.
type GenreEnrichmentJob struct {
	source    GenreSource
	store     GenreStore
	batchSize int
	logger    player.Logger
}

func NewGenreEnrichmentJob(source GenreSource, store GenreStore, batchSize int, logger player.Logger) *GenreEnrichmentJob {
	if batchSize <= 0 {
		batchSize = 20
	}
	return &GenreEnrichmentJob{
		source:    source,
		store:     store,
		batchSize: batchSize,
		logger:    logger.With("job", "genres"),
	}
}

func (j *GenreEnrichmentJob) Name() string            { return "genres" }
func (j *GenreEnrichmentJob) Interval() time.Duration { return 0 }

func (j *GenreEnrichmentJob) Run(ctx context.Context) error {
	albums, err := j.store.AlbumsMissingGenres(ctx, j.batchSize)
	if err != nil {
		return fmt.Errorf("list albums missing genres: %w", err)
	}
	if len(albums) == 0 {
		return nil
	}

	// Artists repeat across albums; fetch each once per run.
	genresByArtist := make(map[string][]string)
	enriched := 0
	for _, album := range albums {
		if album.ArtistID == "" {
			continue
		}
		genres, ok := genresByArtist[album.ArtistID]
		if !ok {
			genres, err = j.source.ArtistGenres(ctx, album.ArtistID)
			if err != nil {
				return fmt.Errorf("fetch genres for artist %s: %w", album.ArtistID, err)
			}
			genresByArtist[album.ArtistID] = genres
		}
		if len(genres) == 0 {
			continue
		}
		if err := j.store.UpdateAlbumGenres(ctx, album.ID, genres); err != nil {
			return fmt.Errorf("store genres for album %s: %w", album.ID, err)
		}
		enriched++
	}

	if enriched > 0 {
		j.logger.Info("album genres enriched", "count", enriched)
	}
	return nil
}
