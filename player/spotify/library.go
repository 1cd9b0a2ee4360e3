package spotify

import (
	"context"
	"errors"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/spotless-music/spotless-go/player"
)

// SavedAlbums streams the user's saved albums page by page, invoking fn
// once per page. The first fn error stops the walk.
func (c *Client) SavedAlbums(ctx context.Context, fn func(page []player.Album) error) error {
	var page *spotify.SavedAlbumPage
	err := c.execute(ctx, func() error {
		var err error
		page, err = c.api.CurrentUsersAlbums(ctx, spotify.Limit(c.pageSize))
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch saved albums: %w", err)
	}

	fetched := 0
	for {
		albums := make([]player.Album, 0, len(page.Albums))
		for _, saved := range page.Albums {
			albums = append(albums, albumFromSaved(saved))
		}
		fetched += len(albums)
		if err := fn(albums); err != nil {
			return err
		}

		// End of pagination must not count as a breaker failure.
		done := false
		err := c.execute(ctx, func() error {
			if err := c.api.NextPage(ctx, page); err != nil {
				if errors.Is(err, spotify.ErrNoMorePages) {
					done = true
					return nil
				}
				return err
			}
			return nil
		})
		if err != nil {
			return fmt.Errorf("fetch next album page: %w", err)
		}
		if done {
			break
		}
	}

	c.logger.Debug("saved albums fetched", "count", fetched)
	return nil
}

// FollowedArtists streams the user's followed artists page by page.
func (c *Client) FollowedArtists(ctx context.Context, fn func(page []player.Artist) error) error {
	after := ""
	fetched := 0
	for {
		opts := []spotify.RequestOption{spotify.Limit(c.pageSize)}
		if after != "" {
			opts = append(opts, spotify.After(after))
		}

		var page *spotify.FullArtistCursorPage
		err := c.execute(ctx, func() error {
			var err error
			page, err = c.api.CurrentUsersFollowedArtists(ctx, opts...)
			return err
		})
		if err != nil {
			return fmt.Errorf("fetch followed artists: %w", err)
		}

		artists := make([]player.Artist, 0, len(page.Artists))
		for _, full := range page.Artists {
			artists = append(artists, artistFromFull(full))
		}
		fetched += len(artists)
		if err := fn(artists); err != nil {
			return err
		}

		if page.Cursor.After == "" || len(page.Artists) == 0 {
			break
		}
		after = page.Cursor.After
	}

	c.logger.Debug("followed artists fetched", "count", fetched)
	return nil
}

// ArtistGenres returns the genres the provider attributes to an artist.
func (c *Client) ArtistGenres(ctx context.Context, artistID string) ([]string, error) {
	var artist *spotify.FullArtist
	err := c.execute(ctx, func() error {
		var err error
		artist, err = c.api.GetArtist(ctx, spotify.ID(artistID))
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch artist %s: %w", artistID, err)
	}
	return artist.Genres, nil
}
