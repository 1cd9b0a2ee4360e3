package spotify

import (
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/spotless-music/spotless-go/player"
)

func albumFromSaved(saved spotify.SavedAlbum) player.Album {
	tracks := make([]player.Track, 0, len(saved.Tracks.Tracks))
	totalMs := 0
	for _, t := range saved.Tracks.Tracks {
		totalMs += int(t.Duration)
		tracks = append(tracks, player.Track{
			ID:          t.ID.String(),
			Name:        t.Name,
			TrackNumber: int(t.TrackNumber),
			LengthMs:    int(t.Duration),
		})
	}

	addedAt, _ := time.Parse(time.RFC3339, saved.AddedAt)
	durationMin := totalMs / 60_000

	album := player.Album{
		ID:          saved.ID.String(),
		Name:        saved.Name,
		CoverURL:    coverURL(saved.Images),
		AddedAt:     addedAt,
		ReleaseDate: saved.ReleaseDateTime(),
		Genres:      saved.Genres,
		Type:        player.DeriveAlbumType(len(tracks), durationMin),
		TotalTracks: len(tracks),
		DurationMin: durationMin,
		TrackList:   tracks,
	}
	if len(saved.Artists) > 0 {
		album.ArtistName = saved.Artists[0].Name
		album.ArtistID = saved.Artists[0].ID.String()
	}
	return album
}

func artistFromFull(full spotify.FullArtist) player.Artist {
	return player.Artist{
		ID:       full.ID.String(),
		Name:     full.Name,
		ImageURL: coverURL(full.Images),
	}
}

func coverURL(images []spotify.Image) string {
	if len(images) == 0 {
		return ""
	}
	return images[0].URL
}
