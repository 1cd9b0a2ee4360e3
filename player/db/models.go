package db

import (
	"time"

	"gorm.io/gorm"

	"github.com/spotless-music/spotless-go/player"
)

// AlbumModel mirrors the albums schema. The track list and genres are
// stored as JSON; albums are read back in full, never per-track.
type AlbumModel struct {
	gorm.Model
	AlbumID     string `gorm:"uniqueIndex;not null"`
	Name        string
	ArtistName  string
	ArtistID    string `gorm:"index"`
	CoverURL    string
	AddedAt     time.Time
	ReleaseDate time.Time `gorm:"index"`
	Genres      []string  `gorm:"serializer:json"`
	AlbumType   string
	TotalTracks int
	DurationMin int
	TrackList   []player.Track `gorm:"serializer:json"`
}

func (AlbumModel) TableName() string {
	return "albums"
}

// ArtistModel mirrors the artists schema for followed artists.
type ArtistModel struct {
	gorm.Model
	ArtistID string `gorm:"uniqueIndex;not null"`
	Name     string
	ImageURL string
}

func (ArtistModel) TableName() string {
	return "artists"
}

// AuthModel stores the single cached session under a fixed key.
type AuthModel struct {
	gorm.Model
	Key                 string `gorm:"uniqueIndex;not null"`
	AccessToken         string
	TokenType           string
	Scope               string
	RefreshToken        string
	ExpirationTimestamp int64
}

func (AuthModel) TableName() string {
	return "auth_sessions"
}

const authKey = "current"

func albumToInternal(model AlbumModel) player.Album {
	return player.Album{
		ID:          model.AlbumID,
		Name:        model.Name,
		ArtistName:  model.ArtistName,
		ArtistID:    model.ArtistID,
		CoverURL:    model.CoverURL,
		AddedAt:     model.AddedAt,
		ReleaseDate: model.ReleaseDate,
		Genres:      model.Genres,
		Type:        player.AlbumType(model.AlbumType),
		TotalTracks: model.TotalTracks,
		DurationMin: model.DurationMin,
		TrackList:   model.TrackList,
	}
}

func albumToModel(album player.Album) AlbumModel {
	return AlbumModel{
		AlbumID:     album.ID,
		Name:        album.Name,
		ArtistName:  album.ArtistName,
		ArtistID:    album.ArtistID,
		CoverURL:    album.CoverURL,
		AddedAt:     album.AddedAt,
		ReleaseDate: album.ReleaseDate,
		Genres:      album.Genres,
		AlbumType:   string(album.Type),
		TotalTracks: album.TotalTracks,
		DurationMin: album.DurationMin,
		TrackList:   album.TrackList,
	}
}

func artistToInternal(model ArtistModel) player.Artist {
	return player.Artist{
		ID:       model.ArtistID,
		Name:     model.Name,
		ImageURL: model.ImageURL,
	}
}

func artistToModel(artist player.Artist) ArtistModel {
	return ArtistModel{
		ArtistID: artist.ID,
		Name:     artist.Name,
		ImageURL: artist.ImageURL,
	}
}

func authToInternal(model AuthModel) *player.AuthenticatedUser {
	return &player.AuthenticatedUser{
		AccessToken:         model.AccessToken,
		TokenType:           model.TokenType,
		Scope:               model.Scope,
		RefreshToken:        model.RefreshToken,
		ExpirationTimestamp: model.ExpirationTimestamp,
	}
}
