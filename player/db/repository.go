// Package db provides the SQLite-backed local library cache and the
// single cached session.
package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/spotless-music/spotless-go/player"
)

// Repository implements player.AlbumStore, player.ArtistStore and
// player.AuthStore on top of SQLite.
type Repository struct {
	db *gorm.DB

	watchMu  sync.Mutex
	watchers map[int]chan *player.AuthenticatedUser
	nextID   int
}

// NewSQLiteRepository creates a repository backed by SQLite.
func NewSQLiteRepository(dsn string, gormLogger logger.Interface) (*Repository, error) {
	if dsn == "" {
		return nil, fmt.Errorf("dsn required")
	}

	if gormLogger == nil {
		gormLogger = logger.Default.LogMode(logger.Silent)
	}

	dbDir := filepath.Dir(dsn)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		Logger:                 gormLogger,
	})
	if err != nil {
		return nil, err
	}

	if err := applySQLitePragmas(db); err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&AlbumModel{}, &ArtistModel{}, &AuthModel{}); err != nil {
		return nil, err
	}

	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	return &Repository{
		db:       db,
		watchers: make(map[int]chan *player.AuthenticatedUser),
	}, nil
}

// ConfigurePool updates the database connection pool settings.
func (r *Repository) ConfigurePool(maxOpen, maxIdle int, maxLifetime time.Duration) error {
	if r == nil || r.db == nil {
		return errors.New("repository not configured")
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	if maxOpen >= 0 {
		sqlDB.SetMaxOpenConns(maxOpen)
	}
	if maxIdle >= 0 {
		sqlDB.SetMaxIdleConns(maxIdle)
	}
	if maxLifetime >= 0 {
		sqlDB.SetConnMaxLifetime(maxLifetime)
	}
	return nil
}

func applySQLitePragmas(db *gorm.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA cache_size=-64000;",
		"PRAGMA foreign_keys=ON;",
	}
	for _, stmt := range pragmas {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// AlbumByID returns the cached album, or nil when it is not cached.
func (r *Repository) AlbumByID(ctx context.Context, id string) (*player.Album, error) {
	var model AlbumModel
	err := r.db.WithContext(ctx).Where("album_id = ?", id).First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	album := albumToInternal(model)
	return &album, nil
}

// AlbumsByArtist returns the artist's cached albums, newest release first.
func (r *Repository) AlbumsByArtist(ctx context.Context, artistID string) ([]player.Album, error) {
	var models []AlbumModel
	err := r.db.WithContext(ctx).
		Where("artist_id = ?", artistID).
		Order("release_date DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	albums := make([]player.Album, 0, len(models))
	for _, model := range models {
		albums = append(albums, albumToInternal(model))
	}
	return albums, nil
}

// BulkInsertAlbums inserts albums, silently skipping ones already cached.
func (r *Repository) BulkInsertAlbums(ctx context.Context, albums []player.Album) (player.BulkResult, error) {
	if len(albums) == 0 {
		return player.BulkResult{}, nil
	}

	models := make([]AlbumModel, 0, len(albums))
	for _, album := range albums {
		models = append(models, albumToModel(album))
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "album_id"}},
		DoNothing: true,
	}).Create(&models)
	if res.Error != nil {
		return player.BulkResult{}, res.Error
	}

	inserted := int(res.RowsAffected)
	return player.BulkResult{
		Inserted: inserted,
		Skipped:  len(albums) - inserted,
	}, nil
}

// CountAlbums returns the number of cached albums.
func (r *Repository) CountAlbums(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&AlbumModel{}).Count(&count).Error
	return count, err
}

// AlbumsMissingGenres returns up to limit cached albums that have no
// genre data yet, oldest first so the backlog drains in order.
func (r *Repository) AlbumsMissingGenres(ctx context.Context, limit int) ([]player.Album, error) {
	if limit <= 0 {
		limit = 20
	}
	var models []AlbumModel
	err := r.db.WithContext(ctx).
		Where("genres IS NULL OR genres IN ('', 'null', '[]')").
		Order("id ASC").
		Limit(limit).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	albums := make([]player.Album, 0, len(models))
	for _, model := range models {
		albums = append(albums, albumToInternal(model))
	}
	return albums, nil
}

// UpdateAlbumGenres sets the genres of a cached album.
func (r *Repository) UpdateAlbumGenres(ctx context.Context, id string, genres []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var model AlbumModel
		if err := tx.Where("album_id = ?", id).First(&model).Error; err != nil {
			return err
		}
		model.Genres = genres
		return tx.Save(&model).Error
	})
}

// Artists returns all cached followed artists ordered by name.
func (r *Repository) Artists(ctx context.Context) ([]player.Artist, error) {
	var models []ArtistModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		return nil, err
	}
	artists := make([]player.Artist, 0, len(models))
	for _, model := range models {
		artists = append(artists, artistToInternal(model))
	}
	return artists, nil
}

// BulkInsertArtists inserts artists, silently skipping known ones.
func (r *Repository) BulkInsertArtists(ctx context.Context, artists []player.Artist) (player.BulkResult, error) {
	if len(artists) == 0 {
		return player.BulkResult{}, nil
	}

	models := make([]ArtistModel, 0, len(artists))
	for _, artist := range artists {
		models = append(models, artistToModel(artist))
	}

	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "artist_id"}},
		DoNothing: true,
	}).Create(&models)
	if res.Error != nil {
		return player.BulkResult{}, res.Error
	}

	inserted := int(res.RowsAffected)
	return player.BulkResult{
		Inserted: inserted,
		Skipped:  len(artists) - inserted,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("get sql.DB: %w", err)
	}
	return sqlDB.Close()
}
