package playback

import (
	"context"
	"fmt"

	"github.com/spotless-music/spotless-go/player"
	"github.com/spotless-music/spotless-go/player/queue"
)

// Play starts album playback from the top. With overrideQueue the queue
// is replaced by this album alone; without it the queue is left as-is,
// which is how queue continuation advances without clobbering the tail.
// While disconnected this is a silent no-op.
func (m *Manager) Play(ctx context.Context, albumID string, overrideQueue bool) error {
	deviceID, ok := m.connectedDevice()
	if !ok {
		m.logger.Debug("play requested while disconnected", "album_id", albumID)
		return nil
	}

	if err := m.api.Play(ctx, albumID, deviceID); err != nil {
		return fmt.Errorf("start album playback: %w", err)
	}
	if err := m.device.Resume(ctx); err != nil {
		m.logger.Warn("resume after play failed", "error", err)
	}

	if !overrideQueue {
		return nil
	}

	album, err := m.albums.AlbumByID(ctx, albumID)
	if err != nil {
		return fmt.Errorf("load album %s: %w", albumID, err)
	}
	if album == nil {
		m.logger.Warn("played album not in local library", "album_id", albumID)
		m.store.SetQueue(player.Queue{})
		return nil
	}
	m.store.SetQueue(player.Queue{queue.FromAlbum(*album)})
	return nil
}

// PlayMultiple plays the first album and queues the rest. The tail is
// queued even when starting the first album fails, so the user's pick
// survives a transient playback error.
func (m *Manager) PlayMultiple(ctx context.Context, albums []player.Album) error {
	if len(albums) == 0 {
		return nil
	}

	playErr := m.Play(ctx, albums[0].ID, true)

	if len(albums) > 1 {
		tail := make([]player.QueuedAlbum, 0, len(albums)-1)
		for _, album := range albums[1:] {
			tail = append(tail, queue.FromAlbum(album))
		}
		m.store.AppendQueue(tail...)
	}

	return playErr
}

// Enqueue appends albums to the queue without touching playback.
func (m *Manager) Enqueue(albums ...player.Album) {
	if len(albums) == 0 {
		return
	}
	queued := make([]player.QueuedAlbum, 0, len(albums))
	for _, album := range albums {
		queued = append(queued, queue.FromAlbum(album))
	}
	m.store.AppendQueue(queued...)
}

// ClearQueue drops every queue entry except the one currently playing.
func (m *Manager) ClearQueue() {
	current := m.store.Snapshot().Queue
	m.store.SetQueue(queue.Clear(current))
}

// ShuffleAlbums plays the given albums in random order.
func (m *Manager) ShuffleAlbums(ctx context.Context, albums []player.Album) error {
	return m.PlayMultiple(ctx, queue.Shuffle(albums))
}

// PlayArtistDiscography plays every cached album by the artist in the
// requested order.
func (m *Manager) PlayArtistDiscography(ctx context.Context, artistID string, mode player.DiscographyMode) error {
	albums, err := m.albums.AlbumsByArtist(ctx, artistID)
	if err != nil {
		return fmt.Errorf("load discography for %s: %w", artistID, err)
	}
	if len(albums) == 0 {
		m.logger.Info("no cached albums for artist", "artist_id", artistID)
		return nil
	}

	switch mode {
	case player.FromOldest:
		for i, j := 0, len(albums)-1; i < j; i, j = i+1, j-1 {
			albums[i], albums[j] = albums[j], albums[i]
		}
	case player.Shuffled:
		albums = queue.Shuffle(albums)
	}

	return m.PlayMultiple(ctx, albums)
}

// SetShuffle toggles shuffle on the device and records it in the state.
// While disconnected this is a silent no-op.
func (m *Manager) SetShuffle(ctx context.Context, on bool) error {
	deviceID, ok := m.connectedDevice()
	if !ok {
		m.logger.Debug("shuffle requested while disconnected")
		return nil
	}

	if err := m.api.SetShuffle(ctx, deviceID, on); err != nil {
		return fmt.Errorf("set shuffle: %w", err)
	}
	m.store.Update(func(st *player.PlayerState) {
		st.Shuffle = on
	})
	return nil
}

// Resume continues playback on the device; a no-op while disconnected.
func (m *Manager) Resume(ctx context.Context) error {
	return m.deviceCommand(ctx, "resume", m.device.Resume)
}

// Pause pauses playback; a no-op while disconnected.
func (m *Manager) Pause(ctx context.Context) error {
	return m.deviceCommand(ctx, "pause", m.device.Pause)
}

// TogglePlay flips between playing and paused; a no-op while
// disconnected.
func (m *Manager) TogglePlay(ctx context.Context) error {
	return m.deviceCommand(ctx, "toggle", m.device.TogglePlay)
}

// SetVolume sets the device volume from a percentage and records it in
// the state.
func (m *Manager) SetVolume(ctx context.Context, percent int) error {
	if _, ok := m.connectedDevice(); !ok {
		m.logger.Debug("volume change requested while disconnected")
		return nil
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	if err := m.device.SetVolume(ctx, float64(percent)/100); err != nil {
		return fmt.Errorf("set volume: %w", err)
	}
	m.store.Update(func(st *player.PlayerState) {
		st.Volume = percent
	})
	return nil
}

func (m *Manager) deviceCommand(ctx context.Context, name string, fn func(context.Context) error) error {
	if _, ok := m.connectedDevice(); !ok {
		m.logger.Debug("device command while disconnected", "command", name)
		return nil
	}
	if err := fn(ctx); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return nil
}
