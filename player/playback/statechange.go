package playback

import (
	"context"
	"strings"

	"github.com/spotless-music/spotless-go/player"
	"github.com/spotless-music/spotless-go/player/queue"
)

// Action is the outcome of reconciling a device snapshot against the
// previous player state.
type Action interface {
	action()
}

// ContinueWithNewState installs the reconciled state and nothing else.
type ContinueWithNewState struct {
	State player.PlayerState
}

// ReplaceWithQueuePlayback installs the reconciled state and then starts
// playback of the next queued album.
type ReplaceWithQueuePlayback struct {
	State player.PlayerState
	Item  player.QueuedAlbum
}

func (ContinueWithNewState) action()     {}
func (ReplaceWithQueuePlayback) action() {}

// reconcile derives the next player state from a device snapshot. When
// the device has stopped at the end of the current context and more
// albums wait in the queue, playback continues from the queue instead.
func (m *Manager) reconcile(ctx context.Context, prev player.PlayerState, snapshot player.DeviceSnapshot) Action {
	currentID := idFromURI(snapshot.Current.URI)

	// The device reports the end of an album as a pause on the same
	// track rewound to position zero. With more than one entry queued
	// that means: advance to the next album.
	if len(prev.Queue) > 1 &&
		prev.CurrentlyPlaying != nil &&
		prev.CurrentlyPlaying.ID == currentID &&
		snapshot.Paused &&
		snapshot.PositionMs == 0 {

		next := prev.Clone()
		next.Queue = next.Queue[1:]
		next.Paused = snapshot.Paused
		next.PositionMs = 0
		return ReplaceWithQueuePlayback{State: next, Item: next.Queue[0]}
	}

	q := m.queueForSnapshot(ctx, prev.Queue, snapshot)

	current := currentlyPlayingFromSnapshot(snapshot, q)
	if current != nil {
		q = queue.MarkPreviouslyPlayed(q, *current)
	}

	next := player.PlayerState{
		CurrentlyPlaying: current,
		Queue:            q,
		Volume:           m.volumeOrDefault(ctx),
		Paused:           snapshot.Paused,
		Shuffle:          snapshot.Shuffle,
		PositionMs:       snapshot.PositionMs,
	}
	return ContinueWithNewState{State: next}
}

// queueForSnapshot seeds an empty queue with the album the device is
// playing, when the local library has it cached.
func (m *Manager) queueForSnapshot(ctx context.Context, q player.Queue, snapshot player.DeviceSnapshot) player.Queue {
	if len(q) > 0 {
		return q.Clone()
	}

	albumID := idFromURI(snapshot.Current.Album.URI)
	if albumID == "" {
		return player.Queue{}
	}

	album, err := m.albums.AlbumByID(ctx, albumID)
	if err != nil {
		m.logger.Warn("queue seed lookup failed", "album_id", albumID, "error", err)
		return player.Queue{}
	}
	if album == nil {
		return player.Queue{}
	}
	return player.Queue{queue.FromAlbum(*album)}
}

// currentlyPlayingFromSnapshot locates the playing track inside the
// queue so the played flags line up; a track outside the queue is still
// reported, just without queue membership.
func currentlyPlayingFromSnapshot(snapshot player.DeviceSnapshot, q player.Queue) *player.CurrentlyPlaying {
	trackID := idFromURI(snapshot.Current.URI)
	if trackID == "" {
		return nil
	}
	albumID := idFromURI(snapshot.Current.Album.URI)

	for _, queued := range q {
		if queued.ID != albumID {
			continue
		}
		for _, track := range queued.TrackList {
			if track.ID == trackID {
				return &player.CurrentlyPlaying{
					QueuedAlbumTrack: track,
					Album:            queued.Ref(),
				}
			}
		}
	}

	return &player.CurrentlyPlaying{
		QueuedAlbumTrack: player.QueuedAlbumTrack{
			Track: player.Track{
				ID:       trackID,
				Name:     snapshot.Current.Name,
				LengthMs: snapshot.Current.DurationMs,
			},
		},
		Album: player.AlbumRef{
			ID:       albumID,
			Name:     snapshot.Current.Album.Name,
			CoverURL: snapshot.Current.Album.CoverURL,
		},
	}
}

// volumeOrDefault reads the device volume as a percentage, falling back
// to 50 when the device cannot report it.
func (m *Manager) volumeOrDefault(ctx context.Context) int {
	v, err := m.device.Volume(ctx)
	if err != nil {
		return 50
	}
	return int(v * 100)
}

// idFromURI extracts the bare id from a provider URI like
// "spotify:track:abc123".
func idFromURI(uri string) string {
	if uri == "" {
		return ""
	}
	parts := strings.Split(uri, ":")
	return parts[len(parts)-1]
}
