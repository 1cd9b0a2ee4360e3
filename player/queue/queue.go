// Package queue holds the pure derivation functions for the play queue.
// Nothing here performs I/O; callers pass data in and get new values
// back, inputs are never mutated.
package queue

import (
	"math/rand"

	"github.com/spotless-music/spotless-go/player"
)

// FromAlbum projects an album into the queue with every track unplayed.
func FromAlbum(album player.Album) player.QueuedAlbum {
	tracks := make([]player.QueuedAlbumTrack, len(album.TrackList))
	for i, track := range album.TrackList {
		tracks[i] = player.QueuedAlbumTrack{Track: track}
	}
	return player.QueuedAlbum{
		ID:         album.ID,
		Name:       album.Name,
		ArtistName: album.ArtistName,
		CoverURL:   album.CoverURL,
		TrackList:  tracks,
	}
}

// MarkPreviouslyPlayed flags everything before the currently playing
// item as played: albums strictly before the playing album at album
// granularity, tracks strictly before the playing track within it.
// Entries after the playing item are left untouched. When the playing
// album is not present in the queue the queue is returned unchanged.
// The result is a new queue; the input is not mutated.
func MarkPreviouslyPlayed(q player.Queue, current player.CurrentlyPlaying) player.Queue {
	out := q.Clone()

	albumIndex := -1
	for i := range out {
		if out[i].ID == current.Album.ID {
			albumIndex = i
			break
		}
	}
	if albumIndex < 0 {
		return out
	}

	for i := range out[:albumIndex] {
		out[i].Played = true
	}

	trackIndex := -1
	tracks := out[albumIndex].TrackList
	for i := range tracks {
		if tracks[i].ID == current.ID {
			trackIndex = i
			break
		}
	}
	for i := range tracks {
		tracks[i].Played = i < trackIndex
	}

	return out
}

// Shuffle returns a uniformly random permutation of the given albums
// without mutating the input.
func Shuffle(albums []player.Album) []player.Album {
	out := make([]player.Album, len(albums))
	copy(out, albums)
	rand.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	return out
}

// Append adds items to the end of the queue, never reordering existing
// entries.
func Append(q player.Queue, items ...player.QueuedAlbum) player.Queue {
	out := make(player.Queue, 0, len(q)+len(items))
	out = append(out, q...)
	out = append(out, items...)
	return out
}

// Clear truncates the queue to at most its first element, so whatever
// is currently playing keeps its queue entry.
func Clear(q player.Queue) player.Queue {
	if len(q) == 0 {
		return player.Queue{}
	}
	return q.Clone()[:1]
}
