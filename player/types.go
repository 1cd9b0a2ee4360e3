package player

import "time"

// Track is an immutable track as ingested from the remote library API.
type Track struct {
	ID          string
	Name        string
	TrackNumber int
	LengthMs    int
}

// AlbumType classifies a release by its size. It is derived once at
// ingestion time and never recomputed.
type AlbumType string

const (
	AlbumTypeAlbum  AlbumType = "album"
	AlbumTypeEP     AlbumType = "ep"
	AlbumTypeSingle AlbumType = "single"
)

// DeriveAlbumType classifies a release from its track count and total
// duration: anything of 30 minutes or more is an album, shorter releases
// with more than one track are EPs, the rest are singles.
func DeriveAlbumType(trackCount, durationMin int) AlbumType {
	if durationMin >= 30 {
		return AlbumTypeAlbum
	}
	if trackCount > 1 {
		return AlbumTypeEP
	}
	return AlbumTypeSingle
}

// Album is a library album with its full ordered track list. Genres start
// empty and are filled in asynchronously by the enrichment pipeline.
type Album struct {
	ID          string
	Name        string
	ArtistName  string
	ArtistID    string
	CoverURL    string
	AddedAt     time.Time
	ReleaseDate time.Time
	Genres      []string
	Type        AlbumType
	TotalTracks int
	DurationMin int
	TrackList   []Track
}

// Artist is a followed artist from the user's library.
type Artist struct {
	ID       string
	Name     string
	ImageURL string
}

// QueuedAlbumTrack is a track inside the play queue with its played flag.
type QueuedAlbumTrack struct {
	Track
	Played bool
}

// AlbumRef identifies the album a queued track belongs to without
// carrying the track list, so CurrentlyPlaying holds no cycles.
type AlbumRef struct {
	ID         string
	Name       string
	ArtistName string
	CoverURL   string
	Played     bool
}

// QueuedAlbum is an album projected into the play queue.
type QueuedAlbum struct {
	ID         string
	Name       string
	ArtistName string
	CoverURL   string
	Played     bool
	TrackList  []QueuedAlbumTrack
}

// Ref returns the album header without its track list.
func (a QueuedAlbum) Ref() AlbumRef {
	return AlbumRef{
		ID:         a.ID,
		Name:       a.Name,
		ArtistName: a.ArtistName,
		CoverURL:   a.CoverURL,
		Played:     a.Played,
	}
}

// Queue is the ordered list of albums the player intends to play next.
// Insertion order is play order; the same album may appear more than once.
type Queue []QueuedAlbum

// Clone returns a deep copy of the queue.
func (q Queue) Clone() Queue {
	if q == nil {
		return nil
	}
	out := make(Queue, len(q))
	copy(out, q)
	for i := range out {
		tracks := make([]QueuedAlbumTrack, len(out[i].TrackList))
		copy(tracks, out[i].TrackList)
		out[i].TrackList = tracks
	}
	return out
}

// CurrentlyPlaying is the track the device reports as active plus a
// reference to its owning album.
type CurrentlyPlaying struct {
	QueuedAlbumTrack
	Album AlbumRef
}

// PlayerState is the single process-wide playback state. It is owned by
// the playback manager and mutated only through reconciliation or
// explicit facade calls; observers receive read-only snapshots.
type PlayerState struct {
	CurrentlyPlaying *CurrentlyPlaying
	Queue            Queue
	Volume           int
	Paused           bool
	Shuffle          bool
	PositionMs       int
}

// InitialPlayerState is the state before any device has reported.
func InitialPlayerState() PlayerState {
	return PlayerState{
		Queue:  Queue{},
		Volume: 50,
		Paused: true,
	}
}

// Clone returns a deep copy of the state.
func (s PlayerState) Clone() PlayerState {
	out := s
	out.Queue = s.Queue.Clone()
	if s.CurrentlyPlaying != nil {
		cp := *s.CurrentlyPlaying
		out.CurrentlyPlaying = &cp
	}
	return out
}

// AuthenticatedUser is the single cached session. At most one exists at a
// time, stored under a fixed record id.
type AuthenticatedUser struct {
	AccessToken         string
	TokenType           string
	Scope               string
	RefreshToken        string
	ExpirationTimestamp int64 // absolute epoch milliseconds
}

// DiscographyMode selects the ordering used when playing an artist's
// full discography.
type DiscographyMode int

const (
	FromNewest DiscographyMode = iota
	FromOldest
	Shuffled
)
