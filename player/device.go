package player

import "context"

// DeviceAlbum is the album metadata attached to a device track.
type DeviceAlbum struct {
	URI      string
	Name     string
	CoverURL string
}

// DeviceTrack is a track as reported by the playback device. IDs arrive
// as provider URIs (e.g. "spotify:track:<id>").
type DeviceTrack struct {
	URI        string
	Name       string
	ArtistName string
	DurationMs int
	Album      DeviceAlbum
}

// DeviceSnapshot is a raw playback snapshot emitted by the device.
type DeviceSnapshot struct {
	Paused     bool
	Shuffle    bool
	PositionMs int
	Current    DeviceTrack
	NextTracks []DeviceTrack
}

// DeviceEvent is the sum of lifecycle and state events a device emits.
type DeviceEvent interface {
	deviceEvent()
}

// DeviceReady signals the device can stream under the given id.
type DeviceReady struct {
	DeviceID string
}

// DeviceNotReady signals the device has gone offline.
type DeviceNotReady struct{}

// DeviceInitError signals the device failed to initialize.
type DeviceInitError struct {
	Err error
}

// DeviceAuthError signals the device failed to authenticate.
type DeviceAuthError struct {
	Err error
}

// DeviceStateChanged carries a raw playback snapshot.
type DeviceStateChanged struct {
	Snapshot DeviceSnapshot
}

func (DeviceReady) deviceEvent()        {}
func (DeviceNotReady) deviceEvent()     {}
func (DeviceInitError) deviceEvent()    {}
func (DeviceAuthError) deviceEvent()    {}
func (DeviceStateChanged) deviceEvent() {}

// Device abstracts the external playback device. Commands issued while
// the device is not connected must fail rather than queue up; the
// playback manager turns those failures into silent no-ops.
type Device interface {
	Connect(ctx context.Context) error
	Disconnect()
	Events() <-chan DeviceEvent

	Resume(ctx context.Context) error
	Pause(ctx context.Context) error
	TogglePlay(ctx context.Context) error
	// SetVolume takes a fraction in [0.0, 1.0].
	SetVolume(ctx context.Context, volume float64) error
	// Volume reports the current volume as a fraction in [0.0, 1.0].
	Volume(ctx context.Context) (float64, error)
}
