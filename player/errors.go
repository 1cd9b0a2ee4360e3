package player

import "errors"

var (
	// ErrNotAuthenticated is returned when an operation needs a cached
	// session and none exists.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrDeviceUnavailable is returned by device implementations when a
	// command is issued while the device is not connected.
	ErrDeviceUnavailable = errors.New("playback device unavailable")
)
