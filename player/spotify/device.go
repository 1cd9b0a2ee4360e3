package spotify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/zmb3/spotify/v2"

	"github.com/spotless-music/spotless-go/player"
)

// PollingDevice adapts a named remote device to player.Device by
// polling the player state endpoint. The browser SDK pushes state
// events; over the Web API the closest equivalent is a poll loop.
type PollingDevice struct {
	client       *Client
	name         string
	pollInterval time.Duration
	logger       player.Logger

	events chan player.DeviceEvent

	mu        sync.Mutex
	deviceID  spotify.ID
	connected bool
	cancel    context.CancelFunc
}

// NewPollingDevice creates a device that connects to the remote device
// with the given display name.
func NewPollingDevice(client *Client, name string, pollInterval time.Duration, logger player.Logger) *PollingDevice {
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &PollingDevice{
		client:       client,
		name:         name,
		pollInterval: pollInterval,
		logger:       logger.With("module", "device"),
		events:       make(chan player.DeviceEvent, 16),
	}
}

// Events returns the device event stream.
func (d *PollingDevice) Events() <-chan player.DeviceEvent {
	return d.events
}

// Connect resolves the device id by name and starts the poll loop.
func (d *PollingDevice) Connect(ctx context.Context) error {
	d.mu.Lock()
	if d.connected {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	var devices []spotify.PlayerDevice
	err := d.client.execute(ctx, func() error {
		var err error
		devices, err = d.client.api.PlayerDevices(ctx)
		return err
	})
	if err != nil {
		d.emit(player.DeviceInitError{Err: err})
		return fmt.Errorf("list devices: %w", err)
	}

	var id spotify.ID
	for _, device := range devices {
		if device.Name == d.name {
			id = device.ID
			break
		}
	}
	if id == "" {
		err := fmt.Errorf("device %q not found: %w", d.name, player.ErrDeviceUnavailable)
		d.emit(player.DeviceInitError{Err: err})
		return err
	}

	pollCtx, cancel := context.WithCancel(context.Background())

	d.mu.Lock()
	d.deviceID = id
	d.connected = true
	d.cancel = cancel
	d.mu.Unlock()

	d.emit(player.DeviceReady{DeviceID: id.String()})
	go d.poll(pollCtx)

	d.logger.Info("device connected", "device_id", id, "name", d.name)
	return nil
}

// Disconnect stops the poll loop and reports the device offline.
func (d *PollingDevice) Disconnect() {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return
	}
	d.connected = false
	cancel := d.cancel
	d.cancel = nil
	d.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	d.emit(player.DeviceNotReady{})
	d.logger.Info("device disconnected", "name", d.name)
}

func (d *PollingDevice) poll(ctx context.Context) {
	ticker := time.NewTicker(d.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		state, err := d.client.api.PlayerState(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.logger.Debug("poll failed", "error", err)
			continue
		}
		if state == nil || state.Item == nil {
			continue
		}

		d.mu.Lock()
		own := state.Device.ID == d.deviceID
		d.mu.Unlock()
		if !own {
			continue
		}

		snapshot := player.DeviceSnapshot{
			Paused:     !state.Playing,
			Shuffle:    state.ShuffleState,
			PositionMs: int(state.Progress),
			Current:    trackFromFull(state.Item),
		}
		if queue, err := d.client.api.GetQueue(ctx); err == nil {
			for i := range queue.Items {
				snapshot.NextTracks = append(snapshot.NextTracks, trackFromFull(&queue.Items[i]))
			}
		}

		d.emit(player.DeviceStateChanged{Snapshot: snapshot})
	}
}

func trackFromFull(track *spotify.FullTrack) player.DeviceTrack {
	out := player.DeviceTrack{
		URI:        string(track.URI),
		Name:       track.Name,
		DurationMs: int(track.Duration),
		Album: player.DeviceAlbum{
			URI:      string(track.Album.URI),
			Name:     track.Album.Name,
			CoverURL: coverURL(track.Album.Images),
		},
	}
	if len(track.Artists) > 0 {
		out.ArtistName = track.Artists[0].Name
	}
	return out
}

func (d *PollingDevice) emit(event player.DeviceEvent) {
	select {
	case d.events <- event:
	default:
		d.logger.Warn("device event dropped", "event", fmt.Sprintf("%T", event))
	}
}

func (d *PollingDevice) ownDevice() (spotify.ID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.connected {
		return "", player.ErrDeviceUnavailable
	}
	return d.deviceID, nil
}

// Resume continues playback on this device.
func (d *PollingDevice) Resume(ctx context.Context) error {
	id, err := d.ownDevice()
	if err != nil {
		return err
	}
	return d.client.execute(ctx, func() error {
		return d.client.api.PlayOpt(ctx, &spotify.PlayOptions{DeviceID: &id})
	})
}

// Pause pauses playback on this device.
func (d *PollingDevice) Pause(ctx context.Context) error {
	id, err := d.ownDevice()
	if err != nil {
		return err
	}
	return d.client.execute(ctx, func() error {
		return d.client.api.PauseOpt(ctx, &spotify.PlayOptions{DeviceID: &id})
	})
}

// TogglePlay pauses when playing and resumes when paused.
func (d *PollingDevice) TogglePlay(ctx context.Context) error {
	if _, err := d.ownDevice(); err != nil {
		return err
	}
	state, err := d.client.api.PlayerState(ctx)
	if err != nil {
		return fmt.Errorf("fetch playback state: %w", err)
	}
	if state != nil && state.Playing {
		return d.Pause(ctx)
	}
	return d.Resume(ctx)
}

// SetVolume takes a fraction in [0.0, 1.0].
func (d *PollingDevice) SetVolume(ctx context.Context, volume float64) error {
	id, err := d.ownDevice()
	if err != nil {
		return err
	}
	if volume < 0 {
		volume = 0
	}
	if volume > 1 {
		volume = 1
	}
	percent := int(volume * 100)
	return d.client.execute(ctx, func() error {
		return d.client.api.VolumeOpt(ctx, percent, &spotify.PlayOptions{DeviceID: &id})
	})
}

// Volume reports the current volume as a fraction in [0.0, 1.0].
func (d *PollingDevice) Volume(ctx context.Context) (float64, error) {
	id, err := d.ownDevice()
	if err != nil {
		return 0, err
	}

	var devices []spotify.PlayerDevice
	err = d.client.execute(ctx, func() error {
		var err error
		devices, err = d.client.api.PlayerDevices(ctx)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("list devices: %w", err)
	}

	for _, device := range devices {
		if device.ID == id {
			return float64(device.Volume) / 100, nil
		}
	}
	return 0, player.ErrDeviceUnavailable
}
