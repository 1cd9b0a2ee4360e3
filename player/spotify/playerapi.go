package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/spotless-music/spotless-go/player"
)

// Play starts album playback from the top on the given device.
func (c *Client) Play(ctx context.Context, albumID, deviceID string) error {
	device := spotify.ID(deviceID)
	uri := spotify.URI("spotify:album:" + albumID)
	opts := &spotify.PlayOptions{
		DeviceID:        &device,
		PlaybackContext: &uri,
	}

	err := c.execute(ctx, func() error {
		return c.api.PlayOpt(ctx, opts)
	})
	if err != nil {
		return fmt.Errorf("play album %s: %w", albumID, err)
	}
	c.logger.Debug("playback started", "album_id", albumID, "device_id", deviceID)
	return nil
}

// TransferPlayback selects the device as the active output without
// forcing playback to start.
func (c *Client) TransferPlayback(ctx context.Context, deviceID string) error {
	err := c.execute(ctx, func() error {
		return c.api.TransferPlayback(ctx, spotify.ID(deviceID), false)
	})
	if err != nil {
		return fmt.Errorf("transfer playback: %w", err)
	}
	return nil
}

// SetShuffle toggles shuffle mode on the device.
func (c *Client) SetShuffle(ctx context.Context, deviceID string, on bool) error {
	device := spotify.ID(deviceID)
	err := c.execute(ctx, func() error {
		return c.api.ShuffleOpt(ctx, on, &spotify.PlayOptions{DeviceID: &device})
	})
	if err != nil {
		return fmt.Errorf("set shuffle: %w", err)
	}
	return nil
}

// SetRepeat sets the repeat state ("off", "track" or "context").
func (c *Client) SetRepeat(ctx context.Context, deviceID, state string) error {
	device := spotify.ID(deviceID)
	err := c.execute(ctx, func() error {
		return c.api.RepeatOpt(ctx, state, &spotify.PlayOptions{DeviceID: &device})
	})
	if err != nil {
		return fmt.Errorf("set repeat: %w", err)
	}
	return nil
}

// CurrentPlayback returns nil when there is no active playback anywhere.
func (c *Client) CurrentPlayback(ctx context.Context) (*player.RemotePlayback, error) {
	var state *spotify.PlayerState
	err := c.execute(ctx, func() error {
		var err error
		state, err = c.api.PlayerState(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch playback state: %w", err)
	}
	if state == nil || state.Device.ID == "" {
		return nil, nil
	}
	return &player.RemotePlayback{
		Playing:  state.Playing,
		DeviceID: state.Device.ID.String(),
	}, nil
}
