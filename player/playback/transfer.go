package playback

import (
	"context"
	"fmt"
)

// transfer moves playback output to the given device and normalizes the
// session: shuffle off, repeat off. When another device is actively
// playing and force is unset, the transfer is skipped so a running
// listening session elsewhere is never stolen.
func (m *Manager) transfer(ctx context.Context, deviceID string, force bool) error {
	if !force {
		playback, err := m.api.CurrentPlayback(ctx)
		if err != nil {
			return fmt.Errorf("check current playback: %w", err)
		}
		if playback != nil && playback.Playing && playback.DeviceID != deviceID {
			m.logger.Info("another device is actively playing, skipping transfer",
				"active_device_id", playback.DeviceID)
			return nil
		}
	}

	if err := m.api.TransferPlayback(ctx, deviceID); err != nil {
		return fmt.Errorf("transfer playback: %w", err)
	}
	if err := m.api.SetShuffle(ctx, deviceID, false); err != nil {
		return fmt.Errorf("disable shuffle: %w", err)
	}
	if err := m.api.SetRepeat(ctx, deviceID, "off"); err != nil {
		return fmt.Errorf("disable repeat: %w", err)
	}

	m.logger.Info("playback transferred", "device_id", deviceID)
	return nil
}

// TransferPlayback forces playback onto this device regardless of what
// is playing elsewhere.
func (m *Manager) TransferPlayback(ctx context.Context) error {
	deviceID, ok := m.connectedDevice()
	if !ok {
		m.logger.Debug("transfer requested while disconnected")
		return nil
	}
	return m.transfer(ctx, deviceID, true)
}
