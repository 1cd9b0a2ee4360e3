// Package playback owns the playback device lifecycle and reconciles
// device state reports into the single player state.
package playback

import (
	"context"
	"sync"

	"github.com/spotless-music/spotless-go/player"
	"github.com/spotless-music/spotless-go/player/state"
)

// Manager consumes device events on a single goroutine, so state
// transitions apply in arrival order.
type Manager struct {
	device player.Device
	api    player.PlayerAPI
	albums player.AlbumStore
	store  *state.Store
	logger player.Logger

	mu     sync.Mutex
	status player.ConnectionStatus
	cancel context.CancelFunc

	lastSeen  eventKey
	hasSeen   bool
	loopDone  chan struct{}
	startOnce sync.Once
}

// eventKey identifies a state report for deduplication. The device
// re-emits identical reports; only paused flips and track changes are
// meaningful.
type eventKey struct {
	paused   bool
	trackURI string
}

func NewManager(device player.Device, api player.PlayerAPI, albums player.AlbumStore, store *state.Store, logger player.Logger) *Manager {
	return &Manager{
		device:   device,
		api:      api,
		albums:   albums,
		store:    store,
		logger:   logger.With("module", "playback"),
		status:   player.Disconnected(),
		loopDone: make(chan struct{}),
	}
}

// Start connects the device and begins consuming its events. The event
// loop stops when ctx is cancelled or Stop is called.
func (m *Manager) Start(ctx context.Context) error {
	var loopErr error
	m.startOnce.Do(func() {
		loopCtx, cancel := context.WithCancel(ctx)
		m.mu.Lock()
		m.cancel = cancel
		m.mu.Unlock()

		go m.loop(loopCtx)
		if err := m.device.Connect(loopCtx); err != nil {
			loopErr = err
		}
	})
	return loopErr
}

// Stop disconnects the device and waits for the event loop to exit.
// Safe to call without a prior Start.
func (m *Manager) Stop() {
	m.device.Disconnect()

	m.mu.Lock()
	cancel := m.cancel
	m.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-m.loopDone
}

// Status returns the current device link status.
func (m *Manager) Status() player.ConnectionStatus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status
}

func (m *Manager) setStatus(status player.ConnectionStatus) {
	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
}

func (m *Manager) loop(ctx context.Context) {
	defer close(m.loopDone)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-m.device.Events():
			if !ok {
				return
			}
			m.handleEvent(ctx, event)
		}
	}
}

func (m *Manager) handleEvent(ctx context.Context, event player.DeviceEvent) {
	switch e := event.(type) {
	case player.DeviceReady:
		m.logger.Info("device ready", "device_id", e.DeviceID)
		m.setStatus(player.Connected(e.DeviceID))
		if err := m.transfer(ctx, e.DeviceID, false); err != nil {
			m.logger.Error("transfer on ready failed", "error", err)
		}

	case player.DeviceNotReady:
		m.logger.Info("device offline")
		m.setStatus(player.Disconnected())

	case player.DeviceInitError:
		m.logger.Error("device initialization failed", "error", e.Err)
		m.setStatus(player.Errored())

	case player.DeviceAuthError:
		m.logger.Error("device authentication failed", "error", e.Err)
		m.setStatus(player.Errored())

	case player.DeviceStateChanged:
		m.handleStateChange(ctx, e.Snapshot)
	}
}

func (m *Manager) handleStateChange(ctx context.Context, snapshot player.DeviceSnapshot) {
	key := eventKey{paused: snapshot.Paused, trackURI: snapshot.Current.URI}
	if m.hasSeen && key == m.lastSeen {
		return
	}
	m.lastSeen = key
	m.hasSeen = true

	prev := m.store.Snapshot()
	switch action := m.reconcile(ctx, prev, snapshot).(type) {
	case ContinueWithNewState:
		m.store.Set(action.State)

	case ReplaceWithQueuePlayback:
		m.store.Set(action.State)
		m.logger.Info("continuing from queue", "album_id", action.Item.ID, "album", action.Item.Name)
		if err := m.Play(ctx, action.Item.ID, false); err != nil {
			m.logger.Error("queue continuation failed", "album_id", action.Item.ID, "error", err)
		}
	}
}

// connectedDevice returns the device id, or false when playback
// commands should silently no-op.
func (m *Manager) connectedDevice() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.status.DeviceID()
}
