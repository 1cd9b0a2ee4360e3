package player

// ConnectionPhase enumerates the states of the playback device link.
type ConnectionPhase int

const (
	PhaseDisconnected ConnectionPhase = iota
	PhaseConnected
	PhaseErrored
)

func (p ConnectionPhase) String() string {
	switch p {
	case PhaseConnected:
		return "connected"
	case PhaseErrored:
		return "errored"
	default:
		return "disconnected"
	}
}

// ConnectionStatus is a tagged value tracking the playback device link.
// Transitions are one-directional per cycle: disconnected -> connected ->
// (disconnected | errored); a reconnection always starts a new cycle.
type ConnectionStatus struct {
	phase    ConnectionPhase
	deviceID string
}

// Disconnected is the initial status.
func Disconnected() ConnectionStatus {
	return ConnectionStatus{phase: PhaseDisconnected}
}

// Connected marks the device as ready under the given device id.
func Connected(deviceID string) ConnectionStatus {
	return ConnectionStatus{phase: PhaseConnected, deviceID: deviceID}
}

// Errored marks the device as failed; terminal until a fresh connect.
func Errored() ConnectionStatus {
	return ConnectionStatus{phase: PhaseErrored}
}

func (s ConnectionStatus) Phase() ConnectionPhase {
	return s.phase
}

// DeviceID returns the connected device id, or false when not connected.
func (s ConnectionStatus) DeviceID() (string, bool) {
	if s.phase != PhaseConnected {
		return "", false
	}
	return s.deviceID, true
}

func (s ConnectionStatus) IsConnected() bool {
	return s.phase == PhaseConnected
}
