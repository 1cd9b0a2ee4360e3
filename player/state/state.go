// Package state holds the process-wide player state behind a mutex and
// fans out snapshots to subscribers.
package state

import (
	"sync"

	"github.com/spotless-music/spotless-go/player"
)

// Store owns the player state. All reads return deep copies so callers
// can never alias the internal value.
type Store struct {
	mu    sync.RWMutex
	state player.PlayerState

	subMu   sync.Mutex
	subs    map[int]chan player.PlayerState
	nextSub int
	closed  bool
}

func New() *Store {
	return &Store{
		state: player.InitialPlayerState(),
		subs:  make(map[int]chan player.PlayerState),
	}
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() player.PlayerState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Set replaces the state wholesale and notifies subscribers.
func (s *Store) Set(next player.PlayerState) {
	s.mu.Lock()
	s.state = next.Clone()
	snapshot := s.state.Clone()
	s.mu.Unlock()
	s.publish(snapshot)
}

// Update applies fn to a copy of the current state under the lock and
// installs the result. fn must not block.
func (s *Store) Update(fn func(st *player.PlayerState)) player.PlayerState {
	s.mu.Lock()
	next := s.state.Clone()
	fn(&next)
	s.state = next
	snapshot := next.Clone()
	s.mu.Unlock()
	s.publish(snapshot)
	return snapshot
}

// SetQueue replaces the queue leaving the rest of the state untouched.
func (s *Store) SetQueue(q player.Queue) {
	s.Update(func(st *player.PlayerState) {
		st.Queue = q.Clone()
	})
}

// AppendQueue adds albums to the end of the queue.
func (s *Store) AppendQueue(items ...player.QueuedAlbum) {
	s.Update(func(st *player.PlayerState) {
		st.Queue = append(st.Queue, items...)
	})
}

// Subscribe registers an observer. The returned channel is buffered;
// when an observer falls behind the oldest pending snapshot is dropped
// so publishers never block. cancel unregisters and closes the channel.
func (s *Store) Subscribe() (ch <-chan player.PlayerState, cancel func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	c := make(chan player.PlayerState, 8)
	if s.closed {
		close(c)
		return c, func() {}
	}

	id := s.nextSub
	s.nextSub++
	s.subs[id] = c

	return c, func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		if sub, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(sub)
		}
	}
}

// Close unregisters every subscriber. Further Set calls are still
// legal but notify nobody.
func (s *Store) Close() {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for id, sub := range s.subs {
		delete(s.subs, id)
		close(sub)
	}
}

func (s *Store) publish(snapshot player.PlayerState) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, sub := range s.subs {
		for {
			select {
			case sub <- snapshot:
			default:
				select {
				case <-sub:
				default:
				}
				continue
			}
			break
		}
	}
}
