package statesync

import (
	"sync"

	"github.com/mcdev12/starship-console/go/internal/models"
)

// Store owns the single live snapshot. Readers get deep copies.
type Store struct {
	mu    sync.RWMutex
	state *models.GameState
	seq   uint64
}

func NewStore() *Store {
	return &Store{}
}

// Snapshot returns a copy of the live state, or nil before the first sync.
func (s *Store) Snapshot() *models.GameState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Clone()
}

// Seq is the sequence number of the request whose response is live.
func (s *Store) Seq() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.seq
}

// apply replaces the snapshot wholesale if seq is newer than the live one.
func (s *Store) apply(seq uint64, state *models.GameState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.seq {
		return false
	}
	s.state = state
	s.seq = seq
	return true
}
