package admin

import (
	"sync"

	"diffusion-sim/internal/sim"
)

// DefaultStoreCapacity bounds the number of runs kept in memory.
const DefaultStoreCapacity = 100

// RunStore keeps finished runs in memory, evicting the oldest once full.
// Runs do not survive a restart.
type RunStore struct {
	mu       sync.RWMutex
	runs     map[string]*sim.Result
	order    []string
	capacity int
}

// NewRunStore creates a store holding at most capacity runs.
func NewRunStore(capacity int) *RunStore {
	if capacity <= 0 {
		capacity = DefaultStoreCapacity
	}
	return &RunStore{
		runs:     make(map[string]*sim.Result),
		capacity: capacity,
	}
}

// Put stores res under its run ID.
func (s *RunStore) Put(res *sim.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.runs[res.RunID]; !exists {
		s.order = append(s.order, res.RunID)
	}
	s.runs[res.RunID] = res
	for len(s.order) > s.capacity {
		oldest := s.order[0]
		s.order = s.order[1:]
		delete(s.runs, oldest)
	}
}

// Get returns the run with the given ID.
func (s *RunStore) Get(runID string) (*sim.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, ok := s.runs[runID]
	return res, ok
}

// List returns up to limit runs, newest first.
func (s *RunStore) List(limit int) []*sim.Result {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 || limit > len(s.order) {
		limit = len(s.order)
	}
	out := make([]*sim.Result, 0, limit)
	for i := len(s.order) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, s.runs[s.order[i]])
	}
	return out
}

// Len returns the number of stored runs.
func (s *RunStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}
