package playback

import (
	"context"
	"sync"
)

type viewerState struct {
	step     int
	ownerID  int64
	hasOwner bool
}

// MemoryTracker is an in-memory Tracker implementation for tests and development.
type MemoryTracker struct {
	mu      sync.RWMutex
	viewers map[int64]*viewerState
}

// NewMemoryTracker constructs an empty in-memory tracker.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{
		viewers: make(map[int64]*viewerState),
	}
}

func (m *MemoryTracker) state(viewerID int64) *viewerState {
	st, ok := m.viewers[viewerID]
	if !ok {
		st = &viewerState{step: 1}
		m.viewers[viewerID] = st
	}
	return st
}

// Step returns the viewer's current step, 1 when absent.
func (m *MemoryTracker) Step(_ context.Context, viewerID int64) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if st, ok := m.viewers[viewerID]; ok {
		return st.step, nil
	}
	return 1, nil
}

// SetStep updates the step for a viewer, creating state if necessary.
func (m *MemoryTracker) SetStep(_ context.Context, viewerID int64, step int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state(viewerID).step = step
	return nil
}

// Owner returns the pinned content owner for the viewer.
func (m *MemoryTracker) Owner(_ context.Context, viewerID int64) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if st, ok := m.viewers[viewerID]; ok && st.hasOwner {
		return st.ownerID, true, nil
	}
	return 0, false, nil
}

// SetOwner pins the content owner for the viewer.
func (m *MemoryTracker) SetOwner(_ context.Context, viewerID, ownerID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := m.state(viewerID)
	st.ownerID = ownerID
	st.hasOwner = true
	return nil
}
