package store

import (
	"context"
	"sync"

	"github.com/brunoga/deep"

	"droneops-dispatch/internal/fleet"
)

// Memory keeps the document in process. Load and Save copy deeply so a
// failed update never leaks into the held state.
type Memory struct {
	mu    sync.Mutex
	state *fleet.State
}

// NewMemory returns a backend seeded with s, or an empty state when s is nil.
func NewMemory(s *fleet.State) *Memory {
	if s == nil {
		s = fleet.NewState()
	}
	return &Memory{state: s}
}

func (m *Memory) Load(_ context.Context) (*fleet.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return deep.Copy(m.state)
}

func (m *Memory) Save(_ context.Context, s *fleet.State) error {
	cp, err := deep.Copy(s)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.state = cp
	m.mu.Unlock()
	return nil
}
