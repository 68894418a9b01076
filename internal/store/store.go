// Package store serializes every registry mutation through one critical
// section: load, mutate in memory, save.
package store

import (
	"context"
	"errors"
	"sync"

	"droneops-dispatch/internal/fleet"
)

// Backend persists the registry document.
type Backend interface {
	// Load returns the stored document. A backend with nothing stored yet
	// returns an empty state.
	Load(ctx context.Context) (*fleet.State, error)
	Save(ctx context.Context, s *fleet.State) error
}

// Store guards a Backend with a mutex so operations never interleave.
type Store struct {
	mu      sync.Mutex
	backend Backend
}

// New wraps b.
func New(b Backend) *Store {
	return &Store{backend: b}
}

// Update loads the document, runs fn against it and saves the result. When
// fn fails nothing is saved and its error is returned unchanged.
func (s *Store) Update(ctx context.Context, fn func(*fleet.Registry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	reg := fleet.NewRegistry(state)
	if err := fn(reg); err != nil {
		return err
	}
	return s.backend.Save(ctx, reg.State())
}

// View runs fn against a freshly loaded document. Changes made by fn are
// discarded.
func (s *Store) View(ctx context.Context, fn func(*fleet.Registry) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.backend.Load(ctx)
	if err != nil {
		return err
	}
	return fn(fleet.NewRegistry(state))
}

// Close releases the backend if it holds resources.
func (s *Store) Close() error {
	if c, ok := s.backend.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// ErrUnknownBackend is returned by Open for an unsupported backend name.
var ErrUnknownBackend = errors.New("unknown storage backend")
