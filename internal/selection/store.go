// Package selection keeps the per-session dashboard selection (the last
// chosen region) behind an injected Store, and tracks request generations so
// results from superseded requests can be discarded.
package selection

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrNoSelection is returned by Load when a session has never saved a selection.
var ErrNoSelection = errors.New("no selection for session")

// Selection is the state restored when a session returns to the dashboard.
type Selection struct {
	Region    string    `json:"region"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store loads and saves selections by session ID.
type Store interface {
	Load(ctx context.Context, sessionID string) (Selection, error)
	Save(ctx context.Context, sessionID string, sel Selection) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string]Selection
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string]Selection)}
}

func (s *MemoryStore) Load(_ context.Context, sessionID string) (Selection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sel, ok := s.data[sessionID]
	if !ok {
		return Selection{}, ErrNoSelection
	}
	return sel, nil
}

func (s *MemoryStore) Save(_ context.Context, sessionID string, sel Selection) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[sessionID] = sel
	return nil
}
