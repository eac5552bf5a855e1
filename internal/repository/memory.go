package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"upick/internal/picker"
)

// MemoryRepository keeps sessions in process memory. Used when no database is configured.
type MemoryRepository struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string][]byte)}
}

// Sessions are stored encoded so callers never share a *Session with the store.

func (r *MemoryRepository) Save(_ context.Context, s *picker.Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("repository: failed to encode session: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[s.ID] = data
	return nil
}

func (r *MemoryRepository) Find(_ context.Context, id string) (*picker.Session, error) {
	r.mu.Lock()
	data, ok := r.sessions[id]
	r.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}
	return decode(data)
}

func (r *MemoryRepository) MarkLoading(_ context.Context, s *picker.Session, staleBefore time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, ok := r.sessions[s.ID]
	if !ok {
		return ErrNotFound
	}
	stored, err := decode(data)
	if err != nil {
		return err
	}
	if stored.State == picker.StateLoading && !stored.UpdatedAt.Before(staleBefore) {
		return ErrAlreadyLoading
	}

	if data, err = json.Marshal(s); err != nil {
		return fmt.Errorf("repository: failed to encode session: %w", err)
	}
	r.sessions[s.ID] = data
	return nil
}

func decode(data []byte) (*picker.Session, error) {
	var s picker.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("repository: failed to decode session: %w", err)
	}
	return &s, nil
}
