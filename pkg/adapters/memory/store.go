package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/elicitation/pkg/domain"
)

// Store implements ports.TranscriptStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Transcript
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Transcript),
	}
}

// Save persists a copy of the transcript.
func (s *Store) Save(ctx context.Context, t *domain.Transcript) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[t.ID] = t.Clone()
	return nil
}

// Load retrieves a copy of the transcript so callers cannot mutate the store.
func (s *Store) Load(ctx context.Context, id string) (*domain.Transcript, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.data[id]
	if !ok {
		return nil, domain.ErrTranscriptNotFound
	}
	return t.Clone(), nil
}

// Delete removes the transcript.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

// List returns the stored IDs ordered by start time, then ID.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]*domain.Transcript, 0, len(s.data))
	for _, t := range s.data {
		all = append(all, t)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartedAt.Equal(all[j].StartedAt) {
			return all[i].StartedAt.Before(all[j].StartedAt)
		}
		return all[i].ID < all[j].ID
	})

	ids := make([]string, len(all))
	for i, t := range all {
		ids[i] = t.ID
	}
	return ids, nil
}
