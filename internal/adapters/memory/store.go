package memory

import (
	"context"
	"sync"

	"github.com/aldaque/storyloom/pkg/domain"
)

// Store implements ports.StoryStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.Story
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.Story),
	}
}

// Save persists the story in memory. The record is deep-copied so later
// mutation of the caller's story does not leak into the store, mirroring the
// isolation a serializing backend provides.
func (s *Store) Save(ctx context.Context, name string, story *domain.Story) error {
	copied := story.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[name] = copied
	return nil
}

// Load retrieves the story from memory.
func (s *Store) Load(ctx context.Context, name string) (*domain.Story, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	story, ok := s.data[name]
	if !ok {
		return nil, domain.ErrStoryNotFound
	}

	// Copy on read so callers can't mutate store state through the pointer.
	return story.Clone(), nil
}

// Delete removes the story.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, name)
	return nil
}

// List returns the names of all stored stories.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	return names, nil
}
