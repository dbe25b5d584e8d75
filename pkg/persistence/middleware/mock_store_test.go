package middleware_test

import (
	"context"

	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/aldaque/storyloom/pkg/ports"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*domain.Story
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.Story),
	}
}

func (s *MockStore) Save(ctx context.Context, name string, story *domain.Story) error {
	s.data[name] = story
	return nil
}

func (s *MockStore) Load(ctx context.Context, name string) (*domain.Story, error) {
	story, ok := s.data[name]
	if !ok {
		return nil, domain.ErrStoryNotFound
	}
	return story, nil
}

func (s *MockStore) Delete(ctx context.Context, name string) error {
	delete(s.data, name)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		keys = append(keys, k)
	}
	return keys, nil
}

var _ ports.StoryStore = (*MockStore)(nil)
