package session

import (
	"context"
	"fmt"
	"testing"

	"github.com/aldaque/storyloom/pkg/domain"
)

// MockStore structure
type MockStore struct{}

func (m *MockStore) Save(ctx context.Context, name string, story *domain.Story) error {
	return nil
}
func (m *MockStore) Load(ctx context.Context, name string) (*domain.Story, error) {
	return nil, domain.ErrStoryNotFound
}
func (m *MockStore) Delete(ctx context.Context, name string) error { return nil }
func (m *MockStore) List(ctx context.Context) ([]string, error)    { return nil, nil }

func TestRegistry_LockLifecycle(t *testing.T) {
	registry := NewRegistry(&MockStore{}, nil)
	ctx := context.Background()
	count := 10000

	// Run a lock/unlock cycle for many distinct stories.
	for i := 0; i < count; i++ {
		name := fmt.Sprintf("story-%d", i)
		_ = registry.withStoryLock(ctx, name, func(ctx context.Context) error {
			return nil
		})
	}

	registry.mu.Lock()
	lockCount := len(registry.locks)
	registry.mu.Unlock()

	t.Logf("Stories Locked: %d, Locks Remaining: %d", count, lockCount)

	if lockCount != 0 {
		t.Errorf("Memory Leak Detected: %d locks remaining in memory after release", lockCount)
	}
}

func TestRegistry_PendingOptionsFirstWins(t *testing.T) {
	registry := NewRegistry(&MockStore{}, nil)

	registry.registerCreateOptions("s", domain.StoryOptions{DisplayName: "first"})
	registry.registerCreateOptions("s", domain.StoryOptions{DisplayName: "second"})

	opts := registry.peekPendingOptions("s")
	if opts.DisplayName != "first" {
		t.Errorf("expected first registration to win, got %q", opts.DisplayName)
	}

	taken, ok := registry.takePendingOptions("s")
	if !ok || taken.DisplayName != "first" {
		t.Errorf("take should consume the first registration, got %+v (ok=%v)", taken, ok)
	}
	if registry.hasPendingOptions("s") {
		t.Error("options should be consumed after take")
	}
}
