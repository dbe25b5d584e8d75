package ports

import (
	"context"

	"github.com/aldaque/storyloom/pkg/domain"
)

// StoryStore defines the interface for durably persisting stories.
// One record per story name, readable and atomically replaceable as a unit:
// a Load observes either the state before or after a concurrent Save, never a
// partial write.
type StoryStore interface {
	// Save persists the story under its name, replacing any previous record.
	Save(ctx context.Context, name string, story *domain.Story) error

	// Load retrieves the story for a given name.
	// Returns domain.ErrStoryNotFound if the story does not exist.
	Load(ctx context.Context, name string) (*domain.Story, error)

	// Delete removes the record for a given name. Deleting a name that does
	// not exist is not an error.
	Delete(ctx context.Context, name string) error

	// List returns the names of all stories currently in the store.
	List(ctx context.Context) ([]string, error)
}
