package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aldaque/storyloom/pkg/domain"
)

// Store implements ports.StoryStore using the local filesystem.
// It stores each story as one JSON file in a configured directory, which
// gives the per-record atomic-replace semantics the executor relies on.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".storyloom/stories".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".storyloom", "stories")
	}
	return &Store{BasePath: basePath}
}

// Save persists the story to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it
// to the destination.
func (s *Store) Save(ctx context.Context, name string, story *domain.Story) error {
	if name == "" {
		return fmt.Errorf("story name cannot be empty")
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure story directory: %w", err)
	}

	destPath := filepath.Join(s.BasePath, name+".json")

	data, err := json.MarshalIndent(story, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal story: %w", err)
	}

	// Temp file in the same directory so the rename stays on one filesystem
	// (required for atomicity).
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+name+"-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath) // Remove if still exists (not renamed)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}

	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// On Windows, os.Rename fails if the destination exists; remove first.
	// The delete+rename window is acceptable compared to a partial write.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing story file for overwrite: %w", err)
		}
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file into place: %w", err)
	}

	return nil
}

// Load retrieves the story from its JSON file.
func (s *Store) Load(ctx context.Context, name string) (*domain.Story, error) {
	if name == "" {
		return nil, fmt.Errorf("story name cannot be empty")
	}

	filePath := filepath.Join(s.BasePath, name+".json")

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrStoryNotFound
		}
		return nil, fmt.Errorf("failed to read story file: %w", err)
	}

	var story domain.Story
	if err := json.Unmarshal(data, &story); err != nil {
		return nil, fmt.Errorf("failed to unmarshal story: %w", err)
	}

	return &story, nil
}

// Delete removes the story file.
func (s *Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return fmt.Errorf("story name cannot be empty")
	}

	filePath := filepath.Join(s.BasePath, name+".json")

	err := os.Remove(filePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete story file: %w", err)
	}

	return nil
}

// List returns all story names in the directory.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list stories: %w", err)
	}

	var stories []string
	for _, entry := range entries {
		if !entry.IsDir() && filepath.Ext(entry.Name()) == ".json" {
			name := entry.Name()
			stories = append(stories, name[:len(name)-len(".json")])
		}
	}

	return stories, nil
}
