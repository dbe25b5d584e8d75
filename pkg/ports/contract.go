package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStoryStoreContract runs a suite of tests to verify that a StoryStore
// implementation adheres to the defined interface contract.
func RunStoryStoreContract(t *testing.T, store StoryStore) {
	ctx := context.Background()
	name := "contract-test-story-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		story := domain.NewStory(name, domain.StoryOptions{DisplayName: "Contract"})
		story.UpsertMod(domain.Mod{
			ID:      "mod-1",
			Intent:  domain.Intent{Action: "com.example.view"},
			Handler: "view-module",
		})
		story.SetLink("greeting", "hello")

		err := store.Save(ctx, name, story)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, name, loaded.Name)
		assert.Equal(t, "Contract", loaded.Options.DisplayName)
		require.Len(t, loaded.Mods, 1)
		assert.Equal(t, "mod-1", loaded.Mods[0].ID)
		assert.Equal(t, "com.example.view", loaded.Mods[0].Intent.Action)
		// JSON round-trips may change the concrete type but not the content.
		assert.NotNil(t, loaded.Links["greeting"])
	})

	t.Run("Replace", func(t *testing.T) {
		story := domain.NewStory(name, domain.StoryOptions{})
		story.UpsertMod(domain.Mod{ID: "mod-2", Intent: domain.Intent{Action: "com.example.edit"}})
		require.NoError(t, store.Save(ctx, name, story))

		loaded, err := store.Load(ctx, name)
		require.NoError(t, err)
		require.Len(t, loaded.Mods, 1)
		assert.Equal(t, "mod-2", loaded.Mods[0].ID, "Save should replace the whole record")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+name)
		assert.ErrorIs(t, err, domain.ErrStoryNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		story := domain.NewStory(name, domain.StoryOptions{})
		story.UpsertMod(domain.Mod{ID: "mod-1"})
		require.NoError(t, store.Save(ctx, name, story))

		err := store.Delete(ctx, name)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, name)
		assert.ErrorIs(t, err, domain.ErrStoryNotFound, "Load after Delete should return ErrStoryNotFound")
	})

	t.Run("Delete Non-Existent", func(t *testing.T) {
		err := store.Delete(ctx, "never-created-"+name)
		assert.NoError(t, err, "Delete must be idempotent")
	})

	t.Run("List", func(t *testing.T) {
		id1 := name + "-1"
		id2 := name + "-2"
		s1 := domain.NewStory(id1, domain.StoryOptions{})
		s1.UpsertMod(domain.Mod{ID: "m"})
		s2 := domain.NewStory(id2, domain.StoryOptions{})
		s2.UpsertMod(domain.Mod{ID: "m"})
		_ = store.Save(ctx, id1, s1)
		_ = store.Save(ctx, id2, s2)

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		stories, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, stories, id1)
		assert.Contains(t, stories, id2)
	})
}
