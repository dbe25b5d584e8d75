package storyloom_test

import (
	"context"
	"testing"

	"github.com/aldaque/storyloom"
	"github.com/aldaque/storyloom/internal/adapters/file"
	"github.com/aldaque/storyloom/internal/adapters/memory"
	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_RequiresResolver(t *testing.T) {
	_, err := storyloom.New()
	assert.Error(t, err)
}

func TestSession_EndToEnd(t *testing.T) {
	resolver := memory.NewResolver()
	resolver.Register("com.example.weather", domain.ModCandidate{Handler: "weather-card"})

	sess, err := storyloom.New(storyloom.WithResolver(resolver))
	require.NoError(t, err)

	ctx := context.Background()
	ctrl, err := sess.ControlStory("dashboard")
	require.NoError(t, err)

	ctrl.Enqueue(domain.Command{
		Type: domain.CommandAddMod,
		AddMod: &domain.AddMod{
			ModName: "weather",
			Intent:  domain.Intent{Action: "com.example.weather"},
		},
	})
	result := ctrl.Execute(ctx)
	require.True(t, result.OK(), result.ErrorMessage)

	stories, err := sess.GetStories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dashboard"}, stories)

	require.NoError(t, sess.DeleteStory(ctx, "dashboard"))
	stories, err = sess.GetStories(ctx)
	require.NoError(t, err)
	assert.Empty(t, stories)
}

func TestSession_DurabilityAcrossRestart(t *testing.T) {
	dir := t.TempDir()
	resolver := memory.NewResolver()
	resolver.Register("com.example.notes", domain.ModCandidate{Handler: "notes"})

	ctx := context.Background()

	// First "process": create a story against the file store.
	sess1, err := storyloom.New(
		storyloom.WithResolver(resolver),
		storyloom.WithStore(file.New(dir)),
	)
	require.NoError(t, err)

	ctrl, err := sess1.ControlStory("persisted")
	require.NoError(t, err)
	ctrl.Enqueue(domain.Command{
		Type:   domain.CommandAddMod,
		AddMod: &domain.AddMod{ModName: "pad", Intent: domain.Intent{Action: "com.example.notes"}},
	})
	require.True(t, ctrl.Execute(ctx).OK())

	// Second "process" over the same directory sees the story and can keep
	// mutating it.
	sess2, err := storyloom.New(
		storyloom.WithResolver(resolver),
		storyloom.WithStore(file.New(dir)),
	)
	require.NoError(t, err)

	stories, err := sess2.GetStories(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"persisted"}, stories)

	ctrl2, err := sess2.ControlStory("persisted")
	require.NoError(t, err)
	ctrl2.Enqueue(domain.Command{
		Type:           domain.CommandSendModCommand,
		SendModCommand: &domain.SendModCommand{ModName: "pad", Command: "focus"},
	})
	assert.True(t, ctrl2.Execute(ctx).OK())
}
