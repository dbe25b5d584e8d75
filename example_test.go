package storyloom_test

import (
	"context"
	"fmt"
	"log"

	"github.com/aldaque/storyloom"
	"github.com/aldaque/storyloom/internal/adapters/memory"
	"github.com/aldaque/storyloom/pkg/domain"
)

// Example demonstrates the enqueue/execute cycle against an in-memory
// session.
func Example() {
	resolver := memory.NewResolver()
	resolver.Register("com.example.music.play", domain.ModCandidate{Handler: "music-player"})

	sess, err := storyloom.New(storyloom.WithResolver(resolver))
	if err != nil {
		log.Fatal(err)
	}

	ctrl, err := sess.ControlStory("evening")
	if err != nil {
		log.Fatal(err)
	}

	ctrl.Enqueue(domain.Command{
		Type: domain.CommandAddMod,
		AddMod: &domain.AddMod{
			ModName: "player",
			Intent:  domain.Intent{Action: "com.example.music.play"},
		},
	})
	result := ctrl.Execute(context.Background())
	fmt.Println(result.Status, result.StoryID)

	// Removing the only mod violates the story invariant.
	ctrl.Enqueue(domain.Command{
		Type:      domain.CommandRemoveMod,
		RemoveMod: &domain.RemoveMod{ModName: "player"},
	})
	result = ctrl.Execute(context.Background())
	fmt.Println(result.Status)

	// Output:
	// OK evening
	// STORY_MUST_HAVE_MODS
}
