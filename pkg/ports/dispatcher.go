package ports

import (
	"context"

	"github.com/aldaque/storyloom/pkg/domain"
)

// ModCommandDispatcher delivers a SendModCommand payload to a running mod.
// The engine validates the target mod exists; everything past that point is
// owned by the host runtime. A dispatcher error is surfaced to the client as
// an internal fault.
type ModCommandDispatcher interface {
	Dispatch(ctx context.Context, storyName string, mod domain.Mod, cmd domain.SendModCommand) error
}

// DispatcherFunc adapts a function to the ModCommandDispatcher interface.
type DispatcherFunc func(ctx context.Context, storyName string, mod domain.Mod, cmd domain.SendModCommand) error

func (f DispatcherFunc) Dispatch(ctx context.Context, storyName string, mod domain.Mod, cmd domain.SendModCommand) error {
	return f(ctx, storyName, mod, cmd)
}
