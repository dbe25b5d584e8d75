package machine

import (
	"context"
	"time"

	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/aldaque/storyloom/pkg/ports"
	"github.com/google/uuid"
)

// Machine applies single story commands to a story snapshot. It is a pure
// transition function over the Story entity: no state of its own beyond the
// injected collaborators.
type Machine struct {
	resolver   ports.ModResolver
	dispatcher ports.ModCommandDispatcher
	hooks      domain.LifecycleHooks
}

// Option configures the Machine.
type Option func(*Machine)

// WithDispatcher routes SendModCommand payloads to the host runtime.
func WithDispatcher(d ports.ModCommandDispatcher) Option {
	return func(m *Machine) {
		m.dispatcher = d
	}
}

// WithLifecycleHooks registers observability hooks (resolver round-trips).
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(m *Machine) {
		m.hooks = hooks
	}
}

// New creates a Machine backed by the given resolver.
func New(resolver ports.ModResolver, opts ...Option) *Machine {
	m := &Machine{resolver: resolver}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Apply mutates story according to cmd. On failure it returns a
// *domain.CommandError carrying the ExecuteStatus; the story is left
// untouched by the failing command.
func (m *Machine) Apply(ctx context.Context, story *domain.Story, cmd domain.Command) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	switch cmd.Type {
	case domain.CommandAddMod:
		return m.applyAddMod(ctx, story, *cmd.AddMod)
	case domain.CommandRemoveMod:
		return m.applyRemoveMod(story, *cmd.RemoveMod)
	case domain.CommandSendModCommand:
		return m.applySendModCommand(ctx, story, *cmd.SendModCommand)
	case domain.CommandSetLinkValue:
		story.SetLink(cmd.SetLinkValue.Path, cmd.SetLinkValue.Value)
		return nil
	case domain.CommandSetFocusState:
		story.Focused = cmd.SetFocusState.Focused
		return nil
	default:
		// Validate already rejects unknown types.
		return domain.NewCommandError(domain.StatusInvalidCommand, "unknown command type %q", cmd.Type)
	}
}

func (m *Machine) applyAddMod(ctx context.Context, story *domain.Story, add domain.AddMod) error {
	if m.resolver == nil {
		return domain.NewCommandError(domain.StatusInternalError, "no mod resolver configured")
	}

	start := time.Now()
	candidates, err := m.resolver.Resolve(ctx, add.Intent)
	if m.hooks.OnIntentResolved != nil {
		m.hooks.OnIntentResolved(ctx, &domain.ResolveEvent{
			EventBase: domain.EventBase{
				Timestamp: time.Now(),
				Type:      domain.EventIntentResolved,
				StoryName: story.Name,
			},
			Action:     add.Intent.Action,
			Candidates: len(candidates),
			Duration:   time.Since(start),
		})
	}
	if err != nil {
		return domain.NewCommandError(domain.StatusInternalError, "resolver failed for action %q: %v", add.Intent.Action, err)
	}
	if len(candidates) == 0 {
		return domain.NewCommandError(domain.StatusNoModulesFound, "no modules found for action %q", add.Intent.Action)
	}

	id := add.ModName
	if id == "" {
		id = uuid.NewString()
	}

	// First candidate wins; ranking is the resolver's business.
	story.UpsertMod(domain.Mod{
		ID:              id,
		Intent:          add.Intent,
		Handler:         candidates[0].Handler,
		ParentID:        add.ParentModName,
		SurfaceRelation: add.SurfaceRelation,
	})
	return nil
}

func (m *Machine) applyRemoveMod(story *domain.Story, rm domain.RemoveMod) error {
	i := story.FindMod(rm.ModName)
	if i < 0 {
		return domain.NewCommandError(domain.StatusInvalidMod, "no mod named %q in story %q", rm.ModName, story.Name)
	}
	if len(story.Mods) == 1 {
		return domain.NewCommandError(domain.StatusStoryMustHaveMods, "cannot remove the last mod %q from story %q", rm.ModName, story.Name)
	}
	story.RemoveMod(i)
	return nil
}

func (m *Machine) applySendModCommand(ctx context.Context, story *domain.Story, send domain.SendModCommand) error {
	i := story.FindMod(send.ModName)
	if i < 0 {
		return domain.NewCommandError(domain.StatusInvalidMod, "no mod named %q in story %q", send.ModName, story.Name)
	}
	if m.dispatcher == nil {
		// Delivery is opaque to the engine; without a host sink the command
		// is validated and dropped.
		return nil
	}
	if err := m.dispatcher.Dispatch(ctx, story.Name, story.Mods[i], send); err != nil {
		return domain.NewCommandError(domain.StatusInternalError, "dispatch to mod %q failed: %v", send.ModName, err)
	}
	return nil
}
