package storyloom

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/aldaque/storyloom/internal/adapters/memory"
	"github.com/aldaque/storyloom/internal/logging"
	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/aldaque/storyloom/pkg/ports"
	"github.com/aldaque/storyloom/pkg/session"
)

// Version of the engine, reported by the CLI and the transport adapters.
const Version = "0.3.0"

// Session is the high-level entry point for the Storyloom library. It is the
// top-level namespace of stories: one Session per full-screen experience (or
// per test). Construct it explicitly and pass it to request handlers; there
// is no ambient global session.
type Session struct {
	registry *session.Registry

	store      ports.StoryStore
	resolver   ports.ModResolver
	dispatcher ports.ModCommandDispatcher
	locker     ports.DistributedLocker
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
}

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithStore injects a durable story store. Defaults to an in-memory store,
// which is only suitable for tests and demos.
func WithStore(store ports.StoryStore) Option {
	return func(s *Session) {
		s.store = store
	}
}

// WithResolver injects the module resolver consulted by AddMod commands.
func WithResolver(resolver ports.ModResolver) Option {
	return func(s *Session) {
		s.resolver = resolver
	}
}

// WithDispatcher routes SendModCommand payloads to the host runtime.
func WithDispatcher(d ports.ModCommandDispatcher) Option {
	return func(s *Session) {
		s.dispatcher = d
	}
}

// WithLocker enables distributed locking for multi-replica deployments.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(s *Session) {
		s.locker = locker
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// New initializes a new Storyloom Session.
// A resolver is required: without one, every AddMod would dead-end.
func New(opts ...Option) (*Session, error) {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}

	if s.resolver == nil {
		return nil, fmt.Errorf("a mod resolver is required (use WithResolver)")
	}
	if s.store == nil {
		s.store = memory.NewStore()
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}

	registryOpts := []session.Option{
		session.WithLogger(s.logger),
		session.WithLifecycleHooks(s.hooks),
	}
	if s.locker != nil {
		registryOpts = append(registryOpts, session.WithLocker(s.locker))
	}
	if s.dispatcher != nil {
		registryOpts = append(registryOpts, session.WithDispatcher(s.dispatcher))
	}

	s.registry = session.NewRegistry(s.store, s.resolver, registryOpts...)
	return s, nil
}

// ControlStory returns a control handle for issuing commands against the
// named story. Denial is an explicit error (domain.ErrStoryControlDenied),
// not a dead handle.
func (s *Session) ControlStory(name string) (*session.Controller, error) {
	return s.registry.ControlStory(name)
}

// DeleteStory idempotently removes the story and all durable state. An
// in-flight batch on the story completes before the deletion is observed.
func (s *Session) DeleteStory(ctx context.Context, name string) error {
	return s.registry.DeleteStory(ctx, name)
}

// GetStories enumerates all story names currently known in the session.
func (s *Session) GetStories(ctx context.Context) ([]string, error) {
	return s.registry.GetStories(ctx)
}

// Registry exposes the underlying session registry.
func (s *Session) Registry() *session.Registry {
	return s.registry
}

// Store returns the underlying story store.
func (s *Session) Store() ports.StoryStore {
	return s.store
}
