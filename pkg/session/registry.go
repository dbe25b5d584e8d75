package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"log/slog"

	"github.com/aldaque/storyloom/internal/logging"
	"github.com/aldaque/storyloom/internal/machine"
	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/aldaque/storyloom/pkg/ports"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu     sync.Mutex
	refs   int
	unlock ports.UnlockFunc // Function to release distributed lock (if any)
}

// Registry is the session-wide namespace of stories. It mediates creation,
// deletion and enumeration, hands out story control handles, and owns the
// per-story critical section that keeps batches from interleaving. Unused
// locks are garbage collected via reference counting.
type Registry struct {
	store   ports.StoryStore
	machine *machine.Machine

	mu    sync.Mutex            // Global lock for the maps below
	locks map[string]*lockEntry // Map of active story locks

	// Create options registered before a story exists. First call wins;
	// consumed at creation.
	pendingOptions map[string]*domain.StoryOptions

	locker     ports.DistributedLocker // Optional distributed locker
	dispatcher ports.ModCommandDispatcher
	logger     *slog.Logger
	hooks      domain.LifecycleHooks
}

// Option configures the Registry.
type Option func(*Registry)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(r *Registry) {
		r.locker = locker
	}
}

// WithLogger configures a logger for the Registry.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers executor observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Registry) {
		r.hooks = hooks
	}
}

// WithDispatcher routes SendModCommand payloads to the host runtime.
func WithDispatcher(d ports.ModCommandDispatcher) Option {
	return func(r *Registry) {
		r.dispatcher = d
	}
}

// NewRegistry creates a session registry over the given store and resolver.
func NewRegistry(store ports.StoryStore, resolver ports.ModResolver, opts ...Option) *Registry {
	r := &Registry{
		store:          store,
		locks:          make(map[string]*lockEntry),
		pendingOptions: make(map[string]*domain.StoryOptions),
		logger:         logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.machine = machine.New(resolver,
		machine.WithDispatcher(r.dispatcher),
		machine.WithLifecycleHooks(r.hooks),
	)
	return r
}

// ControlStory returns a control handle for the named story. Denial is an
// explicit result: callers get domain.ErrStoryControlDenied rather than a
// dead handle. A handle does not imply the story exists yet.
func (r *Registry) ControlStory(name string) (*Controller, error) {
	if err := validateStoryName(name); err != nil {
		r.logger.Warn("story control denied", "story", name, "err", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoryControlDenied, err)
	}
	return &Controller{registry: r, storyName: name}, nil
}

// DeleteStory removes the story and all durable state. It is idempotent:
// deleting a name that was never created succeeds. An in-flight batch on the
// same story completes before the deletion is observed.
func (r *Registry) DeleteStory(ctx context.Context, name string) error {
	return r.withStoryLock(ctx, name, func(ctx context.Context) error {
		r.mu.Lock()
		delete(r.pendingOptions, name)
		r.mu.Unlock()

		if err := r.store.Delete(ctx, name); err != nil {
			return fmt.Errorf("failed to delete story %q: %w", name, err)
		}
		r.logger.Info("story deleted", "story", name)
		return nil
	})
}

// GetStories enumerates all story names currently known in the session store.
func (r *Registry) GetStories(ctx context.Context) ([]string, error) {
	return r.store.List(ctx)
}

// Store returns the underlying story store.
func (r *Registry) Store() ports.StoryStore {
	return r.store
}

// registerCreateOptions records create options for a not-yet-created story.
// First call wins; later calls are silently ignored, as are calls for names
// that already exist (the options are only ever consumed at creation).
func (r *Registry) registerCreateOptions(name string, options domain.StoryOptions) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.pendingOptions[name]; exists {
		return
	}
	r.pendingOptions[name] = &options
}

// takePendingOptions consumes registered create options, if any.
func (r *Registry) takePendingOptions(name string) (domain.StoryOptions, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	opts, ok := r.pendingOptions[name]
	if !ok {
		return domain.StoryOptions{}, false
	}
	delete(r.pendingOptions, name)
	return *opts, true
}

// peekPendingOptions returns registered create options without consuming
// them.
func (r *Registry) peekPendingOptions(name string) domain.StoryOptions {
	r.mu.Lock()
	defer r.mu.Unlock()
	if opts, ok := r.pendingOptions[name]; ok {
		return *opts
	}
	return domain.StoryOptions{}
}

// hasPendingOptions reports whether create options are registered for name.
func (r *Registry) hasPendingOptions(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.pendingOptions[name]
	return ok
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(name) after
// unlocking.
func (r *Registry) acquire(name string) *lockEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.locks[name]
	if !exists {
		entry = &lockEntry{}
		r.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry when it
// reaches zero.
func (r *Registry) release(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, exists := r.locks[name]
	if !exists {
		return // Should not happen if paired correctly
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(r.locks, name)
	}
}

// withStoryLock executes fn while holding the exclusive lock for the story.
// This is the serialization point: batches and deletions on the same story
// are totally ordered, stories differing in name proceed in parallel.
func (r *Registry) withStoryLock(ctx context.Context, name string, fn func(context.Context) error) error {
	entry := r.acquire(name)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		r.release(name)
	}()

	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, name, 30*time.Second)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				r.logger.Warn("failed to release distributed lock (will expire via TTL)",
					"story", name,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

func validateStoryName(name string) error {
	if name == "" {
		return fmt.Errorf("story name must not be empty")
	}
	if strings.ContainsAny(name, "/\x00") {
		return fmt.Errorf("story name %q contains reserved characters", name)
	}
	return nil
}
