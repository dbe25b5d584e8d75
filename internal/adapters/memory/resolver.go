package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aldaque/storyloom/pkg/domain"
)

// Resolver implements ports.ModResolver over a static in-memory module
// index: actions are registered up front and looked up at AddMod time. An
// intent that pins a handler resolves to that handler directly.
type Resolver struct {
	mu      sync.RWMutex
	actions map[string][]domain.ModCandidate
}

// NewResolver creates an empty resolver. Until modules are registered, every
// action resolves to zero candidates.
func NewResolver() *Resolver {
	return &Resolver{
		actions: make(map[string][]domain.ModCandidate),
	}
}

// Register adds candidates for an action. Registering the same action again
// appends, preserving registration order (the first candidate wins at
// AddMod time).
func (r *Resolver) Register(action string, candidates ...domain.ModCandidate) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[action] = append(r.actions[action], candidates...)
}

// Resolve returns the candidates registered for the intent's action. A
// pinned handler bypasses the index.
func (r *Resolver) Resolve(ctx context.Context, intent domain.Intent) ([]domain.ModCandidate, error) {
	if intent.Handler != "" {
		return []domain.ModCandidate{{Handler: intent.Handler}}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	registered := r.actions[intent.Action]
	candidates := make([]domain.ModCandidate, len(registered))
	copy(candidates, registered)
	return candidates, nil
}

// Actions returns the registered action names, for introspection.
func (r *Resolver) Actions() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names) // Deterministic order
	return names
}
