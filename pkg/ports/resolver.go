package ports

import (
	"context"

	"github.com/aldaque/storyloom/pkg/domain"
)

// ModResolver turns an intent into concrete runnable module candidates.
//
// The resolver is stateless from the engine's perspective and may be invoked
// concurrently across different stories. Returning an empty slice is a normal
// outcome (the intent matched nothing); returning an error indicates a
// resolver fault.
type ModResolver interface {
	Resolve(ctx context.Context, intent domain.Intent) ([]domain.ModCandidate, error)
}

// ResolverFunc adapts a function to the ModResolver interface.
type ResolverFunc func(ctx context.Context, intent domain.Intent) ([]domain.ModCandidate, error)

func (f ResolverFunc) Resolve(ctx context.Context, intent domain.Intent) ([]domain.ModCandidate, error) {
	return f(ctx, intent)
}
