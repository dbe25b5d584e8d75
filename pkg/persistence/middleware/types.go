package middleware

import "github.com/aldaque/storyloom/pkg/ports"

// Middleware allows wrapping a StoryStore to add behavior.
type Middleware func(ports.StoryStore) ports.StoryStore

// Chain applies middlewares right to left, so the first middleware in the
// list is the outermost wrapper.
func Chain(store ports.StoryStore, middlewares ...Middleware) ports.StoryStore {
	for i := len(middlewares) - 1; i >= 0; i-- {
		store = middlewares[i](store)
	}
	return store
}
