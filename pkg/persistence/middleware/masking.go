package middleware

import (
	"context"
	"regexp"

	"github.com/aldaque/storyloom/pkg/domain"
	"github.com/aldaque/storyloom/pkg/ports"
)

type maskingMiddleware struct {
	next     ports.StoryStore
	patterns []*regexp.Regexp
}

// NewMaskingMiddleware creates a middleware that masks link values, intent
// parameters and annotations whose keys match the given patterns before they
// reach durable storage. Masking is one-way: loaded stories carry the masked
// values.
func NewMaskingMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.StoryStore) ports.StoryStore {
		return &maskingMiddleware{next: next, patterns: patterns}
	}
}

func (m *maskingMiddleware) Save(ctx context.Context, name string, story *domain.Story) error {
	// Deep clone to avoid side effects on the in-memory story used by the
	// executor.
	cloned := story.Clone()
	cloned.Links = deepCopyMap(story.Links)
	for i := range cloned.Mods {
		cloned.Mods[i].Intent.Parameters = deepCopyMap(story.Mods[i].Intent.Parameters)
	}

	maskMap(cloned.Links, m.patterns)
	for i := range cloned.Mods {
		maskMap(cloned.Mods[i].Intent.Parameters, m.patterns)
	}
	for k := range cloned.Options.Annotations {
		if matchesAny(k, m.patterns) {
			cloned.Options.Annotations[k] = "***"
		}
	}

	return m.next.Save(ctx, name, cloned)
}

func (m *maskingMiddleware) Load(ctx context.Context, name string) (*domain.Story, error) {
	return m.next.Load(ctx, name)
}

func (m *maskingMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *maskingMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func deepCopyMap(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		if subMap, ok := v.(map[string]any); ok {
			out[k] = deepCopyMap(subMap)
		} else {
			out[k] = v // shallow copy of value
		}
	}
	return out
}

func maskMap(m map[string]any, patterns []*regexp.Regexp) {
	for k, v := range m {
		if matchesAny(k, patterns) {
			m[k] = "***"
			continue
		}
		if subMap, ok := v.(map[string]any); ok {
			maskMap(subMap, patterns)
		}
	}
}

func matchesAny(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}
