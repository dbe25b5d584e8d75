package domain

// Story is the durable unit of orchestration: a named collection of running
// mods plus the shared state (links) they communicate through.
//
// Invariant: a story that exists contains at least one mod. The executor never
// persists an empty story, and RemoveMod refuses to remove the last mod.
type Story struct {
	// Name is the client-assigned, session-unique, stable identifier.
	Name string `json:"name"`

	// Options captures creation-time configuration. Settable once, at
	// creation; ignored afterwards.
	Options StoryOptions `json:"options"`

	// Mods holds the running module instances, in insertion order.
	Mods []Mod `json:"mods"`

	// Links holds opaque link/data blobs owned by the resolver/runtime.
	// The engine only reads and replaces whole values by path.
	Links map[string]any `json:"links,omitempty"`

	// Focused mirrors the last SetFocusState command.
	Focused bool `json:"focused,omitempty"`
}

// StoryOptions is the creation-time configuration of a story. The struct is
// deliberately placeholder-extensible: clients that predate a field simply
// leave it zero.
type StoryOptions struct {
	DisplayName string            `json:"display_name,omitempty" yaml:"display_name" mapstructure:"display_name"`
	Annotations map[string]string `json:"annotations,omitempty" yaml:"annotations" mapstructure:"annotations"`
}

// Mod is a running module instance inside a story.
type Mod struct {
	// ID is unique within the owning story.
	ID string `json:"id"`

	// Intent describes what the mod is running, as resolved at AddMod time.
	Intent Intent `json:"intent"`

	// Handler is the concrete runnable selected by the resolver.
	Handler string `json:"handler,omitempty"`

	// ParentID and SurfaceRelation describe hierarchical placement. They are
	// opaque to the engine and carried through for the runtime/display layer.
	ParentID        string `json:"parent_id,omitempty"`
	SurfaceRelation string `json:"surface_relation,omitempty"`
}

// Intent describes desired module behavior. The resolver maps an intent to
// zero or more concrete candidates.
type Intent struct {
	// Action is the verb the module should perform (e.g. "com.example.view").
	Action string `json:"action" mapstructure:"action"`

	// Handler optionally pins a specific runnable, bypassing action matching.
	Handler string `json:"handler,omitempty" mapstructure:"handler"`

	// Parameters carries opaque arguments for the module.
	Parameters map[string]any `json:"parameters,omitempty" mapstructure:"parameters"`
}

// ModCandidate is one concrete runnable returned by the resolver for an
// intent.
type ModCandidate struct {
	Handler  string         `json:"handler"`
	Manifest map[string]any `json:"manifest,omitempty"`
}

// NewStory creates an empty story shell. The caller is expected to populate
// at least one mod before persisting it.
func NewStory(name string, options StoryOptions) *Story {
	return &Story{
		Name:    name,
		Options: options,
		Mods:    []Mod{},
	}
}

// FindMod returns the index of the mod with the given identifier, or -1.
func (s *Story) FindMod(id string) int {
	for i := range s.Mods {
		if s.Mods[i].ID == id {
			return i
		}
	}
	return -1
}

// UpsertMod inserts the mod, or replaces an existing mod with the same ID in
// place (re-adding a mod updates its intent rather than duplicating it).
func (s *Story) UpsertMod(mod Mod) {
	if i := s.FindMod(mod.ID); i >= 0 {
		s.Mods[i] = mod
		return
	}
	s.Mods = append(s.Mods, mod)
}

// RemoveMod deletes the mod at the given index, preserving order.
func (s *Story) RemoveMod(i int) {
	s.Mods = append(s.Mods[:i], s.Mods[i+1:]...)
}

// SetLink replaces the whole value at the given link path.
func (s *Story) SetLink(path string, value any) {
	if s.Links == nil {
		s.Links = make(map[string]any)
	}
	s.Links[path] = value
}

// Clone returns a deep-enough copy for snapshot isolation: mods, links and
// annotations are copied, link values themselves are treated as immutable.
func (s *Story) Clone() *Story {
	c := *s
	c.Mods = make([]Mod, len(s.Mods))
	copy(c.Mods, s.Mods)
	if s.Links != nil {
		c.Links = make(map[string]any, len(s.Links))
		for k, v := range s.Links {
			c.Links[k] = v
		}
	}
	if s.Options.Annotations != nil {
		c.Options.Annotations = make(map[string]string, len(s.Options.Annotations))
		for k, v := range s.Options.Annotations {
			c.Options.Annotations[k] = v
		}
	}
	return &c
}
