package domain

// CommandType discriminates the Command variant.
type CommandType string

const (
	CommandAddMod         CommandType = "add_mod"
	CommandRemoveMod      CommandType = "remove_mod"
	CommandSendModCommand CommandType = "send_mod_command"
	CommandSetLinkValue   CommandType = "set_link_value"
	CommandSetFocusState  CommandType = "set_focus_state"
)

// Command is a tagged variant describing one story mutation. Exactly one
// payload field, matching Type, must be set. Commands are immutable once
// enqueued.
type Command struct {
	Type CommandType `json:"type" mapstructure:"type"`

	AddMod         *AddMod         `json:"add_mod,omitempty" mapstructure:"add_mod"`
	RemoveMod      *RemoveMod      `json:"remove_mod,omitempty" mapstructure:"remove_mod"`
	SendModCommand *SendModCommand `json:"send_mod_command,omitempty" mapstructure:"send_mod_command"`
	SetLinkValue   *SetLinkValue   `json:"set_link_value,omitempty" mapstructure:"set_link_value"`
	SetFocusState  *SetFocusState  `json:"set_focus_state,omitempty" mapstructure:"set_focus_state"`
}

// AddMod resolves an intent and inserts the resulting mod into the story.
type AddMod struct {
	// ModName optionally names the new mod. Empty means the engine assigns
	// an identifier.
	ModName string `json:"mod_name,omitempty" mapstructure:"mod_name"`

	Intent Intent `json:"intent" mapstructure:"intent"`

	// Placement, opaque to the engine.
	ParentModName   string `json:"parent_mod_name,omitempty" mapstructure:"parent_mod_name"`
	SurfaceRelation string `json:"surface_relation,omitempty" mapstructure:"surface_relation"`
}

// RemoveMod removes an existing mod from the story.
type RemoveMod struct {
	ModName string `json:"mod_name" mapstructure:"mod_name"`
}

// SendModCommand delivers an opaque command to a running mod. Side effects
// are owned by the runtime; the engine only validates the target.
type SendModCommand struct {
	ModName string         `json:"mod_name" mapstructure:"mod_name"`
	Command string         `json:"command" mapstructure:"command"`
	Args    map[string]any `json:"args,omitempty" mapstructure:"args"`
}

// SetLinkValue replaces the value stored at a link path.
type SetLinkValue struct {
	Path  string `json:"path" mapstructure:"path"`
	Value any    `json:"value" mapstructure:"value"`
}

// SetFocusState records whether the story is focused.
type SetFocusState struct {
	Focused bool `json:"focused" mapstructure:"focused"`
}

// Validate checks structural well-formedness: the type tag is known, exactly
// the matching payload is present, and required fields are set. It returns a
// *CommandError with StatusInvalidCommand on failure.
func (c Command) Validate() error {
	if n := c.payloadCount(); n != 1 {
		return NewCommandError(StatusInvalidCommand, "command must carry exactly one payload, got %d", n)
	}

	switch c.Type {
	case CommandAddMod:
		if c.AddMod == nil {
			return payloadMismatch(c.Type)
		}
		if c.AddMod.Intent.Action == "" && c.AddMod.Intent.Handler == "" {
			return NewCommandError(StatusInvalidCommand, "add_mod requires an intent action or handler")
		}
	case CommandRemoveMod:
		if c.RemoveMod == nil {
			return payloadMismatch(c.Type)
		}
		if c.RemoveMod.ModName == "" {
			return NewCommandError(StatusInvalidCommand, "remove_mod requires a mod name")
		}
	case CommandSendModCommand:
		if c.SendModCommand == nil {
			return payloadMismatch(c.Type)
		}
		if c.SendModCommand.ModName == "" || c.SendModCommand.Command == "" {
			return NewCommandError(StatusInvalidCommand, "send_mod_command requires a mod name and a command")
		}
	case CommandSetLinkValue:
		if c.SetLinkValue == nil {
			return payloadMismatch(c.Type)
		}
		if c.SetLinkValue.Path == "" {
			return NewCommandError(StatusInvalidCommand, "set_link_value requires a path")
		}
	case CommandSetFocusState:
		if c.SetFocusState == nil {
			return payloadMismatch(c.Type)
		}
	default:
		return NewCommandError(StatusInvalidCommand, "unknown command type %q", c.Type)
	}

	return nil
}

func (c Command) payloadCount() int {
	n := 0
	if c.AddMod != nil {
		n++
	}
	if c.RemoveMod != nil {
		n++
	}
	if c.SendModCommand != nil {
		n++
	}
	if c.SetLinkValue != nil {
		n++
	}
	if c.SetFocusState != nil {
		n++
	}
	return n
}

func payloadMismatch(t CommandType) error {
	return NewCommandError(StatusInvalidCommand, "command type %q does not match its payload", t)
}
