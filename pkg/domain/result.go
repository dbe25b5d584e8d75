package domain

// ExecuteStatus classifies the outcome of executing a command batch. The
// numeric values are part of the wire contract and must stay stable.
type ExecuteStatus int32

const (
	StatusOK ExecuteStatus = 0

	// Client-input errors.
	StatusInvalidCommand ExecuteStatus = 1
	StatusInvalidStoryID ExecuteStatus = 2

	// Domain-invariant violation.
	StatusStoryMustHaveMods ExecuteStatus = 3

	StatusInvalidMod ExecuteStatus = 4

	// Resolver outcome, not a defect.
	StatusNoModulesFound ExecuteStatus = 5

	// Collaborator fault (store unavailable, resolver crashed). The only
	// status where a client retry is reasonable.
	StatusInternalError ExecuteStatus = 6
)

// String returns the stable protocol name of the status.
func (s ExecuteStatus) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusInvalidCommand:
		return "INVALID_COMMAND"
	case StatusInvalidStoryID:
		return "INVALID_STORY_ID"
	case StatusStoryMustHaveMods:
		return "STORY_MUST_HAVE_MODS"
	case StatusInvalidMod:
		return "INVALID_MOD"
	case StatusNoModulesFound:
		return "NO_MODULES_FOUND"
	case StatusInternalError:
		return "INTERNAL_ERROR"
	default:
		return "UNKNOWN"
	}
}

// ExecuteResult is the aggregated outcome of one Execute call.
type ExecuteResult struct {
	Status ExecuteStatus `json:"status"`

	// StoryID names the story the batch ran against, when it exists (or was
	// created by this batch).
	StoryID string `json:"story_id,omitempty"`

	// ErrorMessage is a human-readable description of the first failure.
	ErrorMessage string `json:"error_message,omitempty"`
}

// OK reports whether the batch applied fully.
func (r ExecuteResult) OK() bool {
	return r.Status == StatusOK
}
