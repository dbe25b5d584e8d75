package domain

import (
	"errors"
	"fmt"
)

// ErrStoryNotFound is returned when a story name cannot be found in the store.
var ErrStoryNotFound = errors.New("story not found")

// ErrStoryControlDenied is returned when the session refuses to hand out a
// control handle for a story name.
var ErrStoryControlDenied = errors.New("story control denied")

// CommandError carries the ExecuteStatus describing why a single command
// failed. The batch executor surfaces it as the batch's ExecuteResult.
type CommandError struct {
	Status  ExecuteStatus
	Message string
}

// NewCommandError builds a CommandError with a formatted message.
func NewCommandError(status ExecuteStatus, format string, args ...any) *CommandError {
	return &CommandError{
		Status:  status,
		Message: fmt.Sprintf(format, args...),
	}
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("%s: %s", e.Status, e.Message)
}

// AsCommandError extracts a CommandError from err. Unclassified errors are
// treated as internal faults.
func AsCommandError(err error) *CommandError {
	var cerr *CommandError
	if errors.As(err, &cerr) {
		return cerr
	}
	return &CommandError{Status: StatusInternalError, Message: err.Error()}
}
