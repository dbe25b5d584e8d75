package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventBatchBegin     EventType = "batch_begin"
	EventBatchEnd       EventType = "batch_end"
	EventCommandApplied EventType = "command_applied"
	EventIntentResolved EventType = "intent_resolved"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	StoryName string    `json:"story_name"`
}

// BatchEvent describes the start or end of one Execute call.
type BatchEvent struct {
	EventBase
	Size     int           `json:"size"`
	Applied  int           `json:"applied"`
	Status   ExecuteStatus `json:"status"`
	Duration time.Duration `json:"duration"`
}

// CommandEvent describes the application of one command within a batch.
type CommandEvent struct {
	EventBase
	Command CommandType   `json:"command"`
	Status  ExecuteStatus `json:"status"`
}

// ResolveEvent describes one resolver round-trip.
type ResolveEvent struct {
	EventBase
	Action     string        `json:"action"`
	Candidates int           `json:"candidates"`
	Duration   time.Duration `json:"duration"`
}

// LifecycleHooks defines callbacks for executor observability. Hooks run
// inside the story's critical section and must be fast and non-blocking.
type LifecycleHooks struct {
	OnBatchBegin     func(context.Context, *BatchEvent)
	OnBatchEnd       func(context.Context, *BatchEvent)
	OnCommandApplied func(context.Context, *CommandEvent)
	OnIntentResolved func(context.Context, *ResolveEvent)
}
