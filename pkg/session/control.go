package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aldaque/storyloom/pkg/domain"
)

// Controller is a story control handle. Each handle owns a private pending
// batch; Enqueue and SetCreateOptions never touch story state, only Execute
// does. Handles for the same story may be used concurrently: their batches
// are serialized by the registry's per-story lock and never interleave.
type Controller struct {
	registry  *Registry
	storyName string

	mu      sync.Mutex
	pending []domain.Command
}

// StoryName returns the name of the story this handle controls.
func (c *Controller) StoryName() string {
	return c.storyName
}

// SetCreateOptions registers creation options for a story that does not
// exist yet. The first registration (across all handles for the name) wins;
// later calls, and calls made after the story has been created, are silently
// ignored.
func (c *Controller) SetCreateOptions(options domain.StoryOptions) {
	c.registry.registerCreateOptions(c.storyName, options)
}

// Enqueue appends commands to this handle's pending batch. It may be called
// multiple times before Execute and does not mutate story state.
func (c *Controller) Enqueue(commands ...domain.Command) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pending = append(c.pending, commands...)
}

// Execute atomically applies the pending batch, in enqueue order, against
// the target story. The batch is consumed exactly once, even on failure.
//
// Commands are applied one at a time; the first failure stops the batch and
// the effects of earlier commands remain applied (stop on error, no
// rollback). Atomicity holds with respect to other batches: no two batches
// on the same story interleave their per-command effects.
func (c *Controller) Execute(ctx context.Context) domain.ExecuteResult {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	return c.registry.execute(ctx, c.storyName, batch)
}

// execute runs one drained batch inside the story's critical section.
func (r *Registry) execute(ctx context.Context, name string, batch []domain.Command) domain.ExecuteResult {
	var result domain.ExecuteResult

	err := r.withStoryLock(ctx, name, func(ctx context.Context) error {
		result = r.executeLocked(ctx, name, batch)
		return nil
	})
	if err != nil {
		// Lock acquisition is the only failure path here.
		return domain.ExecuteResult{
			Status:       domain.StatusInternalError,
			ErrorMessage: err.Error(),
		}
	}
	return result
}

func (r *Registry) executeLocked(ctx context.Context, name string, batch []domain.Command) domain.ExecuteResult {
	start := time.Now()

	story, created, result := r.loadOrCreate(ctx, name, batch)
	if story == nil {
		return result
	}

	if r.hooks.OnBatchBegin != nil {
		r.hooks.OnBatchBegin(ctx, &domain.BatchEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBatchBegin, StoryName: name},
			Size:      len(batch),
		})
	}

	result = domain.ExecuteResult{Status: domain.StatusOK, StoryID: name}
	applied := 0
	for _, cmd := range batch {
		err := r.machine.Apply(ctx, story, cmd)

		status := domain.StatusOK
		if err != nil {
			status = domain.AsCommandError(err).Status
		}
		if r.hooks.OnCommandApplied != nil {
			r.hooks.OnCommandApplied(ctx, &domain.CommandEvent{
				EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCommandApplied, StoryName: name},
				Command:   cmd.Type,
				Status:    status,
			})
		}

		if err != nil {
			cerr := domain.AsCommandError(err)
			r.logger.Warn("batch stopped at failing command",
				"story", name,
				"command", string(cmd.Type),
				"status", cerr.Status.String(),
				"err", cerr.Message,
			)
			// Stop on error. Commands already applied stay applied.
			result = domain.ExecuteResult{
				Status:       cerr.Status,
				StoryID:      name,
				ErrorMessage: cerr.Message,
			}
			break
		}
		applied++
	}

	if persistErr := r.persist(ctx, name, story, created, applied); persistErr != nil {
		result = domain.ExecuteResult{
			Status:       domain.StatusInternalError,
			StoryID:      name,
			ErrorMessage: persistErr.Error(),
		}
	}

	if r.hooks.OnBatchEnd != nil {
		r.hooks.OnBatchEnd(ctx, &domain.BatchEvent{
			EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventBatchEnd, StoryName: name},
			Size:      len(batch),
			Applied:   applied,
			Status:    result.Status,
			Duration:  time.Since(start),
		})
	}

	r.logger.Debug("batch executed",
		"story", name,
		"size", len(batch),
		"applied", applied,
		"status", result.Status.String(),
	)
	return result
}

// loadOrCreate fetches the story snapshot to apply the batch against. A story
// that does not exist is created only when the batch can leave it with at
// least one mod: the batch leads with AddMod, or create options are
// registered and an AddMod appears somewhere in the batch. Anything else
// fails with INVALID_STORY_ID before any command is applied; an OK result
// always refers to a durable story.
func (r *Registry) loadOrCreate(ctx context.Context, name string, batch []domain.Command) (*domain.Story, bool, domain.ExecuteResult) {
	story, err := r.store.Load(ctx, name)
	if err == nil {
		// Late create options are dead weight once the story exists.
		r.takePendingOptions(name)
		return story, false, domain.ExecuteResult{}
	}

	if !errors.Is(err, domain.ErrStoryNotFound) {
		return nil, false, domain.ExecuteResult{
			Status:       domain.StatusInternalError,
			ErrorMessage: fmt.Sprintf("failed to load story %q: %v", name, err),
		}
	}

	creates := (len(batch) > 0 && batch[0].Type == domain.CommandAddMod) ||
		(r.hasPendingOptions(name) && containsAddMod(batch))
	if !creates {
		return nil, false, domain.ExecuteResult{
			Status:       domain.StatusInvalidStoryID,
			ErrorMessage: fmt.Sprintf("story %q does not exist", name),
		}
	}

	options := r.peekPendingOptions(name)
	return domain.NewStory(name, options), true, domain.ExecuteResult{}
}

func containsAddMod(batch []domain.Command) bool {
	for _, cmd := range batch {
		if cmd.Type == domain.CommandAddMod {
			return true
		}
	}
	return false
}

// persist writes the resulting story state back to the store. A story
// created by this batch that ended up with zero mods is not persisted:
// creation is aborted rather than violating the at-least-one-mod invariant.
// A pre-existing story is only rewritten when the batch applied something.
func (r *Registry) persist(ctx context.Context, name string, story *domain.Story, created bool, applied int) error {
	if created && len(story.Mods) == 0 {
		return nil
	}
	if !created && applied == 0 {
		return nil
	}
	if err := r.store.Save(ctx, name, story); err != nil {
		return fmt.Errorf("failed to persist story %q: %w", name, err)
	}
	if created {
		// The registered options made it into the durable record; clear the
		// registration so the name can be reused after deletion.
		r.takePendingOptions(name)
	}
	return nil
}
