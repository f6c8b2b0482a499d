// Package repository keeps live fortune sessions in memory.
package repository

import (
	"context"

	"github.com/okian/wangcai/internal/domain/workflow"
)

// Store provides access to the sessions of the running process.
type Store interface {
	// Create registers a new session in the welcome step and returns its id.
	Create(ctx context.Context) (string, *workflow.Orchestrator, error)

	// Get returns the session for id and refreshes its idle timer.
	// Returns ErrNotFound if the session is unknown or expired.
	Get(ctx context.Context, id string) (*workflow.Orchestrator, error)

	// Delete forgets a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string)

	// Count returns the number of live sessions.
	Count(ctx context.Context) int
}
