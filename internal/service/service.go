// Package service defines the backend-agnostic interface for task operations.
package service

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a task id does not exist in the backend.
var ErrNotFound = errors.New("task not found")

// ErrEmptyTitle is returned when a title is empty after trimming.
var ErrEmptyTitle = errors.New("title required")

// Service defines the interface for task backend operations.
// The remote and local backends both implement it; the store never
// knows which one it talks to.
type Service interface {
	// List returns the full task collection in backend order.
	List(ctx context.Context) ([]Task, error)

	// Create creates a task with the given title and returns the stored copy.
	Create(ctx context.Context, title string) (Task, error)

	// Update applies the set fields of u to the task with the given id.
	// Returns the authoritative record after the update.
	Update(ctx context.Context, id string, u Update) (Task, error)

	// Remove deletes a task by id.
	Remove(ctx context.Context, id string) error

	// ClearCompleted deletes all completed tasks and returns the survivors.
	ClearCompleted(ctx context.Context) ([]Task, error)
}
