package store

import (
	"context"
	"slices"

	"todo/internal/service"
)

// reconcile maps the current state to the confirmed state.
type reconcile func(tasks []service.Task) []service.Task

// keep is the reconcile step for actions whose optimistic state is final.
func keep(tasks []service.Task) []service.Task { return tasks }

// change is one optimistic action.
type change struct {
	name string

	// apply computes the tentative state. It reports false when there is
	// nothing to do, in which case the backend is not called.
	apply func(tasks []service.Task) ([]service.Task, bool)

	// commit calls the backend and, on success, returns the step that folds
	// the confirmed result into whatever the state is by then.
	commit func(ctx context.Context) (reconcile, error)

	// rollback undoes apply against the current state.
	rollback func(tasks []service.Task) []service.Task
}

// transact runs c: apply under the lock, commit without it, then reconcile
// or roll back under the lock again. The lock is never held across the
// backend call, so other actions may interleave. Reconcile and rollback
// steps look records up by id rather than by the index seen in apply;
// actions on different tasks therefore compose, while two overlapping
// actions on the same task are not serialized.
func (s *Store) transact(ctx context.Context, c change) error {
	s.mu.Lock()
	next, ok := c.apply(s.tasks)
	if !ok {
		s.mu.Unlock()
		return nil
	}
	s.setLocked(next)
	s.mu.Unlock()

	fold, err := c.commit(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		s.log.Debug("rolled back", "action", c.name, "err", err)
		s.setLocked(c.rollback(s.tasks))
		return err
	}
	s.setLocked(fold(s.tasks))
	return nil
}

// The helpers below never modify their input; published snapshots share
// backing arrays with the state.

func indexOf(tasks []service.Task, id string) int {
	return slices.IndexFunc(tasks, func(t service.Task) bool { return t.ID == id })
}

func insertAt(tasks []service.Task, i int, t service.Task) []service.Task {
	out := make([]service.Task, 0, len(tasks)+1)
	out = append(out, tasks[:i]...)
	out = append(out, t)
	return append(out, tasks[i:]...)
}

func replaceAt(tasks []service.Task, i int, t service.Task) []service.Task {
	out := slices.Clone(tasks)
	out[i] = t
	return out
}

func removeAt(tasks []service.Task, i int) []service.Task {
	out := make([]service.Task, 0, len(tasks)-1)
	out = append(out, tasks[:i]...)
	return append(out, tasks[i+1:]...)
}

func removeID(tasks []service.Task, id string) []service.Task {
	if i := indexOf(tasks, id); i != -1 {
		return removeAt(tasks, i)
	}
	return tasks
}
