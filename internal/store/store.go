// Package store holds the in-memory task state shown to users and keeps it
// in sync with a service.Service using optimistic updates.
//
// Every mutating action changes local state first, then confirms with the
// backend. On success the backend's copy replaces the tentative one; on
// failure the change is rolled back before the error is returned, so a
// caller that sees an error also sees the state as it was before the call.
package store

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"todo/internal/logging"
	"todo/internal/service"
)

// TempPrefix marks ids of tasks that are not yet confirmed by the backend.
const TempPrefix = "temp-"

// ErrPending is returned when an action targets a task whose creation has
// not been confirmed yet.
var ErrPending = errors.New("task is still being created")

// IsTemp reports whether id is a temporary placeholder id.
func IsTemp(id string) bool {
	return strings.HasPrefix(id, TempPrefix)
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

// WithClock overrides the time source for optimistic timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithTempID overrides placeholder id generation. Generated ids must start
// with TempPrefix.
func WithTempID(gen func() string) Option {
	return func(s *Store) {
		s.tempID = gen
	}
}

// Store is the authoritative in-memory view of the task collection.
// It is safe for concurrent use; see transact for how overlapping actions
// interact.
type Store struct {
	svc    service.Service
	log    *log.Logger
	now    func() time.Time
	tempID func() string

	mu     sync.Mutex
	tasks  []service.Task // never modified in place
	filter service.Filter
	subs   map[int]chan Snapshot
	nextID int
}

// New creates an empty store backed by svc. Call Load to populate it.
func New(svc service.Service, opts ...Option) *Store {
	s := &Store{
		svc:    svc,
		log:    logging.Discard(),
		now:    time.Now,
		tasks:  []service.Task{},
		filter: service.FilterAll,
		subs:   make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.tempID == nil {
		s.tempID = func() string {
			return TempPrefix + service.NewID(s.now())
		}
	}
	s.log = s.log.WithPrefix("store")
	return s
}

// Tasks returns the task sequence in display order.
func (s *Store) Tasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tasks)
}

// Filter returns the current status filter.
func (s *Store) Filter() service.Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter
}

// Counts returns task totals by status.
func (s *Store) Counts() service.Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return service.CountTasks(s.tasks)
}

// FilteredTasks returns the tasks passing the current filter, in order.
func (s *Store) FilteredTasks() []service.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return service.FilterTasks(s.tasks, s.filter)
}

// Find returns the task with the given id.
func (s *Store) Find(id string) (service.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOf(s.tasks, id); i != -1 {
		return s.tasks[i], true
	}
	return service.Task{}, false
}

// SetFilter changes the status filter.
func (s *Store) SetFilter(f service.Filter) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filter = f
	s.publishLocked()
}

// Load replaces the state with the backend's collection, newest first.
func (s *Store) Load(ctx context.Context) error {
	tasks, err := s.svc.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(sortNewestFirst(tasks))
	return nil
}

// Add creates a task. A title that is empty after trimming is ignored.
// A placeholder with a temporary id is shown at the front until the
// backend confirms; it is then replaced in place by the created task.
// Returns the created task, or the zero Task when nothing was added.
func (s *Store) Add(ctx context.Context, title string) (service.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return service.Task{}, nil
	}

	ms := service.NowMillis(s.now())
	placeholder := service.Task{
		ID:        s.tempID(),
		Title:     title,
		CreatedAt: ms,
		UpdatedAt: ms,
	}

	var created service.Task
	err := s.transact(ctx, change{
		name: "add",
		apply: func(tasks []service.Task) ([]service.Task, bool) {
			return insertAt(tasks, 0, placeholder), true
		},
		commit: func(ctx context.Context) (reconcile, error) {
			t, err := s.svc.Create(ctx, title)
			if err != nil {
				return nil, err
			}
			created = t
			return func(tasks []service.Task) []service.Task {
				// A concurrent Load may already have brought the task in.
				if i := indexOf(tasks, t.ID); i != -1 {
					return removeID(replaceAt(tasks, i, t), placeholder.ID)
				}
				if i := indexOf(tasks, placeholder.ID); i != -1 {
					return replaceAt(tasks, i, t)
				}
				return insertAt(tasks, 0, t)
			}, nil
		},
		rollback: func(tasks []service.Task) []service.Task {
			return removeID(tasks, placeholder.ID)
		},
	})
	return created, err
}

// Update applies u to the task with the given id. Unknown ids and empty
// updates are no-ops. The change is visible immediately with a refreshed
// updatedAt and replaced by the backend's record once confirmed.
func (s *Store) Update(ctx context.Context, id string, u service.Update) error {
	if IsTemp(id) {
		return ErrPending
	}
	if u.Empty() {
		return nil
	}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return service.ErrEmptyTitle
		}
		u.Title = &title
	}

	var prev service.Task
	return s.transact(ctx, change{
		name: "update",
		apply: func(tasks []service.Task) ([]service.Task, bool) {
			i := indexOf(tasks, id)
			if i == -1 {
				return tasks, false
			}
			prev = tasks[i]
			next := u.Apply(prev)
			next.UpdatedAt = max(service.NowMillis(s.now()), next.CreatedAt)
			return replaceAt(tasks, i, next), true
		},
		commit: func(ctx context.Context) (reconcile, error) {
			t, err := s.svc.Update(ctx, id, u)
			if err != nil {
				return nil, err
			}
			return func(tasks []service.Task) []service.Task {
				if i := indexOf(tasks, id); i != -1 {
					return replaceAt(tasks, i, t)
				}
				return tasks
			}, nil
		},
		rollback: func(tasks []service.Task) []service.Task {
			if i := indexOf(tasks, id); i != -1 {
				return replaceAt(tasks, i, prev)
			}
			return tasks
		},
	})
}

// Toggle flips the completed flag of the task with the given id.
func (s *Store) Toggle(ctx context.Context, id string) error {
	t, ok := s.Find(id)
	if !ok {
		return nil
	}
	return s.Update(ctx, id, service.SetCompleted(!t.Completed))
}

// Remove deletes the task with the given id. Unknown ids are no-ops.
// On failure the task is put back at its original position.
func (s *Store) Remove(ctx context.Context, id string) error {
	if IsTemp(id) {
		return ErrPending
	}

	var (
		prev service.Task
		pos  int
	)
	return s.transact(ctx, change{
		name: "remove",
		apply: func(tasks []service.Task) ([]service.Task, bool) {
			i := indexOf(tasks, id)
			if i == -1 {
				return tasks, false
			}
			prev, pos = tasks[i], i
			return removeAt(tasks, i), true
		},
		commit: func(ctx context.Context) (reconcile, error) {
			if err := s.svc.Remove(ctx, id); err != nil {
				return nil, err
			}
			return keep, nil
		},
		rollback: func(tasks []service.Task) []service.Task {
			if indexOf(tasks, id) != -1 {
				return tasks
			}
			return insertAt(tasks, min(pos, len(tasks)), prev)
		},
	})
}

// ClearCompleted removes all completed tasks. On success the state becomes
// the backend's remainder, newest first; on failure the whole previous
// sequence is restored.
func (s *Store) ClearCompleted(ctx context.Context) error {
	var prev []service.Task
	return s.transact(ctx, change{
		name: "clear-completed",
		apply: func(tasks []service.Task) ([]service.Task, bool) {
			prev = tasks
			return service.FilterTasks(tasks, service.FilterActive), true
		},
		commit: func(ctx context.Context) (reconcile, error) {
			remaining, err := s.svc.ClearCompleted(ctx)
			if err != nil {
				return nil, err
			}
			return func([]service.Task) []service.Task {
				return sortNewestFirst(remaining)
			}, nil
		},
		rollback: func([]service.Task) []service.Task {
			return prev
		},
	})
}

// setLocked replaces the task sequence and notifies subscribers.
// s.mu must be held.
func (s *Store) setLocked(tasks []service.Task) {
	s.tasks = tasks
	s.publishLocked()
}

// sortNewestFirst returns a copy of tasks ordered by createdAt descending.
// Ties keep their relative order.
func sortNewestFirst(tasks []service.Task) []service.Task {
	out := slices.Clone(tasks)
	if out == nil {
		out = []service.Task{}
	}
	slices.SortStableFunc(out, func(a, b service.Task) int {
		return cmp.Compare(b.CreatedAt, a.CreatedAt)
	})
	return out
}
