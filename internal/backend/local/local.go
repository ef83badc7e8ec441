// Package local implements service.Service on a persistent key-value store.
//
// The whole collection is kept as one JSON array under StorageKey and is
// rewritten on every mutation. Storage failures never surface to callers:
// unreadable data reads as an empty collection and failed writes are logged
// and dropped.
package local

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"todo/internal/logging"
	"todo/internal/service"
	"todo/internal/storage"
)

// StorageKey is the key holding the serialized task collection.
const StorageKey = "todo.tasks.v1"

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Service) {
		s.log = l
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service implements service.Service against a storage.KV.
type Service struct {
	kv  storage.KV
	log *log.Logger
	now func() time.Time

	// mu serializes read-modify-write cycles.
	mu sync.Mutex
}

var _ service.Service = (*Service)(nil)

// New creates a local backend over kv.
func New(kv storage.KV, opts ...Option) *Service {
	s := &Service{
		kv:  kv,
		log: logging.Discard(),
		now: time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.WithPrefix("local")
	return s
}

// List returns the persisted collection.
func (s *Service) List(ctx context.Context) ([]service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(), nil
}

// Create prepends a new task and persists the collection.
func (s *Service) Create(ctx context.Context, title string) (service.Task, error) {
	if strings.TrimSpace(title) == "" {
		return service.Task{}, service.ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	task := service.NewTask(title, s.now())
	tasks := s.read()
	next := make([]service.Task, 0, len(tasks)+1)
	next = append(next, task)
	next = append(next, tasks...)
	s.write(next)
	return task, nil
}

// Update merges u over the stored task with the given id.
// Returns service.ErrNotFound if the id is not stored.
func (s *Service) Update(ctx context.Context, id string, u service.Update) (service.Task, error) {
	if u.Title != nil && strings.TrimSpace(*u.Title) == "" {
		return service.Task{}, service.ErrEmptyTitle
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.read()
	idx := indexOf(tasks, id)
	if idx == -1 {
		return service.Task{}, fmt.Errorf("update %s: %w", id, service.ErrNotFound)
	}

	updated := u.Apply(tasks[idx])
	updated.UpdatedAt = max(service.NowMillis(s.now()), updated.CreatedAt)
	tasks[idx] = updated
	s.write(tasks)
	return updated, nil
}

// Remove deletes the task with the given id. Unknown ids are ignored.
func (s *Service) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks := s.read()
	next := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	s.write(next)
	return nil
}

// ClearCompleted deletes completed tasks and returns the rest.
func (s *Service) ClearCompleted(ctx context.Context) ([]service.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := service.FilterTasks(s.read(), service.FilterActive)
	s.write(remaining)
	return remaining, nil
}

// read loads the collection, returning an empty slice when the stored
// value is missing, unreadable, or does not look like a task array.
func (s *Service) read() []service.Task {
	raw, err := s.kv.Get(StorageKey)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Debug("read failed, using empty collection", "err", err)
		}
		return []service.Task{}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return []service.Task{}
	}

	tasks, err := decode(raw)
	if err != nil {
		s.log.Debug("stored collection is corrupt, using empty collection", "err", err)
		return []service.Task{}
	}
	return tasks
}

// write persists the collection. Failures are logged and swallowed.
func (s *Service) write(tasks []service.Task) {
	if tasks == nil {
		tasks = []service.Task{}
	}
	data, err := json.Marshal(tasks)
	if err != nil {
		s.log.Warn("encode failed, changes not persisted", "err", err)
		return
	}
	if err := s.kv.Set(StorageKey, data); err != nil {
		s.log.Warn("write failed, changes not persisted", "err", err)
	}
}

func indexOf(tasks []service.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
