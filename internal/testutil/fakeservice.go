// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"todo/internal/service"
)

// BaseTime is the createdAt of the first task the fake creates, in ms.
const BaseTime int64 = 1_700_000_000_000

// FakeService is an in-memory implementation of service.Service for testing.
// Created tasks get ids "task-1", "task-2", ... and createdAt values one
// second apart, so creation order and display order are predictable.
type FakeService struct {
	mu    sync.Mutex
	tasks []service.Task // stored newest first
	seq   int
	calls []string

	// Error injection for testing
	ListErr           error
	CreateErr         error
	UpdateErr         error
	RemoveErr         error
	ClearCompletedErr error

	// Hook, when set, runs at the start of every call with the method name,
	// before any error injection. Tests use it to hold a call in flight.
	Hook func(method string)

	// AfterCreate, when set, runs after a successful Create has stored the
	// task and before it is returned.
	AfterCreate func(service.Task)
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{}
}

// Seed adds tasks with the given titles as if created in order, so the
// last title ends up first. Returns the created tasks in creation order.
func (f *FakeService) Seed(titles ...string) []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Task, 0, len(titles))
	for _, title := range titles {
		out = append(out, f.createLocked(title))
	}
	return out
}

// SetCompleted marks the task with the given id, bypassing injection.
func (f *FakeService) SetCompleted(id string, completed bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(id); i != -1 {
		f.tasks[i].Completed = completed
	}
}

// Stored returns the fake's current tasks, newest first.
func (f *FakeService) Stored() []service.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks)
}

// Calls returns the names of the methods called, in order.
func (f *FakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// CallCount returns how many times method was called.
func (f *FakeService) CallCount(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method {
			n++
		}
	}
	return n
}

func (f *FakeService) enter(method string) {
	f.mu.Lock()
	f.calls = append(f.calls, method)
	hook := f.Hook
	f.mu.Unlock()
	if hook != nil {
		hook(method)
	}
}

// List implements service.Service.
func (f *FakeService) List(ctx context.Context) ([]service.Task, error) {
	f.enter("List")
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.tasks), nil
}

// Create implements service.Service.
func (f *FakeService) Create(ctx context.Context, title string) (service.Task, error) {
	f.enter("Create")
	if f.CreateErr != nil {
		return service.Task{}, f.CreateErr
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return service.Task{}, service.ErrEmptyTitle
	}
	f.mu.Lock()
	t := f.createLocked(title)
	after := f.AfterCreate
	f.mu.Unlock()
	if after != nil {
		after(t)
	}
	return t, nil
}

func (f *FakeService) createLocked(title string) service.Task {
	f.seq++
	ms := BaseTime + int64(f.seq-1)*1000
	t := service.Task{
		ID:        fmt.Sprintf("task-%d", f.seq),
		Title:     title,
		CreatedAt: ms,
		UpdatedAt: ms,
	}
	f.tasks = slices.Insert(f.tasks, 0, t)
	return t
}

// Update implements service.Service.
func (f *FakeService) Update(ctx context.Context, id string, u service.Update) (service.Task, error) {
	f.enter("Update")
	if f.UpdateErr != nil {
		return service.Task{}, f.UpdateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.indexLocked(id)
	if i == -1 {
		return service.Task{}, fmt.Errorf("update %s: %w", id, service.ErrNotFound)
	}
	t := u.Apply(f.tasks[i])
	t.UpdatedAt++
	f.tasks[i] = t
	return t, nil
}

// Remove implements service.Service.
func (f *FakeService) Remove(ctx context.Context, id string) error {
	f.enter("Remove")
	if f.RemoveErr != nil {
		return f.RemoveErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if i := f.indexLocked(id); i != -1 {
		f.tasks = slices.Delete(f.tasks, i, i+1)
	}
	return nil
}

// ClearCompleted implements service.Service.
func (f *FakeService) ClearCompleted(ctx context.Context) ([]service.Task, error) {
	f.enter("ClearCompleted")
	if f.ClearCompletedErr != nil {
		return nil, f.ClearCompletedErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = service.FilterTasks(f.tasks, service.FilterActive)
	return slices.Clone(f.tasks), nil
}

func (f *FakeService) indexLocked(id string) int {
	return slices.IndexFunc(f.tasks, func(t service.Task) bool { return t.ID == id })
}
