package service

import (
	"crypto/rand"
	"fmt"
	mrand "math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task represents a single task item.
// JSON field names match the remote API and the local storage layout.
type Task struct {
	ID        string `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	Completed bool   `json:"completed" yaml:"completed"`
	CreatedAt int64  `json:"createdAt" yaml:"createdAt"` // epoch milliseconds
	UpdatedAt int64  `json:"updatedAt" yaml:"updatedAt"` // epoch milliseconds
}

// Update holds the fields of a partial task update. Nil fields are left alone.
type Update struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}

// Empty reports whether the update sets no fields.
func (u Update) Empty() bool {
	return u.Title == nil && u.Completed == nil
}

// Apply returns t with the set fields of u merged over it.
// The title is trimmed; timestamps are not touched.
func (u Update) Apply(t Task) Task {
	if u.Title != nil {
		t.Title = strings.TrimSpace(*u.Title)
	}
	if u.Completed != nil {
		t.Completed = *u.Completed
	}
	return t
}

// SetTitle returns an Update that changes the title.
func SetTitle(title string) Update {
	return Update{Title: &title}
}

// SetCompleted returns an Update that changes the completion status.
func SetCompleted(completed bool) Update {
	return Update{Completed: &completed}
}

// Filter selects tasks by completion status.
type Filter string

const (
	FilterAll       Filter = "all"
	FilterActive    Filter = "active"
	FilterCompleted Filter = "completed"
)

// ParseFilter parses a filter name (case-insensitive, trimmed).
func ParseFilter(s string) (Filter, error) {
	switch f := Filter(strings.ToLower(strings.TrimSpace(s))); f {
	case FilterAll, FilterActive, FilterCompleted:
		return f, nil
	case "":
		return FilterAll, nil
	default:
		return "", fmt.Errorf("invalid filter: %s", s)
	}
}

// Match reports whether t passes the filter.
func (f Filter) Match(t Task) bool {
	switch f {
	case FilterActive:
		return !t.Completed
	case FilterCompleted:
		return t.Completed
	default:
		return true
	}
}

// Counts holds task totals by status.
type Counts struct {
	All       int `json:"all" yaml:"all"`
	Active    int `json:"active" yaml:"active"`
	Completed int `json:"completed" yaml:"completed"`
}

// CountTasks computes Counts for a task sequence.
func CountTasks(tasks []Task) Counts {
	c := Counts{All: len(tasks)}
	for _, t := range tasks {
		if !t.Completed {
			c.Active++
		}
	}
	c.Completed = c.All - c.Active
	return c
}

// FilterTasks returns the tasks that pass f, in order.
// FilterAll returns a copy of the input.
func FilterTasks(tasks []Task, f Filter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t) {
			out = append(out, t)
		}
	}
	return out
}

// NowMillis returns t as epoch milliseconds.
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// NewTask builds a fresh, uncompleted task with a generated id.
// Both timestamps are set to now.
func NewTask(title string, now time.Time) Task {
	ms := NowMillis(now)
	return Task{
		ID:        NewID(now),
		Title:     strings.TrimSpace(title),
		CreatedAt: ms,
		UpdatedAt: ms,
	}
}

// NewID returns a random UUID. If the system random source fails it falls
// back to "<epoch-ms>-<base36 random>".
func NewID(now time.Time) string {
	id, err := uuid.NewRandomFromReader(rand.Reader)
	if err == nil {
		return id.String()
	}
	return fallbackID(now)
}

func fallbackID(now time.Time) string {
	return strconv.FormatInt(NowMillis(now), 10) + "-" + strconv.FormatUint(mrand.Uint64(), 36)
}
