package store

import (
	"slices"
	"sync"

	"todo/internal/service"
)

// Snapshot is a consistent view of the store at one moment.
type Snapshot struct {
	Tasks  []service.Task
	Filter service.Filter
	Counts service.Counts
}

// Filtered returns the snapshot's tasks passing its filter.
func (s Snapshot) Filtered() []service.Task {
	return service.FilterTasks(s.Tasks, s.Filter)
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{
		Tasks:  slices.Clone(s.tasks),
		Filter: s.filter,
		Counts: service.CountTasks(s.tasks),
	}
}

// Subscribe returns a channel receiving a Snapshot after every state
// change, starting with the current state. Only the latest undelivered
// snapshot is kept, so a slow reader skips intermediate states but never
// blocks the store. The returned func unsubscribes and closes the channel.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	ch <- s.snapshotLocked()
	s.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
	return ch, cancel
}

// publishLocked delivers the current state to every subscriber.
// s.mu must be held.
func (s *Store) publishLocked() {
	if len(s.subs) == 0 {
		return
	}
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		offer(ch, snap)
	}
}

// offer replaces any pending snapshot in ch with snap without blocking.
// Only publishLocked sends, always under s.mu, so the second send cannot
// race another sender.
func offer(ch chan Snapshot, snap Snapshot) {
	select {
	case ch <- snap:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	ch <- snap
}
