package commands

import (
	"cmp"
	"fmt"
	"slices"
	"sync"
)

// Registry holds registered commands.
type Registry struct {
	mu     sync.RWMutex
	lookup map[string]Command // name and aliases map to command
	cmds   []Command          // one entry per command
}

// NewRegistry creates a new command registry.
func NewRegistry() *Registry {
	return &Registry{
		lookup: make(map[string]Command),
	}
}

// Register adds a command to the registry.
// Returns an error if the name or any alias is already taken.
func (r *Registry) Register(c Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	keys := append([]string{c.Name()}, c.Aliases()...)
	for _, k := range keys {
		if _, exists := r.lookup[k]; exists {
			return fmt.Errorf("command name already registered: %s", k)
		}
	}
	for _, k := range keys {
		r.lookup[k] = c
	}
	r.cmds = append(r.cmds, c)
	return nil
}

// Find looks up a command by name or alias.
func (r *Registry) Find(name string) (Command, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cmd, ok := r.lookup[name]
	return cmd, ok
}

// All returns all commands sorted by name.
func (r *Registry) All() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := slices.Clone(r.cmds)
	slices.SortFunc(out, func(a, b Command) int {
		return cmp.Compare(a.Name(), b.Name())
	})
	return out
}

// DefaultRegistry is the global command registry.
var DefaultRegistry = NewRegistry()

// Register adds a command to the default registry.
func Register(c Command) {
	if err := DefaultRegistry.Register(c); err != nil {
		panic(err)
	}
}
