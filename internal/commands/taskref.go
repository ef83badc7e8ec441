package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"todo/internal/service"
)

var (
	// ErrTaskRefRequired indicates no task reference was provided.
	ErrTaskRefRequired = errors.New("task reference required")

	// ErrOutOfRange indicates a task number past the end of the list.
	ErrOutOfRange = errors.New("task number out of range")

	// ErrUnknownRef indicates no task matches a reference.
	ErrUnknownRef = errors.New("task not found")

	// ErrAmbiguousRef indicates an id prefix matching several tasks.
	ErrAmbiguousRef = errors.New("ambiguous task reference")
)

// ResolveTaskRef finds the task a reference names within tasks, which must
// be in list order (newest first).
//
// Resolution order:
//  1. All digits: 1-based position in tasks
//  2. Exact id match
//  3. Unique id prefix
func ResolveTaskRef(tasks []service.Task, ref string) (service.Task, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return service.Task{}, ErrTaskRefRequired
	}

	if isAllDigits(ref) {
		n, err := strconv.Atoi(ref)
		if err != nil || n < 1 || n > len(tasks) {
			return service.Task{}, fmt.Errorf("%w: %s", ErrOutOfRange, ref)
		}
		return tasks[n-1], nil
	}

	var matches []service.Task
	for _, t := range tasks {
		if t.ID == ref {
			return t, nil
		}
		if strings.HasPrefix(t.ID, ref) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return service.Task{}, fmt.Errorf("%w: %s", ErrUnknownRef, ref)
	case 1:
		return matches[0], nil
	default:
		return service.Task{}, fmt.Errorf("%w: %s matches %d tasks", ErrAmbiguousRef, ref, len(matches))
	}
}

// isAllDigits returns true if s consists only of ASCII digits and is non-empty.
func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r > unicode.MaxASCII || !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
