package commands

import (
	"errors"
	"fmt"
	"io"

	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/store"
)

// reportError prints err and returns the matching exit code. Problems the
// user can fix by changing the command line are user errors; everything
// else came from the backend.
func reportError(errOut io.Writer, err error) int {
	switch {
	case errors.Is(err, ErrTaskRefRequired),
		errors.Is(err, ErrOutOfRange),
		errors.Is(err, ErrUnknownRef),
		errors.Is(err, ErrAmbiguousRef),
		errors.Is(err, service.ErrEmptyTitle),
		errors.Is(err, service.ErrNotFound),
		errors.Is(err, store.ErrPending):
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	default:
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}
}

// ok prints the success marker unless quiet.
func ok(out io.Writer, quiet bool) int {
	if !quiet {
		fmt.Fprintln(out, "ok")
	}
	return exitcode.Success
}
