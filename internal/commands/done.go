package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/service"
	"todo/internal/store"
)

func init() {
	Register(&DoneCmd{})
	Register(&UndoCmd{})
}

// DoneCmd implements the done command.
type DoneCmd struct{}

func (c *DoneCmd) Name() string      { return "done" }
func (c *DoneCmd) Aliases() []string { return []string{"complete"} }
func (c *DoneCmd) Synopsis() string  { return "Mark a task completed" }
func (c *DoneCmd) Usage() string     { return "todo done <ref>" }
func (c *DoneCmd) NeedsStore() bool  { return true }

func (c *DoneCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *DoneCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, st, args, true, out, errOut)
}

// UndoCmd implements the undo command.
type UndoCmd struct{}

func (c *UndoCmd) Name() string      { return "undo" }
func (c *UndoCmd) Aliases() []string { return []string{"reopen"} }
func (c *UndoCmd) Synopsis() string  { return "Mark a task active again" }
func (c *UndoCmd) Usage() string     { return "todo undo <ref>" }
func (c *UndoCmd) NeedsStore() bool  { return true }

func (c *UndoCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *UndoCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	return runSetCompleted(ctx, cfg, st, args, false, out, errOut)
}

// runSetCompleted is the shared implementation for done and undo.
func runSetCompleted(ctx context.Context, cfg *config.Config, st *store.Store, args []string, completed bool, out, errOut io.Writer) int {
	if len(args) > 1 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[1])
		return exitcode.UserError
	}
	task, err := resolveArg(st, args)
	if err != nil {
		return reportError(errOut, err)
	}

	if err := st.Update(ctx, task.ID, service.SetCompleted(completed)); err != nil {
		return reportError(errOut, err)
	}
	return ok(out, cfg.Quiet)
}

// resolveArg resolves the first positional argument as a task reference.
func resolveArg(st *store.Store, args []string) (service.Task, error) {
	if len(args) == 0 {
		return service.Task{}, ErrTaskRefRequired
	}
	return ResolveTaskRef(st.Tasks(), args[0])
}
