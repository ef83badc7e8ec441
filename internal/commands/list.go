package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/output"
	"todo/internal/service"
	"todo/internal/store"
)

func init() {
	Register(&ListCmd{})
}

// ListCmd implements the list command.
// Handles both `todo` (no args) and `todo list`.
type ListCmd struct {
	filter string
	format string
}

// SetFilter sets the filter flag (for testing).
func (c *ListCmd) SetFilter(f string) {
	c.filter = f
}

// SetFormat sets the format flag (for testing).
func (c *ListCmd) SetFormat(f string) {
	c.format = f
}

func (c *ListCmd) Name() string      { return "list" }
func (c *ListCmd) Aliases() []string { return []string{"ls"} }
func (c *ListCmd) Synopsis() string  { return "List tasks" }
func (c *ListCmd) Usage() string {
	return "todo list [--filter all|active|completed] [--format text|json|yaml]"
}
func (c *ListCmd) NeedsStore() bool { return true }

func (c *ListCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.filter, "filter", "all", "")
	fs.StringVar(&c.format, "format", "text", "")
}

func (c *ListCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "error: unexpected argument: %s\n", args[0])
		return exitcode.UserError
	}

	filter, err := service.ParseFilter(c.filter)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	format, err := output.ParseFormat(c.format)
	if err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}

	st.SetFilter(filter)
	snap := st.Snapshot()

	// Numbers are positions in the unfiltered list so refs stay valid
	// whatever filter was used to display them.
	listing := output.Listing{Filter: snap.Filter, Counts: snap.Counts}
	for i, t := range snap.Tasks {
		if filter.Match(t) {
			listing.Entries = append(listing.Entries, output.Entry{Num: i + 1, Task: t})
		}
	}

	if format == output.FormatText {
		if len(listing.Entries) == 0 {
			if !cfg.Quiet {
				fmt.Fprintln(out, "no tasks found")
			}
			return exitcode.Success
		}
		if cfg.Quiet {
			for _, e := range listing.Entries {
				output.FormatTask(out, e.Num, e.Task)
			}
			return exitcode.Success
		}
	}

	if err := output.Write(out, format, listing); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}
