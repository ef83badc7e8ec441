package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"todo/internal/config"
	"todo/internal/exitcode"
	"todo/internal/store"
	"todo/internal/tui"
)

func init() {
	Register(&TuiCmd{})
}

// TuiCmd implements the tui command.
type TuiCmd struct {
	// Input is read for key presses. Defaults to os.Stdin.
	Input io.Reader
}

func (c *TuiCmd) Name() string      { return "tui" }
func (c *TuiCmd) Aliases() []string { return []string{"ui"} }
func (c *TuiCmd) Synopsis() string  { return "Open the interactive task list" }
func (c *TuiCmd) Usage() string     { return "todo tui" }
func (c *TuiCmd) NeedsStore() bool  { return true }

func (c *TuiCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *TuiCmd) Run(ctx context.Context, cfg *config.Config, st *store.Store, args []string, out, errOut io.Writer) int {
	in := c.Input
	if in == nil {
		in = os.Stdin
		if !isTerminal(out) {
			fmt.Fprintln(errOut, "error: tui requires a terminal")
			return exitcode.UserError
		}
	}

	if err := tui.Run(ctx, st, in, out); err != nil {
		fmt.Fprintf(errOut, "error: %v\n", err)
		return exitcode.UserError
	}
	return exitcode.Success
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
