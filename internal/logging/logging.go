// Package logging builds the leveled console logger shared by all components.
package logging

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"
)

// Options holds configuration for the console logger.
type Options struct {
	Level           log.Level
	Formatter       log.Formatter
	ReportTimestamp bool
	Prefix          string
}

// DefaultOptions returns the options used by the CLI.
func DefaultOptions() Options {
	return Options{
		Level:     log.InfoLevel,
		Formatter: log.TextFormatter,
		Prefix:    "todo",
	}
}

// New creates a logger writing to w.
func New(w io.Writer, opts Options) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           opts.Level,
		Formatter:       opts.Formatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          opts.Prefix,
	})
}

// ParseLevel parses a level name, returning fallback for empty or unknown names.
func ParseLevel(name string, fallback log.Level) log.Level {
	name = strings.TrimSpace(name)
	if name == "" {
		return fallback
	}
	lvl, err := log.ParseLevel(strings.ToLower(name))
	if err != nil {
		return fallback
	}
	return lvl
}

// Discard returns a logger that drops everything. Used as the default
// for components constructed without a logger.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}
