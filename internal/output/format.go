// Package output provides formatters for CLI output.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"todo/internal/service"
)

// Format selects how listings are rendered.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat parses a format name. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatText, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("invalid format: %s", s)
	}
}

// Entry is a task with its display number.
type Entry struct {
	Num  int          `json:"num" yaml:"num"`
	Task service.Task `json:"task" yaml:"task"`
}

// Listing is the structured form of the list command's output.
type Listing struct {
	Filter  service.Filter `json:"filter" yaml:"filter"`
	Counts  service.Counts `json:"counts" yaml:"counts"`
	Entries []Entry        `json:"tasks" yaml:"tasks"`
}

// Write renders l in format f.
func Write(w io.Writer, f Format, l Listing) error {
	if l.Entries == nil {
		l.Entries = []Entry{}
	}
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return err
		}
		return enc.Close()
	default:
		for _, e := range l.Entries {
			FormatTask(w, e.Num, e.Task)
		}
		FormatCounts(w, l.Counts)
		return nil
	}
}

// FormatTask formats a task line.
// Format: "{N:>4}  [x] {TITLE}\n" (4-wide right-aligned number, two spaces,
// completion box, title)
func FormatTask(w io.Writer, num int, task service.Task) {
	box := "[ ]"
	if task.Completed {
		box = "[x]"
	}
	fmt.Fprintf(w, "%4d  %s %s\n", num, box, normalizeTitle(task.Title))
}

// FormatCounts formats the summary line.
func FormatCounts(w io.Writer, c service.Counts) {
	fmt.Fprintf(w, "%d %s left, %d completed\n", c.Active, plural(c.Active, "item"), c.Completed)
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}

// normalizeTitle normalizes a task title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")

	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
