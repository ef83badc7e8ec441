package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want log.Level
	}{
		{"empty uses fallback", "", log.InfoLevel},
		{"debug", "debug", log.DebugLevel},
		{"upper case", "WARN", log.WarnLevel},
		{"unknown uses fallback", "chatty", log.InfoLevel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.in, log.InfoLevel); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	opts := DefaultOptions()
	logger := New(&buf, opts)

	logger.Debug("hidden")
	logger.Info("shown", "key", "value")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug line should be filtered at info level: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "key=value") {
		t.Errorf("expected info line with fields, got %q", out)
	}
	if !strings.Contains(out, "todo") {
		t.Errorf("expected prefix in output, got %q", out)
	}
}
