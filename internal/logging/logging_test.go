package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		level, format string
		err           bool
	}{
		{"info", "text", false},
		{"DEBUG", "json", false},
		{"warn", "logfmt", false},
		{"", "", true},
		{"loud", "text", true},
		{"info", "xml", true},
	}

	for _, tt := range tests {
		_, err := New(&bytes.Buffer{}, tt.level, tt.format)
		if (err != nil) != tt.err {
			t.Errorf("New(%q, %q) error = %v, want error %v", tt.level, tt.format, err, tt.err)
		}
	}
}

func TestLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger, err := New(&buf, "warn", "logfmt")
	if err != nil {
		t.Fatal(err)
	}

	logger.Info("decoded frame", "frame", 1)
	if buf.Len() != 0 {
		t.Errorf("info should be filtered at warn level, got %q", buf.String())
	}

	logger.Warn("energy drift", "percent", 12.5)
	out := buf.String()
	if !strings.Contains(out, "energy drift") || !strings.Contains(out, "percent=12.5") {
		t.Errorf("unexpected output %q", out)
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("ignored")
}
