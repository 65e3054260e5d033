package logging

import (
	"bytes"
	"strings"
	"testing"

	clog "github.com/charmbracelet/log"
)

// TestLoggingHelpers_WriteToBuffer verifies the package helper functions write
// formatted messages to the package-level logger `L`. The test swaps `L` with
// a buffer-backed logger and restores it afterwards.
func TestLoggingHelpers_WriteToBuffer(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	L = newLogger(&buf)
	defer func() { L = prev }()

	SetDebug(true)
	if L.GetLevel() != clog.DebugLevel {
		t.Fatalf("expected debug level, got %v", L.GetLevel())
	}

	Debugf("hello %s", "dbg")
	Warnf("warn")

	out := buf.String()
	for _, want := range []string{"hello dbg", "warn"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output; got: %s", want, out)
		}
	}
}

func TestSetDebug_DisabledSuppressesDebug(t *testing.T) {
	var buf bytes.Buffer
	prev := L
	L = newLogger(&buf)
	defer func() { L = prev }()

	SetDebug(false)
	Debugf("should not appear")
	if strings.Contains(buf.String(), "should not appear") {
		t.Fatalf("debug output leaked with debug disabled: %s", buf.String())
	}
	if L.GetLevel() != clog.InfoLevel {
		t.Fatalf("expected info level, got %v", L.GetLevel())
	}
}
