package main

import (
	"io"
	"log/slog"
	"testing"

	"github.com/pthm-cable/rails/telemetry"
)

func TestCloseOutput(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	if got := closeOutput(logger, nil, 2); got != 2 {
		t.Errorf("nil output: code = %d, want 2", got)
	}

	out, err := telemetry.NewOutputManager(t.TempDir())
	if err != nil {
		t.Fatalf("NewOutputManager: %v", err)
	}
	if got := closeOutput(logger, out, 0); got != 0 {
		t.Errorf("first close: code = %d, want 0", got)
	}
	// The files are already closed, so the second close fails.
	if got := closeOutput(logger, out, 0); got != 1 {
		t.Errorf("failed close: code = %d, want 1", got)
	}
	if got := closeOutput(logger, out, 2); got != 2 {
		t.Errorf("failed close after deadlock: code = %d, want 2", got)
	}
}
