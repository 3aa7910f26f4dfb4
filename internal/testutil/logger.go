// Package testutil holds helpers shared by the test suites.
package testutil

import (
	"bytes"
	"log/slog"
	"testing"
)

// logWriter forwards handler output to the test log, trimming the
// trailing newline slog's text handler appends.
type logWriter struct {
	tb testing.TB
}

func (w logWriter) Write(p []byte) (int, error) {
	w.tb.Helper()
	w.tb.Log(string(bytes.TrimRight(p, "\n")))
	return len(p), nil
}

// NewTestLogger returns a debug-level logger whose records land in
// t.Log, so they surface only on failure or under -v.
func NewTestLogger(tb testing.TB) *slog.Logger {
	tb.Helper()
	h := slog.NewTextHandler(logWriter{tb: tb}, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(h)
}
