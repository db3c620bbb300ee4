// Package logging assembles structured slog loggers and formatting helpers used
// across subfetch.
//
// It owns the console/JSON handlers, centralizes level and output plumbing,
// and exposes context-aware helpers so workflow code can tag log lines with
// the session identifier and the current workflow state. The package also
// provides a no-op logger for tests and wiring code that cannot fail.
//
// The interactive session writes its log to a file rather than the terminal:
// the operator conversation on stdout is the user-facing surface, the log is
// the diagnostic one.
package logging
