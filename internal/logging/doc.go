// Package logging assembles structured slog loggers and formatting helpers used
// across printdoctor.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so check code can automatically
// tag log lines with the session ID, queue name and check name. The package
// also provides a no-op logger for tests and wiring code that cannot fail.
//
// Logs go to stderr by default so that report output on stdout stays clean.
package logging
