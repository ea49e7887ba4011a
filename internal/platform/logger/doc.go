// Package logger provides structured logging functionality for the application.
//
// It uses the standard library log/slog package to emit JSON records with a
// configurable level, and carries request- or job-scoped loggers through
// context.Context.
package logger
