// Package logging defines the structured-logging boundary used across the
// project. Implementations wrap log/slog; nothing outside this package
// depends on the concrete handler.
package logging

import "context"

// Logger is a context-aware, structured logger. The variadic args are
// key-value pairs:
//
//	log.Info(ctx, "request dispatched", "request_id", id, "worker", w)
type Logger interface {
	// Debug logs chatty diagnostics, e.g. expected dispatch races.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs unusual but non-fatal conditions, e.g. cache faults the
	// verification path absorbs.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key-value
	// pairs.
	With(args ...any) Logger
}
