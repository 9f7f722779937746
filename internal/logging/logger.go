// Package logging is the structured logger every server component takes.
package logging

import "context"

// Logger takes a message plus alternating key/value args:
//
//	l.Info(ctx, "user logged in", "user_id", id)
//
// ctx is passed through to the handler; request-scoped values such as the
// request id are added by callers with With or as explicit args.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a logger that prefixes every record with args.
	With(args ...any) Logger
}
