package commons

import (
	"context"

	"github.com/google/uuid"
)

type contextKey int

const (
	traceIDKey contextKey = iota
	sessionIDKey
)

func WithTraceID(ctx context.Context, traceID string) context.Context {
	return context.WithValue(ctx, traceIDKey, traceID)
}

// TraceID returns the request's trace id, or a fresh one when the request did
// not pass through the tracing middleware.
func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey, sessionID)
}

func SessionID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(sessionIDKey).(string)
	return id, ok && id != ""
}
