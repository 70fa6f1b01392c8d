package services

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	queueKey     contextKey = "queue"
	checkKey     contextKey = "check"
)

// WithSessionID annotates context with the troubleshooting session identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the session identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithQueue annotates context with the print queue under inspection.
func WithQueue(ctx context.Context, queue string) context.Context {
	if queue == "" {
		return ctx
	}
	return context.WithValue(ctx, queueKey, queue)
}

// QueueFromContext returns the print queue name if present.
func QueueFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(queueKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithCheck annotates context with the running troubleshooting check.
func WithCheck(ctx context.Context, check string) context.Context {
	if check == "" {
		return ctx
	}
	return context.WithValue(ctx, checkKey, check)
}

// CheckFromContext returns the check name if present.
func CheckFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(checkKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
