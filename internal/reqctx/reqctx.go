// Package reqctx carries per-request values (request ID, authenticated user)
// through context.Context so the logger can attach them to every record.
package reqctx

import (
	"context"

	"github.com/google/uuid"
)

type (
	requestIDKey struct{}
	userIDKey    struct{}
)

// NewRequestID generates a random UUID v4.
func NewRequestID() string {
	return uuid.NewString()
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns "" if absent.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// WithUserID is set by the session middleware once the cookie verifies.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func UserID(ctx context.Context) string {
	id, _ := ctx.Value(userIDKey{}).(string)
	return id
}
