package ctxutil

import (
	"context"

	"github.com/google/uuid"
)

type requestUserKey struct{}

// WithRequestUser stores the authenticated user's id on the request context.
func WithRequestUser(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, requestUserKey{}, id)
}

// GetRequestUser returns uuid.Nil when no user is attached.
func GetRequestUser(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if id, ok := ctx.Value(requestUserKey{}).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
