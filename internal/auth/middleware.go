package auth

import (
	"context"

	"github.com/joestump/shelf/internal/access"
)

type contextKey string

const CallerContextKey contextKey = "caller"

// WithCaller returns a copy of ctx carrying c.
func WithCaller(ctx context.Context, c *access.Caller) context.Context {
	return context.WithValue(ctx, CallerContextKey, c)
}

// CallerFromContext retrieves the authenticated caller from the context.
func CallerFromContext(ctx context.Context) *access.Caller {
	c, _ := ctx.Value(CallerContextKey).(*access.Caller)
	return c
}
