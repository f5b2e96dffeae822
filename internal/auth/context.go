package auth

import "context"

type contextKey struct{}

// Info is the caller identity attached to a request by the auth middleware
type Info struct {
	IsAuth bool
	UserID string
}

// WithInfo returns a copy of ctx carrying info
func WithInfo(ctx context.Context, info Info) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

// FromContext returns the caller identity, unauthenticated when absent
func FromContext(ctx context.Context) Info {
	info, _ := ctx.Value(contextKey{}).(Info)
	return info
}
