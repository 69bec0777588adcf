package logging

import (
	"context"

	"go.uber.org/zap"
)

// Context key types
type userCtxKey struct{}
type sessionCtxKey struct{}

// WithUser attaches the user email under inspection to the context so
// every log line issued for that scope carries it.
func WithUser(ctx context.Context, email string) context.Context {
	return context.WithValue(ctx, userCtxKey{}, email)
}

// WithSession attaches the session id under inspection to the context.
func WithSession(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, id)
}

// UserFromContext returns the user email attached to ctx, or "".
func UserFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(userCtxKey{}).(string); ok {
		return v
	}
	return ""
}

// SessionFromContext returns the session id attached to ctx, or "".
func SessionFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(sessionCtxKey{}).(string); ok {
		return v
	}
	return ""
}

// ContextFields extracts correlation data from context. A nil context
// carries none.
func ContextFields(ctx context.Context) []zap.Field {
	if ctx == nil {
		return nil
	}
	fields := make([]zap.Field, 0, 2)
	if email := UserFromContext(ctx); email != "" {
		fields = append(fields, zap.String("user.email", email))
	}
	if id := SessionFromContext(ctx); id != "" {
		fields = append(fields, zap.String("session.id", id))
	}
	return fields
}
