package middleware

import (
	"context"

	"github.com/angelmondragon/storefront-session/internal/session"
)

type contextKey string

const ctxVisitor contextKey = "visitor"

// VisitorFromContext returns the visitor resolved by the Session middleware.
func VisitorFromContext(ctx context.Context) *session.Visitor {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxVisitor).(*session.Visitor); ok {
		return v
	}
	return nil
}

// WithVisitor injects the visitor into the context for downstream handlers.
func WithVisitor(ctx context.Context, visitor *session.Visitor) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxVisitor, visitor)
}
