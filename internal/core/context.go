package core

import "context"

type contextKey string

const ctxKeyOrigin contextKey = "load_origin"

// ContextWithOrigin records who submitted a load, e.g. the client IP of a
// web upload or "cli" for the batch runner. It is logged and kept on the
// dataset.
func ContextWithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, ctxKeyOrigin, origin)
}

// OriginFromContext returns the origin set by ContextWithOrigin, or "".
func OriginFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyOrigin).(string); ok {
		return v
	}
	return ""
}
