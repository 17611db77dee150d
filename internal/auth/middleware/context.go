package auth

import "context"

type ctxKey string

const (
	ctxKeySub ctxKey = "sub"
	ctxKeySID ctxKey = "sid"
)

func WithSubject(ctx context.Context, sub string) context.Context {
	return context.WithValue(ctx, ctxKeySub, sub)
}

func SubjectFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySub); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, ctxKeySID, sid)
}

// SessionIDFromContext returns the opaque id quiz progress is stored under.
func SessionIDFromContext(ctx context.Context) string {
	if v := ctx.Value(ctxKeySID); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
