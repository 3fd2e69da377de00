package context

import "context"

type ctxKey string

const (
	requestIDKey ctxKey = "request_id"
	orgCodeKey   ctxKey = "org_code"
)

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(requestIDKey).(string)
	return v
}

// WithOrgCode tags the context with the organization a request operates on.
func WithOrgCode(ctx context.Context, orgCode string) context.Context {
	return context.WithValue(ctx, orgCodeKey, orgCode)
}

func OrgCodeFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	v, _ := ctx.Value(orgCodeKey).(string)
	return v
}
