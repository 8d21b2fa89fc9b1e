package middleware

import "context"

type contextKey string

const (
	ctxCartSession contextKey = "cart_session"
	ctxCustomerID  contextKey = "customer_id"
)

// CartSessionFromContext returns the resolved cart session id ("guest:<uuid>"
// or "customer:<uuid>").
func CartSessionFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCartSession).(string); ok {
		return v
	}
	return ""
}

// CustomerIDFromContext returns the authenticated customer id, if any.
func CustomerIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxCustomerID).(string); ok {
		return v
	}
	return ""
}

// WithCartSession injects the cart session id into the context for downstream handlers.
func WithCartSession(ctx context.Context, sessionID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCartSession, sessionID)
}

func WithCustomerID(ctx context.Context, customerID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxCustomerID, customerID)
}
