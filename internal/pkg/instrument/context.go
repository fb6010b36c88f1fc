package instrument

import "context"

type correlationIDKey struct{}

// SetCorrelationID stores a request correlation id on the context.
func SetCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey{}, id)
}

// GetCorrelationID returns the correlation id stored on the context, or an
// empty string when none is set.
func GetCorrelationID(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}
