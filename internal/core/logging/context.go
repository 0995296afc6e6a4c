package logging

import "context"

type contextKey string

const (
	tableKey     contextKey = "table"
	requestIDKey contextKey = "request_id"
)

// WithTable adds a table storage key to the context.
func WithTable(ctx context.Context, table string) context.Context {
	return context.WithValue(ctx, tableKey, table)
}

// WithRequestID adds an API request ID to the context.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// GetTable retrieves the table storage key from the context.
// Returns empty string if not present.
func GetTable(ctx context.Context) string {
	if v, ok := ctx.Value(tableKey).(string); ok {
		return v
	}
	return ""
}

// GetRequestID retrieves the API request ID from the context.
// Returns empty string if not present.
func GetRequestID(ctx context.Context) string {
	if v, ok := ctx.Value(requestIDKey).(string); ok {
		return v
	}
	return ""
}
