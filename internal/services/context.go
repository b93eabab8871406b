package services

import "context"

type contextKey string

const (
	batchIndexKey contextKey = "batch_index"
	fileNameKey   contextKey = "file_name"
	requestIDKey  contextKey = "request_id"
)

// WithBatchIndex annotates context with a file's index within an intake batch.
func WithBatchIndex(ctx context.Context, index int) context.Context {
	return context.WithValue(ctx, batchIndexKey, index)
}

// BatchIndexFromContext extracts the batch index if present.
func BatchIndexFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(batchIndexKey)
	if idx, ok := v.(int); ok {
		return idx, true
	}
	return 0, false
}

// WithFileName annotates context with the uploaded file name.
func WithFileName(ctx context.Context, name string) context.Context {
	if name == "" {
		return ctx
	}
	return context.WithValue(ctx, fileNameKey, name)
}

// FileNameFromContext returns the uploaded file name if present.
func FileNameFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(fileNameKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext returns the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if str, ok := ctx.Value(requestIDKey).(string); ok && str != "" {
		return str, true
	}
	return "", false
}
