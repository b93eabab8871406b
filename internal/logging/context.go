package logging

import (
	"context"
	"log/slog"

	"tagdock/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldBatchIndex is the standardized structured logging key for a file's index within an intake batch.
	FieldBatchIndex = "batch_index"
	// FieldFileName is the standardized structured logging key for the uploaded file name.
	FieldFileName = "file_name"
	// FieldTagID is the standardized structured logging key for tag identifiers.
	FieldTagID = "tag_id"
	// FieldFingerprint is the standardized structured logging key for content fingerprints.
	FieldFingerprint = "fingerprint"
	// FieldCorrelationID is the standardized structured logging key for request correlation identifiers.
	FieldCorrelationID = "correlation_id"
)

// ContextFields extracts standardized slog attributes from the provided context.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if idx, ok := services.BatchIndexFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldBatchIndex, idx))
	}
	if name, ok := services.FileNameFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldFileName, name))
	}
	if rid, ok := services.RequestIDFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldCorrelationID, rid))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	return logger.With(attrsToArgs(fields)...)
}
