// Package logging assembles the structured slog loggers used across Tagdock.
//
// It centralizes level and output plumbing and exposes context-aware helpers
// so pipeline code automatically tags log lines with batch indexes, file
// names, and correlation IDs. Prefer these constructors over hand-rolled slog
// setup so every component emits data with the same shape.
package logging
