// Package tags mints document tag identifiers and pre-creates their
// records so a physical label always has a row to land on.
package tags

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"tagdock/internal/logging"
	"tagdock/internal/services"
)

// IDLength is the number of characters in a tag identifier.
const IDLength = 10

// Crockford base32: no I, L, O or U, so printed labels survive manual
// transcription.
const alphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

// maxBatch bounds a single generation request.
const maxBatch = 1000

// NewID mints a random tag identifier.
func NewID() string {
	u := uuid.New()
	var b strings.Builder
	b.Grow(IDLength)
	for i := 0; i < IDLength; i++ {
		b.WriteByte(alphabet[int(u[i])%len(alphabet)])
	}
	return b.String()
}

// documentCreator is the slice of the record store generation needs.
type documentCreator interface {
	EnsureDocument(ctx context.Context, tagID string) error
}

// Generator mints identifiers and registers an empty document for each,
// so uploads referencing a freshly printed label find an existing record.
type Generator struct {
	store  documentCreator
	logger *slog.Logger
}

// NewGenerator builds a Generator backed by the given store.
func NewGenerator(store documentCreator, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Generator{store: store, logger: logger}
}

// Generate mints count identifiers and pre-creates a document for each.
// Identifiers already persisted stay persisted if a later one fails.
func (g *Generator) Generate(ctx context.Context, count int) ([]string, error) {
	if count < 1 || count > maxBatch {
		return nil, services.Wrap(services.ErrValidation, "tags", "generate", "count must be between 1 and 1000", nil)
	}

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id := NewID()
		if err := g.store.EnsureDocument(ctx, id); err != nil {
			return ids, services.Wrap(services.ErrPersistence, "tags", "generate", "pre-create document", err)
		}
		ids = append(ids, id)
	}
	g.logger.Info("generated tags", logging.Int("count", len(ids)))
	return ids, nil
}
