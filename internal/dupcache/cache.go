package dupcache

import (
	"context"
	"log/slog"

	"tagdock/internal/fingerprint"
	"tagdock/internal/logging"
	"tagdock/internal/records"
)

// Entry is the volatile mapping value: the tag that owns a fingerprint and
// the artifact location recorded for it. Advisory only; may be absent or
// stale and is never treated as authoritative.
type Entry struct {
	TagID    string `json:"tag_id"`
	Location string `json:"location"`
}

// Volatile is the fast best-effort cache tier. Implementations may fail at
// any time; callers treat every error as a miss.
type Volatile interface {
	Get(ctx context.Context, fp fingerprint.Digest) (*Entry, error)
	Set(ctx context.Context, fp fingerprint.Digest, entry Entry) error
	Delete(ctx context.Context, fp fingerprint.Digest) error
}

// Tiered layers a volatile cache over the record store. The store is the
// source of truth; volatile-tier failures degrade to store lookups and are
// logged at debug, never surfaced.
type Tiered struct {
	volatile Volatile
	store    *records.Store
	logger   *slog.Logger
}

// NewTiered constructs the tiered cache. The volatile tier may be nil, in
// which case every lookup goes straight to the store.
func NewTiered(volatile Volatile, store *records.Store, logger *slog.Logger) *Tiered {
	return &Tiered{
		volatile: volatile,
		store:    store,
		logger:   logging.NewComponentLogger(logger, "dupcache"),
	}
}

// Lookup resolves a fingerprint to its owning tag and location. A nil entry
// means the content is genuinely new. Errors come only from the record
// store; the volatile tier cannot fail a lookup.
func (t *Tiered) Lookup(ctx context.Context, fp fingerprint.Digest) (*Entry, error) {
	if t.volatile != nil {
		entry, err := t.volatile.Get(ctx, fp)
		if err != nil {
			t.logger.Debug("volatile tier read failed, treating as miss",
				logging.String(logging.FieldFingerprint, fp.String()),
				logging.Error(err))
		} else if entry != nil {
			return entry, nil
		}
	}

	match, err := t.store.FindByFingerprint(ctx, fp)
	if err != nil {
		return nil, err
	}
	if match == nil {
		return nil, nil
	}

	entry := Entry{TagID: match.TagID, Location: match.Copy.Location}
	t.Populate(ctx, fp, entry)
	return &entry, nil
}

// Populate writes an entry into the volatile tier, best-effort.
func (t *Tiered) Populate(ctx context.Context, fp fingerprint.Digest, entry Entry) {
	if t.volatile == nil {
		return
	}
	if err := t.volatile.Set(ctx, fp, entry); err != nil {
		t.logger.Debug("volatile tier write failed",
			logging.String(logging.FieldFingerprint, fp.String()),
			logging.Error(err))
	}
}

// Evict removes a fingerprint from the volatile tier, best-effort. Used by
// the replacement workflow to repair the cache after a swap.
func (t *Tiered) Evict(ctx context.Context, fp fingerprint.Digest) {
	if t.volatile == nil {
		return
	}
	if err := t.volatile.Delete(ctx, fp); err != nil {
		t.logger.Debug("volatile tier delete failed",
			logging.String(logging.FieldFingerprint, fp.String()),
			logging.Error(err))
	}
}
