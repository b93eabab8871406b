package dupcache_test

import (
	"context"
	"errors"
	"testing"

	"tagdock/internal/dupcache"
	"tagdock/internal/fingerprint"
	"tagdock/internal/records"
	"tagdock/internal/testsupport"
)

type faultyVolatile struct{}

func (faultyVolatile) Get(context.Context, fingerprint.Digest) (*dupcache.Entry, error) {
	return nil, errors.New("connection refused")
}

func (faultyVolatile) Set(context.Context, fingerprint.Digest, dupcache.Entry) error {
	return errors.New("connection refused")
}

func (faultyVolatile) Delete(context.Context, fingerprint.Digest) error {
	return errors.New("connection refused")
}

func seedStore(t *testing.T) (*records.Store, fingerprint.Digest) {
	t.Helper()
	store := testsupport.MustOpenStore(t, testsupport.NewConfig(t))
	fp := fingerprint.Bytes([]byte("known content"))
	err := store.AppendCopy(context.Background(), "TAGKNOWN", records.Copy{
		FileName:    "known.png",
		Location:    "blobs/intake/known.png",
		Fingerprint: fp,
	})
	if err != nil {
		t.Fatalf("seed store: %v", err)
	}
	return store, fp
}

func TestLookupVolatileHit(t *testing.T) {
	store, fp := seedStore(t)
	volatile := dupcache.NewMemoryCache()
	cache := dupcache.NewTiered(volatile, store, nil)
	ctx := context.Background()

	cache.Populate(ctx, fp, dupcache.Entry{TagID: "TAGKNOWN", Location: "blobs/intake/known.png"})

	entry, err := cache.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry == nil || entry.TagID != "TAGKNOWN" {
		t.Fatalf("expected volatile hit for TAGKNOWN, got %+v", entry)
	}
}

func TestLookupFallsThroughToStoreAndBackfills(t *testing.T) {
	store, fp := seedStore(t)
	volatile := dupcache.NewMemoryCache()
	cache := dupcache.NewTiered(volatile, store, nil)
	ctx := context.Background()

	entry, err := cache.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry == nil || entry.TagID != "TAGKNOWN" {
		t.Fatalf("expected store match, got %+v", entry)
	}
	if volatile.Len() != 1 {
		t.Fatalf("expected store hit to backfill volatile tier, len = %d", volatile.Len())
	}
}

func TestLookupMissIsNotAnError(t *testing.T) {
	store, _ := seedStore(t)
	cache := dupcache.NewTiered(dupcache.NewMemoryCache(), store, nil)

	entry, err := cache.Lookup(context.Background(), fingerprint.Bytes([]byte("never seen")))
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry != nil {
		t.Fatalf("expected miss, got %+v", entry)
	}
}

func TestVolatileFailuresAreSwallowed(t *testing.T) {
	store, fp := seedStore(t)
	cache := dupcache.NewTiered(faultyVolatile{}, store, nil)
	ctx := context.Background()

	entry, err := cache.Lookup(ctx, fp)
	if err != nil {
		t.Fatalf("Lookup must not surface volatile errors: %v", err)
	}
	if entry == nil || entry.TagID != "TAGKNOWN" {
		t.Fatalf("expected fallback to store, got %+v", entry)
	}

	// Populate and Evict against a broken tier must not panic or fail.
	cache.Populate(ctx, fp, dupcache.Entry{TagID: "TAGKNOWN"})
	cache.Evict(ctx, fp)
}

func TestNilVolatileGoesStraightToStore(t *testing.T) {
	store, fp := seedStore(t)
	cache := dupcache.NewTiered(nil, store, nil)

	entry, err := cache.Lookup(context.Background(), fp)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if entry == nil || entry.TagID != "TAGKNOWN" {
		t.Fatalf("expected store match, got %+v", entry)
	}
}

func TestEvictRemovesVolatileEntry(t *testing.T) {
	store, fp := seedStore(t)
	volatile := dupcache.NewMemoryCache()
	cache := dupcache.NewTiered(volatile, store, nil)
	ctx := context.Background()

	cache.Populate(ctx, fp, dupcache.Entry{TagID: "TAGKNOWN"})
	if volatile.Len() != 1 {
		t.Fatalf("populate failed, len = %d", volatile.Len())
	}
	cache.Evict(ctx, fp)
	if volatile.Len() != 0 {
		t.Fatalf("evict failed, len = %d", volatile.Len())
	}
}
