package intake

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"tagdock/internal/decode"
	"tagdock/internal/fingerprint"
	"tagdock/internal/services"
)

func TestReplaceSwapsCopyInPlace(t *testing.T) {
	h := newHarness(t)
	h.worker.results["a.png"] = decode.Result{TagID: "SWAPTAG001"}
	h.worker.results["b.png"] = decode.Result{TagID: "SWAPTAG001"}
	h.worker.results["c.png"] = decode.Result{TagID: "SWAPTAG001"}

	for _, name := range []string{"a.png", "b.png", "c.png"} {
		if _, err := h.coordinator.Intake(context.Background(), []File{h.stageFile(t, name, "content of "+name)}); err != nil {
			t.Fatalf("seed intake %s: %v", name, err)
		}
	}

	oldFp := fingerprint.Bytes([]byte("content of b.png"))
	newContent := []byte("corrected page")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(newContent)
	}))
	defer server.Close()

	location, err := h.coordinator.Replace(context.Background(), "SWAPTAG001", oldFp, server.URL+"/corrected.png")
	if err != nil {
		t.Fatalf("Replace: %v", err)
	}

	doc, err := h.store.GetByTag(context.Background(), "SWAPTAG001")
	if err != nil {
		t.Fatalf("GetByTag: %v", err)
	}
	if len(doc.Copies) != 3 {
		t.Fatalf("replacement must not change list length, copies = %d", len(doc.Copies))
	}

	newFp := fingerprint.Bytes(newContent)
	if doc.Copies[1].Fingerprint != newFp {
		t.Fatalf("middle copy fingerprint = %s, want %s", doc.Copies[1].Fingerprint, newFp)
	}
	if doc.Copies[1].Location != location {
		t.Fatalf("middle copy location = %q, want %q", doc.Copies[1].Location, location)
	}
	if doc.Copies[0].Fingerprint != fingerprint.Bytes([]byte("content of a.png")) {
		t.Fatal("first copy disturbed by replacement")
	}
	if doc.Copies[2].Fingerprint != fingerprint.Bytes([]byte("content of c.png")) {
		t.Fatal("last copy disturbed by replacement")
	}

	if entry, _ := h.volatile.Get(context.Background(), oldFp); entry != nil {
		t.Fatalf("old fingerprint should be evicted, got %+v", entry)
	}
	entry, err := h.volatile.Get(context.Background(), newFp)
	if err != nil || entry == nil || entry.TagID != "SWAPTAG001" || entry.Location != location {
		t.Fatalf("new fingerprint entry = %+v, err %v", entry, err)
	}
}

func TestReplaceUnknownFingerprintNotFound(t *testing.T) {
	h := newHarness(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("whatever"))
	}))
	defer server.Close()

	_, err := h.coordinator.Replace(context.Background(), "NOSUCHTAG0", fingerprint.Bytes([]byte("missing")), server.URL)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestReplaceRejectsNonHTTPLocator(t *testing.T) {
	h := newHarness(t)
	for _, locator := range []string{"ftp://example.com/x", "file:///etc/passwd", "not a url"} {
		_, err := h.coordinator.Replace(context.Background(), "SWAPTAG001", "abcd", locator)
		if !errors.Is(err, services.ErrValidation) {
			t.Fatalf("locator %q: expected validation error, got %v", locator, err)
		}
	}
}

func TestReplaceFetchFailureIsUploadError(t *testing.T) {
	h := newHarness(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	_, err := h.coordinator.Replace(context.Background(), "SWAPTAG001", "abcd", server.URL)
	if !errors.Is(err, services.ErrUpload) {
		t.Fatalf("expected upload error, got %v", err)
	}
}
