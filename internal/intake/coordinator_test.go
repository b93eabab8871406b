package intake

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"tagdock/internal/blob"
	"tagdock/internal/config"
	"tagdock/internal/decode"
	"tagdock/internal/dupcache"
	"tagdock/internal/fingerprint"
	"tagdock/internal/records"
	"tagdock/internal/services"
	"tagdock/internal/testsupport"
)

// countingWorker maps file names to canned decode behavior and counts
// invocations so tests can assert duplicates skip the decode entirely.
type countingWorker struct {
	mu      sync.Mutex
	calls   int32
	results map[string]decode.Result
	errs    map[string]error
	panics  map[string]bool
}

func (w *countingWorker) Decode(ctx context.Context, task decode.Task) (decode.Result, error) {
	atomic.AddInt32(&w.calls, 1)
	w.mu.Lock()
	defer w.mu.Unlock()

	for suffix, ok := range w.panics {
		if ok && strings.HasSuffix(task.ArtifactPath, suffix) {
			panic("decoder blew up")
		}
	}
	for suffix, err := range w.errs {
		if strings.HasSuffix(task.ArtifactPath, suffix) {
			return decode.Result{}, err
		}
	}
	for suffix, result := range w.results {
		if strings.HasSuffix(task.ArtifactPath, suffix) {
			return result, nil
		}
	}
	return decode.Result{Error: decode.MissReason}, nil
}

func (w *countingWorker) callCount() int {
	return int(atomic.LoadInt32(&w.calls))
}

type harness struct {
	coordinator *Coordinator
	store       *records.Store
	volatile    *dupcache.MemoryCache
	worker      *countingWorker
	cfg         *config.Config
	dir         string
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t, opts...)
	store := testsupport.MustOpenStore(t, cfg)

	blobs, err := blob.NewLocalStore(cfg.Paths.BlobDir)
	if err != nil {
		t.Fatalf("NewLocalStore: %v", err)
	}

	volatile := dupcache.NewMemoryCache()
	cache := dupcache.NewTiered(volatile, store, nil)
	worker := &countingWorker{
		results: map[string]decode.Result{},
		errs:    map[string]error{},
		panics:  map[string]bool{},
	}

	return &harness{
		coordinator: NewCoordinator(cfg, store, blobs, cache, worker, nil),
		store:       store,
		volatile:    volatile,
		worker:      worker,
		cfg:         cfg,
		dir:         t.TempDir(),
	}
}

func (h *harness) stageFile(t *testing.T, name, content string) File {
	t.Helper()
	path := testsupport.WriteFile(t, h.dir, name, []byte(content))
	return File{Name: name, Path: path, MimeType: "image/png"}
}

func TestIntakeStoresNewContentUnderDecodedTag(t *testing.T) {
	h := newHarness(t)
	file := h.stageFile(t, "scan.png", "page one")
	h.worker.results["scan.png"] = decode.Result{TagID: "AB12CD34EF", RawPayload: "https://docs.example.com/tag/AB12CD34EF"}

	outcome, err := h.coordinator.Intake(context.Background(), []File{file})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if len(outcome.Uploaded) != 1 || len(outcome.Duplicates) != 0 || len(outcome.Failed) != 0 {
		t.Fatalf("outcome = %+v", outcome)
	}

	item := outcome.Uploaded[0]
	if item.Index != 0 || item.TagID != "AB12CD34EF" {
		t.Fatalf("uploaded item = %+v", item)
	}
	if item.Fingerprint != fingerprint.Bytes([]byte("page one")) {
		t.Fatalf("fingerprint = %s", item.Fingerprint)
	}

	doc, err := h.store.GetByTag(context.Background(), "AB12CD34EF")
	if err != nil {
		t.Fatalf("GetByTag: %v", err)
	}
	if doc == nil || len(doc.Copies) != 1 {
		t.Fatalf("document = %+v", doc)
	}
	if doc.Copies[0].Location != item.Location {
		t.Fatalf("copy location %q != outcome %q", doc.Copies[0].Location, item.Location)
	}

	entry, err := h.volatile.Get(context.Background(), item.Fingerprint)
	if err != nil || entry == nil || entry.TagID != "AB12CD34EF" {
		t.Fatalf("volatile entry = %+v, err %v", entry, err)
	}
}

func TestIntakeDetectsDuplicateOnSecondSubmission(t *testing.T) {
	h := newHarness(t)
	h.worker.results["first.png"] = decode.Result{TagID: "AB12CD34EF"}

	first, err := h.coordinator.Intake(context.Background(), []File{h.stageFile(t, "first.png", "same bytes")})
	if err != nil {
		t.Fatalf("first intake: %v", err)
	}
	firstLocation := first.Uploaded[0].Location
	decodesAfterFirst := h.worker.callCount()

	outcome, err := h.coordinator.Intake(context.Background(), []File{h.stageFile(t, "second.png", "same bytes")})
	if err != nil {
		t.Fatalf("second intake: %v", err)
	}
	if len(outcome.Duplicates) != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}

	dup := outcome.Duplicates[0]
	if dup.TagID != "AB12CD34EF" || dup.ExistingLocation != firstLocation {
		t.Fatalf("duplicate item = %+v", dup)
	}
	if dup.AuditLocation == "" || dup.AuditLocation == firstLocation {
		t.Fatalf("audit copy should be a fresh object, got %q", dup.AuditLocation)
	}
	if h.worker.callCount() != decodesAfterFirst {
		t.Fatal("duplicate path must not invoke the decode worker")
	}

	doc, err := h.store.GetByTag(context.Background(), "AB12CD34EF")
	if err != nil {
		t.Fatalf("GetByTag: %v", err)
	}
	if len(doc.Copies) != 1 {
		t.Fatalf("duplicate must not append, copies = %d", len(doc.Copies))
	}
}

func TestIntakeRejectsOversizedAndEmptyBatches(t *testing.T) {
	h := newHarness(t, testsupport.WithMaxBatchSize(10))

	files := make([]File, 11)
	for i := range files {
		files[i] = h.stageFile(t, fmt.Sprintf("f%d.png", i), fmt.Sprintf("content %d", i))
	}

	if _, err := h.coordinator.Intake(context.Background(), files); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("batch of 11: expected validation error, got %v", err)
	}
	if _, err := h.coordinator.Intake(context.Background(), nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("empty batch: expected validation error, got %v", err)
	}

	if h.worker.callCount() != 0 {
		t.Fatal("rejected batches must do no pipeline work")
	}
	stats, err := h.store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Tags != 0 || stats.Copies != 0 {
		t.Fatalf("store mutated by rejected batch: %+v", stats)
	}
}

func TestIntakeIsolatesPerItemFailures(t *testing.T) {
	h := newHarness(t, testsupport.WithConcurrency(3))
	h.worker.results["good.png"] = decode.Result{TagID: "GOODTAG001"}
	h.worker.errs["crash.png"] = errors.New("decode worker failed: signal killed")

	files := []File{
		h.stageFile(t, "good.png", "good content"),
		h.stageFile(t, "blank.png", "blank content"),
		h.stageFile(t, "crash.png", "crash content"),
	}

	outcome, err := h.coordinator.Intake(context.Background(), files)
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if len(outcome.Uploaded) != 1 || len(outcome.Failed) != 2 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if outcome.Uploaded[0].Index != 0 {
		t.Fatalf("uploaded index = %d", outcome.Uploaded[0].Index)
	}

	reasons := map[int]string{}
	for _, f := range outcome.Failed {
		reasons[f.Index] = f.Reason
	}
	if reasons[1] != decode.MissReason {
		t.Fatalf("blank page reason = %q", reasons[1])
	}
	if !strings.Contains(reasons[2], "decode worker failed") {
		t.Fatalf("crash reason = %q", reasons[2])
	}

	doc, err := h.store.GetByTag(context.Background(), "GOODTAG001")
	if err != nil || doc == nil || len(doc.Copies) != 1 {
		t.Fatalf("healthy sibling should be stored, doc = %+v, err %v", doc, err)
	}
}

func TestIntakeCapturesWorkerPanic(t *testing.T) {
	h := newHarness(t)
	h.worker.panics["boom.png"] = true

	outcome, err := h.coordinator.Intake(context.Background(), []File{h.stageFile(t, "boom.png", "boom")})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if len(outcome.Failed) != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !strings.Contains(outcome.Failed[0].Reason, "internal error") {
		t.Fatalf("panic reason = %q", outcome.Failed[0].Reason)
	}
}

// panickingBlobStore panics on upload to prove the pipeline survives a
// misbehaving storage backend.
type panickingBlobStore struct{}

func (panickingBlobStore) Put(ctx context.Context, r io.Reader, folder, displayName string) (string, error) {
	panic("blob store blew up")
}

func TestIntakeCapturesBlobStorePanic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.MustOpenStore(t, cfg)
	cache := dupcache.NewTiered(dupcache.NewMemoryCache(), store, nil)
	worker := &countingWorker{
		results: map[string]decode.Result{"scan.png": {TagID: "AB12CD34EF"}},
		errs:    map[string]error{},
		panics:  map[string]bool{},
	}
	c := NewCoordinator(cfg, store, panickingBlobStore{}, cache, worker, nil)

	path := testsupport.WriteFile(t, t.TempDir(), "scan.png", []byte("page one"))
	outcome, err := c.Intake(context.Background(), []File{{Name: "scan.png", Path: path, MimeType: "image/png"}})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if len(outcome.Failed) != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !strings.Contains(outcome.Failed[0].Reason, "internal error") {
		t.Fatalf("panic reason = %q", outcome.Failed[0].Reason)
	}

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Tags != 0 || stats.Copies != 0 {
		t.Fatalf("panicked item must not reach the store: %+v", stats)
	}
}

func TestIntakeWorkerPanicSparesSiblings(t *testing.T) {
	h := newHarness(t, testsupport.WithConcurrency(2))
	h.worker.results["good.png"] = decode.Result{TagID: "GOODTAG001"}
	h.worker.panics["boom.png"] = true

	files := []File{
		h.stageFile(t, "good.png", "good content"),
		h.stageFile(t, "boom.png", "boom content"),
	}

	outcome, err := h.coordinator.Intake(context.Background(), files)
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if len(outcome.Uploaded) != 1 || len(outcome.Failed) != 1 {
		t.Fatalf("outcome = %+v", outcome)
	}
	if !strings.Contains(outcome.Failed[0].Reason, "internal error") {
		t.Fatalf("panic reason = %q", outcome.Failed[0].Reason)
	}

	doc, err := h.store.GetByTag(context.Background(), "GOODTAG001")
	if err != nil || doc == nil || len(doc.Copies) != 1 {
		t.Fatalf("healthy sibling should be stored, doc = %+v, err %v", doc, err)
	}
}

func TestIntakeDecodeMissAppendsNothing(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.coordinator.Intake(context.Background(), []File{h.stageFile(t, "blank.png", "no symbol here")})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if len(outcome.Failed) != 1 || outcome.Failed[0].Reason != decode.MissReason {
		t.Fatalf("outcome = %+v", outcome)
	}

	stats, err := h.store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Tags != 0 || stats.Copies != 0 {
		t.Fatalf("miss must not touch the store: %+v", stats)
	}
}

func TestIntakeUnreadableFileFails(t *testing.T) {
	h := newHarness(t)
	file := File{Name: "ghost.png", Path: h.dir + "/does-not-exist.png", MimeType: "image/png"}

	outcome, err := h.coordinator.Intake(context.Background(), []File{file})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if len(outcome.Failed) != 1 || !strings.Contains(outcome.Failed[0].Reason, "fingerprint content") {
		t.Fatalf("outcome = %+v", outcome)
	}
}
