package intake

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"golang.org/x/sync/errgroup"

	"tagdock/internal/blob"
	"tagdock/internal/config"
	"tagdock/internal/decode"
	"tagdock/internal/dupcache"
	"tagdock/internal/fingerprint"
	"tagdock/internal/logging"
	"tagdock/internal/records"
	"tagdock/internal/services"
)

const (
	artifactFolder = "artifacts"
	auditFolder    = "audit"
)

// File is one submitted artifact, already staged on local disk.
type File struct {
	Name     string
	Path     string
	MimeType string
}

// Coordinator runs the intake pipeline over batches of files.
type Coordinator struct {
	store       *records.Store
	blobs       blob.Store
	cache       *dupcache.Tiered
	worker      decode.Worker
	logger      *slog.Logger
	httpClient  *http.Client
	maxBatch    int
	concurrency int
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithHTTPClient overrides the client used to fetch replacement content.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Coordinator) {
		c.httpClient = client
	}
}

// NewCoordinator wires the pipeline from its collaborators.
func NewCoordinator(cfg *config.Config, store *records.Store, blobs blob.Store, cache *dupcache.Tiered, worker decode.Worker, logger *slog.Logger, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       store,
		blobs:       blobs,
		cache:       cache,
		worker:      worker,
		logger:      logging.NewComponentLogger(logger, "intake"),
		httpClient:  http.DefaultClient,
		maxBatch:    cfg.Intake.MaxBatchSize,
		concurrency: cfg.Intake.Concurrency,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Intake processes a batch. The batch size is validated up front; after
// that each file proceeds independently, and only persistence failures
// abort the whole call.
func (c *Coordinator) Intake(ctx context.Context, files []File) (BatchOutcome, error) {
	if len(files) == 0 {
		return BatchOutcome{}, services.Wrap(services.ErrValidation, "intake", "intake", "batch is empty", nil)
	}
	if len(files) > c.maxBatch {
		return BatchOutcome{}, services.Wrap(services.ErrValidation, "intake", "intake",
			fmt.Sprintf("batch of %d exceeds limit of %d", len(files), c.maxBatch), nil)
	}

	results := make([]itemResult, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for i, file := range files {
		g.Go(func() error {
			fctx := services.WithFileName(services.WithBatchIndex(gctx, i), file.Name)
			result, err := c.processOne(fctx, i, file)
			if err != nil {
				return err
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return BatchOutcome{}, err
	}

	outcome := collect(results)
	c.logger.Info("batch processed",
		logging.Int("files", len(files)),
		logging.Int("uploaded", len(outcome.Uploaded)),
		logging.Int("duplicates", len(outcome.Duplicates)),
		logging.Int("failed", len(outcome.Failed)))
	return outcome, nil
}

// processOne runs the pipeline for a single file. Per-file problems come
// back as a failed itemResult; the returned error is reserved for
// persistence failures that must abort the batch.
func (c *Coordinator) processOne(ctx context.Context, index int, file File) (result itemResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			logging.WithContext(ctx, c.logger).Error("intake pipeline panic", logging.Any("panic", r))
			result = failed(index, file, fmt.Sprintf("internal error: %v", r))
			err = nil
		}
	}()

	fp, fpErr := fingerprint.File(file.Path)
	if fpErr != nil {
		return failed(index, file, fmt.Sprintf("fingerprint content: %v", fpErr)), nil
	}

	entry, lookupErr := c.cache.Lookup(ctx, fp)
	if lookupErr != nil {
		return itemResult{}, services.Wrap(services.ErrPersistence, "intake", "lookup", "duplicate lookup", lookupErr)
	}
	if entry != nil {
		return c.processDuplicate(ctx, index, file, fp, entry), nil
	}
	return c.processNew(ctx, index, file, fp)
}

// processDuplicate stores a fresh audit copy of the incoming bytes but
// leaves the owning record untouched. No decode is attempted.
func (c *Coordinator) processDuplicate(ctx context.Context, index int, file File, fp fingerprint.Digest, entry *dupcache.Entry) itemResult {
	src, err := os.Open(file.Path)
	if err != nil {
		return failed(index, file, fmt.Sprintf("open content: %v", err))
	}
	defer src.Close()

	auditLocation, err := c.blobs.Put(ctx, src, auditFolder, file.Name)
	if err != nil {
		return failed(index, file, fmt.Sprintf("audit upload: %v", err))
	}

	logging.WithContext(ctx, c.logger).Info("duplicate content",
		logging.String(logging.FieldTagID, entry.TagID),
		logging.String(logging.FieldFingerprint, fp.String()))
	return itemResult{duplicate: &DuplicateItem{
		Index:            index,
		FileName:         file.Name,
		TagID:            entry.TagID,
		Fingerprint:      fp,
		ExistingLocation: entry.Location,
		AuditLocation:    auditLocation,
	}}
}

// processNew uploads the artifact and decodes its tag concurrently, then
// appends the copy under the decoded tag.
func (c *Coordinator) processNew(ctx context.Context, index int, file File, fp fingerprint.Digest) (itemResult, error) {
	var (
		location     string
		decodeResult decode.Result
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return runProtected(func() error {
			src, err := os.Open(file.Path)
			if err != nil {
				return fmt.Errorf("open content: %w", err)
			}
			defer src.Close()
			loc, err := c.blobs.Put(gctx, src, artifactFolder, file.Name)
			if err != nil {
				return fmt.Errorf("upload: %w", err)
			}
			location = loc
			return nil
		})
	})
	g.Go(func() error {
		return runProtected(func() error {
			result, err := c.worker.Decode(gctx, decode.Task{ArtifactPath: file.Path, MimeType: file.MimeType})
			if err != nil {
				return err
			}
			decodeResult = result
			return nil
		})
	})
	if err := g.Wait(); err != nil {
		return failed(index, file, err.Error()), nil
	}

	if !decodeResult.Found() {
		// The uploaded artifact stays in the blob store but nothing
		// references it.
		reason := decodeResult.Error
		if reason == "" {
			reason = decode.MissReason
		}
		logging.WithContext(ctx, c.logger).Info("decode miss", logging.String("reason", reason))
		return failed(index, file, reason), nil
	}

	copy := records.Copy{
		FileName:    file.Name,
		Location:    location,
		Fingerprint: fp,
	}
	if err := c.store.AppendCopy(ctx, decodeResult.TagID, copy); err != nil {
		return itemResult{}, services.Wrap(services.ErrPersistence, "intake", "append", "append copy", err)
	}
	c.cache.Populate(ctx, fp, dupcache.Entry{TagID: decodeResult.TagID, Location: location})

	logging.WithContext(ctx, c.logger).Info("artifact stored",
		logging.String(logging.FieldTagID, decodeResult.TagID),
		logging.String(logging.FieldFingerprint, fp.String()))
	return itemResult{uploaded: &UploadedItem{
		Index:       index,
		FileName:    file.Name,
		TagID:       decodeResult.TagID,
		Fingerprint: fp,
		Location:    location,
	}}, nil
}

func failed(index int, file File, reason string) itemResult {
	return itemResult{failed: &FailedItem{Index: index, FileName: file.Name, Reason: reason}}
}

// runProtected converts a panic in fn into a returned error. Errgroup
// goroutines do not propagate panics to Wait, so without this a single
// misbehaving stage would take down the whole daemon.
func runProtected(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("internal error: %v", r)
		}
	}()
	return fn()
}
