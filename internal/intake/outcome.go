package intake

import "tagdock/internal/fingerprint"

// UploadedItem is a successful intake: new content stored under the tag
// decoded from the artifact itself.
type UploadedItem struct {
	Index       int
	FileName    string
	TagID       string
	Fingerprint fingerprint.Digest
	Location    string
}

// DuplicateItem is content already known to the system. The incoming
// bytes are still stored as an audit copy, but the owning record is not
// touched.
type DuplicateItem struct {
	Index            int
	FileName         string
	TagID            string
	Fingerprint      fingerprint.Digest
	ExistingLocation string
	AuditLocation    string
}

// FailedItem records why one file of a batch could not be processed.
type FailedItem struct {
	Index    int
	FileName string
	Reason   string
}

// BatchOutcome partitions a batch into its three result buckets. Every
// input index appears in exactly one bucket; bucket order follows input
// order but carries no processing-order meaning.
type BatchOutcome struct {
	Uploaded   []UploadedItem
	Duplicates []DuplicateItem
	Failed     []FailedItem
}

// itemResult is the per-file union filled in by the pipeline. Exactly
// one field is non-nil once a file has been processed.
type itemResult struct {
	uploaded  *UploadedItem
	duplicate *DuplicateItem
	failed    *FailedItem
}

func collect(results []itemResult) BatchOutcome {
	var outcome BatchOutcome
	for _, r := range results {
		switch {
		case r.uploaded != nil:
			outcome.Uploaded = append(outcome.Uploaded, *r.uploaded)
		case r.duplicate != nil:
			outcome.Duplicates = append(outcome.Duplicates, *r.duplicate)
		case r.failed != nil:
			outcome.Failed = append(outcome.Failed, *r.failed)
		}
	}
	return outcome
}
