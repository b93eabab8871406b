package records

import (
	"time"

	"tagdock/internal/fingerprint"
)

// Copy is one stored artifact attached to a tag's document record.
type Copy struct {
	FileName    string
	Location    string
	Fingerprint fingerprint.Digest
	UploadedAt  time.Time
}

// Document is the per-tag record: an immutable tag identifier plus an
// append-only ordered list of copies. List elements change only through
// the replacement workflow.
type Document struct {
	TagID     string
	CreatedAt time.Time
	Copies    []Copy
}

// Match is the result of a fingerprint search across all documents.
type Match struct {
	TagID string
	Copy  Copy
}

// StatsSummary aggregates store contents for the stats operation.
type StatsSummary struct {
	Tags   int
	Copies int
}
