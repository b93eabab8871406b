package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Copy describes one stored artifact attached to a document record.
type Copy struct {
	FileName    string `json:"fileName"`
	Location    string `json:"location"`
	Fingerprint string `json:"fingerprint"`
	UploadedAt  string `json:"uploadedAt,omitempty"`
}

// DocumentRecord is the transport representation of a per-tag record.
type DocumentRecord struct {
	TagID     string `json:"tagId"`
	CreatedAt string `json:"createdAt,omitempty"`
	Copies    []Copy `json:"copies"`
}

// UploadedItem reports a successfully stored batch entry.
type UploadedItem struct {
	Index       int    `json:"index"`
	FileName    string `json:"fileName"`
	TagID       string `json:"tagId"`
	Fingerprint string `json:"fingerprint"`
	Location    string `json:"location"`
}

// DuplicateItem reports a batch entry whose content was already known.
type DuplicateItem struct {
	Index            int    `json:"index"`
	FileName         string `json:"fileName"`
	TagID            string `json:"tagId"`
	Fingerprint      string `json:"fingerprint"`
	ExistingLocation string `json:"existingLocation"`
	AuditLocation    string `json:"auditLocation"`
}

// FailedItem reports a batch entry that could not be processed.
type FailedItem struct {
	Index    int    `json:"index"`
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// IntakeResponse partitions a processed batch into its outcome buckets.
type IntakeResponse struct {
	Uploaded   []UploadedItem  `json:"uploaded"`
	Duplicates []DuplicateItem `json:"duplicates"`
	Failed     []FailedItem    `json:"failed"`
}

// ReplaceRequest asks for one stored copy to be swapped for new content.
type ReplaceRequest struct {
	TagID          string `json:"tagId"`
	OldFingerprint string `json:"oldFingerprint"`
	NewContentURL  string `json:"newContentUrl"`
}

// ReplaceResponse carries the location of the replacement artifact.
type ReplaceResponse struct {
	Location string `json:"location"`
}

// StatsResponse summarizes store contents.
type StatsResponse struct {
	Tags   int `json:"tags"`
	Copies int `json:"copies"`
}

// GenerateTagsRequest asks for a batch of fresh tag identifiers.
type GenerateTagsRequest struct {
	Count int `json:"count"`
}

// GenerateTagsResponse lists the minted identifiers.
type GenerateTagsResponse struct {
	TagIDs []string `json:"tagIds"`
}

// DependencyStatus captures availability of an external dependency.
type DependencyStatus struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool               `json:"running"`
	PID          int                `json:"pid"`
	RecordsDB    string             `json:"recordsDbPath"`
	LockFilePath string             `json:"lockFilePath"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error string `json:"error"`
}
