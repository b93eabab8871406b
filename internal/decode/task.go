package decode

// Task is the unit of work handed to a decode worker. The artifact must
// already be on local disk; the worker never touches the network.
type Task struct {
	ArtifactPath string `json:"artifact_path"`
	MimeType     string `json:"mime_type"`
}

// Result is what a worker reports back. Exactly one of TagID or Error is
// set: a populated Error means the artifact carried no readable symbol or
// processing failed, and the caller treats both the same way.
type Result struct {
	TagID      string `json:"tag_id,omitempty"`
	RawPayload string `json:"raw_payload,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Found reports whether the worker extracted a tag identifier.
func (r Result) Found() bool {
	return r.TagID != "" && r.Error == ""
}
