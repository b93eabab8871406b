package records

import "errors"

// ErrCopyNotFound indicates no copy with the requested fingerprint exists
// under the given tag. The replacement workflow surfaces it as
// ReplacementNotFound.
var ErrCopyNotFound = errors.New("copy not found")
