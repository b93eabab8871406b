package blob

import (
	"context"
	"io"
)

// Store is the opaque durable artifact storage boundary. Implementations own
// naming and layout; callers only keep the returned location.
type Store interface {
	// Put stores the stream under the given folder and returns the artifact
	// location. The display name influences the stored name but uniqueness is
	// the implementation's responsibility.
	Put(ctx context.Context, r io.Reader, folder, displayName string) (string, error)
}
