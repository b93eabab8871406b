package fingerprint

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Digest is a lowercase hex-encoded XXHash64 of a byte stream. It is a
// deduplication key only, never a security primitive.
type Digest string

// String returns the hex form of the digest.
func (d Digest) String() string { return string(d) }

// Hasher computes a digest incrementally, chunk by chunk.
type Hasher struct {
	h *xxhash.Digest
}

// New returns a Hasher ready to accept input.
func New() *Hasher {
	return &Hasher{h: xxhash.New()}
}

// Update folds a chunk into the running hash.
func (h *Hasher) Update(chunk []byte) {
	_, _ = h.h.Write(chunk)
}

// Finalize returns the digest of everything written so far. The hasher
// remains usable; further updates extend the same stream.
func (h *Hasher) Finalize() Digest {
	return Digest(fmt.Sprintf("%016x", h.h.Sum64()))
}

// Bytes computes the digest of a whole buffer.
func Bytes(data []byte) Digest {
	return Digest(fmt.Sprintf("%016x", xxhash.Sum64(data)))
}

// Reader computes the digest of a stream.
func Reader(r io.Reader) (Digest, error) {
	h := New()
	if _, err := io.Copy(h.h, r); err != nil {
		return "", fmt.Errorf("hash stream: %w", err)
	}
	return h.Finalize(), nil
}

// File computes the digest of a file's contents.
func File(path string) (Digest, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Reader(f)
}

// Normalize canonicalizes an externally supplied digest string.
func Normalize(value string) Digest {
	return Digest(strings.ToLower(strings.TrimSpace(value)))
}
