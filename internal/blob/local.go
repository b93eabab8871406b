package blob

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"tagdock/internal/textutil"
)

// LocalStore stores artifacts on the local filesystem under a root directory.
// Each object gets a unique name so repeated uploads of identical content
// produce distinct locations (the audit trail for duplicate submissions).
type LocalStore struct {
	root string
}

// NewLocalStore creates a filesystem-backed store rooted at dir.
func NewLocalStore(dir string) (*LocalStore, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("blob root directory required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &LocalStore{root: dir}, nil
}

// Put writes the stream to <root>/<folder>/<uuid>-<name> and returns the
// location relative to the root.
func (s *LocalStore) Put(ctx context.Context, r io.Reader, folder, displayName string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	folder = sanitizeSegment(folder)
	if folder == "" {
		folder = "objects"
	}
	name := sanitizeSegment(filepath.Base(displayName))
	if name == "" {
		name = "artifact"
	}

	dir := filepath.Join(s.root, folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create blob folder: %w", err)
	}

	objectName := uuid.NewString() + "-" + name
	path := filepath.Join(dir, objectName)

	out, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create blob object: %w", err)
	}
	if _, err := io.Copy(out, r); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return "", fmt.Errorf("write blob object: %w", err)
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(path)
		return "", fmt.Errorf("close blob object: %w", err)
	}

	return filepath.Join(folder, objectName), nil
}

// Resolve maps a location returned by Put back to an absolute path.
func (s *LocalStore) Resolve(location string) string {
	return filepath.Join(s.root, location)
}

func sanitizeSegment(value string) string {
	value = textutil.SanitizeFileName(value)
	return strings.ReplaceAll(value, "..", "_")
}
