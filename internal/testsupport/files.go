package testsupport

import (
	"os"
	"path/filepath"
	"testing"
)

// WriteFile creates a file with the given contents under dir and returns its path.
func WriteFile(t testing.TB, dir, name string, contents []byte) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, contents, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// WriteStubBinary writes an executable shell script and returns its path.
// Used to stand in for external tools in subprocess tests.
func WriteStubBinary(t testing.TB, dir, name, script string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", path, err)
	}
	return path
}
