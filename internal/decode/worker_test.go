package decode

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"tagdock/internal/services"
	"tagdock/internal/testsupport"
)

func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub binaries require a POSIX shell")
	}
}

func TestSubprocessWorkerRoundTrip(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	binary := testsupport.WriteStubBinary(t, dir, "tagdockd", `#!/bin/sh
cat >/dev/null
echo '{"tag_id":"AB12CD34EF","raw_payload":"https://docs.example.com/tag/AB12CD34EF"}'
`)

	worker, err := NewSubprocessWorker(binary)
	if err != nil {
		t.Fatalf("NewSubprocessWorker: %v", err)
	}

	result, err := worker.Decode(context.Background(), Task{ArtifactPath: "/tmp/scan.png", MimeType: "image/png"})
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.TagID != "AB12CD34EF" {
		t.Fatalf("tag id = %q", result.TagID)
	}
}

func TestSubprocessWorkerPropagatesMiss(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	binary := testsupport.WriteStubBinary(t, dir, "tagdockd", `#!/bin/sh
cat >/dev/null
echo '{"error":"tag not found"}'
`)

	worker, err := NewSubprocessWorker(binary)
	if err != nil {
		t.Fatalf("NewSubprocessWorker: %v", err)
	}

	result, err := worker.Decode(context.Background(), Task{ArtifactPath: "/tmp/blank.png"})
	if err != nil {
		t.Fatalf("a miss is not a worker failure: %v", err)
	}
	if result.Found() {
		t.Fatalf("expected miss, got %+v", result)
	}
	if result.Error != MissReason {
		t.Fatalf("miss reason = %q", result.Error)
	}
}

func TestSubprocessWorkerCrashSurfacesStderr(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	binary := testsupport.WriteStubBinary(t, dir, "tagdockd", `#!/bin/sh
echo "segfault in image decoder" >&2
exit 139
`)

	worker, err := NewSubprocessWorker(binary)
	if err != nil {
		t.Fatalf("NewSubprocessWorker: %v", err)
	}

	_, err = worker.Decode(context.Background(), Task{ArtifactPath: "/tmp/scan.png"})
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected decode failure marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "segfault in image decoder") {
		t.Fatalf("error should carry worker stderr, got %v", err)
	}
}

func TestSubprocessWorkerTimeout(t *testing.T) {
	skipWithoutShell(t)

	dir := t.TempDir()
	binary := testsupport.WriteStubBinary(t, dir, "tagdockd", `#!/bin/sh
sleep 5
`)

	worker, err := NewSubprocessWorker(binary, WithTimeout(50*time.Millisecond))
	if err != nil {
		t.Fatalf("NewSubprocessWorker: %v", err)
	}

	start := time.Now()
	_, err = worker.Decode(context.Background(), Task{ArtifactPath: "/tmp/scan.png"})
	if !errors.Is(err, services.ErrDecode) {
		t.Fatalf("expected decode failure marker, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout should interrupt the worker, took %s", elapsed)
	}
}

func TestNewSubprocessWorkerRequiresBinary(t *testing.T) {
	if _, err := NewSubprocessWorker("  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
