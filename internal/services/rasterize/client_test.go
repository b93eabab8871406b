package rasterize

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type fakeExecutor struct {
	binary string
	args   []string
	err    error
	onRun  func(args []string)
}

func (f *fakeExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	f.binary = binary
	f.args = args
	if f.onRun != nil {
		f.onRun(args)
	}
	return f.err
}

func TestRasterizeBuildsExpectedInvocation(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "bundle.pdf")
	if err := os.WriteFile(docPath, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	exec := &fakeExecutor{
		onRun: func(args []string) {
			// The client checks for the produced image; create it.
			out := args[len(args)-1] + ".jpg"
			if err := os.WriteFile(out, []byte("jpeg"), 0o644); err != nil {
				t.Fatalf("write fake output: %v", err)
			}
		},
	}
	client, err := New("pdftocairo", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	imagePath, err := client.Rasterize(context.Background(), docPath, 1, 96)
	if err != nil {
		t.Fatalf("Rasterize: %v", err)
	}
	if !strings.HasSuffix(imagePath, "bundle_page1.jpg") {
		t.Fatalf("unexpected image path %q", imagePath)
	}

	joined := strings.Join(exec.args, " ")
	for _, want := range []string{"-jpeg", "-singlefile", "-f 1", "-l 1", "-r 96"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("args %q missing %q", joined, want)
		}
	}
}

func TestRasterizeToolFailure(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("missing font")}
	client, err := New("pdftocairo", WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Rasterize(context.Background(), "/tmp/doc.pdf", 1, 96); err == nil {
		t.Fatal("expected tool failure to surface")
	}
}

func TestRasterizeMissingOutput(t *testing.T) {
	client, err := New("pdftocairo", WithExecutor(&fakeExecutor{}))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Rasterize(context.Background(), filepath.Join(t.TempDir(), "doc.pdf"), 1, 96); err == nil {
		t.Fatal("expected error when no image is produced")
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := New("  "); err == nil {
		t.Fatal("expected error for empty binary")
	}
}
