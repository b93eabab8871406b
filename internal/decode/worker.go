package decode

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"tagdock/internal/services"
)

// WorkerModeArg is the argument that switches the daemon binary into
// decode-worker mode. The worker reads one Task as JSON on stdin and
// writes one Result as JSON on stdout.
const WorkerModeArg = "decode-worker"

// Worker decodes one artifact into a Result. A non-nil error means the
// worker itself failed (could not start, crashed, timed out); a decode
// miss is reported through Result.Error instead.
type Worker interface {
	Decode(ctx context.Context, task Task) (Result, error)
}

// WorkerFunc adapts a function to the Worker interface.
type WorkerFunc func(ctx context.Context, task Task) (Result, error)

func (f WorkerFunc) Decode(ctx context.Context, task Task) (Result, error) {
	return f(ctx, task)
}

// SubprocessWorker runs each task in a fresh child process so decoder
// crashes stay isolated from the daemon.
type SubprocessWorker struct {
	binary  string
	timeout time.Duration
}

// SubprocessOption customizes a SubprocessWorker.
type SubprocessOption func(*SubprocessWorker)

// WithTimeout bounds how long a single decode may run. Zero disables the
// bound and leaves cancellation to the caller's context.
func WithTimeout(d time.Duration) SubprocessOption {
	return func(w *SubprocessWorker) {
		w.timeout = d
	}
}

// NewSubprocessWorker builds a worker that re-executes binary in worker
// mode for every task.
func NewSubprocessWorker(binary string, opts ...SubprocessOption) (*SubprocessWorker, error) {
	trimmed := strings.TrimSpace(binary)
	if trimmed == "" {
		return nil, services.Wrap(services.ErrValidation, "decode", "new-worker", "worker binary not configured", nil)
	}
	worker := &SubprocessWorker{binary: trimmed}
	for _, opt := range opts {
		opt(worker)
	}
	return worker, nil
}

func (w *SubprocessWorker) Decode(ctx context.Context, task Task) (Result, error) {
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return Result{}, services.Wrap(services.ErrDecode, "decode", "encode-task", "marshal task", err)
	}

	cmd := exec.CommandContext(ctx, w.binary, WorkerModeArg)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Result{}, services.Wrap(services.ErrDecode, "decode", "run-worker", "decode worker timed out", ctxErr)
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return Result{}, services.Wrap(services.ErrDecode, "decode", "run-worker", fmt.Sprintf("decode worker failed: %s", detail), err)
	}

	var result Result
	if err := json.Unmarshal(stdout.Bytes(), &result); err != nil {
		return Result{}, services.Wrap(services.ErrDecode, "decode", "decode-result", "unmarshal worker result", err)
	}
	return result, nil
}
