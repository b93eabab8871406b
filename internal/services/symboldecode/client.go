package symboldecode

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrNoSymbol indicates the image contained no decodable symbol. It is a
// classification, not a failure.
var ErrNoSymbol = errors.New("no symbol found")

// zbarimg exits with 4 when it scanned the image but found nothing.
const noSymbolExitCode = 4

// Decoder extracts a machine-readable symbol payload from a raster image.
type Decoder interface {
	Decode(ctx context.Context, imagePath string) (string, error)
}

// Executor abstracts command execution for testability. Implementations
// return the raw stdout payload, or ErrNoSymbol when the tool reports a
// clean scan with no symbol.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithTimeout bounds a single decode run.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client wraps zbarimg invocations.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a zbarimg client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("zbarimg binary required")
	}
	client := &Client{
		binary: binary,
		exec:   commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Decode scans imagePath for a QR symbol and returns its raw payload.
// Returns ErrNoSymbol when the image holds no decodable symbol.
func (c *Client) Decode(ctx context.Context, imagePath string) (string, error) {
	if imagePath == "" {
		return "", errors.New("image path required")
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	args := []string{"--raw", "--quiet", "-Sdisable", "-Sqrcode.enable", imagePath}
	out, err := c.exec.Run(runCtx, c.binary, args)
	if err != nil {
		if errors.Is(err, ErrNoSymbol) {
			return "", ErrNoSymbol
		}
		return "", fmt.Errorf("zbarimg: %w", err)
	}

	payload := strings.TrimSpace(out)
	if payload == "" {
		return "", ErrNoSymbol
	}
	// zbarimg emits one line per detected symbol; the first is enough.
	if idx := strings.IndexByte(payload, '\n'); idx >= 0 {
		payload = strings.TrimSpace(payload[:idx])
	}
	return payload, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == noSymbolExitCode {
			return "", ErrNoSymbol
		}
		return "", err
	}
	return string(out), nil
}
