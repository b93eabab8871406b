package rasterize

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Rasterizer converts a single page of a document into a raster image.
type Rasterizer interface {
	Rasterize(ctx context.Context, documentPath string, pageIndex, dpi int) (string, error)
}

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string, onStdout func(string)) error
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

// WithTimeout bounds a single rasterization run.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// Client wraps pdftocairo invocations.
type Client struct {
	binary  string
	timeout time.Duration
	exec    Executor
}

// New constructs a pdftocairo client.
func New(binary string, opts ...Option) (*Client, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("pdftocairo binary required")
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

// Rasterize renders one page of documentPath to a JPEG next to the source and
// returns the image path. pageIndex is 1-based.
func (c *Client) Rasterize(ctx context.Context, documentPath string, pageIndex, dpi int) (string, error) {
	if documentPath == "" {
		return "", errors.New("document path required")
	}
	if pageIndex < 1 {
		pageIndex = 1
	}
	if dpi < 1 {
		return "", fmt.Errorf("invalid dpi %d", dpi)
	}

	runCtx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	dir := filepath.Dir(documentPath)
	base := strings.TrimSuffix(filepath.Base(documentPath), filepath.Ext(documentPath))
	outputBase := filepath.Join(dir, fmt.Sprintf("%s_page%d", base, pageIndex))

	page := strconv.Itoa(pageIndex)
	args := []string{
		"-jpeg",
		"-singlefile",
		"-f", page,
		"-l", page,
		"-r", strconv.Itoa(dpi),
		documentPath,
		outputBase,
	}

	if err := c.exec.Run(runCtx, c.binary, args, nil); err != nil {
		return "", fmt.Errorf("pdftocairo: %w", err)
	}

	imagePath := outputBase + ".jpg"
	if _, err := os.Stat(imagePath); err != nil {
		return "", fmt.Errorf("pdftocairo produced no output: %w", err)
	}
	return imagePath, nil
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string, onStdout func(string)) error {
	cmd := exec.CommandContext(ctx, binary, args...)
	if onStdout == nil {
		out, err := cmd.CombinedOutput()
		if err != nil {
			return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
		}
		return nil
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return err
	}
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		onStdout(scanner.Text())
	}
	return cmd.Wait()
}
