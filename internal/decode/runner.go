package decode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "image/jpeg"

	"tagdock/internal/config"
	"tagdock/internal/logging"
	"tagdock/internal/services"
	"tagdock/internal/services/rasterize"
	"tagdock/internal/services/symboldecode"
)

// MissReason is the error reported when no variant of the artifact
// yielded a readable symbol.
const MissReason = "tag not found"

// Runner is the worker-mode implementation. It reads one task from
// stdin, tries to extract a tag identifier, and writes one result to
// stdout. It always reports failures through Result.Error so the parent
// can tell a decode miss from a worker crash.
type Runner struct {
	rasterizer       rasterize.Rasterizer
	decoder          symboldecode.Decoder
	logger           *slog.Logger
	dpi              int
	attemptInversion bool
	downscale        bool
}

// NewRunner builds a Runner from daemon configuration.
func NewRunner(cfg *config.Config, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	rast, err := rasterize.New(cfg.Decode.PdftocairoBinary)
	if err != nil {
		return nil, err
	}
	dec, err := symboldecode.New(cfg.Decode.ZbarimgBinary)
	if err != nil {
		return nil, err
	}
	return &Runner{
		rasterizer:       rast,
		decoder:          dec,
		logger:           logger,
		dpi:              cfg.Decode.RasterDPI,
		attemptInversion: cfg.Decode.AttemptInversion,
		downscale:        cfg.Decode.DownscaleToDecode,
	}, nil
}

// Run services exactly one task from in and writes the result to out.
// Only wire-level failures return an error; everything that goes wrong
// while decoding becomes a Result with Error set.
func (r *Runner) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	var task Task
	if err := json.NewDecoder(in).Decode(&task); err != nil {
		return services.Wrap(services.ErrDecode, "decode-worker", "read-task", "decode task payload", err)
	}

	result := r.process(ctx, task)
	if err := json.NewEncoder(out).Encode(result); err != nil {
		return services.Wrap(services.ErrDecode, "decode-worker", "write-result", "encode result", err)
	}
	return nil
}

func (r *Runner) process(ctx context.Context, task Task) Result {
	imagePath := task.ArtifactPath
	var cleanup []string
	defer func() {
		r.removeAll(cleanup)
	}()

	if isPDF(task) {
		rastered, err := r.rasterizer.Rasterize(ctx, task.ArtifactPath, 1, r.dpi)
		if err != nil {
			return Result{Error: fmt.Sprintf("rasterize first page: %v", err)}
		}
		cleanup = append(cleanup, rastered)
		imagePath = rastered
	}

	payload, err := r.decodeWithVariants(ctx, imagePath, &cleanup)
	if err != nil {
		return Result{Error: err.Error()}
	}
	return Result{TagID: ExtractTagID(payload), RawPayload: payload}
}

// decodeWithVariants tries the image as-is, then progressively cheaper
// to read variants. Scanned pages often arrive inverted or at a
// resolution the reader struggles with, so each variant gets a chance
// before the task is declared a miss.
func (r *Runner) decodeWithVariants(ctx context.Context, imagePath string, cleanup *[]string) (string, error) {
	payload, err := r.decoder.Decode(ctx, imagePath)
	if err == nil {
		return payload, nil
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}

	img, loadErr := loadImage(imagePath)
	if loadErr != nil {
		r.logger.Warn("load image for retry variants", logging.Error(loadErr))
		return "", errors.New(MissReason)
	}

	variants := make([]image.Image, 0, 3)
	if r.attemptInversion {
		variants = append(variants, invert(img))
	}
	if r.downscale {
		half := halfScale(img)
		variants = append(variants, half)
		if r.attemptInversion {
			variants = append(variants, invert(half))
		}
	}

	for i, variant := range variants {
		path, err := r.writeVariant(imagePath, i, variant)
		if err != nil {
			r.logger.Warn("write retry variant", logging.Error(err))
			continue
		}
		*cleanup = append(*cleanup, path)

		payload, err := r.decoder.Decode(ctx, path)
		if err == nil {
			return payload, nil
		}
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}
	return "", errors.New(MissReason)
}

func (r *Runner) writeVariant(imagePath string, index int, img image.Image) (string, error) {
	dir := filepath.Dir(imagePath)
	base := strings.TrimSuffix(filepath.Base(imagePath), filepath.Ext(imagePath))
	path := filepath.Join(dir, fmt.Sprintf("%s.variant%d.png", base, index))

	file, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(file, img); err != nil {
		file.Close()
		os.Remove(path)
		return "", err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return "", err
	}
	return path, nil
}

func (r *Runner) removeAll(paths []string) {
	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			r.logger.Warn("remove temporary image", logging.String("path", path), logging.Error(err))
		}
	}
}

func isPDF(task Task) bool {
	if strings.EqualFold(strings.TrimSpace(task.MimeType), "application/pdf") {
		return true
	}
	return strings.EqualFold(filepath.Ext(task.ArtifactPath), ".pdf")
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	return img, err
}
