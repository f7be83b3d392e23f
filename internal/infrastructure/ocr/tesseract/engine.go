// Package tesseract runs the tesseract CLI against decoded images.
package tesseract

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/disintegration/imaging"

	"github.com/kirillkom/document-intake/internal/core/domain"
	"github.com/kirillkom/document-intake/internal/infrastructure/resilience"
)

type Config struct {
	Binary      string // default "tesseract"
	Languages   string // default "ita+eng"
	TessdataDir string
	PSM         int
	TempDir     string
	// Preprocess converts to grayscale and boosts contrast before recognition.
	Preprocess bool
}

type Engine struct {
	cfg      Config
	runner   Runner
	executor *resilience.Executor
}

type Option func(*Engine)

func WithRunner(r Runner) Option {
	return func(e *Engine) { e.runner = r }
}

func WithExecutor(ex *resilience.Executor) Option {
	return func(e *Engine) { e.executor = ex }
}

func New(cfg Config, opts ...Option) *Engine {
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Languages == "" {
		cfg.Languages = "ita+eng"
	}
	e := &Engine{cfg: cfg, runner: execRunner{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var reBoxNoise = regexp.MustCompile(`[\x{2500}-\x{257F}\x{2580}-\x{259F}]+`)

func (e *Engine) Recognize(ctx context.Context, img image.Image) (string, error) {
	if img == nil {
		return "", domain.WrapError(domain.ErrInvalidInput, "tesseract recognize", errors.New("nil image"))
	}
	if e.cfg.Preprocess {
		img = enhance(img)
	}

	f, err := os.CreateTemp(e.cfg.TempDir, "ocr-*.png")
	if err != nil {
		return "", fmt.Errorf("create temp image: %w", err)
	}
	path := f.Name()
	f.Close()
	defer os.Remove(path)

	if err := imaging.Save(img, path); err != nil {
		return "", fmt.Errorf("write temp image: %w", err)
	}

	var out []byte
	run := func(ctx context.Context) error {
		stdout, stderr, err := e.runner.Run(ctx, e.cfg.Binary, e.args(path)...)
		if err != nil {
			return fmt.Errorf("tesseract %s: %w", strings.TrimSpace(string(stderr)), err)
		}
		out = stdout
		return nil
	}
	if err := e.executor.Execute(ctx, "ocr.tesseract", run, classifyExecError); err != nil {
		return "", err
	}
	return strings.TrimSpace(reBoxNoise.ReplaceAllString(string(out), "")), nil
}

// tesseract <file> stdout -l <lang> [--psm n] [--tessdata-dir dir]
func (e *Engine) args(path string) []string {
	args := []string{path, "stdout", "-l", e.cfg.Languages}
	if e.cfg.PSM > 0 {
		args = append(args, "--psm", fmt.Sprintf("%d", e.cfg.PSM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", filepath.Clean(e.cfg.TessdataDir))
	}
	return args
}

func enhance(img image.Image) image.Image {
	out := imaging.Grayscale(img)
	out = imaging.AdjustContrast(out, 20)
	return imaging.Sharpen(out, 1.0)
}

// Missing binaries and cancellations are not retried.
func classifyExecError(err error) resilience.ErrorClassification {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{}
	}
	var execErr *exec.Error
	if errors.As(err, &execErr) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
	}
	return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
}
