// Package ocr turns uploaded receipt images into raw text by shelling out to
// the tesseract binary.
package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
)

// Recognizer extracts raw text from an image file on disk.
type Recognizer interface {
	Recognize(ctx context.Context, path string) (string, error)
}

// Config tunes the tesseract invocation.
type Config struct {
	Tesseract string // binary name or absolute path; if empty -> "tesseract"
	Lang      string // default "eng"

	// PSM is the page segmentation mode for the first attempt; 6 treats the
	// receipt as a uniform block of text. RetryPSM is the fully automatic
	// mode used when the first attempt yields too little text.
	PSM      int
	RetryPSM int

	// RetryTextLength is the output length below which the RetryPSM attempt
	// runs.
	RetryTextLength int
}

// TesseractRecognizer runs the tesseract CLI. A short first result is retried
// once with automatic page segmentation, which copes better with skewed or
// sparse receipts.
type TesseractRecognizer struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewTesseractRecognizer(cfg Config, logger *slog.Logger) *TesseractRecognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	if cfg.RetryPSM <= 0 {
		cfg.RetryPSM = 3
	}
	if cfg.RetryTextLength <= 0 {
		cfg.RetryTextLength = 50
	}
	return &TesseractRecognizer{cfg: cfg, runner: execRunner{logger: logger}, logger: logger}
}

// WithRunner swaps the command runner. Tests use it to avoid the real binary.
func (r *TesseractRecognizer) WithRunner(runner Runner) *TesseractRecognizer {
	r.runner = runner
	return r
}

func (r *TesseractRecognizer) Recognize(ctx context.Context, path string) (string, error) {
	text, err := r.run(ctx, path, r.cfg.PSM)
	if err != nil {
		return "", err
	}
	if len(strings.TrimSpace(text)) < r.cfg.RetryTextLength {
		r.logger.Debug("retrying ocr with automatic segmentation",
			slog.String("path", path),
			slog.Int("first_pass_len", len(text)),
		)
		retried, err := r.run(ctx, path, r.cfg.RetryPSM)
		if err == nil && len(strings.TrimSpace(retried)) > len(strings.TrimSpace(text)) {
			text = retried
		}
	}
	return text, nil
}

func (r *TesseractRecognizer) run(ctx context.Context, path string, psm int) (string, error) {
	args := []string{path, "stdout", "-l", r.cfg.Lang, "--psm", strconv.Itoa(psm)}
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(string(errb), 512))
	}
	return string(out), nil
}
