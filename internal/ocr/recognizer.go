package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"receiptlens/constants"
)

// Engine converts one image file into recognized text.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, path string) (string, error)
}

// Result is the outcome of one recognition call.
type Result struct {
	Text   string
	Method string // constants.OCRMethodPrimary | constants.OCRMethodFallback
}

// Recognizer runs the primary OCR model and falls back to the secondary
// engine when the primary errors or returns degenerate output. The secondary
// engine's output is trusted as-is, even if short.
type Recognizer struct {
	primary    Engine
	fallback   Engine
	minTextLen int
	logger     *slog.Logger
}

func NewRecognizer(primary, fallback Engine, minTextLen int, logger *slog.Logger) *Recognizer {
	if logger == nil {
		logger = slog.Default()
	}
	if minTextLen <= 0 {
		minTextLen = 10
	}
	return &Recognizer{primary: primary, fallback: fallback, minTextLen: minTextLen, logger: logger}
}

// Recognize returns best-effort text for the image at path. A primary-engine
// failure never surfaces; only a failure of the last engine in the chain does.
func (r *Recognizer) Recognize(ctx context.Context, path string) (Result, error) {
	if r.primary != nil {
		text, err := r.primary.Recognize(ctx, path)
		if err == nil && len(strings.TrimSpace(text)) > r.minTextLen {
			r.logger.Debug("ocr.primary.ok", "engine", r.primary.Name(), "bytes", len(text))
			return Result{Text: text, Method: constants.OCRMethodPrimary}, nil
		}
		if err != nil {
			r.logger.Warn("ocr.primary.failed, falling back", "engine", r.primary.Name(), "error", err)
		} else {
			r.logger.Warn("ocr.primary.degenerate, falling back",
				"engine", r.primary.Name(), "chars", len(strings.TrimSpace(text)))
		}
	}

	if r.fallback == nil {
		return Result{}, fmt.Errorf("no fallback OCR engine configured")
	}
	text, err := r.fallback.Recognize(ctx, path)
	if err != nil {
		return Result{}, fmt.Errorf("fallback ocr: %w", err)
	}
	r.logger.Debug("ocr.fallback.ok", "engine", r.fallback.Name(), "bytes", len(text))
	return Result{Text: text, Method: constants.OCRMethodFallback}, nil
}
