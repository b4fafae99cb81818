package ocr

import (
	"context"
	"fmt"
	"log/slog"
)

// TesseractConfig configures the fallback engine.
type TesseractConfig struct {
	Binary      string // binary name or absolute path; if empty -> "tesseract"
	Lang        string // default "eng"
	TessdataDir string
	Preprocess  bool // grayscale/contrast/sharpen pass before OCR
}

// TesseractEngine shells out to the tesseract binary. Slower and less precise
// than the hosted model, but robust to low-quality photographs.
type TesseractEngine struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractEngine(cfg TesseractConfig, logger *slog.Logger) *TesseractEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &TesseractEngine{cfg: cfg, runner: execRunner{}, logger: logger}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

func (e *TesseractEngine) Recognize(ctx context.Context, path string) (string, error) {
	if e.cfg.Preprocess {
		enhanced, cleanup, err := EnhanceForOCR(path)
		if err != nil {
			// image decode failure is fatal for this call; tesseract would
			// reject the same bytes anyway
			return "", fmt.Errorf("preprocess image: %w", err)
		}
		defer cleanup()
		path = enhanced
	}

	args := []string{path, "stdout", "-l", e.cfg.Lang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Binary, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w (stderr: %s)", err, truncate(string(errb), 512))
	}

	txt := Normalize(string(out))
	if conf := heuristicConfidence(txt); conf < 0.4 {
		e.logger.Warn("ocr.tesseract.low_confidence", "path", path, "confidence", conf)
	}
	return txt, nil
}
