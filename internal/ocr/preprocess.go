package ocr

import (
	"fmt"
	"os"

	"github.com/disintegration/imaging"
)

// EnhanceForOCR applies a light enhancement pass that helps tesseract on
// photographed receipts: grayscale for contrast, aggressive contrast bump,
// sharpening, and an upscale when the photo is small. The result is written
// to a temp file; call cleanup() once OCR is done.
func EnhanceForOCR(path string) (string, func(), error) {
	src, err := imaging.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("open image: %w", err)
	}

	img := imaging.Grayscale(src)
	img = imaging.AdjustContrast(img, 30)
	img = imaging.Sharpen(img, 1.5)

	// small photos OCR badly; scale up to a workable height
	if img.Bounds().Dy() < 800 {
		img = imaging.Resize(img, 0, 1200, imaging.Lanczos)
	}

	tmp, err := os.CreateTemp("", "rl-ocr-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("temp file: %w", err)
	}
	out := tmp.Name()
	_ = tmp.Close()

	if err := imaging.Save(img, out); err != nil {
		_ = os.Remove(out)
		return "", nil, fmt.Errorf("save enhanced image: %w", err)
	}
	return out, func() { _ = os.Remove(out) }, nil
}
