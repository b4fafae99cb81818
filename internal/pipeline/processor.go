package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"receiptlens/internal/extract"
	"receiptlens/internal/ocr"
)

// TextRecognizer is Stage 1: image file -> recognized text.
type TextRecognizer interface {
	Recognize(ctx context.Context, path string) (ocr.Result, error)
}

// Processor coordinates recognition then field extraction. The three
// extractors run independently over the same text; no extractor depends on
// another's result. The processor does not decide accept/reject — that
// policy belongs to the caller.
type Processor struct {
	Recognizer TextRecognizer
	City       *extract.CityResolver
	Logger     *slog.Logger
}

func NewProcessor(recognizer TextRecognizer, city *extract.CityResolver, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{Recognizer: recognizer, City: city, Logger: logger}
}

// Process extracts {amount, date, city} from the receipt image at path.
// A field-level miss is reported as an empty field, not an error; only a
// recognition failure of the whole image surfaces as an error.
func (p *Processor) Process(ctx context.Context, path string) (extract.Fields, error) {
	rec, err := p.Recognizer.Recognize(ctx, path)
	if err != nil {
		p.Logger.Error("pipeline.recognize.failed", "path", path, "error", err)
		return extract.Fields{}, fmt.Errorf("recognize text: %w", err)
	}
	p.Logger.Info("pipeline.recognize.ok", "path", path, "method", rec.Method, "bytes", len(rec.Text))

	var fields extract.Fields
	if amount, ok := extract.Amount(rec.Text); ok {
		fields.Amount = amount
	}
	if date, ok := extract.Date(rec.Text); ok {
		fields.Date = date
	}
	if city, ok := p.City.Resolve(ctx, rec.Text); ok {
		fields.City = city
	}

	p.Logger.Info("pipeline.extract.done",
		"path", path,
		"amount_found", fields.Amount != "",
		"date_found", fields.Date != "",
		"city_found", fields.City != "",
	)
	return fields, nil
}
