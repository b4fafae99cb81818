package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"

	"receiptlens/constants"
	"receiptlens/internal/extract"
	"receiptlens/internal/geo"
	"receiptlens/internal/ner"
	"receiptlens/internal/ocr"
	"receiptlens/internal/pipeline"
)

// runextract runs the extraction pipeline once over a single image and
// prints the extracted fields as JSON. Useful for tuning regexes and engine
// settings against a problem receipt.
func main() {
	fs := ff.NewFlagSet("runextract")
	var (
		image        = fs.StringLong("image", "", "path to the receipt image (required)")
		ocrModelURL  = fs.StringLong("ocr-model-url", "", "primary OCR inference endpoint (optional)")
		ocrToken     = fs.StringLong("ocr-token", "", "bearer token for the OCR endpoint")
		tesseract    = fs.StringLong("tesseract", "tesseract", "tesseract binary")
		lang         = fs.StringLong("lang", "eng", "tesseract language")
		nerPrimary   = fs.StringLong("ner-primary-url", "", "primary NER endpoint (optional)")
		nerSecondary = fs.StringLong("ner-secondary-url", "", "secondary NER endpoint (optional)")
		nerToken     = fs.StringLong("ner-token", "", "bearer token for the NER endpoints")
		postalURL    = fs.StringLong("postal-url", "https://api.postalpincode.in/pincode", "postal lookup base URL")
		placeURL     = fs.StringLong("place-url", "", "place verification base URL (optional)")
		timeout      = fs.DurationLong("timeout", 2*time.Minute, "overall processing timeout")
		verbose      = fs.BoolLong("verbose", "debug logging")
	)

	if err := ff.Parse(fs, os.Args[1:], ff.WithEnvVarPrefix("RECEIPTLENS")); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *image == "" {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintln(os.Stderr, "error: --image is required")
		os.Exit(1)
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var primary ocr.Engine
	if *ocrModelURL != "" {
		primary = ocr.NewModelEngine(*ocrModelURL, *ocrToken, 30*time.Second, logger)
	}
	fallback := ocr.NewTesseractEngine(ocr.TesseractConfig{
		Binary:     *tesseract,
		Lang:       *lang,
		Preprocess: true,
	}, logger)
	recognizer := ocr.NewRecognizer(primary, fallback, 10, logger)

	var recognizers []ner.Recognizer
	if *nerPrimary != "" {
		recognizers = append(recognizers, ner.NewClient(string(constants.CitySourceNERPrimary), *nerPrimary, *nerToken, 15*time.Second, logger))
	}
	if *nerSecondary != "" {
		recognizers = append(recognizers, ner.NewClient(string(constants.CitySourceNERSecondary), *nerSecondary, *nerToken, 15*time.Second, logger))
	}

	var postal extract.PostalLookup
	if *postalURL != "" {
		postal = geo.NewPostalClient(*postalURL, 5*time.Second, logger)
	}
	var places extract.PlaceLookup
	if *placeURL != "" {
		places = geo.NewPlaceClient(*placeURL, 5*time.Second, logger)
	}

	resolver := extract.NewCityResolver(postal, recognizers, places, logger)
	proc := pipeline.NewProcessor(recognizer, resolver, logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	start := time.Now()
	fields, err := proc.Process(ctx, *image)
	if err != nil {
		logger.Error("extraction failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		os.Exit(1)
	}

	out := struct {
		extract.Fields
		Missing []string `json:"missing,omitempty"`
	}{Fields: fields, Missing: fields.Missing()}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(out)

	if !fields.Complete() {
		os.Exit(2)
	}
}
