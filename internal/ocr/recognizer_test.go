package ocr_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"receiptlens/constants"
	"receiptlens/internal/ocr"
)

type stubEngine struct {
	name   string
	text   string
	err    error
	called bool
}

func (s *stubEngine) Name() string { return s.name }

func (s *stubEngine) Recognize(_ context.Context, _ string) (string, error) {
	s.called = true
	return s.text, s.err
}

func TestRecognizer_PrimaryWins(t *testing.T) {
	primary := &stubEngine{name: "model", text: "Bill Total 1,234.50 delivered on March 5"}
	fallback := &stubEngine{name: "tesseract", text: "fallback text"}
	r := ocr.NewRecognizer(primary, fallback, 10, nil)

	res, err := r.Recognize(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, primary.text, res.Text)
	assert.Equal(t, constants.OCRMethodPrimary, res.Method)
	assert.False(t, fallback.called)
}

func TestRecognizer_DegenerateOutputFallsBack(t *testing.T) {
	// whitespace does not count toward the threshold
	primary := &stubEngine{name: "model", text: "   abc   "}
	fallback := &stubEngine{name: "tesseract", text: "Bill Total 99"}
	r := ocr.NewRecognizer(primary, fallback, 10, nil)

	res, err := r.Recognize(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Bill Total 99", res.Text)
	assert.Equal(t, constants.OCRMethodFallback, res.Method)
}

func TestRecognizer_ExactThresholdFallsBack(t *testing.T) {
	primary := &stubEngine{name: "model", text: "0123456789"} // exactly 10 chars
	fallback := &stubEngine{name: "tesseract", text: "fallback text"}
	r := ocr.NewRecognizer(primary, fallback, 10, nil)

	res, err := r.Recognize(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, constants.OCRMethodFallback, res.Method)
}

func TestRecognizer_PrimaryErrorFallsBack(t *testing.T) {
	primary := &stubEngine{name: "model", err: errors.New("inference endpoint down")}
	fallback := &stubEngine{name: "tesseract", text: "Bill Total 99"}
	r := ocr.NewRecognizer(primary, fallback, 10, nil)

	res, err := r.Recognize(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Bill Total 99", res.Text)
	assert.Equal(t, constants.OCRMethodFallback, res.Method)
}

func TestRecognizer_FallbackOutputTrustedEvenIfShort(t *testing.T) {
	primary := &stubEngine{name: "model", text: "x"}
	fallback := &stubEngine{name: "tesseract", text: "99"}
	r := ocr.NewRecognizer(primary, fallback, 10, nil)

	res, err := r.Recognize(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "99", res.Text)
}

func TestRecognizer_NoPrimaryUsesFallback(t *testing.T) {
	fallback := &stubEngine{name: "tesseract", text: "Bill Total 99"}
	r := ocr.NewRecognizer(nil, fallback, 10, nil)

	res, err := r.Recognize(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, constants.OCRMethodFallback, res.Method)
}

func TestRecognizer_FallbackErrorSurfaces(t *testing.T) {
	primary := &stubEngine{name: "model", err: errors.New("inference endpoint down")}
	fallback := &stubEngine{name: "tesseract", err: errors.New("binary not found")}
	r := ocr.NewRecognizer(primary, fallback, 10, nil)

	_, err := r.Recognize(context.Background(), "receipt.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "binary not found")
}
