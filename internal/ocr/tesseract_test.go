package ocr

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRunner struct {
	stdout  string
	stderr  string
	err     error
	gotName string
	gotArgs []string
}

func (s *stubRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	s.gotName = name
	s.gotArgs = args
	return []byte(s.stdout), []byte(s.stderr), s.err
}

func TestTesseractEngine_Recognize(t *testing.T) {
	r := &stubRunner{stdout: "Bill  Total\t200.50\r\n\r\n\r\nBengaluru  560001\r\n"}
	e := NewTesseractEngine(TesseractConfig{Lang: "eng"}, nil)
	e.runner = r

	txt, err := e.Recognize(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Bill Total 200.50\n\nBengaluru 560001", txt)
	assert.Equal(t, "tesseract", r.gotName)
	assert.Equal(t, []string{"receipt.jpg", "stdout", "-l", "eng"}, r.gotArgs)
}

func TestTesseractEngine_TessdataDir(t *testing.T) {
	r := &stubRunner{stdout: "text"}
	e := NewTesseractEngine(TesseractConfig{Binary: "/usr/local/bin/tesseract", TessdataDir: "/opt/tessdata"}, nil)
	e.runner = r

	_, err := e.Recognize(context.Background(), "receipt.jpg")
	require.NoError(t, err)
	assert.Equal(t, "/usr/local/bin/tesseract", r.gotName)
	assert.Equal(t,
		[]string{"receipt.jpg", "stdout", "-l", "eng", "--tessdata-dir", "/opt/tessdata"},
		r.gotArgs)
}

func TestTesseractEngine_RunFailure(t *testing.T) {
	r := &stubRunner{stderr: "Error opening data file", err: errors.New("exit status 1")}
	e := NewTesseractEngine(TesseractConfig{}, nil)
	e.runner = r

	_, err := e.Recognize(context.Background(), "receipt.jpg")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Error opening data file")
}
