package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/google/uuid"
)

// ModelEngine calls a hosted vision-encoder OCR model over HTTP. The wire
// shape is the hosted-inference convention for image-to-text models: the
// request body is the raw image bytes, the response a JSON array of
// {"generated_text": "..."} candidates.
type ModelEngine struct {
	url    string
	token  string
	client *http.Client
	logger *slog.Logger
}

type generatedText struct {
	GeneratedText string `json:"generated_text"`
}

func NewModelEngine(url, token string, timeout time.Duration, logger *slog.Logger) *ModelEngine {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ModelEngine{
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (e *ModelEngine) Name() string { return "ocr-model" }

func (e *ModelEngine) Recognize(ctx context.Context, path string) (string, error) {
	img, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}

	reqID := uuid.New().String()
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(img))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "image/jpeg")
	if e.token != "" {
		req.Header.Set("Authorization", "Bearer "+e.token)
	}

	e.logger.Debug("ocr.model.request", "req_id", reqID, "url", e.url, "image_bytes", len(img))

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	e.logger.Debug("ocr.model.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var out []generatedText
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(out) == 0 {
		return "", fmt.Errorf("empty model response")
	}
	return out[0].GeneratedText, nil
}
