package ner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client calls a hosted token-classification model. Request body is
// {"inputs": <text>}, response a JSON array of grouped entities. Two Clients
// pointed at independently trained models give the resolver its two sources.
type Client struct {
	name   string
	url    string
	token  string
	client *http.Client
	logger *slog.Logger
}

func NewClient(name, url, token string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		name:   name,
		url:    url,
		token:  token,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (c *Client) Name() string { return c.name }

func (c *Client) Recognize(ctx context.Context, text string) ([]Entity, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body, err := json.Marshal(map[string]string{"inputs": text})
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Debug("ner.response",
		"req_id", reqID,
		"model", c.name,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var ents []Entity
	if err := json.Unmarshal(raw, &ents); err != nil {
		return nil, fmt.Errorf("decode entities: %w", err)
	}
	return ents, nil
}
