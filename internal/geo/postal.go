package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// PostalClient resolves a 6-digit postal code to its district name via the
// public pincode directory. The wire shape is a JSON array with one element
// per query: {"Status": "Success", "PostOffice": [{"District": ...}, ...]}.
type PostalClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

type postalResponse struct {
	Status     string `json:"Status"`
	PostOffice []struct {
		Name     string `json:"Name"`
		District string `json:"District"`
		State    string `json:"State"`
	} `json:"PostOffice"`
}

func NewPostalClient(baseURL string, timeout time.Duration, logger *slog.Logger) *PostalClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PostalClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// DistrictForCode returns the district of the first post office listed for
// the code. Any failure returns an error; callers treat it as best-effort.
func (c *PostalClient) DistrictForCode(ctx context.Context, code string) (string, error) {
	endpoint := fmt.Sprintf("%s/%s", c.baseURL, url.PathEscape(code))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Debug("geo.postal.response",
		"code", code,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var results []postalResponse
	if err := json.Unmarshal(raw, &results); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 || results[0].Status != "Success" || len(results[0].PostOffice) == 0 {
		return "", fmt.Errorf("no match for code %s", code)
	}
	return results[0].PostOffice[0].District, nil
}
