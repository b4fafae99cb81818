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

// Verification is the three-valued result of a place check. Unknown means
// the lookup failed and provided no evidence either way, which is distinct
// from a confirmed rejection.
type Verification int

const (
	VerifyUnknown Verification = iota
	VerifyConfirmed
	VerifyRejected
)

func (v Verification) String() string {
	switch v {
	case VerifyConfirmed:
		return "confirmed"
	case VerifyRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// settlementTypes are the place types accepted as a city of purchase.
var settlementTypes = map[string]struct{}{
	"city":    {},
	"town":    {},
	"village": {},
}

// PlaceClient checks a free-text place name against a geocoding search
// endpoint. The wire shape is a JSON array of matches whose first element
// carries a "type" field.
type PlaceClient struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

type placeResult struct {
	Type        string `json:"type"`
	DisplayName string `json:"display_name"`
}

func NewPlaceClient(baseURL string, timeout time.Duration, logger *slog.Logger) *PlaceClient {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &PlaceClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Verify reports whether name resolves to a city, town, or village. Lookup
// failures are swallowed into VerifyUnknown so callers can apply their own
// fallback policy.
func (c *PlaceClient) Verify(ctx context.Context, name string) Verification {
	v, err := c.verify(ctx, name)
	if err != nil {
		c.logger.Warn("geo.place.lookup_failed", "name", name, "error", err)
		return VerifyUnknown
	}
	return v
}

func (c *PlaceClient) verify(ctx context.Context, name string) (Verification, error) {
	endpoint := fmt.Sprintf("%s/search?q=%s&format=json&limit=1", c.baseURL, url.QueryEscape(name))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return VerifyUnknown, fmt.Errorf("build request: %w", err)
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return VerifyUnknown, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Debug("geo.place.response",
		"name", name,
		"status", resp.StatusCode,
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return VerifyUnknown, fmt.Errorf("non-2xx status: %d", resp.StatusCode)
	}

	var results []placeResult
	if err := json.Unmarshal(raw, &results); err != nil {
		return VerifyUnknown, fmt.Errorf("decode response: %w", err)
	}
	if len(results) == 0 {
		return VerifyRejected, nil
	}
	if _, ok := settlementTypes[results[0].Type]; ok {
		return VerifyConfirmed, nil
	}
	return VerifyRejected, nil
}
