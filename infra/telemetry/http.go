package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPSource polls the data API: GET <url>?type=zendure answering
// {"success":true,"data":{"properties":{"electricLevel":N}}}.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource creates a source with a bounded request timeout.
func NewHTTPSource(rawURL string, timeout time.Duration) (*HTTPSource, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("battery url: %w", err)
	}
	q := u.Query()
	if q.Get("type") == "" {
		q.Set("type", "zendure")
	}
	u.RawQuery = q.Encode()
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPSource{url: u.String(), client: &http.Client{Timeout: timeout}}, nil
}

// BatteryLevel fetches the current level.
func (s *HTTPSource) BatteryLevel(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}
	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Properties properties `json:"properties"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	if !body.Success {
		return 0, fmt.Errorf("%w: api reported failure", ErrUnavailable)
	}
	return levelOf(body.Data.Properties)
}
