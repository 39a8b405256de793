// Package prices fetches the hourly energy prices of today and tomorrow.
package prices

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/patrickmn/go-cache"

	"github.com/kilianp07/chargeplan/auth"
	"github.com/kilianp07/chargeplan/core/rules"
	"github.com/kilianp07/chargeplan/core/schedule"
	"github.com/kilianp07/chargeplan/infra/logger"
)

// ErrUnavailable is returned when prices cannot be fetched in time.
var ErrUnavailable = errors.New("prices unavailable")

// Config configures the price API client.
type Config struct {
	URL             string    `json:"url"`
	TimeoutSeconds  int       `json:"timeout_seconds"`
	MaxRetries      int       `json:"max_retries"`
	CacheTTLSeconds int       `json:"cache_ttl_seconds"`
	Auth            auth.Conf `json:"auth"`
}

// SetDefaults fills unset values.
func (c *Config) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 10
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 2
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = 900
	}
}

// Curves holds the price curves of one fetch. A nil curve means the API had
// no prices for that day.
type Curves struct {
	Today    rules.PriceCurve
	Tomorrow rules.PriceCurve
}

// Client fetches and caches price curves.
type Client struct {
	url     string
	timeout time.Duration
	retries uint64
	http    *http.Client
	auth    *auth.ClientCred
	cache   *cache.Cache
	now     func() time.Time
	log     logger.Logger
}

// NewClient creates a client from cfg. Defaults are applied to a copy.
func NewClient(cfg Config) *Client {
	cfg.SetDefaults()
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	c := &Client{
		url:     cfg.URL,
		timeout: timeout,
		retries: uint64(cfg.MaxRetries),
		http:    &http.Client{Timeout: timeout},
		cache:   cache.New(ttl, 2*ttl),
		now:     time.Now,
		log:     logger.New("prices"),
	}
	if cfg.Auth.Enabled() {
		c.auth = auth.NewClientCred(cfg.Auth)
	}
	return c
}

// Prices returns the curves for the current day. Successful fetches are
// cached per calendar day; the whole call including retries is bounded by
// the configured timeout.
func (c *Client) Prices(ctx context.Context) (Curves, error) {
	day := schedule.DateOf(c.now())
	if v, ok := c.cache.Get(day); ok {
		return v.(Curves), nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	bo := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithInitialInterval(200*time.Millisecond),
	), c.retries), ctx)
	curves, err := backoff.RetryWithData(func() (Curves, error) { return c.fetch(ctx) }, bo)
	if err != nil {
		return Curves{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	c.cache.SetDefault(day, curves)
	return curves, nil
}

func (c *Client) fetch(ctx context.Context) (Curves, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Curves{}, backoff.Permanent(err)
	}
	if c.auth != nil {
		if err := c.auth.SetAuthHeader(req); err != nil {
			return Curves{}, err
		}
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return Curves{}, err
	}
	defer func() { _ = resp.Body.Close() }()
	switch {
	case resp.StatusCode == http.StatusUnauthorized && c.auth != nil:
		c.auth.Invalidate()
		return Curves{}, fmt.Errorf("status %d", resp.StatusCode)
	case resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests:
		return Curves{}, fmt.Errorf("status %d", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return Curves{}, backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
	}
	var body struct {
		Today    map[string]json.Number `json:"today"`
		Tomorrow map[string]json.Number `json:"tomorrow"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Curves{}, backoff.Permanent(fmt.Errorf("decode: %w", err))
	}
	today, err := ParseCurve(body.Today)
	if err != nil {
		return Curves{}, backoff.Permanent(fmt.Errorf("today: %w", err))
	}
	tomorrow, err := ParseCurve(body.Tomorrow)
	if err != nil {
		return Curves{}, backoff.Permanent(fmt.Errorf("tomorrow: %w", err))
	}
	if today == nil {
		c.log.Warnf("no price data for today")
	}
	return Curves{Today: today, Tomorrow: tomorrow}, nil
}

// ParseCurve converts hour keys ("00".."23", unpadded accepted) to a curve.
// Keys that are not an hour of the day are skipped. An empty map yields nil.
func ParseCurve(m map[string]json.Number) (rules.PriceCurve, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(rules.PriceCurve, len(m))
	for k, v := range m {
		h, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil || h < 0 || h > 23 {
			continue
		}
		p, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("price for hour %q: %w", k, err)
		}
		out[h] = p
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, nil
}
