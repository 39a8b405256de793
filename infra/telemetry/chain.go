package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ChainSource asks each source in turn and returns the first level found.
// Every source gets its own timeout.
type ChainSource struct {
	sources []Source
	timeout time.Duration
}

// NewChainSource builds a chain; a non-positive timeout uses DefaultTimeout.
func NewChainSource(timeout time.Duration, sources ...Source) *ChainSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ChainSource{sources: sources, timeout: timeout}
}

// BatteryLevel returns the first successful reading.
func (c *ChainSource) BatteryLevel(ctx context.Context) (float64, error) {
	var errs []error
	for _, s := range c.sources {
		sctx, cancel := context.WithTimeout(ctx, c.timeout)
		level, err := s.BatteryLevel(sctx)
		cancel()
		if err == nil {
			return level, nil
		}
		errs = append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if len(errs) == 0 {
		return 0, fmt.Errorf("%w: no sources configured", ErrUnavailable)
	}
	return 0, fmt.Errorf("%w: %v", ErrUnavailable, errors.Join(errs...))
}
