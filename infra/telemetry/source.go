// Package telemetry reads the battery state of charge from the places the
// home setup publishes it: the data API, its cached JSON file and MQTT.
package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnavailable is returned when no battery level can be obtained in time.
var ErrUnavailable = errors.New("battery level unavailable")

// DefaultTimeout bounds a single fetch when no timeout is configured.
const DefaultTimeout = 5 * time.Second

// Source reports the battery level in percent.
type Source interface {
	BatteryLevel(ctx context.Context) (float64, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (float64, error)

func (f SourceFunc) BatteryLevel(ctx context.Context) (float64, error) { return f(ctx) }

type properties struct {
	ElectricLevel *json.Number `json:"electricLevel"`
}

// parseProperties extracts electricLevel from {"properties":{...}}.
func parseProperties(payload []byte) (float64, error) {
	var msg struct {
		Properties properties `json:"properties"`
	}
	if err := json.Unmarshal(payload, &msg); err != nil {
		return 0, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return levelOf(msg.Properties)
}

func levelOf(p properties) (float64, error) {
	if p.ElectricLevel == nil {
		return 0, fmt.Errorf("%w: electricLevel missing", ErrUnavailable)
	}
	return checkLevel(p.ElectricLevel.String())
}

func checkLevel(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: level %q: %v", ErrUnavailable, s, err)
	}
	if v < 0 || v > 100 {
		return 0, fmt.Errorf("%w: level %v outside 0..100", ErrUnavailable, v)
	}
	return v, nil
}
