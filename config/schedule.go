package config

import (
	"fmt"
	"time"

	"github.com/kilianp07/chargeplan/core/factory"
)

// ScheduleConfig locates the manual schedule and the rule-generated fragment.
type ScheduleConfig struct {
	Path string `json:"path"`
	// ConditionalPath is where rendered rule entries are written. Reads merge
	// it under the manual schedule.
	ConditionalPath string `json:"conditional_path"`
}

func (c *ScheduleConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "schedule/data/schedule.json"
	}
	if c.ConditionalPath == "" {
		c.ConditionalPath = "schedule/data/conditional_schedule.json"
	}
}

func (c ScheduleConfig) Validate() error {
	if c.Path == c.ConditionalPath {
		return fmt.Errorf("path and conditional_path must differ")
	}
	return nil
}

// RulesConfig locates the rule set and controls periodic rendering.
type RulesConfig struct {
	Path string `json:"path"`
	// RenderIntervalSeconds re-renders the fragment periodically while
	// serving. Zero disables it.
	RenderIntervalSeconds int `json:"render_interval_seconds"`
}

func (c *RulesConfig) SetDefaults() {
	if c.Path == "" {
		c.Path = "rules/data/rules.json"
	}
}

func (c RulesConfig) Validate() error {
	if c.RenderIntervalSeconds < 0 {
		return fmt.Errorf("render_interval_seconds must not be negative")
	}
	return nil
}

func (c RulesConfig) RenderInterval() time.Duration {
	return time.Duration(c.RenderIntervalSeconds) * time.Second
}

// BatteryConfig lists the battery level sources, tried in order.
type BatteryConfig struct {
	Sources        []factory.ModuleConfig `json:"sources"`
	TimeoutSeconds int                    `json:"timeout_seconds"`
}

func (c *BatteryConfig) SetDefaults() {
	if c.TimeoutSeconds <= 0 {
		c.TimeoutSeconds = 5
	}
}

func (c BatteryConfig) Validate() error {
	for i, s := range c.Sources {
		if s.Type == "" {
			return fmt.Errorf("sources[%d]: type is required", i)
		}
	}
	return nil
}

func (c BatteryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Address     string   `json:"address"`
	CORSOrigins []string `json:"cors_origins"`
	// MetricsPath serves Prometheus metrics on the API listener. Empty
	// disables it.
	MetricsPath string `json:"metrics_path"`
}

func (c *HTTPConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":8080"
	}
	if c.MetricsPath == "" {
		c.MetricsPath = "/metrics"
	}
}

func (c HTTPConfig) Validate() error {
	if c.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}
