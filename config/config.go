package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/chargeplan/core/metrics"
	"github.com/kilianp07/chargeplan/infra/mqtt"
	"github.com/kilianp07/chargeplan/infra/prices"
)

type Config struct {
	Schedule ScheduleConfig `json:"schedule"`
	Rules    RulesConfig    `json:"rules"`
	Battery  BatteryConfig  `json:"battery"`
	Prices   prices.Config  `json:"prices"`
	HTTP     HTTPConfig     `json:"http"`
	Metrics  metrics.Config `json:"metrics"`
	Audit    AuditConfig    `json:"audit"`
	MQTT     mqtt.Config    `json:"mqtt"`
	Sentry   SentryConfig   `json:"sentry"`
}

// Load reads a YAML or JSON file, applies K_ environment overrides
// (K_SCHEDULE__PATH sets schedule.path), then defaults, then validation.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Default returns a configuration with every default applied, used when no
// config file is given.
func Default() *Config {
	var cfg Config
	cfg.SetDefaults()
	return &cfg
}

func (c *Config) SetDefaults() {
	c.Schedule.SetDefaults()
	c.Rules.SetDefaults()
	c.Battery.SetDefaults()
	c.Prices.SetDefaults()
	c.HTTP.SetDefaults()
	c.Audit.SetDefaults()
	c.Sentry.SetDefaults()
}

func (c *Config) Validate() error {
	validators := []struct {
		section string
		fn      func() error
	}{
		{"schedule", c.Schedule.Validate},
		{"rules", c.Rules.Validate},
		{"battery", c.Battery.Validate},
		{"http", c.HTTP.Validate},
		{"audit", c.Audit.Validate},
		{"sentry", c.Sentry.Validate},
	}
	for _, v := range validators {
		if err := v.fn(); err != nil {
			return fmt.Errorf("%s: %w", v.section, err)
		}
	}
	return nil
}
