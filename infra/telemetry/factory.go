package telemetry

import (
	"fmt"
	"time"

	"github.com/kilianp07/chargeplan/core/factory"
	coremqtt "github.com/kilianp07/chargeplan/core/mqtt"
)

var registry = factory.NewRegistry[Source]()

func init() {
	_ = registry.Register("http", func(conf map[string]any) (Source, error) {
		var c struct {
			URL            string `json:"url"`
			TimeoutSeconds int    `json:"timeout_seconds"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.URL == "" {
			return nil, fmt.Errorf("http battery source: url is required")
		}
		return NewHTTPSource(c.URL, time.Duration(c.TimeoutSeconds)*time.Second)
	})
	_ = registry.Register("file", func(conf map[string]any) (Source, error) {
		var c struct {
			Path          string `json:"path"`
			MaxAgeSeconds int    `json:"max_age_seconds"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("file battery source: path is required")
		}
		return NewFileSource(c.Path, time.Duration(c.MaxAgeSeconds)*time.Second), nil
	})
}

// Build creates a ChainSource from the configured sources, tried in order.
// sub serves the mqtt sources and may be nil when none is configured.
func Build(cfgs []factory.ModuleConfig, timeout time.Duration, sub coremqtt.Subscriber) (*ChainSource, error) {
	sources := make([]Source, 0, len(cfgs))
	for _, c := range cfgs {
		if c.Type != "mqtt" {
			s, err := registry.Create(c)
			if err != nil {
				return nil, err
			}
			sources = append(sources, s)
			continue
		}
		var mc struct {
			Topic         string `json:"topic"`
			MaxAgeSeconds int    `json:"max_age_seconds"`
		}
		if err := factory.Decode(c.Conf, &mc); err != nil {
			return nil, err
		}
		if sub == nil || mc.Topic == "" {
			return nil, fmt.Errorf("mqtt battery source needs a broker connection and a topic")
		}
		s, err := NewMQTTSource(sub, mc.Topic, time.Duration(mc.MaxAgeSeconds)*time.Second)
		if err != nil {
			return nil, err
		}
		sources = append(sources, s)
	}
	return NewChainSource(timeout, sources...), nil
}
