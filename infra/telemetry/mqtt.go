package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	coremqtt "github.com/kilianp07/chargeplan/core/mqtt"
	"github.com/kilianp07/chargeplan/infra/logger"
)

// MQTTSource keeps the last level pushed on a topic. Payloads are either the
// device properties message or a bare number.
type MQTTSource struct {
	maxAge time.Duration
	now    func() time.Time
	log    logger.Logger

	mu    sync.RWMutex
	level float64
	at    time.Time
}

// NewMQTTSource subscribes to topic on sub. Readings older than maxAge are
// reported as unavailable when maxAge is positive.
func NewMQTTSource(sub coremqtt.Subscriber, topic string, maxAge time.Duration) (*MQTTSource, error) {
	s := &MQTTSource{maxAge: maxAge, now: time.Now, log: logger.New("battery_mqtt")}
	if err := sub.Subscribe(topic, s.onMessage); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *MQTTSource) onMessage(topic string, payload []byte) {
	level, err := parseProperties(payload)
	if err != nil {
		if lv, perr := checkLevel(string(payload)); perr == nil {
			level, err = lv, nil
		}
	}
	if err != nil {
		s.log.Debugw("battery message ignored", map[string]any{"topic": topic, "error": err.Error()})
		return
	}
	s.mu.Lock()
	s.level, s.at = level, s.now()
	s.mu.Unlock()
}

// BatteryLevel returns the last received level.
func (s *MQTTSource) BatteryLevel(context.Context) (float64, error) {
	s.mu.RLock()
	level, at := s.level, s.at
	s.mu.RUnlock()
	if at.IsZero() {
		return 0, fmt.Errorf("%w: no message received yet", ErrUnavailable)
	}
	if s.maxAge > 0 && s.now().Sub(at) > s.maxAge {
		return 0, fmt.Errorf("%w: last reading from %s", ErrUnavailable, at.Format(time.RFC3339))
	}
	return level, nil
}
