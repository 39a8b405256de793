// Package mqtt defines the subscription contract used by push-based
// telemetry sources.
package mqtt

import "errors"

// ErrSubscribeTimeout is returned when the broker does not acknowledge a
// subscription in time.
var ErrSubscribeTimeout = errors.New("timeout waiting for subscription")

// Handler receives the payload of a message delivered on topic.
type Handler func(topic string, payload []byte)

// Subscriber delivers messages from an MQTT broker. Subscriptions survive
// reconnects.
type Subscriber interface {
	Subscribe(topic string, h Handler) error
	Disconnect()
}
