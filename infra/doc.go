// Package infra contains technical adapters: the schedule file store, MQTT
// and HTTP telemetry sources, the price client, metrics exporters and the
// chart renderer. These packages depend only on interfaces and types
// defined in the core packages.
package infra
