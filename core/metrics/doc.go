// Package metrics defines the sinks used to observe schedule writes, rule
// evaluation runs and collaborator fetches. Implementations live in
// infra/metrics and are created by type name through the factory registry;
// several configured sinks are combined in a MultiSink. A sink only needs
// RecordScheduleWrite, the other recorders are optional and detected with a
// type assertion.
package metrics
