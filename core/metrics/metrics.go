package metrics

import "time"

// ScheduleWriteEvent describes one mutation of the manual schedule or one
// write of the conditional fragment.
type ScheduleWriteEvent struct {
	// Operation is upsert, delete, clear or render.
	Operation string
	Success   bool
	// Entries is the number of entries in the persisted schedule.
	Entries  int
	Duration time.Duration
	Time     time.Time
}

// MetricsSink records schedule writes for observability purposes.
type MetricsSink interface {
	RecordScheduleWrite(ev ScheduleWriteEvent) error
}

// EvaluationEvent summarizes one rule evaluation run.
type EvaluationEvent struct {
	Rules            int
	Matches          int
	Warnings         int
	FragmentEntries  int
	BatteryAvailable bool
	PricesAvailable  bool
	Duration         time.Duration
	Time             time.Time
}

// EvaluationRecorder records rule evaluation runs.
type EvaluationRecorder interface {
	RecordEvaluation(ev EvaluationEvent) error
}

// SourceFetchEvent captures one fetch from a telemetry or price source.
type SourceFetchEvent struct {
	// Source is battery or prices.
	Source    string
	Available bool
	Latency   time.Duration
	Time      time.Time
}

// SourceFetchRecorder records collaborator fetches.
type SourceFetchRecorder interface {
	RecordSourceFetch(ev SourceFetchEvent) error
}

// NopSink implements every recorder with no-op methods.
type NopSink struct{}

func (NopSink) RecordScheduleWrite(ScheduleWriteEvent) error { return nil }
func (NopSink) RecordEvaluation(EvaluationEvent) error       { return nil }
func (NopSink) RecordSourceFetch(SourceFetchEvent) error     { return nil }
