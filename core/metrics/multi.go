package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []MetricsSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordScheduleWrite forwards the event to all sinks, returning the first error encountered.
func (m *MultiSink) RecordScheduleWrite(ev ScheduleWriteEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordScheduleWrite(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordEvaluation forwards evaluation events to sinks supporting them.
func (m *MultiSink) RecordEvaluation(ev EvaluationEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(EvaluationRecorder); ok {
			if err := rec.RecordEvaluation(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSourceFetch forwards fetch events to sinks supporting them.
func (m *MultiSink) RecordSourceFetch(ev SourceFetchEvent) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(SourceFetchRecorder); ok {
			if err := rec.RecordSourceFetch(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
