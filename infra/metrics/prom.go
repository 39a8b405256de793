package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/chargeplan/core/metrics"
)

// PromSink records schedule events in Prometheus metrics.
type PromSink struct {
	writes      *prometheus.CounterVec
	writeTime   *prometheus.HistogramVec
	entries     prometheus.Gauge
	evaluations *prometheus.CounterVec
	fragment    prometheus.Gauge
	fetches     *prometheus.CounterVec
	fetchTime   *prometheus.HistogramVec
}

// NewPromSink registers schedule metrics on the default Prometheus registerer.
// The Prometheus server should be started separately.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer. Collectors
// already registered by an earlier sink are reused.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "schedule_writes_total",
			Help: "Schedule writes by operation and outcome",
		}, []string{"operation", "success"}),
		writeTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schedule_write_duration_seconds",
			Help:    "Time spent persisting a schedule",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		entries: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "schedule_entries",
			Help: "Number of entries in the manual schedule after the last write",
		}),
		evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rule_evaluation_events_total",
			Help: "Rule evaluation outcomes: runs, matches and warnings",
		}, []string{"kind"}),
		fragment: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "conditional_fragment_entries",
			Help: "Number of entries in the last rendered conditional fragment",
		}),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "source_fetches_total",
			Help: "Battery and price fetches by outcome",
		}, []string{"source", "available"}),
		fetchTime: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "source_fetch_duration_seconds",
			Help:    "Latency of battery and price fetches",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
	}
	var err error
	if s.writes, err = register(reg, s.writes); err != nil {
		return nil, err
	}
	if s.writeTime, err = register(reg, s.writeTime); err != nil {
		return nil, err
	}
	if s.entries, err = register(reg, s.entries); err != nil {
		return nil, err
	}
	if s.evaluations, err = register(reg, s.evaluations); err != nil {
		return nil, err
	}
	if s.fragment, err = register(reg, s.fragment); err != nil {
		return nil, err
	}
	if s.fetches, err = register(reg, s.fetches); err != nil {
		return nil, err
	}
	if s.fetchTime, err = register(reg, s.fetchTime); err != nil {
		return nil, err
	}
	return s, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordScheduleWrite counts the write and tracks the schedule size.
func (s *PromSink) RecordScheduleWrite(ev coremetrics.ScheduleWriteEvent) error {
	s.writes.WithLabelValues(ev.Operation, strconv.FormatBool(ev.Success)).Inc()
	s.writeTime.WithLabelValues(ev.Operation).Observe(ev.Duration.Seconds())
	if ev.Success && ev.Operation != "render" {
		s.entries.Set(float64(ev.Entries))
	}
	return nil
}

// RecordEvaluation counts runs, matches and warnings.
func (s *PromSink) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	s.evaluations.WithLabelValues("run").Inc()
	s.evaluations.WithLabelValues("match").Add(float64(ev.Matches))
	s.evaluations.WithLabelValues("warning").Add(float64(ev.Warnings))
	s.fragment.Set(float64(ev.FragmentEntries))
	return nil
}

// RecordSourceFetch counts fetches per source and outcome.
func (s *PromSink) RecordSourceFetch(ev coremetrics.SourceFetchEvent) error {
	s.fetches.WithLabelValues(ev.Source, strconv.FormatBool(ev.Available)).Inc()
	s.fetchTime.WithLabelValues(ev.Source).Observe(ev.Latency.Seconds())
	return nil
}
