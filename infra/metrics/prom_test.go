package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/chargeplan/core/metrics"
)

func TestPromSink_RecordScheduleWrite(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordScheduleWrite(coremetrics.ScheduleWriteEvent{Operation: "upsert", Success: true, Entries: 4, Duration: time.Millisecond}))
	require.NoError(t, sink.RecordScheduleWrite(coremetrics.ScheduleWriteEvent{Operation: "upsert", Success: false}))
	require.NoError(t, sink.RecordScheduleWrite(coremetrics.ScheduleWriteEvent{Operation: "render", Success: true, Entries: 9}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.writes.WithLabelValues("upsert", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.writes.WithLabelValues("upsert", "false")))
	assert.Equal(t, 4.0, testutil.ToFloat64(sink.entries))
}

func TestPromSink_RecordEvaluationAndFetch(t *testing.T) {
	reg := prometheus.NewRegistry()
	sink, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, sink.RecordEvaluation(coremetrics.EvaluationEvent{Matches: 2, Warnings: 1, FragmentEntries: 4}))
	require.NoError(t, sink.RecordSourceFetch(coremetrics.SourceFetchEvent{Source: "battery", Available: false}))

	assert.Equal(t, 1.0, testutil.ToFloat64(sink.evaluations.WithLabelValues("run")))
	assert.Equal(t, 2.0, testutil.ToFloat64(sink.evaluations.WithLabelValues("match")))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.evaluations.WithLabelValues("warning")))
	assert.Equal(t, 4.0, testutil.ToFloat64(sink.fragment))
	assert.Equal(t, 1.0, testutil.ToFloat64(sink.fetches.WithLabelValues("battery", "false")))
}

func TestPromSink_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)
	second, err := NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	require.NoError(t, first.RecordScheduleWrite(coremetrics.ScheduleWriteEvent{Operation: "delete", Success: true}))
	require.NoError(t, second.RecordScheduleWrite(coremetrics.ScheduleWriteEvent{Operation: "delete", Success: true}))
	assert.Equal(t, 2.0, testutil.ToFloat64(first.writes.WithLabelValues("delete", "true")))
}
