package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coremetrics "github.com/kilianp07/chargeplan/core/metrics"
	"github.com/kilianp07/chargeplan/core/rules"
	"github.com/kilianp07/chargeplan/core/schedule"
	"github.com/kilianp07/chargeplan/infra/logger"
	"github.com/kilianp07/chargeplan/infra/prices"
	"github.com/kilianp07/chargeplan/infra/store"
)

// Sunday 14 January 2024.
var renderNow = time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC)

const ruleSet = `{
  "enabled": true,
  "rules": [
    {
      "id": "sell-high",
      "name": "Discharge when expensive",
      "conditions": {
        "battery_level": {"operator": ">", "value": 80},
        "price": {"operator": ">", "value": 0.30, "hour": 14}
      },
      "action": -200,
      "time_range": {"start": "1400", "end": "1500"},
      "days_of_week": "all"
    }
  ]
}`

type fixedBattery struct {
	level float64
	err   error
}

func (b fixedBattery) BatteryLevel(context.Context) (float64, error) { return b.level, b.err }

type fixedPrices struct {
	curves prices.Curves
	err    error
}

func (p fixedPrices) Prices(context.Context) (prices.Curves, error) { return p.curves, p.err }

type recordingSink struct {
	writes  []coremetrics.ScheduleWriteEvent
	evals   []coremetrics.EvaluationEvent
	fetches []coremetrics.SourceFetchEvent
}

func (s *recordingSink) RecordScheduleWrite(ev coremetrics.ScheduleWriteEvent) error {
	s.writes = append(s.writes, ev)
	return nil
}

func (s *recordingSink) RecordEvaluation(ev coremetrics.EvaluationEvent) error {
	s.evals = append(s.evals, ev)
	return nil
}

func (s *recordingSink) RecordSourceFetch(ev coremetrics.SourceFetchEvent) error {
	s.fetches = append(s.fetches, ev)
	return nil
}

func newRenderer(t *testing.T, rulesJSON string) (*Renderer, *recordingSink) {
	t.Helper()
	dir := t.TempDir()
	rulesPath := filepath.Join(dir, "rules.json")
	require.NoError(t, os.WriteFile(rulesPath, []byte(rulesJSON), 0o644))
	sink := &recordingSink{}
	return &Renderer{
		RulesPath:  rulesPath,
		OutputPath: filepath.Join(dir, "out", "conditional_schedule.json"),
		Battery:    fixedBattery{level: 85},
		Prices: fixedPrices{curves: prices.Curves{
			Today:    rules.PriceCurve{14: 0.35},
			Tomorrow: rules.PriceCurve{14: 0.35},
		}},
		Metrics: sink,
		Now:     func() time.Time { return renderNow },
	}, sink
}

func TestRendererWritesFragment(t *testing.T) {
	r, sink := newRenderer(t, ruleSet)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.BatteryAvailable)
	assert.True(t, report.PricesAvailable)
	assert.Empty(t, report.Result.Warnings)

	got, err := store.Load(r.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, schedule.Schedule{
		"202401141400": schedule.Setpoint(-200),
		"202401141500": schedule.Setpoint(0),
		"202401151400": schedule.Setpoint(-200),
		"202401151500": schedule.Setpoint(0),
	}, got)

	require.Len(t, sink.writes, 1)
	assert.Equal(t, "render", sink.writes[0].Operation)
	assert.True(t, sink.writes[0].Success)
	require.Len(t, sink.evals, 1)
	assert.Equal(t, 2, sink.evals[0].Matches)
	assert.Len(t, sink.fetches, 2)
}

func TestRendererUnavailableDataFailsClosed(t *testing.T) {
	r, sink := newRenderer(t, ruleSet)
	require.NoError(t, store.AtomicWrite(r.OutputPath, schedule.Schedule{"202401131400": schedule.Setpoint(-200)}))
	r.Battery = fixedBattery{err: errors.New("timeout")}

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, report.BatteryAvailable)
	require.Len(t, report.Result.Warnings, 2)
	for _, w := range report.Result.Warnings {
		assert.ErrorIs(t, w, rules.ErrConditionDataMissing)
	}

	got, err := store.Load(r.OutputPath)
	require.NoError(t, err)
	assert.Empty(t, got, "stale entries are replaced by the empty fragment")
	assert.False(t, sink.fetches[0].Available)
}

type failingSink struct{}

func (failingSink) RecordScheduleWrite(coremetrics.ScheduleWriteEvent) error {
	return errors.New("influx down")
}

func (failingSink) RecordEvaluation(coremetrics.EvaluationEvent) error {
	return errors.New("influx down")
}

func (failingSink) RecordSourceFetch(coremetrics.SourceFetchEvent) error {
	return errors.New("influx down")
}

func TestRendererLogsSinkErrors(t *testing.T) {
	r, _ := newRenderer(t, ruleSet)
	var buf bytes.Buffer
	r.Metrics = failingSink{}
	r.Log = logger.NewZerologLoggerTo(&buf, "renderer", "debug")

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, report.Result.Fragment, 4)

	out := buf.String()
	assert.Contains(t, out, "record schedule write: influx down")
	assert.Contains(t, out, "record evaluation: influx down")
	assert.Contains(t, out, "record battery fetch: influx down")
	assert.Contains(t, out, "record prices fetch: influx down")
}

func TestRendererDisabledRuleSet(t *testing.T) {
	r, sink := newRenderer(t, `{"enabled": false, "rules": []}`)

	report, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, report.Result.Fragment)
	assert.Empty(t, sink.fetches, "no data is fetched for a disabled rule set")

	got, err := store.Load(r.OutputPath)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRendererRuleSetErrors(t *testing.T) {
	r, _ := newRenderer(t, `{"enabled": true}`)
	_, err := r.Run(context.Background())
	assert.ErrorIs(t, err, schedule.ErrParse)

	r.RulesPath = filepath.Join(t.TempDir(), "missing.json")
	_, err = r.Run(context.Background())
	assert.ErrorIs(t, err, schedule.ErrNotFound)
	_, statErr := os.Stat(r.OutputPath)
	assert.True(t, os.IsNotExist(statErr), "nothing is written when rules cannot be loaded")
}

func TestRunEveryStopsOnCancel(t *testing.T) {
	r, sink := newRenderer(t, ruleSet)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.RunEvery(ctx, time.Hour)
		close(done)
	}()
	require.Eventually(t, func() bool {
		_, err := os.Stat(r.OutputPath)
		return err == nil
	}, time.Second, 10*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunEvery did not return")
	}
	assert.NotEmpty(t, sink.writes)
}
