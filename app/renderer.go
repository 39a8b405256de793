package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kilianp07/chargeplan/core/logger"
	coremetrics "github.com/kilianp07/chargeplan/core/metrics"
	"github.com/kilianp07/chargeplan/core/monitoring"
	"github.com/kilianp07/chargeplan/core/rules"
	"github.com/kilianp07/chargeplan/infra/prices"
	"github.com/kilianp07/chargeplan/infra/store"
)

// BatterySource reports the battery charge level in percent.
type BatterySource interface {
	BatteryLevel(ctx context.Context) (float64, error)
}

// PriceSource returns the hourly price curves of today and tomorrow.
type PriceSource interface {
	Prices(ctx context.Context) (prices.Curves, error)
}

// Renderer evaluates the rule set and writes the conditional fragment.
type Renderer struct {
	RulesPath  string
	OutputPath string
	Battery    BatterySource
	Prices     PriceSource
	Engine     *rules.Engine
	Metrics    coremetrics.MetricsSink
	Log        logger.Logger
	Now        func() time.Time
}

// RenderReport summarizes one run.
type RenderReport struct {
	Result           rules.Result
	Rules            int
	BatteryAvailable bool
	PricesAvailable  bool
}

func (r *Renderer) defaults() {
	if r.Log == nil {
		r.Log = logger.Nop{}
	}
	if r.Engine == nil {
		r.Engine = rules.NewEngine(r.Log)
	}
	if r.Metrics == nil {
		r.Metrics = coremetrics.NopSink{}
	}
	if r.Now == nil {
		r.Now = time.Now
	}
}

// Run performs one evaluation. A missing or unparsable rule set is returned
// as an error; unavailable battery or price data only disables the rules
// depending on it. The fragment is always rewritten, so a disabled rule set
// or a run where nothing matches clears stale entries.
func (r *Renderer) Run(ctx context.Context) (RenderReport, error) {
	r.defaults()
	start := r.Now()
	rs, loadWarnings, err := rules.LoadRuleSet(r.RulesPath)
	if err != nil {
		return RenderReport{}, fmt.Errorf("load rules: %w", err)
	}
	for _, w := range loadWarnings {
		r.Log.Warnw("rule rejected", map[string]any{"rule": w.RuleID, "error": w.Message})
	}

	report := RenderReport{Rules: len(rs.Rules)}
	var battery *float64
	var today, tomorrow rules.PriceCurve
	if rs.Enabled {
		battery = r.batteryLevel(ctx)
		today, tomorrow = r.priceCurves(ctx)
	} else {
		r.Log.Infof("rule set disabled, writing an empty fragment")
	}
	report.BatteryAvailable = battery != nil
	report.PricesAvailable = today != nil || tomorrow != nil

	res := r.Engine.Evaluate(rs, rules.NewContext(start, battery, today, tomorrow))
	res.Warnings = append(loadWarnings, res.Warnings...)
	report.Result = res

	writeStart := r.Now()
	err = store.AtomicWrite(r.OutputPath, res.Fragment)
	if merr := r.Metrics.RecordScheduleWrite(coremetrics.ScheduleWriteEvent{
		Operation: "render",
		Success:   err == nil,
		Entries:   len(res.Fragment),
		Duration:  r.Now().Sub(writeStart),
		Time:      writeStart,
	}); merr != nil {
		r.Log.Debugf("record schedule write: %v", merr)
	}
	if err != nil {
		return report, fmt.Errorf("write fragment: %w", err)
	}
	if rec, ok := r.Metrics.(coremetrics.EvaluationRecorder); ok {
		if merr := rec.RecordEvaluation(coremetrics.EvaluationEvent{
			Rules:            report.Rules,
			Matches:          len(res.Matches),
			Warnings:         len(res.Warnings),
			FragmentEntries:  len(res.Fragment),
			BatteryAvailable: report.BatteryAvailable,
			PricesAvailable:  report.PricesAvailable,
			Duration:         r.Now().Sub(start),
			Time:             start,
		}); merr != nil {
			r.Log.Debugf("record evaluation: %v", merr)
		}
	}
	r.Log.Infof("rendered %d entries from %d matches (%d warnings)", len(res.Fragment), len(res.Matches), len(res.Warnings))
	return report, nil
}

func (r *Renderer) batteryLevel(ctx context.Context) *float64 {
	if r.Battery == nil {
		return nil
	}
	start := r.Now()
	level, err := r.Battery.BatteryLevel(ctx)
	r.recordFetch("battery", err == nil, start)
	if err != nil {
		r.Log.Warnf("battery level unavailable: %v", err)
		return nil
	}
	return rules.Level(level)
}

func (r *Renderer) priceCurves(ctx context.Context) (rules.PriceCurve, rules.PriceCurve) {
	if r.Prices == nil {
		return nil, nil
	}
	start := r.Now()
	c, err := r.Prices.Prices(ctx)
	r.recordFetch("prices", err == nil, start)
	if err != nil {
		r.Log.Warnf("prices unavailable: %v", err)
		return nil, nil
	}
	return c.Today, c.Tomorrow
}

func (r *Renderer) recordFetch(source string, ok bool, start time.Time) {
	if rec, is := r.Metrics.(coremetrics.SourceFetchRecorder); is {
		if err := rec.RecordSourceFetch(coremetrics.SourceFetchEvent{
			Source:    source,
			Available: ok,
			Latency:   r.Now().Sub(start),
			Time:      start,
		}); err != nil {
			r.Log.Debugf("record %s fetch: %v", source, err)
		}
	}
}

// RunEvery renders immediately and then on every tick until ctx is done.
// Failed runs are logged and reported; they never stop the loop.
func (r *Renderer) RunEvery(ctx context.Context, interval time.Duration) {
	r.defaults()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if _, err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			r.Log.Errorf("render: %v", err)
			monitoring.Capture(err, "component", "renderer")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}
