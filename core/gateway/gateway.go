// Package gateway implements the request contract over the manually edited
// schedule: read with resolution, upsert, delete and clearing of old entries.
//
// Every operation loads the schedule, works on that value and, for
// mutations, persists the complete result through the store. Nothing is kept
// between calls besides the injected collaborators. Writers are not
// serialized here; callers needing that wrap the gateway.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/kilianp07/chargeplan/core/audit"
	"github.com/kilianp07/chargeplan/core/logger"
	"github.com/kilianp07/chargeplan/core/metrics"
	"github.com/kilianp07/chargeplan/core/schedule"
)

// Store persists the manual schedule.
type Store interface {
	Load() (schedule.Schedule, error)
	Write(schedule.Schedule) error
	ClearOldEntries(sch schedule.Schedule, simulate bool) (schedule.Schedule, schedule.ClearResult, error)
}

// FragmentSource provides the rule-generated schedule merged into reads.
type FragmentSource interface {
	Load() (schedule.Schedule, error)
}

// Gateway serves schedule requests.
type Gateway struct {
	store    Store
	fragment FragmentSource
	audit    audit.Store
	metrics  metrics.MetricsSink
	log      logger.Logger
	now      func() time.Time
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithFragment merges the fragment from src into every read.
func WithFragment(src FragmentSource) Option { return func(g *Gateway) { g.fragment = src } }

// WithAudit records every applied mutation in s.
func WithAudit(s audit.Store) Option {
	return func(g *Gateway) {
		if s != nil {
			g.audit = s
		}
	}
}

// WithMetrics reports schedule writes to sink.
func WithMetrics(sink metrics.MetricsSink) Option {
	return func(g *Gateway) {
		if sink != nil {
			g.metrics = sink
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(g *Gateway) {
		if l != nil {
			g.log = l
		}
	}
}

// WithClock overrides the clock used for the default date and time labels.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		if now != nil {
			g.now = now
		}
	}
}

// New creates a gateway over store.
func New(store Store, opts ...Option) *Gateway {
	g := &Gateway{
		store:   store,
		audit:   audit.NopStore{},
		metrics: metrics.NopSink{},
		log:     logger.Nop{},
		now:     time.Now,
	}
	for _, o := range opts {
		o(g)
	}
	return g
}

// load returns the manual schedule; a missing file reads as empty.
func (g *Gateway) load() (schedule.Schedule, error) {
	sch, err := g.store.Load()
	if errors.Is(err, schedule.ErrNotFound) {
		return schedule.Schedule{}, nil
	}
	if err != nil {
		return nil, err
	}
	return sch, nil
}

// loadFragment returns the conditional fragment. Unreadable fragments are
// logged and treated as empty so manual entries stay readable.
func (g *Gateway) loadFragment() schedule.Schedule {
	if g.fragment == nil {
		return nil
	}
	frag, err := g.fragment.Load()
	if err != nil {
		if !errors.Is(err, schedule.ErrNotFound) {
			g.log.Warnw("conditional schedule ignored", map[string]any{"error": err.Error()})
		}
		return schedule.Schedule{}
	}
	return frag
}

func (g *Gateway) write(op string, sch schedule.Schedule) error {
	start := g.now()
	err := g.store.Write(sch)
	g.recordWrite(op, err == nil, len(sch), start)
	return err
}

func (g *Gateway) recordWrite(op string, ok bool, entries int, start time.Time) {
	ev := metrics.ScheduleWriteEvent{
		Operation: op,
		Success:   ok,
		Entries:   entries,
		Duration:  g.now().Sub(start),
		Time:      start,
	}
	if err := g.metrics.RecordScheduleWrite(ev); err != nil {
		g.log.Debugf("record schedule write: %v", err)
	}
}

func (g *Gateway) record(ctx context.Context, rec audit.Record) {
	if err := g.audit.Append(ctx, rec); err != nil {
		g.log.Warnw("audit append failed", map[string]any{"operation": string(rec.Operation), "error": err.Error()})
	}
}
