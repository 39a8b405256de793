package rules

import (
	"errors"
	"fmt"

	"github.com/kilianp07/chargeplan/core/logger"
	"github.com/kilianp07/chargeplan/core/schedule"
)

// Warning records a rule that was skipped for a pass. Warnings never abort an
// evaluation run.
type Warning struct {
	RuleID string
	// Pass is empty when the rule was rejected before any pass ran.
	Pass    Pass
	Err     error
	Message string
}

func (w Warning) Error() string {
	id := w.RuleID
	if id == "" {
		id = "<unnamed>"
	}
	if w.Pass != "" {
		return fmt.Sprintf("rule %s (%s): %s", id, w.Pass, w.Message)
	}
	return fmt.Sprintf("rule %s: %s", id, w.Message)
}

func (w Warning) Unwrap() error { return w.Err }

// Match reports one rule firing for one pass.
type Match struct {
	RuleID string       `json:"rule_id"`
	Pass   Pass         `json:"pass"`
	Start  schedule.Key `json:"start"`
	End    schedule.Key `json:"end"`
}

// Result is the outcome of an evaluation run.
type Result struct {
	Fragment schedule.Schedule
	Warnings []Warning
	Matches  []Match
}

// Engine evaluates rule sets. It holds no state besides its logger and is
// safe for concurrent use.
type Engine struct {
	log logger.Logger
}

// NewEngine creates an engine. A nil logger discards warnings.
func NewEngine(log logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop{}
	}
	return &Engine{log: log}
}

// Evaluate runs every enabled rule against the today and tomorrow passes of
// ctx. When two matching rules write the same key, the later rule wins.
func (e *Engine) Evaluate(rs RuleSet, ctx Context) Result {
	res := Result{Fragment: schedule.Schedule{}}
	if !rs.Enabled {
		return res
	}
	for _, r := range rs.Rules {
		if !r.Enabled {
			continue
		}
		if err := r.Validate(); err != nil {
			res.Warnings = append(res.Warnings, e.warn(r.ID, "", err))
			continue
		}
		for _, p := range ctx.passes() {
			if !r.DaysOfWeek.Contains(p.day.Weekday) {
				continue
			}
			ok, err := r.matches(ctx.BatteryLevel, p.day)
			if err != nil {
				res.Warnings = append(res.Warnings, e.warn(r.ID, p.pass, err))
				continue
			}
			if !ok {
				continue
			}
			start, err := schedule.NewKey(p.day.Date, r.TimeRange.Start)
			if err != nil {
				res.Warnings = append(res.Warnings, e.warn(r.ID, p.pass, err))
				continue
			}
			end, err := schedule.NewKey(p.day.Date, r.TimeRange.End)
			if err != nil {
				res.Warnings = append(res.Warnings, e.warn(r.ID, p.pass, err))
				continue
			}
			res.Fragment[start] = r.Action
			res.Fragment[end] = schedule.Baseline
			res.Matches = append(res.Matches, Match{RuleID: r.ID, Pass: p.pass, Start: start, End: end})
		}
	}
	return res
}

func (e *Engine) warn(id string, pass Pass, err error) Warning {
	w := Warning{RuleID: id, Pass: pass, Err: err, Message: err.Error()}
	fields := map[string]any{"rule": id, "error": err.Error()}
	if pass != "" {
		fields["pass"] = string(pass)
	}
	if errors.Is(err, ErrConditionDataMissing) {
		e.log.Warnw("rule condition skipped: data unavailable", fields)
	} else {
		e.log.Warnw("rule skipped", fields)
	}
	return w
}

// matches evaluates the conjunction of the rule's conditions for one day. A
// non-nil error means the rule fails closed.
func (r Rule) matches(battery *float64, day DayContext) (bool, error) {
	if c := r.Conditions.BatteryLevel; c != nil {
		if battery == nil {
			return false, fmt.Errorf("%w: battery level unavailable", ErrConditionDataMissing)
		}
		ok, err := c.Operator.Compare(*battery, *c.Value)
		if err != nil || !ok {
			return false, err
		}
	}
	if c := r.Conditions.Price; c != nil {
		hour := *c.Hour
		if hour < 0 || hour > 23 {
			return false, fmt.Errorf("%w: price hour %d out of range", ErrConditionDataMissing, hour)
		}
		if day.Prices == nil {
			return false, fmt.Errorf("%w: no prices for %s", ErrConditionDataMissing, day.Date)
		}
		price, found := day.Prices[hour]
		if !found {
			return false, fmt.Errorf("%w: no price for %s hour %d", ErrConditionDataMissing, day.Date, hour)
		}
		ok, err := c.Operator.Compare(price, *c.Value)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}
