package rules

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kilianp07/chargeplan/core/schedule"
)

// BatteryCondition compares the battery level in percent.
type BatteryCondition struct {
	Operator Operator `json:"operator"`
	Value    *float64 `json:"value"`
}

// PriceCondition compares the energy price of one hour of the evaluated day.
type PriceCondition struct {
	Operator Operator `json:"operator"`
	Value    *float64 `json:"value"`
	Hour     *int     `json:"hour"`
}

// Conditions is the conjunction of the optional rule conditions. An absent
// condition always holds.
type Conditions struct {
	BatteryLevel *BatteryCondition `json:"battery_level,omitempty"`
	Price        *PriceCondition   `json:"price,omitempty"`
	// Unknown lists condition types the engine does not understand. A rule
	// with unknown conditions never matches.
	Unknown []string `json:"-"`
}

// UnmarshalJSON records unknown condition types instead of ignoring them.
func (c *Conditions) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var out Conditions
	for k, v := range raw {
		switch k {
		case "battery_level":
			if err := json.Unmarshal(v, &out.BatteryLevel); err != nil {
				return fmt.Errorf("battery_level: %w", err)
			}
		case "price":
			if err := json.Unmarshal(v, &out.Price); err != nil {
				return fmt.Errorf("price: %w", err)
			}
		default:
			out.Unknown = append(out.Unknown, k)
		}
	}
	sort.Strings(out.Unknown)
	*c = out
	return nil
}

// TimeRange is the HHmm window a matching rule applies its action to.
type TimeRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// UnmarshalJSON accepts times as "HHmm" strings or as numbers (1400, 0), the
// latter being what unquoted YAML produces.
func (tr *TimeRange) UnmarshalJSON(b []byte) error {
	var aux struct {
		Start json.RawMessage `json:"start"`
		End   json.RawMessage `json:"end"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	start, err := clockString(aux.Start)
	if err != nil {
		return fmt.Errorf("time_range.start: %w", err)
	}
	end, err := clockString(aux.End)
	if err != nil {
		return fmt.Errorf("time_range.end: %w", err)
	}
	*tr = TimeRange{Start: start, End: end}
	return nil
}

func clockString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	if raw[0] == '"' {
		var s string
		err := json.Unmarshal(raw, &s)
		return s, err
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", err
	}
	if n < 0 {
		return "", fmt.Errorf("negative time %d", n)
	}
	return fmt.Sprintf("%04d", n), nil
}

// DaysOfWeek is either every day or a set of ISO weekdays (Monday=1 ... Sunday=7).
type DaysOfWeek struct {
	all  bool
	days [8]bool
}

// AllDays matches every weekday.
func AllDays() DaysOfWeek { return DaysOfWeek{all: true} }

// OnDays matches the given ISO weekdays. Values outside 1..7 are ignored.
func OnDays(days ...int) DaysOfWeek {
	var d DaysOfWeek
	for _, n := range days {
		if n >= 1 && n <= 7 {
			d.days[n] = true
		}
	}
	return d
}

// All reports whether d matches every day.
func (d DaysOfWeek) All() bool { return d.all }

// Contains reports whether the ISO weekday is selected.
func (d DaysOfWeek) Contains(weekday int) bool {
	if d.all {
		return true
	}
	return weekday >= 1 && weekday <= 7 && d.days[weekday]
}

// Days returns the selected weekdays in ascending order.
func (d DaysOfWeek) Days() []int {
	out := []int{}
	for i := 1; i <= 7; i++ {
		if d.all || d.days[i] {
			out = append(out, i)
		}
	}
	return out
}

// MarshalJSON writes "all" or the list of weekdays.
func (d DaysOfWeek) MarshalJSON() ([]byte, error) {
	if d.all {
		return json.Marshal("all")
	}
	return json.Marshal(d.Days())
}

// UnmarshalJSON accepts "all", null or a list of weekdays 1..7.
func (d *DaysOfWeek) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*d = AllDays()
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.EqualFold(s, "all") {
			*d = AllDays()
			return nil
		}
		return fmt.Errorf("days_of_week: unknown value %q", s)
	}
	var days []int
	if err := json.Unmarshal(b, &days); err != nil {
		return fmt.Errorf("days_of_week: %w", err)
	}
	for _, n := range days {
		if n < 1 || n > 7 {
			return fmt.Errorf("days_of_week: %d is not a weekday (1..7)", n)
		}
	}
	*d = OnDays(days...)
	return nil
}

// Rule produces a setpoint window when its conditions hold.
type Rule struct {
	ID         string         `json:"id"`
	Name       string         `json:"name"`
	Enabled    bool           `json:"enabled"`
	Conditions Conditions     `json:"conditions"`
	Action     schedule.Value `json:"action"`
	TimeRange  TimeRange      `json:"time_range"`
	DaysOfWeek DaysOfWeek     `json:"days_of_week"`
	// DateRange is accepted but not evaluated yet; it always passes.
	DateRange json.RawMessage `json:"date_range,omitempty"`
}

// UnmarshalJSON applies the file defaults: enabled and every day unless
// stated otherwise. The action is mandatory.
func (r *Rule) UnmarshalJSON(b []byte) error {
	var aux struct {
		ID         json.RawMessage `json:"id"`
		Name       string          `json:"name"`
		Enabled    *bool           `json:"enabled"`
		Conditions *Conditions     `json:"conditions"`
		Action     json.RawMessage `json:"action"`
		TimeRange  TimeRange       `json:"time_range"`
		DaysOfWeek *DaysOfWeek     `json:"days_of_week"`
		DateRange  json.RawMessage `json:"date_range"`
	}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	action, err := schedule.ParseValue(aux.Action)
	if err != nil {
		return fmt.Errorf("action: %w", err)
	}
	out := Rule{
		ID:         idString(aux.ID),
		Name:       aux.Name,
		Enabled:    true,
		Action:     action,
		TimeRange:  aux.TimeRange,
		DaysOfWeek: AllDays(),
	}
	if aux.Enabled != nil {
		out.Enabled = *aux.Enabled
	}
	if aux.Conditions != nil {
		out.Conditions = *aux.Conditions
	}
	if aux.DaysOfWeek != nil {
		out.DaysOfWeek = *aux.DaysOfWeek
	}
	if len(aux.DateRange) > 0 && !bytes.Equal(bytes.TrimSpace(aux.DateRange), []byte("null")) {
		out.DateRange = aux.DateRange
	}
	*r = out
	return nil
}

// idString accepts any scalar id. Strings are taken as is, numbers and other
// literals keep their JSON text.
func idString(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	return string(raw)
}

// Validate checks the parts of the rule that do not depend on runtime data.
func (r Rule) Validate() error {
	if !schedule.ValidTimeOfDay(r.TimeRange.Start) {
		return fmt.Errorf("%w: time_range.start %q is not HHmm", ErrMalformedRule, r.TimeRange.Start)
	}
	if !schedule.ValidTimeOfDay(r.TimeRange.End) {
		return fmt.Errorf("%w: time_range.end %q is not HHmm", ErrMalformedRule, r.TimeRange.End)
	}
	if len(r.Conditions.Unknown) > 0 {
		return fmt.Errorf("%w: unknown condition types %v", ErrMalformedRule, r.Conditions.Unknown)
	}
	if c := r.Conditions.BatteryLevel; c != nil {
		if !c.Operator.Valid() || c.Value == nil {
			return fmt.Errorf("%w: battery_level needs a known operator and a value", ErrMalformedRule)
		}
	}
	if c := r.Conditions.Price; c != nil {
		if !c.Operator.Valid() || c.Value == nil || c.Hour == nil {
			return fmt.Errorf("%w: price needs a known operator, a value and an hour", ErrMalformedRule)
		}
	}
	return nil
}

// RuleSet is the content of the rules file. When Enabled is false no rule
// produces entries.
type RuleSet struct {
	Enabled bool   `json:"enabled"`
	Rules   []Rule `json:"rules"`
}
