package gateway

import (
	"context"

	"github.com/kilianp07/chargeplan/core/schedule"
)

// ReadResult is the payload of a read.
type ReadResult struct {
	Entries  []schedule.Entry `json:"entries"`
	Resolved []schedule.Slot  `json:"resolved"`
	// Conditional lists the rule-generated entries; nil when no fragment
	// source is configured.
	Conditional []schedule.Entry `json:"conditional,omitempty"`
	Date        string           `json:"date"`
	CurrentHour string           `json:"currentHour"`
	CurrentTime string           `json:"currentTime"`
}

// Read returns the manual entries and the resolved timeline of date. An
// empty or malformed date falls back to today. When a fragment source is
// configured the timeline is resolved from the merge of both schedules,
// manual entries winning.
func (g *Gateway) Read(_ context.Context, date string) (ReadResult, error) {
	now := g.now()
	if !schedule.ValidDate(date) {
		date = schedule.DateOf(now)
	}
	manual, err := g.load()
	if err != nil {
		return ReadResult{}, err
	}
	res := ReadResult{
		Entries:     manual.Entries(),
		Date:        date,
		CurrentHour: now.Format("15") + "00",
		CurrentTime: now.Format("1504"),
	}
	effective := manual
	if frag := g.loadFragment(); frag != nil {
		res.Conditional = frag.Entries()
		effective = schedule.Merge(manual, frag)
	}
	res.Resolved = schedule.ResolveForDate(effective, date)
	return res, nil
}
