package rules

import (
	"time"

	"github.com/kilianp07/chargeplan/core/schedule"
)

// Pass names the day an evaluation pass targets.
type Pass string

const (
	PassToday    Pass = "today"
	PassTomorrow Pass = "tomorrow"
)

// PriceCurve maps an hour (0..23) to the energy price of that hour. A nil
// curve means prices are unavailable for the day.
type PriceCurve map[int]float64

// DayContext is the data of one evaluation pass.
type DayContext struct {
	// Date is the YYYYMMDD date entries are generated for.
	Date string
	// Weekday is the ISO weekday, Monday=1 ... Sunday=7.
	Weekday int
	Prices  PriceCurve
}

// Context carries the inputs of an evaluation run. A nil BatteryLevel means
// the level is unavailable.
type Context struct {
	BatteryLevel *float64
	Today        DayContext
	Tomorrow     DayContext
}

// NewDayContext builds the pass data for the calendar day of t.
func NewDayContext(t time.Time, prices PriceCurve) DayContext {
	return DayContext{Date: schedule.DateOf(t), Weekday: ISOWeekday(t), Prices: prices}
}

// NewContext builds a context for the day of now and the day after.
func NewContext(now time.Time, battery *float64, today, tomorrow PriceCurve) Context {
	return Context{
		BatteryLevel: battery,
		Today:        NewDayContext(now, today),
		Tomorrow:     NewDayContext(now.AddDate(0, 0, 1), tomorrow),
	}
}

// ISOWeekday returns the weekday of t with Monday=1 and Sunday=7.
func ISOWeekday(t time.Time) int {
	if wd := t.Weekday(); wd != time.Sunday {
		return int(wd)
	}
	return 7
}

// Level is a convenience to build an available battery level.
func Level(percent float64) *float64 { return &percent }

func (c Context) passes() []struct {
	pass Pass
	day  DayContext
} {
	return []struct {
		pass Pass
		day  DayContext
	}{
		{PassToday, c.Today},
		{PassTomorrow, c.Tomorrow},
	}
}
