package schedule

import "sort"

// Slot is the value in effect from Time until the next slot of the same day.
// Key names the entry the value was carried from and is empty for the
// baseline.
type Slot struct {
	Time  string `json:"time"`
	Value Value  `json:"value"`
	Key   Key    `json:"key,omitempty"`
}

// ResolveForDate forward-fills s over the day date (YYYYMMDD). It emits one
// slot at midnight plus one per distinct time of day found among the keys of
// s. Each slot carries the value of the greatest key at or before that point,
// looking back into earlier days when needed, or Baseline when none exists.
func ResolveForDate(s Schedule, date string) []Slot {
	keys := s.SortedKeys()
	times := map[string]struct{}{DayStart: {}}
	for _, k := range keys {
		times[k.TimeOfDay()] = struct{}{}
	}
	tods := make([]string, 0, len(times))
	for t := range times {
		tods = append(tods, t)
	}
	sort.Strings(tods)

	out := make([]Slot, 0, len(tods))
	for _, tod := range tods {
		probe := Key(date + tod)
		i := sort.Search(len(keys), func(i int) bool { return keys[i] > probe })
		slot := Slot{Time: tod, Value: Baseline}
		if i > 0 {
			slot.Key = keys[i-1]
			slot.Value = s[slot.Key]
		}
		out = append(out, slot)
	}
	return out
}

// ValueAt returns the value of the last slot starting at or before the HHmm
// time tod. Slots must be sorted by time as returned by ResolveForDate.
func ValueAt(slots []Slot, tod string) Value {
	v := Baseline
	for _, sl := range slots {
		if sl.Time > tod {
			break
		}
		v = sl.Value
	}
	return v
}
