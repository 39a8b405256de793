package schedule

import "sort"

// Schedule maps keys to setpoints. The whole map is the unit of persistence.
type Schedule map[Key]Value

// Entry is one key/value pair of a schedule.
type Entry struct {
	Key   Key   `json:"key"`
	Value Value `json:"value"`
}

// SortedKeys returns the keys in chronological order.
func (s Schedule) SortedKeys() []Key {
	keys := make([]Key, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Entries returns the schedule as a slice sorted ascending by key.
func (s Schedule) Entries() []Entry {
	keys := s.SortedKeys()
	out := make([]Entry, len(keys))
	for i, k := range keys {
		out[i] = Entry{Key: k, Value: s[k]}
	}
	return out
}

// Clone returns a shallow copy of s. A nil schedule clones to an empty one.
func (s Schedule) Clone() Schedule {
	out := make(Schedule, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// KeysBefore returns the sorted keys whose date is strictly earlier than date.
func (s Schedule) KeysBefore(date string) []Key {
	var out []Key
	for _, k := range s.SortedKeys() {
		if k.Date() < date {
			out = append(out, k)
		}
	}
	return out
}

// ClearResult lists the entries removed, or that would be removed, by a
// clear of old entries.
type ClearResult struct {
	Count int   `json:"count"`
	Keys  []Key `json:"entries"`
}
