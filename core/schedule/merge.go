package schedule

// Merge unions manual and fragment. On key collisions the manual value wins;
// keys only present in the fragment pass through. Neither input is modified.
func Merge(manual, fragment Schedule) Schedule {
	out := make(Schedule, len(manual)+len(fragment))
	for k, v := range fragment {
		out[k] = v
	}
	for k, v := range manual {
		out[k] = v
	}
	return out
}
