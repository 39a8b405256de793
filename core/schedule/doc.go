// Package schedule holds the charge schedule data model: fixed-width
// YYYYMMDDHHmm keys mapped to setpoint values. It also provides the codec for
// the persisted schedule file, the forward-fill resolver that turns the sparse
// timeline into a gap-free day, and the merge of manual and rule-generated
// entries.
//
// Keys sort lexicographically in chronological order, so every algorithm in
// this package works on sorted key slices without parsing times.
package schedule
