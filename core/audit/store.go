// Package audit keeps a trail of changes applied to the manual schedule.
package audit

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/chargeplan/core/schedule"
)

// Operation names a schedule mutation.
type Operation string

const (
	OpUpsert Operation = "upsert"
	OpRename Operation = "rename"
	OpDelete Operation = "delete"
	OpClear  Operation = "clear"
)

// Record captures one applied mutation.
type Record struct {
	ID          string          `json:"id"`
	Timestamp   time.Time       `json:"timestamp"`
	Operation   Operation       `json:"operation"`
	Key         schedule.Key    `json:"key,omitempty"`
	OriginalKey schedule.Key    `json:"original_key,omitempty"`
	Previous    *schedule.Value `json:"previous,omitempty"`
	Value       *schedule.Value `json:"value,omitempty"`
	// Keys lists the entries removed by a clear.
	Keys  []schedule.Key `json:"keys,omitempty"`
	Count int            `json:"count,omitempty"`
}

// NewRecord stamps a record with a fresh id and the given time.
func NewRecord(op Operation, ts time.Time) Record {
	return Record{ID: uuid.NewString(), Timestamp: ts.UTC(), Operation: op}
}

// Query filters records. Zero fields match everything.
type Query struct {
	Start     time.Time
	End       time.Time
	Key       schedule.Key
	Operation Operation
}

// Match reports whether r satisfies q.
func (q Query) Match(r Record) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.Operation != "" && r.Operation != q.Operation {
		return false
	}
	if q.Key != "" && !r.touches(q.Key) {
		return false
	}
	return true
}

func (r Record) touches(k schedule.Key) bool {
	if r.Key == k || r.OriginalKey == k {
		return true
	}
	for _, c := range r.Keys {
		if c == k {
			return true
		}
	}
	return false
}

// Store persists Records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error          { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }
