package gateway

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kilianp07/chargeplan/core/audit"
	"github.com/kilianp07/chargeplan/core/schedule"
)

// UpsertRequest adds or edits one entry. When OriginalKey is set and differs
// from Key the entry is moved.
type UpsertRequest struct {
	Key         string          `json:"key"`
	Value       json.RawMessage `json:"value"`
	OriginalKey string          `json:"originalKey,omitempty"`
}

// UpsertResult echoes the stored entry.
type UpsertResult struct {
	Key   schedule.Key   `json:"key"`
	Value schedule.Value `json:"value"`
}

// Upsert validates the request and persists the updated schedule. Invalid
// keys or values wrap schedule.ErrValidation and leave the store untouched.
func (g *Gateway) Upsert(ctx context.Context, req UpsertRequest) (UpsertResult, error) {
	key, err := schedule.ParseKey(req.Key)
	if err != nil {
		return UpsertResult{}, err
	}
	value, err := schedule.ParseValue(req.Value)
	if err != nil {
		return UpsertResult{}, err
	}
	var original schedule.Key
	if req.OriginalKey != "" && req.OriginalKey != req.Key {
		if original, err = schedule.ParseKey(req.OriginalKey); err != nil {
			return UpsertResult{}, fmt.Errorf("originalKey: %w", err)
		}
	}

	sch, err := g.load()
	if err != nil {
		return UpsertResult{}, err
	}
	rec := audit.NewRecord(audit.OpUpsert, g.now())
	rec.Key, rec.Value = key, &value
	if prev, ok := sch[key]; ok {
		rec.Previous = &prev
	}
	if original != "" {
		rec.Operation, rec.OriginalKey = audit.OpRename, original
		if prev, ok := sch[original]; ok {
			rec.Previous = &prev
		}
		delete(sch, original)
	}
	sch[key] = value
	if err := g.write(string(rec.Operation), sch); err != nil {
		return UpsertResult{}, err
	}
	g.record(ctx, rec)
	return UpsertResult{Key: key, Value: value}, nil
}

// DeleteResult reports whether an entry was removed.
type DeleteResult struct {
	Key     schedule.Key `json:"key"`
	Deleted bool         `json:"deleted"`
}

// Delete removes key. Deleting an absent key succeeds without writing.
func (g *Gateway) Delete(ctx context.Context, rawKey string) (DeleteResult, error) {
	if rawKey == "" {
		return DeleteResult{}, fmt.Errorf("%w: key is required", schedule.ErrValidation)
	}
	key, err := schedule.ParseKey(rawKey)
	if err != nil {
		return DeleteResult{}, err
	}
	sch, err := g.load()
	if err != nil {
		return DeleteResult{}, err
	}
	prev, ok := sch[key]
	if !ok {
		return DeleteResult{Key: key}, nil
	}
	delete(sch, key)
	if err := g.write(string(audit.OpDelete), sch); err != nil {
		return DeleteResult{}, err
	}
	rec := audit.NewRecord(audit.OpDelete, g.now())
	rec.Key, rec.Previous = key, &prev
	g.record(ctx, rec)
	return DeleteResult{Key: key, Deleted: true}, nil
}

// ClearAction selects between previewing and applying a clear.
type ClearAction string

const (
	ClearSimulate ClearAction = "simulate"
	ClearDelete   ClearAction = "delete"
)

// ParseClearAction validates a clear action name.
func ParseClearAction(s string) (ClearAction, error) {
	switch a := ClearAction(s); a {
	case ClearSimulate, ClearDelete:
		return a, nil
	}
	return "", fmt.Errorf("%w: action %q must be %q or %q", schedule.ErrValidation, s, ClearSimulate, ClearDelete)
}

// Clear removes, or with ClearSimulate only lists, every entry dated before
// today.
func (g *Gateway) Clear(ctx context.Context, action ClearAction) (schedule.ClearResult, error) {
	if _, err := ParseClearAction(string(action)); err != nil {
		return schedule.ClearResult{}, err
	}
	sch, err := g.load()
	if err != nil {
		return schedule.ClearResult{}, err
	}
	simulate := action == ClearSimulate
	start := g.now()
	out, res, err := g.store.ClearOldEntries(sch, simulate)
	if simulate {
		return res, err
	}
	g.recordWrite(string(audit.OpClear), err == nil, len(out), start)
	if err != nil {
		return schedule.ClearResult{}, err
	}
	if res.Count > 0 {
		rec := audit.NewRecord(audit.OpClear, g.now())
		rec.Keys, rec.Count = res.Keys, res.Count
		g.record(ctx, rec)
	}
	return res, nil
}
