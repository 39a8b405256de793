package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Decode parses the persisted schedule object. An empty JSON array is read as
// an empty schedule.
func Decode(data []byte) (Schedule, error) {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("[]")) {
		return Schedule{}, nil
	}
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: schedule must be a JSON object", ErrParse)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}
	s := make(Schedule, len(raw))
	for k, v := range raw {
		key, err := ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrParse, err)
		}
		val, err := ParseValue(v)
		if err != nil {
			return nil, fmt.Errorf("%w: key %s: %v", ErrParse, k, err)
		}
		s[key] = val
	}
	return s, nil
}

// Encode serializes s as an indented JSON object with keys in ascending order.
func Encode(s Schedule) ([]byte, error) {
	if s == nil {
		s = Schedule{}
	}
	b, err := json.MarshalIndent(map[Key]Value(s), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
