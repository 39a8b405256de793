package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Kind tags the variant of a Value.
type Kind uint8

const (
	// KindSetpoint is a fixed power target in watts.
	KindSetpoint Kind = iota
	// KindNetZero holds grid exchange near zero.
	KindNetZero
	// KindNetZeroPlus is net-zero biased towards charging from solar surplus.
	KindNetZeroPlus
)

const (
	netZeroLiteral     = "netzero"
	netZeroPlusLiteral = "netzero+"
)

// Value is a schedule setpoint. Positive watts charge, negative watts
// discharge and zero stops the battery.
type Value struct {
	Kind  Kind
	Watts int
}

var (
	// NetZero is the net-zero mode.
	NetZero = Value{Kind: KindNetZero}
	// NetZeroPlus is the solar-biased net-zero mode.
	NetZeroPlus = Value{Kind: KindNetZeroPlus}
	// Baseline applies when no entry precedes a point in time.
	Baseline = Setpoint(0)
)

// Setpoint returns a fixed power target.
func Setpoint(watts int) Value { return Value{Kind: KindSetpoint, Watts: watts} }

// IsSetpoint reports whether v carries a fixed wattage.
func (v Value) IsSetpoint() bool { return v.Kind == KindSetpoint }

// String renders v in its wire form.
func (v Value) String() string {
	switch v.Kind {
	case KindNetZero:
		return netZeroLiteral
	case KindNetZeroPlus:
		return netZeroPlusLiteral
	default:
		return strconv.Itoa(v.Watts)
	}
}

// MarshalJSON encodes setpoints as integers and modes as their literal.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case KindSetpoint:
		return []byte(strconv.Itoa(v.Watts)), nil
	case KindNetZero, KindNetZeroPlus:
		return json.Marshal(v.String())
	default:
		return nil, fmt.Errorf("unknown value kind %d", v.Kind)
	}
}

// UnmarshalJSON accepts the same forms as ParseValue.
func (v *Value) UnmarshalJSON(b []byte) error {
	parsed, err := ParseValue(b)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseValue parses a raw JSON value: an integer, "netzero" or "netzero+".
// Anything else, including numeric strings and fractional numbers, is a
// validation error.
func ParseValue(raw []byte) (Value, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return Value{}, fmt.Errorf("%w: value is required", ErrValidation)
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return Value{}, fmt.Errorf("%w: value %s: %v", ErrValidation, raw, err)
		}
		return ParseLiteral(s)
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return Value{}, fmt.Errorf("%w: value %s must be an integer, %q or %q", ErrValidation, raw, netZeroLiteral, netZeroPlusLiteral)
	}
	w, err := strconv.Atoi(n.String())
	if err != nil {
		return Value{}, fmt.Errorf("%w: value %s must be an integer", ErrValidation, n)
	}
	return Setpoint(w), nil
}

// ParseLiteral parses the string form of a mode.
func ParseLiteral(s string) (Value, error) {
	switch s {
	case netZeroLiteral:
		return NetZero, nil
	case netZeroPlusLiteral:
		return NetZeroPlus, nil
	default:
		return Value{}, fmt.Errorf("%w: value %q must be an integer, %q or %q", ErrValidation, s, netZeroLiteral, netZeroPlusLiteral)
	}
}
