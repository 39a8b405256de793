package schedule

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValue(t *testing.T) {
	cases := map[string]Value{
		`-100`:       Setpoint(-100),
		`0`:          Setpoint(0),
		` 800 `:      Setpoint(800),
		`"netzero"`:  NetZero,
		`"netzero+"`: NetZeroPlus,
	}
	for raw, want := range cases {
		got, err := ParseValue([]byte(raw))
		require.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}

func TestParseValueRejects(t *testing.T) {
	for _, raw := range []string{`"bogus"`, `"100"`, `1.5`, `1e3`, `true`, `null`, ``, `{}`, `[1]`, `"NetZero"`} {
		_, err := ParseValue([]byte(raw))
		if !errors.Is(err, ErrValidation) {
			t.Errorf("ParseValue(%s) err = %v, want ErrValidation", raw, err)
		}
	}
}

func TestValueJSON(t *testing.T) {
	b, err := json.Marshal([]Value{Setpoint(-250), NetZero, NetZeroPlus})
	require.NoError(t, err)
	assert.JSONEq(t, `[-250,"netzero","netzero+"]`, string(b))

	var out struct {
		V Value `json:"v"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"v":"netzero+"}`), &out))
	assert.Equal(t, NetZeroPlus, out.V)
	assert.Error(t, json.Unmarshal([]byte(`{"v":"charge"}`), &out))
}

func TestValueString(t *testing.T) {
	assert.Equal(t, "-5", Setpoint(-5).String())
	assert.Equal(t, "netzero", NetZero.String())
	assert.True(t, Baseline.IsSetpoint())
	assert.False(t, NetZeroPlus.IsSetpoint())
}
