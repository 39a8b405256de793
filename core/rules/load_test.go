package rules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/chargeplan/core/schedule"
)

const jsonRules = `{
  "enabled": true,
  "rules": [
    {
      "id": "peak-discharge",
      "name": "Discharge at peak price",
      "conditions": {
        "battery_level": {"operator": ">", "value": 80},
        "price": {"operator": ">", "value": 0.30, "hour": 14}
      },
      "action": -200,
      "time_range": {"start": "1400", "end": "1500"},
      "days_of_week": "all",
      "date_range": null
    },
    {
      "id": "solar",
      "enabled": false,
      "action": "netzero+",
      "time_range": {"start": "1000", "end": "1600"},
      "days_of_week": [6, 7]
    },
    {
      "id": "broken",
      "action": "bogus",
      "time_range": {"start": "0100", "end": "0200"}
    }
  ]
}`

func TestDecodeRuleSetJSON(t *testing.T) {
	rs, warnings, err := DecodeRuleSet(strings.NewReader(jsonRules), FormatJSON)
	require.NoError(t, err)

	assert.True(t, rs.Enabled)
	require.Len(t, rs.Rules, 2)

	peak := rs.Rules[0]
	assert.Equal(t, "peak-discharge", peak.ID)
	assert.True(t, peak.Enabled)
	assert.Equal(t, schedule.Setpoint(-200), peak.Action)
	assert.True(t, peak.DaysOfWeek.All())
	require.NotNil(t, peak.Conditions.Price)
	assert.Equal(t, 14, *peak.Conditions.Price.Hour)
	assert.Nil(t, peak.DateRange)

	solar := rs.Rules[1]
	assert.False(t, solar.Enabled)
	assert.Equal(t, schedule.NetZeroPlus, solar.Action)
	assert.Equal(t, []int{6, 7}, solar.DaysOfWeek.Days())

	require.Len(t, warnings, 1)
	assert.Equal(t, "broken", warnings[0].RuleID)
	assert.ErrorIs(t, warnings[0], ErrMalformedRule)
}

func TestDecodeRuleSetYAML(t *testing.T) {
	doc := `
rules:
  - id: cheap-charge
    conditions:
      price: {operator: "<", value: 0.1, hour: 3}
    action: 2000
    time_range: {start: "0300", end: "0400"}
    days_of_week: [1, 2, 3, 4, 5]
  - id: evening
    action: netzero
    time_range: {start: 1800, end: 2300}
`
	rs, warnings, err := DecodeRuleSet(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.True(t, rs.Enabled)
	require.Len(t, rs.Rules, 2)
	assert.Equal(t, OpLess, rs.Rules[0].Conditions.Price.Operator)
	assert.True(t, rs.Rules[0].DaysOfWeek.Contains(3))
	assert.False(t, rs.Rules[0].DaysOfWeek.Contains(6))
	assert.Equal(t, TimeRange{Start: "1800", End: "2300"}, rs.Rules[1].TimeRange)
	assert.Equal(t, schedule.NetZero, rs.Rules[1].Action)
}

func TestDecodeRuleSetYAMLLeadingZeroTimes(t *testing.T) {
	doc := `
rules:
  - id: morning
    conditions:
      price: {operator: "<", value: 0.2, hour: 07}
    action: 1500
    time_range: {start: 0700, end: 0800}
`
	rs, warnings, err := DecodeRuleSet(strings.NewReader(doc), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, rs.Rules, 1)
	assert.Equal(t, TimeRange{Start: "0700", End: "0800"}, rs.Rules[0].TimeRange)
	require.NotNil(t, rs.Rules[0].Conditions.Price)
	require.NotNil(t, rs.Rules[0].Conditions.Price.Hour)
	assert.Equal(t, 7, *rs.Rules[0].Conditions.Price.Hour)
}

func TestDecodeRuleSetNumericID(t *testing.T) {
	doc := `{"rules": [
  {"id": 1, "action": -200, "time_range": {"start": "1400", "end": "1500"}},
  {"id": "two", "action": 0, "time_range": {"start": "1600", "end": "1700"}},
  {"action": "netzero", "time_range": {"start": "1800", "end": "1900"}}
]}`
	rs, warnings, err := DecodeRuleSet(strings.NewReader(doc), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, rs.Rules, 3)
	assert.Equal(t, "1", rs.Rules[0].ID)
	assert.Equal(t, "two", rs.Rules[1].ID)
	assert.Empty(t, rs.Rules[2].ID)
	assert.Equal(t, schedule.Setpoint(-200), rs.Rules[0].Action)

	res := NewEngine(nil).Evaluate(rs, NewContext(time.Date(2024, 1, 14, 9, 0, 0, 0, time.UTC), nil, nil, nil))
	assert.Equal(t, schedule.Setpoint(-200), res.Fragment["202401141400"])
}

func TestDecodeRuleSetErrors(t *testing.T) {
	_, _, err := DecodeRuleSet(strings.NewReader(`{"enabled": true}`), FormatJSON)
	assert.ErrorIs(t, err, schedule.ErrParse)

	_, _, err = DecodeRuleSet(strings.NewReader(`not json`), FormatJSON)
	assert.ErrorIs(t, err, schedule.ErrParse)

	_, _, err = DecodeRuleSet(strings.NewReader("rules: [\n"), FormatYAML)
	assert.ErrorIs(t, err, schedule.ErrParse)
}

func TestDecodeRuleSetUnknownCondition(t *testing.T) {
	doc := `{"rules":[{"id":"x","conditions":{"solar_forecast":{"operator":">","value":1}},"action":0,"time_range":{"start":"0000","end":"0100"}}]}`
	rs, warnings, err := DecodeRuleSet(strings.NewReader(doc), FormatJSON)
	require.NoError(t, err)
	assert.Empty(t, warnings)
	require.Len(t, rs.Rules, 1)
	assert.Equal(t, []string{"solar_forecast"}, rs.Rules[0].Conditions.Unknown)
	assert.ErrorIs(t, rs.Rules[0].Validate(), ErrMalformedRule)
}

func TestLoadRuleSet(t *testing.T) {
	dir := t.TempDir()

	_, _, err := LoadRuleSet(filepath.Join(dir, "missing.json"))
	assert.ErrorIs(t, err, schedule.ErrNotFound)

	path := filepath.Join(dir, "rules.yml")
	require.NoError(t, os.WriteFile(path, []byte("enabled: false\nrules: []\n"), 0o644))
	rs, _, err := LoadRuleSet(path)
	require.NoError(t, err)
	assert.False(t, rs.Enabled)
	assert.Empty(t, rs.Rules)
}

func TestDaysOfWeekJSON(t *testing.T) {
	b, err := AllDays().MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `"all"`, string(b))

	b, err = OnDays(5, 1).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `[1,5]`, string(b))

	var d DaysOfWeek
	assert.Error(t, d.UnmarshalJSON([]byte(`[0]`)))
	assert.Error(t, d.UnmarshalJSON([]byte(`"weekdays"`)))
	require.NoError(t, d.UnmarshalJSON([]byte(`"ALL"`)))
	assert.True(t, d.All())
}
