package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveForwardFill(t *testing.T) {
	s := Schedule{"202401141400": Setpoint(-100), "202401141500": Setpoint(0)}
	slots := ResolveForDate(s, "20240114")

	assert.Equal(t, []Slot{
		{Time: "0000", Value: Baseline},
		{Time: "1400", Value: Setpoint(-100), Key: "202401141400"},
		{Time: "1500", Value: Setpoint(0), Key: "202401141500"},
	}, slots)

	assert.Equal(t, Setpoint(-100), ValueAt(slots, "1430"))
	assert.Equal(t, Setpoint(-100), ValueAt(slots, "1400"))
	assert.Equal(t, Setpoint(-100), ValueAt(slots, "1459"))
	assert.Equal(t, Setpoint(0), ValueAt(slots, "1530"))
	assert.Equal(t, Setpoint(0), ValueAt(slots, "2359"))
	assert.Equal(t, Baseline, ValueAt(slots, "0000"))
	assert.Equal(t, Baseline, ValueAt(slots, "1359"))
}

func TestResolveCrossMidnightCarry(t *testing.T) {
	s := Schedule{"202401132300": Setpoint(300)}
	slots := ResolveForDate(s, "20240114")

	assert.Equal(t, Setpoint(300), ValueAt(slots, "0030"))
	for _, sl := range slots {
		assert.Equal(t, Setpoint(300), sl.Value, sl.Time)
		assert.Equal(t, Key("202401132300"), sl.Key)
	}
}

func TestResolveCarriesAcrossSeveralDays(t *testing.T) {
	s := Schedule{"202401100600": NetZero, "202401200600": Setpoint(50)}
	slots := ResolveForDate(s, "20240114")
	assert.Equal(t, []Slot{
		{Time: "0000", Value: NetZero, Key: "202401100600"},
		{Time: "0600", Value: NetZero, Key: "202401100600"},
	}, slots)
}

func TestResolveIgnoresLaterDays(t *testing.T) {
	s := Schedule{"202401150800": Setpoint(900)}
	slots := ResolveForDate(s, "20240114")
	for _, sl := range slots {
		assert.Equal(t, Baseline, sl.Value)
		assert.Empty(t, sl.Key)
	}
}

func TestResolveGranularityFollowsKeys(t *testing.T) {
	s := Schedule{
		"202401140815": Setpoint(100),
		"202401140830": NetZeroPlus,
		"202401131000": Setpoint(-50),
	}
	slots := ResolveForDate(s, "20240114")
	times := make([]string, len(slots))
	for i, sl := range slots {
		times[i] = sl.Time
	}
	assert.Equal(t, []string{"0000", "0815", "0830", "1000"}, times)
	assert.Equal(t, Setpoint(-50), slots[0].Value)
	assert.Equal(t, Setpoint(100), slots[1].Value)
	assert.Equal(t, NetZeroPlus, slots[2].Value)
	assert.Equal(t, NetZeroPlus, slots[3].Value)
}

func TestResolveEmpty(t *testing.T) {
	slots := ResolveForDate(nil, "20240114")
	assert.Equal(t, []Slot{{Time: "0000", Value: Baseline}}, slots)
}
