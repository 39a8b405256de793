package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeManualWins(t *testing.T) {
	manual := Schedule{"202401141400": Setpoint(500)}
	fragment := Schedule{"202401141400": Setpoint(-200), "202401141500": Setpoint(0)}

	merged := Merge(manual, fragment)
	assert.Equal(t, Schedule{
		"202401141400": Setpoint(500),
		"202401141500": Setpoint(0),
	}, merged)

	// inputs are untouched
	assert.Len(t, manual, 1)
	assert.Equal(t, Setpoint(-200), fragment["202401141400"])
}

func TestMergeEmptyInputs(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
	assert.Equal(t, Schedule{"202401141400": NetZero}, Merge(nil, Schedule{"202401141400": NetZero}))
}

func TestScheduleHelpers(t *testing.T) {
	s := Schedule{"202401141500": Setpoint(0), "202401131400": Setpoint(1), "202401141400": Setpoint(2)}
	assert.Equal(t, []Key{"202401131400", "202401141400", "202401141500"}, s.SortedKeys())
	assert.Equal(t, []Key{"202401131400"}, s.KeysBefore("20240114"))
	assert.Equal(t, Entry{Key: "202401131400", Value: Setpoint(1)}, s.Entries()[0])

	c := s.Clone()
	delete(c, "202401131400")
	assert.Len(t, s, 3)
}
