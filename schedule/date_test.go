package schedule_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenside/mow-engine/schedule"
)

func TestParseDate(t *testing.T) {
	d, err := schedule.ParseDate("2025-06-07")
	require.NoError(t, err)
	assert.Equal(t, "2025-06-07", d.ISO())

	_, err = schedule.ParseDate("06/07/2025")
	assert.Error(t, err)
	_, err = schedule.ParseDate("2025-13-01")
	assert.Error(t, err)
}

func TestDate_SaturdayMath(t *testing.T) {
	// 2025-06-07 is a Saturday; day-of-week uses the plain calendar date
	// with Sunday=0, so Saturday is 6.
	sat := schedule.MustParseDate("2025-06-07")
	assert.True(t, sat.IsSaturday())
	assert.Equal(t, time.Saturday, sat.Weekday())
	assert.Equal(t, 6, int(sat.Weekday()))

	assert.False(t, schedule.MustParseDate("2025-06-08").IsSaturday())

	// Weekly offsets from a Saturday stay Saturdays.
	for i := 1; i <= 26; i++ {
		assert.True(t, sat.AddDays(7*i).IsSaturday())
	}
}

func TestDate_NextSaturday(t *testing.T) {
	cases := []struct{ in, want string }{
		{"2025-06-01", "2025-06-07"}, // Sunday
		{"2025-06-06", "2025-06-07"}, // Friday
		{"2025-06-07", "2025-06-14"}, // Saturday jumps a full week
	}
	for _, c := range cases {
		got := schedule.MustParseDate(c.in).NextSaturday()
		assert.Equal(t, c.want, got.ISO(), "next Saturday after %s", c.in)
		assert.True(t, got.IsSaturday())
	}
}

func TestDate_JSONRoundTrip(t *testing.T) {
	d := schedule.MustParseDate("2025-06-07")

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-07"`, string(b))

	var back schedule.Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.Equal(d))

	assert.Error(t, json.Unmarshal([]byte(`"not-a-date"`), &back))
}

func TestDate_BucketKeys(t *testing.T) {
	d := schedule.MustParseDate("2025-06-07")
	assert.Equal(t, "2025-06", d.YearMonth())
	assert.Equal(t, "2025", d.Year())
}

func TestDate_MonthArithmetic(t *testing.T) {
	assert.Equal(t, "2025-01-01", schedule.MustParseDate("2025-01-31").FirstOfMonth().ISO())
	assert.Equal(t, "2025-06-01", schedule.MustParseDate("2025-06-01").FirstOfMonth().ISO())

	// AddMonths normalizes day-of-month overflow; month stepping must go
	// through FirstOfMonth to land in every consecutive month.
	assert.Equal(t, "2025-03-03", schedule.MustParseDate("2025-01-31").AddMonths(1).ISO())
	assert.Equal(t, "2025-02-01", schedule.MustParseDate("2025-01-31").FirstOfMonth().AddMonths(1).ISO())
}

func TestValidTimeOfDay(t *testing.T) {
	assert.True(t, schedule.ValidTimeOfDay(""))
	assert.True(t, schedule.ValidTimeOfDay("00:00"))
	assert.True(t, schedule.ValidTimeOfDay("23:59"))
	assert.False(t, schedule.ValidTimeOfDay("24:00"))
	assert.False(t, schedule.ValidTimeOfDay("9:00am"))
	assert.False(t, schedule.ValidTimeOfDay("noon"))
}
