package report_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenside/mow-engine/report"
	"github.com/greenside/mow-engine/schedule"
)

func paidJob(clientID, date, timeOfDay, amount string, tithePaid bool) schedule.Job {
	j := job(clientID, date, schedule.StatusCompleted, amount, true)
	j.Time = timeOfDay
	j.TithePaid = tithePaid
	return j
}

func TestBuildTitheSummary(t *testing.T) {
	jobs := []schedule.Job{
		paidJob("a", "2025-06-07", "", "100", true),
		paidJob("b", "2025-06-14", "", "45.55", false),
		job("c", "2025-06-21", schedule.StatusCompleted, "80", false), // unpaid: no tithe due
	}

	s := report.BuildTitheSummary(jobs)

	eq(t, "145.55", s.AllTimePaid)
	eq(t, "10", s.TithePaid)
	// 10% of 45.55, rounded to two decimals.
	eq(t, "4.56", s.Outstanding)
	eq(t, "135.55", s.NetAfterTithe)
}

func TestBuildTitheSummary_Empty(t *testing.T) {
	s := report.BuildTitheSummary(nil)
	eq(t, "0", s.AllTimePaid)
	eq(t, "0", s.Outstanding)
}

func TestBuildTitheLedger_SortedWithClientNames(t *testing.T) {
	clients := []schedule.Client{
		{ID: "a", Name: "Anderson"},
		{ID: "b", Name: "Hillcrest"},
	}
	jobs := []schedule.Job{
		paidJob("b", "2025-06-14", "09:00", "85", false),
		paidJob("a", "2025-06-07", "13:00", "40", true),
		paidJob("a", "2025-06-07", "08:00", "40", false),
		paidJob("ghost", "2025-06-21", "", "25", false),             // orphaned client
		job("b", "2025-06-28", schedule.StatusScheduled, "85", false), // unpaid: excluded
	}

	ledger := report.BuildTitheLedger(jobs, clients)

	require.Len(t, ledger, 4)
	// Date ascending, then time ascending within a date.
	assert.Equal(t, "2025-06-07", ledger[0].Date.ISO())
	assert.Equal(t, "08:00", ledger[0].Time)
	assert.Equal(t, "13:00", ledger[1].Time)
	assert.Equal(t, "Hillcrest", ledger[2].ClientName)
	assert.Equal(t, "Unknown", ledger[3].ClientName)

	eq(t, "8.50", ledger[2].Tithe)
	assert.False(t, ledger[2].TithePaid)
	assert.True(t, ledger[1].TithePaid)
}

func TestTitheOf_TwoDecimalRounding(t *testing.T) {
	cases := []struct{ amount, want string }{
		{"100", "10"},
		{"45.55", "4.56"},
		{"0.04", "0"},
		{"0.05", "0.01"},
	}
	for _, c := range cases {
		eq(t, c.want, schedule.TitheOf(decimal.RequireFromString(c.amount)), "tithe of %s", c.amount)
	}
}
