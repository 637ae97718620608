package report_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenside/mow-engine/report"
	"github.com/greenside/mow-engine/schedule"
)

// =============================================================================
// FIXTURES
// =============================================================================

func job(clientID, date string, status schedule.JobStatus, amount string, paid bool) schedule.Job {
	j := schedule.Job{
		ID:       clientID + "/" + date,
		ClientID: clientID,
		Date:     schedule.MustParseDate(date),
		Status:   status,
		Amount:   decimal.RequireFromString(amount),
		Paid:     paid,
	}
	if paid {
		at := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
		j.PaidAt = &at
	}
	return j
}

func eq(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	assert.True(t, got.Equal(decimal.RequireFromString(want)),
		append([]any{"want %s, got %s", want, got}, msgAndArgs...)...)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestBuildDashboard(t *testing.T) {
	today := schedule.MustParseDate("2025-06-02") // Monday; next Saturday is 06-07
	jobs := []schedule.Job{
		job("a", "2025-06-07", schedule.StatusScheduled, "40", false),
		job("b", "2025-06-07", schedule.StatusScheduled, "60", false),
		job("c", "2025-05-31", schedule.StatusCompleted, "50", true),
		job("d", "2025-05-24", schedule.StatusCompleted, "35", false),
	}

	d := report.BuildDashboard(jobs, today)

	assert.Equal(t, "2025-06-07", d.UpcomingSaturday.ISO())
	assert.Equal(t, 2, d.UpcomingCount)
	eq(t, "50", d.TotalPaid)
	eq(t, "35", d.CompletedUnpaid)
}

func TestBuildDashboard_EmptyLedger(t *testing.T) {
	d := report.BuildDashboard(nil, schedule.MustParseDate("2025-06-02"))
	assert.Equal(t, 0, d.UpcomingCount)
	eq(t, "0", d.TotalPaid)
	eq(t, "0", d.CompletedUnpaid)
}

// =============================================================================
// RANGE REPORT
// =============================================================================

func TestBuildRangeReport_TotalsAndSplits(t *testing.T) {
	start := schedule.MustParseDate("2025-06-01")
	end := schedule.MustParseDate("2025-06-30")
	jobs := []schedule.Job{
		job("a", "2025-06-07", schedule.StatusCompleted, "40.50", true),
		job("b", "2025-06-07", schedule.StatusCompleted, "60", false),
		job("c", "2025-06-14", schedule.StatusCompleted, "35", true),
		job("d", "2025-06-21", schedule.StatusScheduled, "80", false),
		job("e", "2025-06-14", schedule.StatusCanceled, "99", false), // ignored
		job("f", "2025-05-31", schedule.StatusCompleted, "10", true), // outside range
	}

	r := report.BuildRangeReport(jobs, start, end, report.ByDay)

	eq(t, "135.50", r.Total)
	eq(t, "75.50", r.Paid)
	eq(t, "60", r.Unpaid)
	eq(t, "80", r.ScheduledTotal)
	eq(t, "85.50", r.AllTimePaid, "includes the paid job outside the range")

	require.Len(t, r.ByDate, 2)
	assert.Equal(t, "2025-06-07", r.ByDate[0].Date.ISO())
	assert.Equal(t, 2, r.ByDate[0].Count)
	eq(t, "100.50", r.ByDate[0].Total)
	eq(t, "40.50", r.ByDate[0].Paid)
	assert.Equal(t, "2025-06-14", r.ByDate[1].Date.ISO())

	require.Len(t, r.CompletedBuckets, 2)
	assert.Equal(t, "2025-06-07", r.CompletedBuckets[0].Key)
	require.Len(t, r.ScheduledBuckets, 1)
	assert.Equal(t, "2025-06-21", r.ScheduledBuckets[0].Key)
}

func TestBuildRangeReport_MonthAndYearBuckets(t *testing.T) {
	start := schedule.MustParseDate("2025-01-01")
	end := schedule.MustParseDate("2025-12-31")
	jobs := []schedule.Job{
		job("a", "2025-06-07", schedule.StatusCompleted, "40", true),
		job("b", "2025-06-14", schedule.StatusCompleted, "60", true),
		job("c", "2025-07-05", schedule.StatusCompleted, "35", false),
	}

	byMonth := report.BuildRangeReport(jobs, start, end, report.ByMonth)
	require.Len(t, byMonth.CompletedBuckets, 2)
	assert.Equal(t, "2025-06", byMonth.CompletedBuckets[0].Key)
	eq(t, "100", byMonth.CompletedBuckets[0].Total)
	assert.Equal(t, "2025-07", byMonth.CompletedBuckets[1].Key)

	byYear := report.BuildRangeReport(jobs, start, end, report.ByYear)
	require.Len(t, byYear.CompletedBuckets, 1)
	assert.Equal(t, "2025", byYear.CompletedBuckets[0].Key)
	eq(t, "135", byYear.CompletedBuckets[0].Total)
}

// =============================================================================
// FORECASTS
// =============================================================================

func TestForecastDays_ZeroFilledWindow(t *testing.T) {
	today := schedule.MustParseDate("2025-06-02")
	jobs := []schedule.Job{
		job("a", "2025-06-07", schedule.StatusScheduled, "40", false),
		job("b", "2025-06-07", schedule.StatusScheduled, "60", false),
		job("c", "2025-06-14", schedule.StatusCompleted, "99", false), // not scheduled
		job("d", "2025-07-10", schedule.StatusScheduled, "10", false), // beyond window
	}

	days := report.ForecastDays(jobs, today)

	require.Len(t, days, 31, "today through today+30, zero-filled")
	assert.Equal(t, "2025-06-02", days[0].Key)
	assert.Equal(t, "2025-07-02", days[30].Key)

	byKey := map[string]decimal.Decimal{}
	for _, b := range days {
		byKey[b.Key] = b.Total
	}
	eq(t, "100", byKey["2025-06-07"])
	eq(t, "0", byKey["2025-06-14"])
}

func TestForecastMonths_TwelveBuckets(t *testing.T) {
	today := schedule.MustParseDate("2025-06-02")
	jobs := []schedule.Job{
		job("a", "2025-06-07", schedule.StatusScheduled, "40", false),
		job("b", "2025-08-02", schedule.StatusScheduled, "60", false),
		job("c", "2026-07-04", schedule.StatusScheduled, "25", false), // beyond horizon
	}

	months := report.ForecastMonths(jobs, today)

	require.Len(t, months, 12)
	assert.Equal(t, "2025-06", months[0].Key)
	assert.Equal(t, "2026-05", months[11].Key)
	eq(t, "40", months[0].Total)
	eq(t, "60", months[2].Total)
	eq(t, "0", months[1].Total)
}

func TestForecastMonths_MonthEndToday(t *testing.T) {
	// GIVEN: "today" is January 31st
	// WHEN: Building the 12-month forecast
	// THEN: Every consecutive month appears exactly once; short months are
	//       not skipped by day-of-month overflow

	months := report.ForecastMonths(nil, schedule.MustParseDate("2025-01-31"))

	require.Len(t, months, 12)
	want := []string{
		"2025-01", "2025-02", "2025-03", "2025-04", "2025-05", "2025-06",
		"2025-07", "2025-08", "2025-09", "2025-10", "2025-11", "2025-12",
	}
	for i, b := range months {
		assert.Equal(t, want[i], b.Key)
		eq(t, "0", b.Total)
	}
}
