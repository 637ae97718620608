package schedule_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenside/mow-engine/schedule"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestStore(t *testing.T) *schedule.Store {
	t.Helper()
	return schedule.New(
		schedule.WithClock(schedule.FixedClock{
			Instant: time.Date(2025, time.June, 2, 12, 0, 0, 0, time.UTC), // a Monday
		}),
		schedule.WithIDGenerator(&schedule.SequenceGenerator{}),
	)
}

func addClient(t *testing.T, s *schedule.Store, name, priceStr string, freq schedule.Frequency) schedule.Client {
	t.Helper()
	price, err := decimal.NewFromString(priceStr)
	require.NoError(t, err)
	return s.AddClient(schedule.NewClient{Name: name, PricePerMow: price, Frequency: freq})
}

var (
	saturday     = schedule.MustParseDate("2025-06-07")
	nextWeekSat  = schedule.MustParseDate("2025-06-14")
	someTuesday  = schedule.MustParseDate("2025-06-10")
)

// =============================================================================
// VALIDATION ORDER AND REJECTIONS
// =============================================================================

func TestScheduleJob_NonSaturday_Rejected(t *testing.T) {
	// GIVEN: Saturday-only enabled (the default)
	// WHEN: Scheduling on a Tuesday
	// THEN: Rejected with ErrNotSaturday and the ledger is unchanged

	s := newTestStore(t)
	c := addClient(t, s, "Anderson", "40", schedule.FrequencyOneTime)

	err := s.ScheduleJob(someTuesday, c.ID, "")

	assert.ErrorIs(t, err, schedule.ErrNotSaturday)
	assert.Empty(t, s.Jobs(), "ledger must be unchanged after rejection")
}

func TestScheduleJob_SaturdayOnlyDisabled_AnyDayAllowed(t *testing.T) {
	s := newTestStore(t)
	off := false
	s.UpdateSettings(schedule.SettingsChanges{SaturdayOnly: &off})
	c := addClient(t, s, "Anderson", "40", schedule.FrequencyOneTime)

	require.NoError(t, s.ScheduleJob(someTuesday, c.ID, ""))
	assert.Len(t, s.Jobs(), 1)
}

func TestScheduleJob_DailyLimit_Rejected(t *testing.T) {
	// GIVEN: A Saturday already holding dailyLimit jobs
	// WHEN: One more client tries to book it
	// THEN: Rejected with ErrDailyLimitReached, ledger unchanged

	s := newTestStore(t)
	limit := 3
	s.UpdateSettings(schedule.SettingsChanges{DailyLimit: &limit})

	for i := 0; i < limit; i++ {
		c := addClient(t, s, "Client", "40", schedule.FrequencyOneTime)
		require.NoError(t, s.ScheduleJob(saturday, c.ID, ""))
	}

	extra := addClient(t, s, "Late", "40", schedule.FrequencyOneTime)
	err := s.ScheduleJob(saturday, extra.ID, "")

	assert.ErrorIs(t, err, schedule.ErrDailyLimitReached)
	var limitErr *schedule.DailyLimitError
	require.ErrorAs(t, err, &limitErr)
	assert.Equal(t, limit, limitErr.Count)
	assert.Len(t, s.Jobs(), limit, "ledger must be unchanged after rejection")
}

func TestScheduleJob_CanceledJobsStillCountTowardLimit(t *testing.T) {
	// The limit is a creation-time gate over every status; canceling a job
	// does not free its slot.

	s := newTestStore(t)
	limit := 1
	s.UpdateSettings(schedule.SettingsChanges{DailyLimit: &limit})

	a := addClient(t, s, "A", "40", schedule.FrequencyOneTime)
	require.NoError(t, s.ScheduleJob(saturday, a.ID, ""))
	s.SetJobStatus(s.Jobs()[0].ID, schedule.StatusCanceled)

	b := addClient(t, s, "B", "40", schedule.FrequencyOneTime)
	err := s.ScheduleJob(saturday, b.ID, "")

	assert.ErrorIs(t, err, schedule.ErrDailyLimitReached)
}

func TestScheduleJob_UnknownClient_Rejected(t *testing.T) {
	s := newTestStore(t)

	err := s.ScheduleJob(saturday, "no-such-client", "")

	assert.ErrorIs(t, err, schedule.ErrClientNotFound)
	assert.Empty(t, s.Jobs())
}

func TestScheduleJob_DuplicateClientOnDate_Rejected(t *testing.T) {
	// GIVEN: A client already booked on a Saturday
	// WHEN: The same client books the same Saturday again
	// THEN: Rejected with ErrDuplicateClientOnDate

	s := newTestStore(t)
	c := addClient(t, s, "Anderson", "40", schedule.FrequencyOneTime)
	require.NoError(t, s.ScheduleJob(saturday, c.ID, ""))

	err := s.ScheduleJob(saturday, c.ID, "")

	assert.ErrorIs(t, err, schedule.ErrDuplicateClientOnDate)
	var dupErr *schedule.DuplicateClientError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, c.ID, dupErr.ClientID)
	assert.Len(t, s.Jobs(), 1)
}

func TestScheduleJob_ValidationOrder_SaturdayBeforeClientLookup(t *testing.T) {
	// An unknown client on a non-Saturday must fail the Saturday check first.

	s := newTestStore(t)
	err := s.ScheduleJob(someTuesday, "no-such-client", "")
	assert.ErrorIs(t, err, schedule.ErrNotSaturday)
}

// =============================================================================
// SUCCESS SEMANTICS
// =============================================================================

func TestScheduleJob_SnapshotsAmountAndDefaults(t *testing.T) {
	s := newTestStore(t)
	price := decimal.RequireFromString("52.50")
	c := s.AddClient(schedule.NewClient{
		Name:        "Anderson",
		PricePerMow: price,
		Frequency:   schedule.FrequencyOneTime,
		DefaultTime: "09:30",
	})

	require.NoError(t, s.ScheduleJob(saturday, c.ID, ""))

	jobs := s.Jobs()
	require.Len(t, jobs, 1)
	j := jobs[0]
	assert.Equal(t, schedule.StatusScheduled, j.Status)
	assert.False(t, j.Paid)
	assert.True(t, j.Amount.Equal(price))
	assert.Equal(t, "09:30", j.Time, "client default time applies when no explicit time given")

	// Later price edits never touch the existing job.
	newPrice := decimal.RequireFromString("99.99")
	require.NoError(t, s.UpdateClient(c.ID, schedule.ClientChanges{PricePerMow: &newPrice}))
	assert.True(t, s.Jobs()[0].Amount.Equal(price))
}

func TestScheduleJob_ExplicitTimeWinsOverDefault(t *testing.T) {
	s := newTestStore(t)
	c := s.AddClient(schedule.NewClient{
		Name:        "Anderson",
		PricePerMow: decimal.NewFromInt(40),
		DefaultTime: "09:30",
	})

	require.NoError(t, s.ScheduleJob(saturday, c.ID, "14:00"))
	assert.Equal(t, "14:00", s.Jobs()[0].Time)
}

// =============================================================================
// WEEKLY FAN-OUT
// =============================================================================

func TestScheduleJob_WeeklyClient_FansOut27Jobs(t *testing.T) {
	// GIVEN: A weekly client, empty ledger, default limit of 10
	// WHEN: Scheduling a Saturday directly
	// THEN: Exactly 27 jobs exist (primary + 26 follow-ons), all Saturdays
	//       S, S+7, ..., S+182

	s := newTestStore(t)
	c := addClient(t, s, "Hillcrest", "85", schedule.FrequencyWeekly)

	require.NoError(t, s.ScheduleJob(saturday, c.ID, "07:30"))

	jobs := s.Jobs()
	require.Len(t, jobs, 27)
	for i, j := range jobs {
		assert.True(t, j.Date.IsSaturday(), "job %d not on a Saturday", i)
		assert.True(t, j.Date.Equal(saturday.AddDays(7*i)), "job %d on wrong date %s", i, j.Date)
		assert.Equal(t, "07:30", j.Time)
		assert.True(t, j.Amount.Equal(decimal.NewFromInt(85)))
	}
}

func TestScheduleJob_SecondWeeklyPass_SkipsExistingDates(t *testing.T) {
	// GIVEN: A weekly client already fanned out from S
	// WHEN: Scheduling the same client again from S+7
	// THEN: The overlapping dates are silently skipped, one new job at the
	//       end of the horizon

	s := newTestStore(t)
	c := addClient(t, s, "Hillcrest", "85", schedule.FrequencyWeekly)
	require.NoError(t, s.ScheduleJob(saturday, c.ID, ""))
	require.Len(t, s.Jobs(), 27)

	err := s.ScheduleJob(nextWeekSat, c.ID, "")

	// The primary attempt itself hits the duplicate on S+7.
	assert.ErrorIs(t, err, schedule.ErrDuplicateClientOnDate)
	assert.Len(t, s.Jobs(), 27, "failed primary must not fan out")
}

func TestScheduleJob_FanOut_SkipsOwnExistingDate(t *testing.T) {
	// GIVEN: The client already holds S+7 (seeded via bulk)
	// WHEN: Scheduling the same client at S directly
	// THEN: The fan-out silently skips S+7; no duplicate, 27 jobs total

	s := newTestStore(t)
	c := addClient(t, s, "Hillcrest", "85", schedule.FrequencyWeekly)
	s.BulkScheduleWeekly(c.ID, nextWeekSat, "", 1)
	require.Len(t, s.Jobs(), 1)

	require.NoError(t, s.ScheduleJob(saturday, c.ID, ""))

	jobs := s.Jobs()
	assert.Len(t, jobs, 27)
	seen := map[string]int{}
	for _, j := range jobs {
		seen[j.Date.ISO()]++
	}
	assert.Equal(t, 1, seen[nextWeekSat.ISO()], "S+7 must not be duplicated")
}

func TestScheduleJob_FanOut_SkipsFullDatesAndContinues(t *testing.T) {
	// GIVEN: S+7 is at the daily limit thanks to other clients
	// WHEN: A weekly client schedules S
	// THEN: S+7 is skipped but S+14..S+182 are still created

	s := newTestStore(t)
	limit := 2
	s.UpdateSettings(schedule.SettingsChanges{DailyLimit: &limit})

	for i := 0; i < limit; i++ {
		other := addClient(t, s, "Other", "30", schedule.FrequencyOneTime)
		require.NoError(t, s.ScheduleJob(nextWeekSat, other.ID, ""))
	}

	weekly := addClient(t, s, "Hillcrest", "85", schedule.FrequencyWeekly)
	require.NoError(t, s.ScheduleJob(saturday, weekly.ID, ""))

	mine := s.JobsForClient(weekly.ID)
	assert.Len(t, mine, 26, "primary + 25 follow-ons; S+7 skipped")
	for _, j := range mine {
		assert.False(t, j.Date.Equal(nextWeekSat), "S+7 must have been skipped")
	}
}

func TestScheduleJob_OneTimeClient_NoFanOut(t *testing.T) {
	s := newTestStore(t)
	c := addClient(t, s, "Grady", "35", schedule.FrequencyOneTime)

	require.NoError(t, s.ScheduleJob(saturday, c.ID, ""))
	assert.Len(t, s.Jobs(), 1)
}

// =============================================================================
// BULK WEEKLY SCHEDULING
// =============================================================================

func TestBulkScheduleWeekly_NonSaturdayStart_AdvancesToNextSaturday(t *testing.T) {
	// GIVEN: Saturday-only enabled, start on a Tuesday, weeks=4
	// WHEN: Bulk scheduling
	// THEN: Exactly 4 jobs on the 4 Saturdays from the next Saturday on

	s := newTestStore(t)
	c := addClient(t, s, "Hillcrest", "85", schedule.FrequencyWeekly)

	s.BulkScheduleWeekly(c.ID, someTuesday, "", 4)

	jobs := s.Jobs()
	require.Len(t, jobs, 4, "bulk must suppress the 26-week fan-out")
	first := someTuesday.NextSaturday()
	for i, j := range jobs {
		assert.True(t, j.Date.Equal(first.AddDays(7*i)), "job %d on %s", i, j.Date)
	}
}

func TestBulkScheduleWeekly_DefaultHorizon(t *testing.T) {
	s := newTestStore(t)
	c := addClient(t, s, "Hillcrest", "85", schedule.FrequencyWeekly)

	s.BulkScheduleWeekly(c.ID, saturday, "", 0)

	assert.Len(t, s.Jobs(), 26, "weeks<=0 falls back to the 26-week horizon")
}

func TestBulkScheduleWeekly_SwallowsPerDateFailures(t *testing.T) {
	// GIVEN: One Saturday in the window already at the limit
	// WHEN: Bulk scheduling across it
	// THEN: That date is skipped, the rest are populated, no error surfaces

	s := newTestStore(t)
	limit := 1
	s.UpdateSettings(schedule.SettingsChanges{DailyLimit: &limit})

	blocker := addClient(t, s, "Blocker", "30", schedule.FrequencyOneTime)
	require.NoError(t, s.ScheduleJob(nextWeekSat, blocker.ID, ""))

	weekly := addClient(t, s, "Hillcrest", "85", schedule.FrequencyWeekly)
	s.BulkScheduleWeekly(weekly.ID, saturday, "", 3)

	mine := s.JobsForClient(weekly.ID)
	assert.Len(t, mine, 2, "S and S+14 created, S+7 blocked")
}

func TestBulkScheduleWeekly_UnknownClient_NoOp(t *testing.T) {
	s := newTestStore(t)
	s.BulkScheduleWeekly("no-such-client", saturday, "", 4)
	assert.Empty(t, s.Jobs())
}

func TestBulkScheduleWeekly_SaturdayOnlyDisabled_KeepsStartDate(t *testing.T) {
	s := newTestStore(t)
	off := false
	s.UpdateSettings(schedule.SettingsChanges{SaturdayOnly: &off})
	c := addClient(t, s, "Hillcrest", "85", schedule.FrequencyWeekly)

	s.BulkScheduleWeekly(c.ID, someTuesday, "", 2)

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.True(t, jobs[0].Date.Equal(someTuesday))
	assert.True(t, jobs[1].Date.Equal(someTuesday.AddDays(7)))
}
