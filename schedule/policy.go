/*
policy.go - Scheduling policy and weekly recurrence fan-out

PURPOSE:
  Decides whether a new job may be created and, for weekly clients, fans out
  future occurrences. This is the only part of the system with real
  invariants:

    1. Saturday-only: when enabled, jobs may only land on Saturdays
    2. Daily limit: at most Settings.DailyLimit jobs per date, any status
    3. One job per (date, client) pair

VALIDATION ORDER:
  Saturday -> daily limit -> client exists -> duplicate. First failing check
  wins. Checks run against live state at call time, never a snapshot.

FAN-OUT:
  A direct ScheduleJob for a weekly client also attempts the next 26 weekly
  dates. Each follow-on re-checks the daily limit and the duplicate rule but
  NOT the Saturday rule (a weekly offset from a Saturday is a Saturday) and
  is silently skipped on failure. Partial fan-out is a normal outcome.

  Bulk scheduling drives the same primitive with fan-out suppressed via an
  explicit parameter, so nested fan-out cannot occur. There is no shared
  mutable guard flag.

SEE ALSO:
  - store.go:  State container and job field mutations
  - errors.go: The fixed set of failure reasons
*/
package schedule

// ScheduleJob attempts to create exactly one job for the client on the given
// date, with an optional explicit HH:MM time (empty means "use the client's
// default, else unset"). On success, a weekly client additionally gets up to
// FanOutWeeks follow-on jobs on the next weekly-spaced dates.
//
// Returns nil on success or one of the policy errors; fan-out failures are
// never surfaced.
func (s *Store) ScheduleJob(date Date, clientID, timeOfDay string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduleLocked(date, clientID, timeOfDay, false)
}

// scheduleLocked is the single-job scheduling primitive. suppressFanOut is
// threaded explicitly through the call chain: true while a bulk operation is
// driving this primitive, so one bulk call cannot trigger nested generation.
func (s *Store) scheduleLocked(date Date, clientID, timeOfDay string, suppressFanOut bool) error {
	if s.settings.SaturdayOnly && !date.IsSaturday() {
		return ErrNotSaturday
	}

	// The limit counts every status, canceled included. A canceled slot does
	// not free capacity.
	count := s.countOnLocked(date)
	if count >= s.settings.DailyLimit {
		return &DailyLimitError{Date: date, Limit: s.settings.DailyLimit, Count: count}
	}

	i := s.clientIndex(clientID)
	if i < 0 {
		return ErrClientNotFound
	}
	client := s.clients[i]

	if s.clientHasJobOnLocked(date, clientID) {
		return &DuplicateClientError{Date: date, ClientID: clientID}
	}

	jobTime := timeOfDay
	if jobTime == "" {
		jobTime = client.DefaultTime
	}

	s.createJobLocked(date, client, jobTime)

	if client.Frequency == FrequencyWeekly && !suppressFanOut {
		s.fanOutLocked(date, client, jobTime)
	}
	return nil
}

// fanOutLocked attempts follow-on jobs on date+7d ... date+7*FanOutWeeks d.
// Only the daily limit and the duplicate rule are re-checked; any date that
// fails either is skipped and the loop continues.
func (s *Store) fanOutLocked(start Date, client Client, jobTime string) {
	for week := 1; week <= FanOutWeeks; week++ {
		next := start.AddDays(7 * week)
		if s.countOnLocked(next) >= s.settings.DailyLimit {
			continue
		}
		if s.clientHasJobOnLocked(next, client.ID) {
			continue
		}
		s.createJobLocked(next, client, jobTime)
	}
}

// BulkScheduleWeekly seeds `weeks` weekly occurrences for a client starting
// at start, used when registering a weekly client directly. When
// Saturday-only is enabled and start is not a Saturday, the start advances to
// the next Saturday first. Each occurrence goes through the normal scheduling
// primitive with fan-out suppressed; per-date failures are swallowed, partial
// population is acceptable. weeks <= 0 means the default horizon of 26.
func (s *Store) BulkScheduleWeekly(clientID string, start Date, timeOfDay string, weeks int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.clientIndex(clientID)
	if i < 0 {
		return
	}
	client := s.clients[i]

	t := timeOfDay
	if t == "" {
		t = client.DefaultTime
	}
	if s.settings.SaturdayOnly && !start.IsSaturday() {
		start = start.NextSaturday()
	}
	if weeks <= 0 {
		weeks = FanOutWeeks
	}

	for week := 0; week < weeks; week++ {
		// Errors intentionally dropped: callers needing per-date outcomes
		// must diff the ledger before and after.
		_ = s.scheduleLocked(start.AddDays(7*week), clientID, t, true)
	}
}

// createJobLocked appends the job and mirrors it to the event queue. The
// amount is snapshotted from the client's current price; later price edits
// never touch it.
func (s *Store) createJobLocked(date Date, client Client, jobTime string) Job {
	j := Job{
		ID:        s.ids.NewID(),
		ClientID:  client.ID,
		Date:      date,
		Time:      jobTime,
		Status:    StatusScheduled,
		Amount:    client.PricePerMow,
		Paid:      false,
		CreatedAt: s.clock.Now(),
	}
	s.jobs = append(s.jobs, j)
	s.emit(Mutation{Kind: MutationJobUpserted, Job: &j})
	return j
}

func (s *Store) countOnLocked(d Date) int {
	n := 0
	for i := range s.jobs {
		if s.jobs[i].Date.Equal(d) {
			n++
		}
	}
	return n
}

func (s *Store) clientHasJobOnLocked(d Date, clientID string) bool {
	for i := range s.jobs {
		if s.jobs[i].ClientID == clientID && s.jobs[i].Date.Equal(d) {
			return true
		}
	}
	return false
}
