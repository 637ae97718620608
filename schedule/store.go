/*
store.go - The in-memory state container

PURPOSE:
  Holds the three collections (clients, jobs, settings) behind one mutex.
  All mutation is synchronous and user-triggered; there is no background
  writer. Reads observe the latest committed state. Each committed mutation
  is mirrored onto the outbound event queue for the persistence sink.

OWNERSHIP:
  Clients are owned here and referenced by jobs via ClientID. Deleting a
  client cascades to every job that references it.

CONCURRENCY:
  A single sync.RWMutex guards everything. Bulk operations (recurrence
  fan-out, bulk weekly scheduling) run as a tight loop under one lock
  acquisition: not cancellable, no partial rollback.

SEE ALSO:
  - policy.go:   ScheduleJob / BulkScheduleWeekly live there
  - snapshot.go: Export / Import / Reset
  - events.go:   Outbound mutation queue
*/
package schedule

import (
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
)

// Store is the single shared state container for a session.
type Store struct {
	mu      sync.RWMutex
	clock   Clock
	ids     IDGenerator
	events  chan Mutation
	dropped atomic.Int64

	clients  []Client // newest first
	jobs     []Job    // creation order
	settings Settings
}

// Option configures a Store.
type Option func(*Store)

// WithClock injects a clock. Defaults to the system clock.
func WithClock(c Clock) Option { return func(s *Store) { s.clock = c } }

// WithIDGenerator injects an id generator. Defaults to random UUIDs.
func WithIDGenerator(g IDGenerator) Option { return func(s *Store) { s.ids = g } }

// WithEventBuffer enables the outbound mutation queue with the given
// capacity. Without this option mutations are not mirrored anywhere.
func WithEventBuffer(n int) Option {
	return func(s *Store) { s.events = make(chan Mutation, n) }
}

// New creates an empty store with default settings.
func New(opts ...Option) *Store {
	s := &Store{
		clock:    SystemClock(),
		ids:      UUIDGenerator(),
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// =============================================================================
// CLIENT REGISTRY
// =============================================================================

// AddClient creates a client and returns the stored record.
func (s *Store) AddClient(in NewClient) Client {
	s.mu.Lock()
	defer s.mu.Unlock()

	active := true
	if in.Active != nil {
		active = *in.Active
	}
	freq := in.Frequency
	if freq == "" {
		freq = FrequencyOneTime
	}

	c := Client{
		ID:          s.ids.NewID(),
		Name:        in.Name,
		Address:     in.Address,
		Phone:       in.Phone,
		Notes:       in.Notes,
		PricePerMow: in.PricePerMow,
		Active:      active,
		Frequency:   freq,
		DefaultTime: in.DefaultTime,
		CreatedAt:   s.clock.Now(),
	}
	s.clients = append([]Client{c}, s.clients...)
	s.emit(Mutation{Kind: MutationClientUpserted, Client: &c})
	return c
}

// UpdateClient applies a partial update. Returns ErrClientNotFound for an
// unknown id. Price changes never touch existing jobs.
func (s *Store) UpdateClient(id string, ch ClientChanges) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.clientIndex(id)
	if i < 0 {
		return ErrClientNotFound
	}
	c := &s.clients[i]
	if ch.Name != nil {
		c.Name = *ch.Name
	}
	if ch.Address != nil {
		c.Address = *ch.Address
	}
	if ch.Phone != nil {
		c.Phone = *ch.Phone
	}
	if ch.Notes != nil {
		c.Notes = *ch.Notes
	}
	if ch.PricePerMow != nil {
		c.PricePerMow = *ch.PricePerMow
	}
	if ch.Active != nil {
		c.Active = *ch.Active
	}
	if ch.Frequency != nil {
		c.Frequency = *ch.Frequency
	}
	if ch.DefaultTime != nil {
		c.DefaultTime = *ch.DefaultTime
	}
	updated := *c
	s.emit(Mutation{Kind: MutationClientUpserted, Client: &updated})
	return nil
}

// DeleteClient removes the client and cascades to every job referencing it.
// Deleting an unknown id is a no-op.
func (s *Store) DeleteClient(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.clientIndex(id)
	if i < 0 {
		return
	}
	s.clients = append(s.clients[:i], s.clients[i+1:]...)

	kept := s.jobs[:0]
	for _, j := range s.jobs {
		if j.ClientID != id {
			kept = append(kept, j)
		}
	}
	s.jobs = kept
	s.emit(Mutation{Kind: MutationClientDeleted, ClientID: id})
}

// Client returns the client with the given id.
func (s *Store) Client(id string) (Client, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.clientIndex(id); i >= 0 {
		return s.clients[i], true
	}
	return Client{}, false
}

// Clients returns a copy of the registry, newest first.
func (s *Store) Clients() []Client {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Client, len(s.clients))
	copy(out, s.clients)
	return out
}

func (s *Store) clientIndex(id string) int {
	for i := range s.clients {
		if s.clients[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// JOB LEDGER - Queries
// =============================================================================

// Job returns the job with the given id.
func (s *Store) Job(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.jobIndex(id); i >= 0 {
		return s.jobs[i], true
	}
	return Job{}, false
}

// Jobs returns a copy of the full ledger in creation order.
func (s *Store) Jobs() []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Job, len(s.jobs))
	copy(out, s.jobs)
	return out
}

// JobsOn returns every job on the given date, any status.
func (s *Store) JobsOn(d Date) []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Job
	for _, j := range s.jobs {
		if j.Date.Equal(d) {
			out = append(out, j)
		}
	}
	return out
}

// JobsForClient returns every job referencing the given client.
func (s *Store) JobsForClient(clientID string) []Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []Job
	for _, j := range s.jobs {
		if j.ClientID == clientID {
			out = append(out, j)
		}
	}
	return out
}

func (s *Store) jobIndex(id string) int {
	for i := range s.jobs {
		if s.jobs[i].ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// JOB LEDGER - Field mutations
// =============================================================================
// Each mutation is an unconditional field update by job id: no cross-field
// validation, unknown ids are no-ops. Date and client association are fixed
// for the life of a job, so none of these can violate the per-date or
// per-client invariants.

// SetJobStatus sets the status. Any transition is allowed.
func (s *Store) SetJobStatus(id string, status JobStatus) {
	s.mutateJob(id, func(j *Job) { j.Status = status })
}

// SetJobAmount overrides the snapshotted amount.
func (s *Store) SetJobAmount(id string, amount decimal.Decimal) {
	s.mutateJob(id, func(j *Job) { j.Amount = amount })
}

// SetJobTime sets or clears the time of day.
func (s *Store) SetJobTime(id string, timeOfDay string) {
	s.mutateJob(id, func(j *Job) { j.Time = timeOfDay })
}

// ToggleJobPaid flips the paid flag. PaidAt is stamped on false->true and
// cleared on true->false.
func (s *Store) ToggleJobPaid(id string) {
	s.mutateJob(id, func(j *Job) {
		j.Paid = !j.Paid
		if j.Paid {
			now := s.clock.Now()
			j.PaidAt = &now
		} else {
			j.PaidAt = nil
		}
	})
}

// ToggleTithePaid flips the tithe-paid flag, independently of Paid.
// TithePaidAt follows the same stamp/clear rule as PaidAt.
func (s *Store) ToggleTithePaid(id string) {
	s.mutateJob(id, func(j *Job) {
		j.TithePaid = !j.TithePaid
		if j.TithePaid {
			now := s.clock.Now()
			j.TithePaidAt = &now
		} else {
			j.TithePaidAt = nil
		}
	})
}

// DeleteJob removes a single job. There is no batch delete.
func (s *Store) DeleteJob(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.jobIndex(id)
	if i < 0 {
		return
	}
	s.jobs = append(s.jobs[:i], s.jobs[i+1:]...)
	s.emit(Mutation{Kind: MutationJobDeleted, JobID: id})
}

func (s *Store) mutateJob(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.jobIndex(id)
	if i < 0 {
		return
	}
	fn(&s.jobs[i])
	updated := s.jobs[i]
	s.emit(Mutation{Kind: MutationJobUpserted, Job: &updated})
}

// =============================================================================
// SETTINGS
// =============================================================================

// Settings returns the current scheduling toggles.
func (s *Store) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

// UpdateSettings applies a partial settings update. A non-positive daily
// limit is ignored.
func (s *Store) UpdateSettings(ch SettingsChanges) Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ch.DailyLimit != nil && *ch.DailyLimit > 0 {
		s.settings.DailyLimit = *ch.DailyLimit
	}
	if ch.SaturdayOnly != nil {
		s.settings.SaturdayOnly = *ch.SaturdayOnly
	}
	updated := s.settings
	s.emit(Mutation{Kind: MutationSettingsUpdated, Settings: &updated})
	return updated
}
