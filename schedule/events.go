/*
events.go - Outbound mutation events for fire-and-forget persistence

PURPOSE:
  Every committed mutation is mirrored onto a buffered outbound queue. The
  persistence sink drains the queue asynchronously; the in-memory state never
  waits for durability. If the queue is full the event is dropped - memory is
  the authoritative state for a session, durability is best-effort.

EVENT SHAPE:
  A Mutation carries the kind plus the affected record. Upserts carry the
  full record (per-entity last-write-wins at the sink), deletes carry the id,
  and wholesale replacements (import/reset) carry a complete snapshot.

SEE ALSO:
  - store.go: Emits events after each commit
  - store/sqlite: The consuming sink
*/
package schedule

// MutationKind tags an outbound mutation event.
type MutationKind string

const (
	MutationClientUpserted   MutationKind = "client_upserted"
	MutationClientDeleted    MutationKind = "client_deleted"
	MutationJobUpserted      MutationKind = "job_upserted"
	MutationJobDeleted       MutationKind = "job_deleted"
	MutationSettingsUpdated  MutationKind = "settings_updated"
	MutationSnapshotReplaced MutationKind = "snapshot_replaced"
)

// Mutation is one outbound persistence command. Exactly the fields implied by
// Kind are set.
type Mutation struct {
	Kind MutationKind

	Client   *Client   // client_upserted
	Job      *Job      // job_upserted
	ClientID string    // client_deleted (jobs cascade at the sink too)
	JobID    string    // job_deleted
	Settings *Settings // settings_updated
	Snapshot *Snapshot // snapshot_replaced
}

// emit enqueues a mutation without blocking. Dropped when no listener is
// configured or the buffer is full.
func (s *Store) emit(m Mutation) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- m:
	default:
		s.dropped.Add(1)
	}
}

// Events returns the outbound mutation queue, or nil when the store was built
// without one.
func (s *Store) Events() <-chan Mutation { return s.events }

// DroppedEvents reports how many mutations were discarded because the queue
// was full. Diagnostic only.
func (s *Store) DroppedEvents() int64 { return s.dropped.Load() }
