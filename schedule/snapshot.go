/*
snapshot.go - Wholesale state transfer: export, import, reset

PURPOSE:
  Pure state transfer for the persistence collaborators. Export copies the
  three collections out; Import replaces them wholesale, defaulting missing
  settings fields; Reset restores the empty/default state.

IMPORT IS A TRAPDOOR:
  Import performs no invariant validation. A snapshot can reintroduce states
  impossible through normal scheduling (duplicate client on a date, a date
  over the limit). This is deliberate: import exists for data recovery, and
  rejecting "dirty" data would make recovery impossible.
*/
package schedule

// Export returns a deep copy of the full state.
func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	clients := make([]Client, len(s.clients))
	copy(clients, s.clients)
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)

	return Snapshot{Clients: clients, Jobs: jobs, Settings: s.settings}
}

// Import replaces all three collections wholesale. Zero-valued settings
// fields fall back to defaults so partial snapshots restore cleanly. No
// invariant validation is performed.
func (s *Store) Import(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients = make([]Client, len(snap.Clients))
	copy(s.clients, snap.Clients)
	s.jobs = make([]Job, len(snap.Jobs))
	copy(s.jobs, snap.Jobs)

	s.settings = snap.Settings
	if s.settings.DailyLimit <= 0 {
		s.settings.DailyLimit = DefaultDailyLimit
	}

	replaced := s.snapshotLocked()
	s.emit(Mutation{Kind: MutationSnapshotReplaced, Snapshot: &replaced})
}

// Reset restores empty collections and default settings unconditionally.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clients = nil
	s.jobs = nil
	s.settings = DefaultSettings()

	replaced := s.snapshotLocked()
	s.emit(Mutation{Kind: MutationSnapshotReplaced, Snapshot: &replaced})
}

func (s *Store) snapshotLocked() Snapshot {
	clients := make([]Client, len(s.clients))
	copy(clients, s.clients)
	jobs := make([]Job, len(s.jobs))
	copy(jobs, s.jobs)
	return Snapshot{Clients: clients, Jobs: jobs, Settings: s.settings}
}
