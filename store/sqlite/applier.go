package sqlite

import (
	"context"
	"log/slog"

	"github.com/greenside/mow-engine/schedule"
)

// Applier drains the engine's outbound mutation queue into the database.
// Propagation is fire-and-forget: a failed write is logged and discarded,
// never retried. The in-memory state stays authoritative.
type Applier struct {
	store *Store
	log   *slog.Logger
}

// NewApplier creates an applier writing to store.
func NewApplier(store *Store, log *slog.Logger) *Applier {
	if log == nil {
		log = slog.Default()
	}
	return &Applier{store: store, log: log}
}

// Run consumes events until the channel closes or ctx is canceled. Call it
// from its own goroutine.
func (a *Applier) Run(ctx context.Context, events <-chan schedule.Mutation) {
	for {
		select {
		case <-ctx.Done():
			return
		case m, ok := <-events:
			if !ok {
				return
			}
			if err := a.apply(ctx, m); err != nil {
				a.log.Warn("persistence write dropped",
					"kind", string(m.Kind), "error", err)
			}
		}
	}
}

func (a *Applier) apply(ctx context.Context, m schedule.Mutation) error {
	switch m.Kind {
	case schedule.MutationClientUpserted:
		return a.store.UpsertClient(ctx, *m.Client)
	case schedule.MutationClientDeleted:
		return a.store.DeleteClient(ctx, m.ClientID)
	case schedule.MutationJobUpserted:
		return a.store.UpsertJob(ctx, *m.Job)
	case schedule.MutationJobDeleted:
		return a.store.DeleteJob(ctx, m.JobID)
	case schedule.MutationSettingsUpdated:
		return a.store.SaveSettings(ctx, *m.Settings)
	case schedule.MutationSnapshotReplaced:
		return a.store.SaveSnapshot(ctx, *m.Snapshot)
	default:
		a.log.Warn("unknown mutation kind", "kind", string(m.Kind))
		return nil
	}
}
