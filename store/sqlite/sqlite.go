/*
Package sqlite provides the SQLite-backed persistence sink.

PURPOSE:
  Durable best-effort storage for the in-memory engine. The sink restores a
  full snapshot on startup and then mirrors each mutation asynchronously as
  it drains the engine's outbound event queue. The engine never waits on a
  write; if a write fails the failure is logged and discarded.

KEY TABLES:
  clients:  One row per client, keyed by (namespace, id)
  jobs:     One row per job, keyed by (namespace, id)
  settings: One row per namespace with the two global toggles

NAMESPACE:
  Everything is keyed by a fixed namespace string so several installs can
  share one database file.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging): readers don't block the
  single writer, and crash recovery is cleaner.

MONEY:
  Decimal amounts are stored as their exact string form, never as REAL.

SEE ALSO:
  - applier.go:  The async mutation consumer
  - schedule:    The engine emitting the mutations
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/greenside/mow-engine/schedule"
)

// Namespace keys every row this application owns, so unrelated data can share
// the same database file.
const Namespace = "lawnmower-data"

// Store is the SQLite persistence sink.
type Store struct {
	db        *sql.DB
	namespace string
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each pooled connection would otherwise see its own empty database.
		db.SetMaxOpenConns(1)
	}

	s := &Store{db: db, namespace: Namespace}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS clients (
		namespace TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL,
		address TEXT,
		phone TEXT,
		notes TEXT,
		price_per_mow TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		frequency TEXT NOT NULL DEFAULT 'one_time',
		default_time TEXT,
		created_at TEXT NOT NULL,
		PRIMARY KEY (namespace, id)
	);

	CREATE TABLE IF NOT EXISTS jobs (
		namespace TEXT NOT NULL,
		id TEXT NOT NULL,
		client_id TEXT NOT NULL,
		date TEXT NOT NULL,
		time TEXT,
		status TEXT NOT NULL,
		amount TEXT NOT NULL,
		paid INTEGER NOT NULL DEFAULT 0,
		paid_at TEXT,
		tithe_paid INTEGER NOT NULL DEFAULT 0,
		tithe_paid_at TEXT,
		created_at TEXT NOT NULL,
		PRIMARY KEY (namespace, id)
	);

	CREATE INDEX IF NOT EXISTS idx_jobs_date ON jobs(namespace, date);
	CREATE INDEX IF NOT EXISTS idx_jobs_client ON jobs(namespace, client_id);

	CREATE TABLE IF NOT EXISTS settings (
		namespace TEXT PRIMARY KEY,
		daily_limit INTEGER NOT NULL,
		saturday_only INTEGER NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SNAPSHOT - Full-state save and restore
// =============================================================================

// SaveSnapshot replaces everything under the namespace with the snapshot,
// atomically.
func (s *Store) SaveSnapshot(ctx context.Context, snap schedule.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, q := range []string{
		"DELETE FROM clients WHERE namespace = ?",
		"DELETE FROM jobs WHERE namespace = ?",
		"DELETE FROM settings WHERE namespace = ?",
	} {
		if _, err := tx.ExecContext(ctx, q, s.namespace); err != nil {
			return err
		}
	}

	for _, c := range snap.Clients {
		if err := upsertClient(ctx, tx, s.namespace, c); err != nil {
			return err
		}
	}
	for _, j := range snap.Jobs {
		if err := upsertJob(ctx, tx, s.namespace, j); err != nil {
			return err
		}
	}
	if err := saveSettings(ctx, tx, s.namespace, snap.Settings); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadSnapshot restores the stored state. found is false when the namespace
// has never been written (fresh database).
func (s *Store) LoadSnapshot(ctx context.Context) (snap schedule.Snapshot, found bool, err error) {
	snap.Settings = schedule.DefaultSettings()

	row := s.db.QueryRowContext(ctx,
		"SELECT daily_limit, saturday_only FROM settings WHERE namespace = ?", s.namespace)
	var satOnly int
	switch err = row.Scan(&snap.Settings.DailyLimit, &satOnly); err {
	case nil:
		snap.Settings.SaturdayOnly = satOnly != 0
		found = true
	case sql.ErrNoRows:
		err = nil
	default:
		return schedule.Snapshot{}, false, err
	}

	snap.Clients, err = s.loadClients(ctx)
	if err != nil {
		return schedule.Snapshot{}, false, err
	}
	snap.Jobs, err = s.loadJobs(ctx)
	if err != nil {
		return schedule.Snapshot{}, false, err
	}
	if len(snap.Clients) > 0 || len(snap.Jobs) > 0 {
		found = true
	}
	return snap, found, nil
}

func (s *Store) loadClients(ctx context.Context) ([]schedule.Client, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, address, phone, notes, price_per_mow, active,
		       frequency, default_time, created_at
		FROM clients WHERE namespace = ? ORDER BY created_at DESC`, s.namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.Client
	for rows.Next() {
		var c schedule.Client
		var address, phone, notes, defaultTime sql.NullString
		var price, createdAt string
		var active int
		if err := rows.Scan(&c.ID, &c.Name, &address, &phone, &notes, &price,
			&active, &c.Frequency, &defaultTime, &createdAt); err != nil {
			return nil, err
		}
		c.Address = address.String
		c.Phone = phone.String
		c.Notes = notes.String
		c.DefaultTime = defaultTime.String
		c.Active = active != 0
		if c.PricePerMow, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("client %s: bad price %q: %w", c.ID, price, err)
		}
		if c.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("client %s: bad created_at %q: %w", c.ID, createdAt, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) loadJobs(ctx context.Context) ([]schedule.Job, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, client_id, date, time, status, amount, paid, paid_at,
		       tithe_paid, tithe_paid_at, created_at
		FROM jobs WHERE namespace = ? ORDER BY created_at`, s.namespace)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []schedule.Job
	for rows.Next() {
		var j schedule.Job
		var jobTime, paidAt, tithePaidAt sql.NullString
		var date, amount, createdAt string
		var paid, tithePaid int
		if err := rows.Scan(&j.ID, &j.ClientID, &date, &jobTime, &j.Status,
			&amount, &paid, &paidAt, &tithePaid, &tithePaidAt, &createdAt); err != nil {
			return nil, err
		}
		j.Time = jobTime.String
		j.Paid = paid != 0
		j.TithePaid = tithePaid != 0
		if j.Date, err = schedule.ParseDate(date); err != nil {
			return nil, fmt.Errorf("job %s: %w", j.ID, err)
		}
		if j.Amount, err = decimal.NewFromString(amount); err != nil {
			return nil, fmt.Errorf("job %s: bad amount %q: %w", j.ID, amount, err)
		}
		if j.PaidAt, err = nullTime(paidAt); err != nil {
			return nil, fmt.Errorf("job %s: bad paid_at: %w", j.ID, err)
		}
		if j.TithePaidAt, err = nullTime(tithePaidAt); err != nil {
			return nil, fmt.Errorf("job %s: bad tithe_paid_at: %w", j.ID, err)
		}
		if j.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("job %s: bad created_at %q: %w", j.ID, createdAt, err)
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

// =============================================================================
// PER-ENTITY MIRRORING
// =============================================================================

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// UpsertClient mirrors a client create or update.
func (s *Store) UpsertClient(ctx context.Context, c schedule.Client) error {
	return upsertClient(ctx, s.db, s.namespace, c)
}

// DeleteClient removes a client and, mirroring the engine's cascade, every
// job referencing it.
func (s *Store) DeleteClient(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM jobs WHERE namespace = ? AND client_id = ?", s.namespace, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM clients WHERE namespace = ? AND id = ?", s.namespace, id); err != nil {
		return err
	}
	return tx.Commit()
}

// UpsertJob mirrors a job create or field update.
func (s *Store) UpsertJob(ctx context.Context, j schedule.Job) error {
	return upsertJob(ctx, s.db, s.namespace, j)
}

// DeleteJob removes a single job row.
func (s *Store) DeleteJob(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM jobs WHERE namespace = ? AND id = ?", s.namespace, id)
	return err
}

// SaveSettings mirrors a settings update.
func (s *Store) SaveSettings(ctx context.Context, settings schedule.Settings) error {
	return saveSettings(ctx, s.db, s.namespace, settings)
}

func upsertClient(ctx context.Context, db execer, ns string, c schedule.Client) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO clients (namespace, id, name, address, phone, notes,
			price_per_mow, active, frequency, default_time, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET
			name = excluded.name,
			address = excluded.address,
			phone = excluded.phone,
			notes = excluded.notes,
			price_per_mow = excluded.price_per_mow,
			active = excluded.active,
			frequency = excluded.frequency,
			default_time = excluded.default_time`,
		ns, c.ID, c.Name, c.Address, c.Phone, c.Notes,
		c.PricePerMow.String(), boolInt(c.Active), string(c.Frequency),
		c.DefaultTime, c.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func upsertJob(ctx context.Context, db execer, ns string, j schedule.Job) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO jobs (namespace, id, client_id, date, time, status, amount,
			paid, paid_at, tithe_paid, tithe_paid_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(namespace, id) DO UPDATE SET
			client_id = excluded.client_id,
			date = excluded.date,
			time = excluded.time,
			status = excluded.status,
			amount = excluded.amount,
			paid = excluded.paid,
			paid_at = excluded.paid_at,
			tithe_paid = excluded.tithe_paid,
			tithe_paid_at = excluded.tithe_paid_at`,
		ns, j.ID, j.ClientID, j.Date.ISO(), j.Time, string(j.Status),
		j.Amount.String(), boolInt(j.Paid), timeString(j.PaidAt),
		boolInt(j.TithePaid), timeString(j.TithePaidAt),
		j.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func saveSettings(ctx context.Context, db execer, ns string, st schedule.Settings) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (namespace, daily_limit, saturday_only)
		VALUES (?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE SET
			daily_limit = excluded.daily_limit,
			saturday_only = excluded.saturday_only`,
		ns, st.DailyLimit, boolInt(st.SaturdayOnly))
	return err
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timeString(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid || s.String == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
