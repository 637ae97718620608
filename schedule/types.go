/*
Package schedule provides the core scheduling engine for the mowing business.

PURPOSE:
  This package contains the data model and the scheduling policy for a small
  lawn-mowing operation: the client registry, the job ledger, and the rules
  governing when a job may be created (Saturday-only restriction, daily
  capacity limit, one job per client per day) plus weekly recurrence fan-out.

KEY CONCEPTS IN THIS FILE (types.go):
  - Client:   A customer with a per-mow price and a recurrence preference
  - Job:      One scheduled/completed/canceled mowing visit on a calendar date
  - Settings: The two global scheduling toggles (daily limit, Saturday-only)
  - Snapshot: Wholesale state transfer shape for export/import

DESIGN PRINCIPLES:
  1. Precision: Money uses decimal.Decimal, never float64
  2. Snapshots: A job's amount is copied from the client's price at creation
     and never retroactively updated
  3. Derivation: The tithe is always computed from the amount, never stored

SEE ALSO:
  - policy.go: Job creation rules and recurrence fan-out
  - store.go:  The in-memory state container
  - date.go:   Calendar-date and time-of-day handling
*/
package schedule

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLIENT - A customer of the mowing business
// =============================================================================

// Frequency is a client's recurrence preference.
type Frequency string

const (
	// FrequencyOneTime clients get exactly the job that was asked for.
	FrequencyOneTime Frequency = "one_time"
	// FrequencyWeekly clients get future occurrences fanned out automatically
	// when a job is scheduled for them directly.
	FrequencyWeekly Frequency = "weekly"
)

// Client is a customer record. Owned by the registry; jobs reference clients
// by ID and never embed them.
type Client struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	PricePerMow decimal.Decimal `json:"pricePerMow"`
	Active      bool            `json:"active"`
	Frequency   Frequency       `json:"frequency"`
	// DefaultTime is an optional HH:MM time of day applied to new jobs when
	// no explicit time is given. Empty means unset.
	DefaultTime string    `json:"defaultTime,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewClient carries the caller-supplied fields for AddClient.
// ID, CreatedAt and the Active default are filled in by the store.
type NewClient struct {
	Name        string
	Address     string
	Phone       string
	Notes       string
	PricePerMow decimal.Decimal
	Frequency   Frequency
	DefaultTime string
	// Active defaults to true when nil.
	Active *bool
}

// ClientChanges is a partial update for UpdateClient. Nil fields are left
// untouched. Changing PricePerMow never touches existing jobs.
type ClientChanges struct {
	Name        *string
	Address     *string
	Phone       *string
	Notes       *string
	PricePerMow *decimal.Decimal
	Active      *bool
	Frequency   *Frequency
	DefaultTime *string
}

// =============================================================================
// JOB - One mowing visit on a calendar date
// =============================================================================

// JobStatus is the lifecycle state of a job. Any status is reachable from any
// other; there is no terminal state.
type JobStatus string

const (
	StatusScheduled JobStatus = "scheduled"
	StatusCompleted JobStatus = "completed"
	StatusCanceled  JobStatus = "canceled"
)

// ValidStatus reports whether s is one of the three known statuses.
func ValidStatus(s JobStatus) bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Job is one mowing visit for a client on a specific date.
//
// Amount is snapshotted from the client's price when the job is created and
// is independently editable afterward. PaidAt / TithePaidAt are stamped on a
// false->true toggle and cleared on true->false. A job whose ClientID no
// longer resolves is orphaned; reporting ignores it where a client is needed.
type Job struct {
	ID       string `json:"id"`
	ClientID string `json:"clientId"`
	Date     Date   `json:"date"`
	// Time is an optional HH:MM, 24-hour. Empty means unset.
	Time        string          `json:"time,omitempty"`
	Status      JobStatus       `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Paid        bool            `json:"paid"`
	PaidAt      *time.Time      `json:"paidAt,omitempty"`
	TithePaid   bool            `json:"tithePaid,omitempty"`
	TithePaidAt *time.Time      `json:"tithePaidAt,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// titheRate is the fixed tithing fraction of a job's amount.
var titheRate = decimal.NewFromFloat(0.10)

// Tithe returns the derived tithe for this job's amount, rounded to two
// decimals. Never stored.
func (j Job) Tithe() decimal.Decimal {
	return TitheOf(j.Amount)
}

// TitheOf computes the tithe for an arbitrary amount.
func TitheOf(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(titheRate).Round(2)
}

// =============================================================================
// SETTINGS - Global scheduling toggles
// =============================================================================

const (
	DefaultDailyLimit = 10
	// FanOutWeeks is the fixed recurrence horizon: scheduling a weekly client
	// directly also attempts the next 26 weekly dates.
	FanOutWeeks = 26
)

// Settings parameterize the scheduling policy.
type Settings struct {
	// DailyLimit caps how many jobs may exist on one calendar date, counting
	// every status including canceled. It is a creation-time gate, not a live
	// occupancy count.
	DailyLimit int `json:"dailyLimit"`
	// SaturdayOnly restricts job creation to Saturdays.
	SaturdayOnly bool `json:"saturdayOnly"`
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{DailyLimit: DefaultDailyLimit, SaturdayOnly: true}
}

// SettingsChanges is a partial update for UpdateSettings.
type SettingsChanges struct {
	DailyLimit   *int
	SaturdayOnly *bool
}

// =============================================================================
// SNAPSHOT - Wholesale state transfer
// =============================================================================

// Snapshot is the full exported state: the three collections, nothing else.
// Import replaces all three wholesale and performs no invariant validation;
// this is a deliberate data-recovery trapdoor.
type Snapshot struct {
	Clients  []Client `json:"clients"`
	Jobs     []Job    `json:"jobs"`
	Settings Settings `json:"settings"`
}
