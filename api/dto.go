/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for API communication, decoupling the internal model from
  the wire contract. Money fields use decimal.Decimal end to end; it accepts
  both quoted and bare JSON numbers on input.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Done in handlers, not in DTOs. DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/greenside/mow-engine/schedule"
)

// =============================================================================
// CLIENTS
// =============================================================================

// ClientDTO represents a client in API responses.
type ClientDTO struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Address     string          `json:"address,omitempty"`
	Phone       string          `json:"phone,omitempty"`
	Notes       string          `json:"notes,omitempty"`
	PricePerMow decimal.Decimal `json:"price_per_mow"`
	Active      bool            `json:"active"`
	Frequency   string          `json:"frequency"`
	DefaultTime string          `json:"default_time,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

func clientDTO(c schedule.Client) ClientDTO {
	return ClientDTO{
		ID:          c.ID,
		Name:        c.Name,
		Address:     c.Address,
		Phone:       c.Phone,
		Notes:       c.Notes,
		PricePerMow: c.PricePerMow,
		Active:      c.Active,
		Frequency:   string(c.Frequency),
		DefaultTime: c.DefaultTime,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
	}
}

// CreateClientRequest creates a client. When Frequency is "weekly" and
// StartDate is set, the client's first 26 Saturdays are seeded in the same
// call.
type CreateClientRequest struct {
	Name        string          `json:"name"`
	Address     string          `json:"address"`
	Phone       string          `json:"phone"`
	Notes       string          `json:"notes"`
	PricePerMow decimal.Decimal `json:"price_per_mow"`
	Frequency   string          `json:"frequency"`
	DefaultTime string          `json:"default_time"`
	Active      *bool           `json:"active"`
	StartDate   string          `json:"start_date"`
}

// UpdateClientRequest is a partial client update; absent fields are left
// untouched.
type UpdateClientRequest struct {
	Name        *string          `json:"name"`
	Address     *string          `json:"address"`
	Phone       *string          `json:"phone"`
	Notes       *string          `json:"notes"`
	PricePerMow *decimal.Decimal `json:"price_per_mow"`
	Active      *bool            `json:"active"`
	Frequency   *string          `json:"frequency"`
	DefaultTime *string          `json:"default_time"`
}

// BulkScheduleRequest seeds weekly occurrences for an existing client.
type BulkScheduleRequest struct {
	StartDate string `json:"start_date"`
	Time      string `json:"time"`
	Weeks     int    `json:"weeks"`
}

// =============================================================================
// JOBS
// =============================================================================

// JobDTO represents a job in API responses. Tithe is derived, never stored.
type JobDTO struct {
	ID          string          `json:"id"`
	ClientID    string          `json:"client_id"`
	Date        string          `json:"date"`
	Time        string          `json:"time,omitempty"`
	Status      string          `json:"status"`
	Amount      decimal.Decimal `json:"amount"`
	Tithe       decimal.Decimal `json:"tithe"`
	Paid        bool            `json:"paid"`
	PaidAt      string          `json:"paid_at,omitempty"`
	TithePaid   bool            `json:"tithe_paid"`
	TithePaidAt string          `json:"tithe_paid_at,omitempty"`
	CreatedAt   string          `json:"created_at"`
}

func jobDTO(j schedule.Job) JobDTO {
	dto := JobDTO{
		ID:        j.ID,
		ClientID:  j.ClientID,
		Date:      j.Date.ISO(),
		Time:      j.Time,
		Status:    string(j.Status),
		Amount:    j.Amount,
		Tithe:     j.Tithe(),
		Paid:      j.Paid,
		TithePaid: j.TithePaid,
		CreatedAt: j.CreatedAt.Format(time.RFC3339),
	}
	if j.PaidAt != nil {
		dto.PaidAt = j.PaidAt.Format(time.RFC3339)
	}
	if j.TithePaidAt != nil {
		dto.TithePaidAt = j.TithePaidAt.Format(time.RFC3339)
	}
	return dto
}

func jobDTOs(jobs []schedule.Job) []JobDTO {
	out := make([]JobDTO, len(jobs))
	for i, j := range jobs {
		out[i] = jobDTO(j)
	}
	return out
}

// ScheduleJobRequest creates one job (plus weekly fan-out for weekly clients).
type ScheduleJobRequest struct {
	Date     string `json:"date"`
	ClientID string `json:"client_id"`
	Time     string `json:"time"`
}

// SetStatusRequest updates a job's status.
type SetStatusRequest struct {
	Status string `json:"status"`
}

// SetAmountRequest overrides a job's amount.
type SetAmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// SetTimeRequest sets or clears a job's time of day.
type SetTimeRequest struct {
	Time string `json:"time"`
}

// =============================================================================
// SETTINGS
// =============================================================================

// SettingsDTO mirrors schedule.Settings on the wire.
type SettingsDTO struct {
	DailyLimit   int  `json:"daily_limit"`
	SaturdayOnly bool `json:"saturday_only"`
}

// UpdateSettingsRequest is a partial settings update.
type UpdateSettingsRequest struct {
	DailyLimit   *int  `json:"daily_limit"`
	SaturdayOnly *bool `json:"saturday_only"`
}

// =============================================================================
// STATE TRANSFER
// =============================================================================

// ImportRequest is the wholesale import shape. Missing settings fields fall
// back to defaults; nothing else is validated. This can reintroduce invariant
// violations and is kept intentionally as a data-recovery trapdoor.
type ImportRequest struct {
	Clients  []schedule.Client      `json:"clients"`
	Jobs     []schedule.Job         `json:"jobs"`
	Settings *ImportSettingsRequest `json:"settings"`
}

// ImportSettingsRequest defaults missing fields instead of zeroing them.
type ImportSettingsRequest struct {
	DailyLimit   *int  `json:"dailyLimit"`
	SaturdayOnly *bool `json:"saturdayOnly"`
}

// Snapshot converts the request to the engine's snapshot shape.
func (r ImportRequest) Snapshot() schedule.Snapshot {
	settings := schedule.DefaultSettings()
	if r.Settings != nil {
		if r.Settings.DailyLimit != nil {
			settings.DailyLimit = *r.Settings.DailyLimit
		}
		if r.Settings.SaturdayOnly != nil {
			settings.SaturdayOnly = *r.Settings.SaturdayOnly
		}
	}
	return schedule.Snapshot{Clients: r.Clients, Jobs: r.Jobs, Settings: settings}
}

// =============================================================================
// MISC
// =============================================================================

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ScenarioDTO describes one loadable demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest selects a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}
