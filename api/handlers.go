/*
handlers.go - HTTP handlers for the mowing engine

PURPOSE:
  Exposes the scheduling engine and the derived reports over REST. Handlers
  parse and validate input, delegate to the engine, and serialize responses.
  No business rules live here.

ENDPOINTS:
  Clients:
    GET    /api/clients                    List clients
    POST   /api/clients                    Create client (+optional weekly seed)
    GET    /api/clients/{id}               Get client
    PUT    /api/clients/{id}               Partial update
    DELETE /api/clients/{id}               Delete (cascades to jobs)
    POST   /api/clients/{id}/bulk-schedule Seed weekly occurrences

  Jobs:
    GET    /api/jobs                       List (?date= filters one day)
    POST   /api/jobs                       Schedule one job (weekly fan-out)
    DELETE /api/jobs/{id}                  Delete one job
    PUT    /api/jobs/{id}/status           Set status
    PUT    /api/jobs/{id}/amount           Set amount
    PUT    /api/jobs/{id}/time             Set/clear time
    POST   /api/jobs/{id}/paid             Toggle paid
    POST   /api/jobs/{id}/tithe-paid       Toggle tithe paid

  Settings:  GET/PUT /api/settings
  Reports:   /api/reports/{dashboard,range,forecast,tithing}
  Transfer:  GET /api/export, POST /api/import, POST /api/reset
  Scenarios: GET /api/scenarios, POST /api/scenarios/load

ERROR HANDLING:
  Scheduling rejections are result values, not exceptions:
  - 400: Malformed input (bad date, bad time, bad amount)
  - 404: Unknown client or job
  - 409: Policy rejection (Saturday rule, daily limit, duplicate)
  - 500: Internal errors

SEE ALSO:
  - dto.go:    Wire shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/greenside/mow-engine/report"
	"github.com/greenside/mow-engine/schedule"
)

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	Engine *schedule.Store
	Clock  schedule.Clock
	Log    *slog.Logger
}

// NewHandler creates a handler around an engine.
func NewHandler(engine *schedule.Store, clock schedule.Clock, log *slog.Logger) *Handler {
	if clock == nil {
		clock = schedule.SystemClock()
	}
	if log == nil {
		log = slog.Default()
	}
	return &Handler{Engine: engine, Clock: clock, Log: log}
}

// =============================================================================
// CLIENT HANDLERS
// =============================================================================

// ListClients returns the registry, newest first.
func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients := h.Engine.Clients()
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = clientDTO(c)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetClient returns a single client.
func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	c, ok := h.Engine.Client(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, clientDTO(c))
}

// CreateClient creates a client and, for weekly clients with a start date,
// seeds their upcoming Saturdays in the same call.
func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required", nil)
		return
	}
	if req.PricePerMow.IsNegative() {
		writeError(w, http.StatusBadRequest, "Price must be non-negative", nil)
		return
	}
	freq := schedule.Frequency(req.Frequency)
	if freq != "" && freq != schedule.FrequencyOneTime && freq != schedule.FrequencyWeekly {
		writeError(w, http.StatusBadRequest, "Unknown frequency", nil)
		return
	}
	if !schedule.ValidTimeOfDay(req.DefaultTime) {
		writeError(w, http.StatusBadRequest, "Invalid default time, want HH:MM", nil)
		return
	}

	var start schedule.Date
	if req.StartDate != "" {
		var err error
		if start, err = schedule.ParseDate(req.StartDate); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start date", err)
			return
		}
	}

	c := h.Engine.AddClient(schedule.NewClient{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Notes:       req.Notes,
		PricePerMow: req.PricePerMow,
		Frequency:   freq,
		DefaultTime: req.DefaultTime,
		Active:      req.Active,
	})

	if c.Frequency == schedule.FrequencyWeekly && !start.IsZero() {
		h.Engine.BulkScheduleWeekly(c.ID, start, c.DefaultTime, 0)
	}

	h.Log.Info("client created", "client_id", c.ID, "name", c.Name)
	writeJSON(w, http.StatusCreated, clientDTO(c))
}

// UpdateClient applies a partial update. Price changes never touch existing
// jobs.
func (h *Handler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ch := schedule.ClientChanges{
		Name:        req.Name,
		Address:     req.Address,
		Phone:       req.Phone,
		Notes:       req.Notes,
		PricePerMow: req.PricePerMow,
		Active:      req.Active,
		DefaultTime: req.DefaultTime,
	}
	if req.PricePerMow != nil && req.PricePerMow.IsNegative() {
		writeError(w, http.StatusBadRequest, "Price must be non-negative", nil)
		return
	}
	if req.Frequency != nil {
		f := schedule.Frequency(*req.Frequency)
		if f != schedule.FrequencyOneTime && f != schedule.FrequencyWeekly {
			writeError(w, http.StatusBadRequest, "Unknown frequency", nil)
			return
		}
		ch.Frequency = &f
	}
	if req.DefaultTime != nil && !schedule.ValidTimeOfDay(*req.DefaultTime) {
		writeError(w, http.StatusBadRequest, "Invalid default time, want HH:MM", nil)
		return
	}

	if err := h.Engine.UpdateClient(id, ch); err != nil {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}
	c, _ := h.Engine.Client(id)
	writeJSON(w, http.StatusOK, clientDTO(c))
}

// DeleteClient removes the client and every job referencing it.
func (h *Handler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.Engine.DeleteClient(id)
	h.Log.Info("client deleted", "client_id", id)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// BulkSchedule seeds weekly occurrences for an existing client.
func (h *Handler) BulkSchedule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req BulkScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	start, err := schedule.ParseDate(req.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	if !schedule.ValidTimeOfDay(req.Time) {
		writeError(w, http.StatusBadRequest, "Invalid time, want HH:MM", nil)
		return
	}
	if _, ok := h.Engine.Client(id); !ok {
		writeError(w, http.StatusNotFound, "Client not found", nil)
		return
	}

	before := len(h.Engine.Jobs())
	h.Engine.BulkScheduleWeekly(id, start, req.Time, req.Weeks)
	created := len(h.Engine.Jobs()) - before

	h.Log.Info("bulk schedule", "client_id", id, "start", start.ISO(), "created", created)
	writeJSON(w, http.StatusOK, map[string]any{"created": created})
}

// =============================================================================
// JOB HANDLERS
// =============================================================================

// ListJobs returns jobs. ?date=YYYY-MM-DD restricts to one day;
// ?client_id= restricts to one client.
func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) {
	if d := r.URL.Query().Get("date"); d != "" {
		date, err := schedule.ParseDate(d)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		writeJSON(w, http.StatusOK, jobDTOs(h.Engine.JobsOn(date)))
		return
	}
	if cid := r.URL.Query().Get("client_id"); cid != "" {
		writeJSON(w, http.StatusOK, jobDTOs(h.Engine.JobsForClient(cid)))
		return
	}
	writeJSON(w, http.StatusOK, jobDTOs(h.Engine.Jobs()))
}

// ScheduleJob creates one job through the scheduling policy. Weekly clients
// get their recurrence fan-out here and only here.
func (h *Handler) ScheduleJob(w http.ResponseWriter, r *http.Request) {
	var req ScheduleJobRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	date, err := schedule.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if !schedule.ValidTimeOfDay(req.Time) {
		writeError(w, http.StatusBadRequest, "Invalid time, want HH:MM", nil)
		return
	}

	if err := h.Engine.ScheduleJob(date, req.ClientID, req.Time); err != nil {
		writeScheduleError(w, err)
		return
	}

	h.Log.Info("job scheduled", "client_id", req.ClientID, "date", date.ISO())
	writeJSON(w, http.StatusCreated, jobDTOs(h.Engine.JobsOn(date)))
}

// DeleteJob removes a single job.
func (h *Handler) DeleteJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	h.Engine.DeleteJob(id)
	writeJSON(w, http.StatusOK, map[string]any{"deleted": id})
}

// SetJobStatus updates a job's status; any transition is allowed.
func (h *Handler) SetJobStatus(w http.ResponseWriter, r *http.Request) {
	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	status := schedule.JobStatus(req.Status)
	if !schedule.ValidStatus(status) {
		writeError(w, http.StatusBadRequest, "Unknown status", nil)
		return
	}
	h.withJob(w, r, func(id string) { h.Engine.SetJobStatus(id, status) })
}

// SetJobAmount overrides a job's snapshotted amount.
func (h *Handler) SetJobAmount(w http.ResponseWriter, r *http.Request) {
	var req SetAmountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.Amount.IsNegative() {
		writeError(w, http.StatusBadRequest, "Amount must be non-negative", nil)
		return
	}
	h.withJob(w, r, func(id string) { h.Engine.SetJobAmount(id, req.Amount) })
}

// SetJobTime sets or clears a job's time of day.
func (h *Handler) SetJobTime(w http.ResponseWriter, r *http.Request) {
	var req SetTimeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !schedule.ValidTimeOfDay(req.Time) {
		writeError(w, http.StatusBadRequest, "Invalid time, want HH:MM", nil)
		return
	}
	h.withJob(w, r, func(id string) { h.Engine.SetJobTime(id, req.Time) })
}

// ToggleJobPaid flips the paid flag, stamping or clearing PaidAt.
func (h *Handler) ToggleJobPaid(w http.ResponseWriter, r *http.Request) {
	h.withJob(w, r, func(id string) { h.Engine.ToggleJobPaid(id) })
}

// ToggleTithePaid flips the tithe-paid flag, independent of Paid.
func (h *Handler) ToggleTithePaid(w http.ResponseWriter, r *http.Request) {
	h.withJob(w, r, func(id string) { h.Engine.ToggleTithePaid(id) })
}

// withJob runs a field mutation against an existing job and returns the
// updated record.
func (h *Handler) withJob(w http.ResponseWriter, r *http.Request, fn func(id string)) {
	id := chi.URLParam(r, "id")
	if _, ok := h.Engine.Job(id); !ok {
		writeError(w, http.StatusNotFound, "Job not found", nil)
		return
	}
	fn(id)
	j, _ := h.Engine.Job(id)
	writeJSON(w, http.StatusOK, jobDTO(j))
}

// =============================================================================
// SETTINGS HANDLERS
// =============================================================================

// GetSettings returns the two scheduling toggles.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	st := h.Engine.Settings()
	writeJSON(w, http.StatusOK, SettingsDTO{DailyLimit: st.DailyLimit, SaturdayOnly: st.SaturdayOnly})
}

// UpdateSettings applies a partial settings update.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.DailyLimit != nil && *req.DailyLimit <= 0 {
		writeError(w, http.StatusBadRequest, "Daily limit must be positive", nil)
		return
	}
	st := h.Engine.UpdateSettings(schedule.SettingsChanges{
		DailyLimit:   req.DailyLimit,
		SaturdayOnly: req.SaturdayOnly,
	})
	writeJSON(w, http.StatusOK, SettingsDTO{DailyLimit: st.DailyLimit, SaturdayOnly: st.SaturdayOnly})
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// Dashboard returns the landing-page summary.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, report.BuildDashboard(h.Engine.Jobs(), h.Clock.Today()))
}

// RangeReport aggregates completed/scheduled revenue inside ?start=&end= at
// ?granularity= (day|month|year, default day).
func (h *Handler) RangeReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err := schedule.ParseDate(q.Get("start"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start date", err)
		return
	}
	end, err := schedule.ParseDate(q.Get("end"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end date", err)
		return
	}
	if end.Before(start) {
		writeError(w, http.StatusBadRequest, "End before start", nil)
		return
	}
	g := report.Granularity(q.Get("granularity"))
	switch g {
	case "", report.ByDay:
		g = report.ByDay
	case report.ByMonth, report.ByYear:
	default:
		writeError(w, http.StatusBadRequest, "Unknown granularity", nil)
		return
	}
	writeJSON(w, http.StatusOK, report.BuildRangeReport(h.Engine.Jobs(), start, end, g))
}

// Forecast returns zero-filled scheduled revenue for the next 30 days and 12
// months.
func (h *Handler) Forecast(w http.ResponseWriter, r *http.Request) {
	jobs := h.Engine.Jobs()
	today := h.Clock.Today()
	writeJSON(w, http.StatusOK, map[string]any{
		"days":   report.ForecastDays(jobs, today),
		"months": report.ForecastMonths(jobs, today),
	})
}

// Tithing returns the tithe summary plus the per-job ledger.
func (h *Handler) Tithing(w http.ResponseWriter, r *http.Request) {
	jobs := h.Engine.Jobs()
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": report.BuildTitheSummary(jobs),
		"ledger":  report.BuildTitheLedger(jobs, h.Engine.Clients()),
	})
}

// =============================================================================
// STATE TRANSFER HANDLERS
// =============================================================================

// Export returns the full state snapshot.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.Engine.Export())
}

// Import replaces the full state wholesale. Only the shape is validated.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	var req ImportRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed snapshot", err)
		return
	}
	h.Engine.Import(req.Snapshot())
	h.Log.Info("snapshot imported",
		"clients", len(req.Clients), "jobs", len(req.Jobs))
	writeJSON(w, http.StatusOK, map[string]any{
		"clients": len(req.Clients),
		"jobs":    len(req.Jobs),
	})
}

// Reset restores empty collections and default settings.
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	h.Engine.Reset()
	h.Log.Info("state reset")
	writeJSON(w, http.StatusOK, map[string]any{"reset": true})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeScheduleError(w http.ResponseWriter, err error) {
	switch {
	case schedule.IsNotFound(err):
		writeError(w, http.StatusNotFound, "Client not found", err)
	case schedule.IsClientError(err):
		writeError(w, http.StatusConflict, "Scheduling rejected", err)
	default:
		writeError(w, http.StatusInternalServerError, "Failed to schedule job", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
