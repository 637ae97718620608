/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
  Pre-built scenarios that populate the engine with realistic data. Each
  scenario resets the state, creates clients, and drives the normal
  scheduling operations, so loading one exercises the same code paths as
  real usage.

AVAILABLE SCENARIOS:
  starter-route:   A few one-time clients on the next Saturday
  weekly-route:    Weekly clients with full 26-week fan-out
  busy-saturday:   A Saturday filled to the daily limit
  tithing-history: Completed and paid history with partial tithe settlement

NOTE:
  Loading a scenario resets the in-memory state (and, through the event
  queue, the database). Development and demo use only.

SEE ALSO:
  - handlers.go: ListScenarios / LoadScenario routing targets
*/
package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/greenside/mow-engine/schedule"
)

var scenarios = []ScenarioDTO{
	{
		ID:          "starter-route",
		Name:        "Starter Route",
		Description: "Three one-time clients booked on the next Saturday",
	},
	{
		ID:          "weekly-route",
		Name:        "Weekly Route",
		Description: "Two weekly clients fanned out across 26 Saturdays",
	},
	{
		ID:          "busy-saturday",
		Name:        "Busy Saturday",
		Description: "A Saturday at the daily limit, further bookings rejected",
	},
	{
		ID:          "tithing-history",
		Name:        "Tithing History",
		Description: "Completed, paid work with tithe partially settled",
	},
}

// ListScenarios returns the available demo scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// LoadScenario resets state and loads the requested scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	h.Engine.Reset()

	var err error
	switch req.ScenarioID {
	case "starter-route":
		err = h.loadStarterRoute()
	case "weekly-route":
		err = h.loadWeeklyRoute()
	case "busy-saturday":
		err = h.loadBusySaturday()
	case "tithing-history":
		err = h.loadTithingHistory()
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown scenario %q", req.ScenarioID), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", err)
		return
	}

	h.Log.Info("scenario loaded", "scenario", req.ScenarioID)
	writeJSON(w, http.StatusOK, map[string]any{
		"loaded":  req.ScenarioID,
		"clients": len(h.Engine.Clients()),
		"jobs":    len(h.Engine.Jobs()),
	})
}

func price(v string) decimal.Decimal {
	d, err := decimal.NewFromString(v)
	if err != nil {
		panic(err)
	}
	return d
}

func (h *Handler) loadStarterRoute() error {
	sat := h.Clock.Today().NextSaturday()

	names := []struct {
		name  string
		price string
		t     string
	}{
		{"Anderson Residence", "45.00", "08:00"},
		{"Maple Street HOA", "120.00", "10:30"},
		{"Grady's Corner Lot", "35.00", ""},
	}
	for _, n := range names {
		c := h.Engine.AddClient(schedule.NewClient{
			Name:        n.name,
			PricePerMow: price(n.price),
			Frequency:   schedule.FrequencyOneTime,
			DefaultTime: n.t,
		})
		if err := h.Engine.ScheduleJob(sat, c.ID, ""); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadWeeklyRoute() error {
	sat := h.Clock.Today().NextSaturday()

	a := h.Engine.AddClient(schedule.NewClient{
		Name:        "Hillcrest Estate",
		PricePerMow: price("85.00"),
		Frequency:   schedule.FrequencyWeekly,
		DefaultTime: "07:30",
	})
	b := h.Engine.AddClient(schedule.NewClient{
		Name:        "Second Baptist Church",
		PricePerMow: price("60.00"),
		Frequency:   schedule.FrequencyWeekly,
	})

	// Direct scheduling triggers the 26-week fan-out for each client.
	if err := h.Engine.ScheduleJob(sat, a.ID, ""); err != nil {
		return err
	}
	return h.Engine.ScheduleJob(sat, b.ID, "13:00")
}

func (h *Handler) loadBusySaturday() error {
	sat := h.Clock.Today().NextSaturday()
	limit := h.Engine.Settings().DailyLimit

	for i := 0; i < limit; i++ {
		c := h.Engine.AddClient(schedule.NewClient{
			Name:        fmt.Sprintf("Route Stop %d", i+1),
			PricePerMow: price("40.00"),
			Frequency:   schedule.FrequencyOneTime,
		})
		if err := h.Engine.ScheduleJob(sat, c.ID, ""); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) loadTithingHistory() error {
	// Work backward from the most recent Saturday so everything lands in the
	// past.
	last := h.Clock.Today().NextSaturday().AddDays(-7 * 9)

	c := h.Engine.AddClient(schedule.NewClient{
		Name:        "Willow Bend Rentals",
		PricePerMow: price("75.00"),
		Frequency:   schedule.FrequencyOneTime,
	})

	for week := 0; week < 8; week++ {
		day := last.AddDays(7 * week)
		if err := h.Engine.ScheduleJob(day, c.ID, "09:00"); err != nil {
			return err
		}
		jobs := h.Engine.JobsOn(day)
		id := jobs[len(jobs)-1].ID
		h.Engine.SetJobStatus(id, schedule.StatusCompleted)
		h.Engine.ToggleJobPaid(id)
		if week%2 == 0 {
			h.Engine.ToggleTithePaid(id)
		}
	}
	return nil
}
