package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/greenside/mow-engine/schedule"
)

// =============================================================================
// TITHING - 10% of each paid job, tracked independently of the job's own
// paid status
// =============================================================================

// TitheSummary rolls up tithing obligations over every paid job.
type TitheSummary struct {
	// AllTimePaid is gross earnings: the sum of paid job amounts.
	AllTimePaid decimal.Decimal `json:"allTimePaid"`
	// TithePaid is the tithe already settled.
	TithePaid decimal.Decimal `json:"tithePaid"`
	// Outstanding is the tithe still owed on paid jobs.
	Outstanding decimal.Decimal `json:"outstanding"`
	// NetAfterTithe is gross earnings minus settled tithe.
	NetAfterTithe decimal.Decimal `json:"netAfterTithe"`
}

// TitheEntry is one row of the tithing ledger: a paid job with its derived
// tithe.
type TitheEntry struct {
	JobID      string          `json:"jobId"`
	Date       schedule.Date   `json:"date"`
	Time       string          `json:"time,omitempty"`
	ClientName string          `json:"clientName"`
	Amount     decimal.Decimal `json:"amount"`
	Tithe      decimal.Decimal `json:"tithe"`
	TithePaid  bool            `json:"tithePaid"`
}

// BuildTitheSummary folds paid jobs into the tithing totals. The tithe is
// always recomputed as 10% of the amount; nothing is read from storage.
func BuildTitheSummary(jobs []schedule.Job) TitheSummary {
	s := TitheSummary{
		AllTimePaid:   decimal.Zero,
		TithePaid:     decimal.Zero,
		Outstanding:   decimal.Zero,
		NetAfterTithe: decimal.Zero,
	}
	for _, j := range jobs {
		if !j.Paid {
			continue
		}
		s.AllTimePaid = s.AllTimePaid.Add(j.Amount)
		if j.TithePaid {
			s.TithePaid = s.TithePaid.Add(j.Tithe())
		} else {
			s.Outstanding = s.Outstanding.Add(j.Tithe())
		}
	}
	s.NetAfterTithe = s.AllTimePaid.Sub(s.TithePaid)
	return s
}

// BuildTitheLedger lists every paid job with its derived tithe, sorted by
// date then time. Orphaned jobs (client deleted out from under them via
// import) show the client as "Unknown".
func BuildTitheLedger(jobs []schedule.Job, clients []schedule.Client) []TitheEntry {
	names := make(map[string]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.Name
	}

	var out []TitheEntry
	for _, j := range jobs {
		if !j.Paid {
			continue
		}
		name, ok := names[j.ClientID]
		if !ok {
			name = "Unknown"
		}
		out = append(out, TitheEntry{
			JobID:      j.ID,
			Date:       j.Date,
			Time:       j.Time,
			ClientName: name,
			Amount:     j.Amount,
			Tithe:      j.Tithe(),
			TithePaid:  j.TithePaid,
		})
	}
	sort.Slice(out, func(i, k int) bool {
		if !out[i].Date.Equal(out[k].Date) {
			return out[i].Date.Before(out[k].Date)
		}
		return out[i].Time < out[k].Time
	})
	return out
}
