/*
Package report derives read-only financial views from the job ledger.

PURPOSE:
  Straightforward folds over the ledger: totals by date bucket, paid/unpaid
  splits, and forward-looking forecasts of scheduled revenue. Nothing here
  mutates state; every function takes plain slices copied out of the store
  and recomputes from scratch. Derived figures (tithe, totals) are never
  stored anywhere.

BUCKETS:
  Bucket keys are ISO-date prefixes: YYYY-MM-DD for day granularity, YYYY-MM
  for month, YYYY for year. Buckets sort lexicographically, which for ISO
  prefixes is chronological.

SEE ALSO:
  - tithe.go: Tithing summary and ledger
*/
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/greenside/mow-engine/schedule"
)

// Granularity selects the bucket key width for range reports.
type Granularity string

const (
	ByDay   Granularity = "day"
	ByMonth Granularity = "month"
	ByYear  Granularity = "year"
)

// BucketKey returns the bucket key for a date at the given granularity.
func BucketKey(d schedule.Date, g Granularity) string {
	switch g {
	case ByYear:
		return d.Year()
	case ByMonth:
		return d.YearMonth()
	default:
		return d.ISO()
	}
}

// Bucket is one aggregated revenue bucket.
type Bucket struct {
	Key   string          `json:"key"`
	Total decimal.Decimal `json:"total"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard is the landing-page summary.
type Dashboard struct {
	// UpcomingSaturday is the next Saturday strictly after today.
	UpcomingSaturday schedule.Date `json:"upcomingSaturday"`
	// UpcomingCount is how many jobs sit on that Saturday, any status.
	UpcomingCount int `json:"upcomingCount"`
	// TotalPaid is the all-time sum of paid job amounts.
	TotalPaid decimal.Decimal `json:"totalPaid"`
	// CompletedUnpaid is the sum over completed jobs not yet paid.
	CompletedUnpaid decimal.Decimal `json:"completedUnpaid"`
}

// BuildDashboard folds the ledger into the landing-page summary.
func BuildDashboard(jobs []schedule.Job, today schedule.Date) Dashboard {
	d := Dashboard{
		UpcomingSaturday: today.NextSaturday(),
		TotalPaid:        decimal.Zero,
		CompletedUnpaid:  decimal.Zero,
	}
	for _, j := range jobs {
		if j.Date.Equal(d.UpcomingSaturday) {
			d.UpcomingCount++
		}
		if j.Paid {
			d.TotalPaid = d.TotalPaid.Add(j.Amount)
		}
		if j.Status == schedule.StatusCompleted && !j.Paid {
			d.CompletedUnpaid = d.CompletedUnpaid.Add(j.Amount)
		}
	}
	return d
}

// =============================================================================
// RANGE REPORT
// =============================================================================

// DateTotals aggregates completed work on one date.
type DateTotals struct {
	Date  schedule.Date   `json:"date"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
	Paid  decimal.Decimal `json:"paid"`
}

// RangeReport aggregates completed and scheduled work inside [Start, End].
type RangeReport struct {
	Start schedule.Date `json:"start"`
	End   schedule.Date `json:"end"`

	// ByDate lists per-date completed totals, chronological.
	ByDate []DateTotals `json:"byDate"`

	// Completed totals across the range.
	Total  decimal.Decimal `json:"total"`
	Paid   decimal.Decimal `json:"paid"`
	Unpaid decimal.Decimal `json:"unpaid"`

	// AllTimePaid sums paid amounts over the whole ledger, ignoring the
	// range. Displayed alongside the range cards.
	AllTimePaid decimal.Decimal `json:"allTimePaid"`

	// ScheduledTotal is forward-looking revenue still in `scheduled` status
	// inside the range.
	ScheduledTotal decimal.Decimal `json:"scheduledTotal"`

	// Bucketed views at the requested granularity, chronological.
	CompletedBuckets []Bucket `json:"completedBuckets"`
	ScheduledBuckets []Bucket `json:"scheduledBuckets"`
}

// BuildRangeReport folds completed and scheduled jobs inside [start, end]
// into totals and buckets. Jobs in other statuses are ignored.
func BuildRangeReport(jobs []schedule.Job, start, end schedule.Date, g Granularity) RangeReport {
	r := RangeReport{
		Start:          start,
		End:            end,
		Total:          decimal.Zero,
		Paid:           decimal.Zero,
		Unpaid:         decimal.Zero,
		AllTimePaid:    decimal.Zero,
		ScheduledTotal: decimal.Zero,
	}

	byDate := make(map[string]*DateTotals)
	completed := make(map[string]decimal.Decimal)
	scheduled := make(map[string]decimal.Decimal)

	for _, j := range jobs {
		if j.Paid {
			r.AllTimePaid = r.AllTimePaid.Add(j.Amount)
		}
		if j.Date.Before(start) || j.Date.After(end) {
			continue
		}
		switch j.Status {
		case schedule.StatusCompleted:
			r.Total = r.Total.Add(j.Amount)
			key := j.Date.ISO()
			dt := byDate[key]
			if dt == nil {
				dt = &DateTotals{Date: j.Date, Total: decimal.Zero, Paid: decimal.Zero}
				byDate[key] = dt
			}
			dt.Count++
			dt.Total = dt.Total.Add(j.Amount)
			if j.Paid {
				r.Paid = r.Paid.Add(j.Amount)
				dt.Paid = dt.Paid.Add(j.Amount)
			}
			bk := BucketKey(j.Date, g)
			completed[bk] = completed[bk].Add(j.Amount)
		case schedule.StatusScheduled:
			r.ScheduledTotal = r.ScheduledTotal.Add(j.Amount)
			bk := BucketKey(j.Date, g)
			scheduled[bk] = scheduled[bk].Add(j.Amount)
		}
	}
	r.Unpaid = r.Total.Sub(r.Paid)

	for _, dt := range byDate {
		r.ByDate = append(r.ByDate, *dt)
	}
	sort.Slice(r.ByDate, func(i, k int) bool { return r.ByDate[i].Date.Before(r.ByDate[k].Date) })

	r.CompletedBuckets = sortedBuckets(completed)
	r.ScheduledBuckets = sortedBuckets(scheduled)
	return r
}

func sortedBuckets(m map[string]decimal.Decimal) []Bucket {
	out := make([]Bucket, 0, len(m))
	for k, v := range m {
		out = append(out, Bucket{Key: k, Total: v})
	}
	sort.Slice(out, func(i, k int) bool { return out[i].Key < out[k].Key })
	return out
}

// =============================================================================
// FORECASTS
// =============================================================================

// ForecastDays returns scheduled revenue per day for today through today+30,
// zero-filled so every day appears even with no jobs.
func ForecastDays(jobs []schedule.Job, today schedule.Date) []Bucket {
	end := today.AddDays(30)

	totals := make(map[string]decimal.Decimal)
	for d := today; !d.After(end); d = d.AddDays(1) {
		totals[d.ISO()] = decimal.Zero
	}
	for _, j := range jobs {
		if j.Status != schedule.StatusScheduled {
			continue
		}
		if j.Date.Before(today) || j.Date.After(end) {
			continue
		}
		key := j.Date.ISO()
		totals[key] = totals[key].Add(j.Amount)
	}
	return sortedBuckets(totals)
}

// ForecastMonths returns scheduled revenue per month for the current month
// and the following eleven, zero-filled.
func ForecastMonths(jobs []schedule.Job, today schedule.Date) []Bucket {
	totals := make(map[string]decimal.Decimal)
	keys := make([]string, 0, 12)
	// Step from the first of the month; adding months to a day-29..31 date
	// can normalize past the next month and skip it entirely.
	first := today.FirstOfMonth()
	for i := 0; i < 12; i++ {
		k := first.AddMonths(i).YearMonth()
		keys = append(keys, k)
		totals[k] = decimal.Zero
	}
	for _, j := range jobs {
		if j.Status != schedule.StatusScheduled {
			continue
		}
		k := j.Date.YearMonth()
		if _, ok := totals[k]; ok {
			totals[k] = totals[k].Add(j.Amount)
		}
	}

	out := make([]Bucket, 0, len(keys))
	for _, k := range keys {
		out = append(out, Bucket{Key: k, Total: totals[k]})
	}
	return out
}
