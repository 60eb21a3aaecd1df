// Package analytics computes dashboard aggregates over job rows already
// fetched from the store. Revenue and gallons come from the typed values
// when present, falling back to normalizing the raw strings; a value that
// fails to normalize is skipped so a single malformed record never breaks
// an aggregate.
package analytics

import (
	"fmt"
	"sort"

	"github.com/trapcrm/backend/internal/models"
	"github.com/trapcrm/backend/internal/normalize"
)

// completedStatuses is the KPI equivalence class for "completed". Exported
// is a legacy alias of Verified-like treatment and is counted here rather
// than folded into the enum.
var completedStatuses = map[models.JobStatus]bool{
	models.StatusCompleted: true,
	models.StatusVerified:  true,
	models.StatusInvoiced:  true,
	models.StatusExported:  true,
}

// IsCompletedStatus reports whether a status lands in the dashboard's
// completed bucket.
func IsCompletedStatus(s models.JobStatus) bool {
	return completedStatuses[s]
}

// RevenueCents extracts a job's revenue in cents, ok=false when neither
// the typed nor the raw representation yields a value.
func RevenueCents(j *models.Job) (int64, bool) {
	if j.InvoiceTotalCents != nil {
		return *j.InvoiceTotalCents, true
	}
	if j.InvoiceTotalRaw != nil {
		return normalize.CentsFromString(*j.InvoiceTotalRaw)
	}
	return 0, false
}

// Gallons extracts a job's pumped gallons, raw fallback included.
func Gallons(j *models.Job) (float64, bool) {
	if j.GallonsPumped != nil {
		return *j.GallonsPumped, true
	}
	if j.GallonsPumpedRaw != nil {
		return normalize.GallonsFromString(*j.GallonsPumpedRaw)
	}
	return 0, false
}

// Totals sums normalized revenue and gallons across jobs.
func Totals(jobs []models.Job) (revenueCents int64, gallons float64) {
	for i := range jobs {
		if c, ok := RevenueCents(&jobs[i]); ok {
			revenueCents += c
		}
		if g, ok := Gallons(&jobs[i]); ok {
			gallons += g
		}
	}
	return revenueCents, gallons
}

// StatusCounts tallies jobs into the three headline KPI buckets.
func StatusCounts(jobs []models.Job) (completed, scheduled, inProgress int) {
	for i := range jobs {
		switch {
		case IsCompletedStatus(jobs[i].Status):
			completed++
		case jobs[i].Status == models.StatusScheduled:
			scheduled++
		case jobs[i].Status == models.StatusInProgress:
			inProgress++
		}
	}
	return completed, scheduled, inProgress
}

// PeriodKey truncates an ISO date (YYYY-MM-DD) to a grouping key:
// day keeps the first 10 characters, month the first 7, week becomes the
// ISO week label YYYY-Www.
func PeriodKey(isoDate, groupBy string) string {
	switch groupBy {
	case "month":
		if len(isoDate) >= 7 {
			return isoDate[:7]
		}
		return isoDate
	case "week":
		d, ok := normalize.DateFromString(isoDate)
		if !ok {
			return isoDate
		}
		year, week := d.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	default:
		if len(isoDate) >= 10 {
			return isoDate[:10]
		}
		return isoDate
	}
}

// jobPeriod returns the grouping key for a job's service date, ok=false
// when the job has no typed service date.
func jobPeriod(j *models.Job, groupBy string) (string, bool) {
	if j.ServiceDate == nil {
		return "", false
	}
	return PeriodKey(normalize.FormatDateISO(*j.ServiceDate), groupBy), true
}

// CountSeries buckets jobs by service-date period and counts them.
// Periods with no jobs are omitted; buckets come back sorted ascending.
func CountSeries(jobs []models.Job, groupBy string) []models.TimeSeriesPoint {
	buckets := map[string]float64{}
	for i := range jobs {
		if key, ok := jobPeriod(&jobs[i], groupBy); ok {
			buckets[key]++
		}
	}
	return sortedPoints(buckets)
}

// RevenueSeries buckets normalized revenue (dollars) by period.
func RevenueSeries(jobs []models.Job, groupBy string) []models.TimeSeriesPoint {
	buckets := map[string]float64{}
	for i := range jobs {
		key, ok := jobPeriod(&jobs[i], groupBy)
		if !ok {
			continue
		}
		if _, seen := buckets[key]; !seen {
			buckets[key] = 0
		}
		if c, ok := RevenueCents(&jobs[i]); ok {
			buckets[key] += float64(c) / 100
		}
	}
	return sortedPoints(buckets)
}

// GallonsSeries buckets normalized gallons by period.
func GallonsSeries(jobs []models.Job, groupBy string) []models.TimeSeriesPoint {
	buckets := map[string]float64{}
	for i := range jobs {
		key, ok := jobPeriod(&jobs[i], groupBy)
		if !ok {
			continue
		}
		if _, seen := buckets[key]; !seen {
			buckets[key] = 0
		}
		if g, ok := Gallons(&jobs[i]); ok {
			buckets[key] += g
		}
	}
	return sortedPoints(buckets)
}

// CountByStatus groups jobs by their exact status label.
func CountByStatus(jobs []models.Job) map[string]int {
	out := map[string]int{}
	for i := range jobs {
		out[string(jobs[i].Status)]++
	}
	return out
}

// CountByTechnician groups jobs by technician, skipping jobs with no
// technician recorded.
func CountByTechnician(jobs []models.Job) map[string]int {
	out := map[string]int{}
	for i := range jobs {
		t := jobs[i].Technician
		if t == nil || *t == "" {
			continue
		}
		out[*t]++
	}
	return out
}

// TopCustomersByRevenue sums normalized revenue per denormalized customer
// name and returns the top rows, descending by revenue in dollars. Ties
// break alphabetically so the ranking is stable.
func TopCustomersByRevenue(jobs []models.Job, limit int) []models.CustomerRevenue {
	sums := map[string]float64{}
	for i := range jobs {
		name := jobs[i].CustomerName
		if name == nil || *name == "" {
			continue
		}
		if _, seen := sums[*name]; !seen {
			sums[*name] = 0
		}
		if c, ok := RevenueCents(&jobs[i]); ok {
			sums[*name] += float64(c) / 100
		}
	}

	out := make([]models.CustomerRevenue, 0, len(sums))
	for name, rev := range sums {
		out = append(out, models.CustomerRevenue{CustomerName: name, Revenue: rev})
	}
	sort.Slice(out, func(a, b int) bool {
		if out[a].Revenue != out[b].Revenue {
			return out[a].Revenue > out[b].Revenue
		}
		return out[a].CustomerName < out[b].CustomerName
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}

func sortedPoints(buckets map[string]float64) []models.TimeSeriesPoint {
	out := make([]models.TimeSeriesPoint, 0, len(buckets))
	for key, value := range buckets {
		out = append(out, models.TimeSeriesPoint{Date: key, Value: value})
	}
	sort.Slice(out, func(a, b int) bool { return out[a].Date < out[b].Date })
	return out
}
