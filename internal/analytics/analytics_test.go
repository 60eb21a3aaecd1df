package analytics

import (
	"testing"
	"time"

	"github.com/trapcrm/backend/internal/models"
)

func strp(s string) *string     { return &s }
func centsp(c int64) *int64     { return &c }
func floatp(f float64) *float64 { return &f }

func jobOn(day string, opts ...func(*models.Job)) models.Job {
	d, _ := time.Parse("2006-01-02", day)
	j := models.Job{Status: models.StatusCompleted, ServiceDate: &d}
	for _, opt := range opts {
		opt(&j)
	}
	return j
}

func TestIsCompletedStatus(t *testing.T) {
	completed := []models.JobStatus{models.StatusCompleted, models.StatusVerified, models.StatusInvoiced, models.StatusExported}
	for _, s := range completed {
		if !IsCompletedStatus(s) {
			t.Errorf("%q should be completed-like", s)
		}
	}
	for _, s := range []models.JobStatus{models.StatusDraft, models.StatusScheduled, models.StatusInProgress, models.StatusNeedsDocs, models.StatusRejected} {
		if IsCompletedStatus(s) {
			t.Errorf("%q should not be completed-like", s)
		}
	}
}

func TestRevenueCentsFallback(t *testing.T) {
	j := models.Job{InvoiceTotalCents: centsp(56840), InvoiceTotalRaw: strp("$999.99")}
	if c, ok := RevenueCents(&j); !ok || c != 56840 {
		t.Errorf("typed value should win: (%d, %v)", c, ok)
	}

	j = models.Job{InvoiceTotalRaw: strp("$568.40")}
	if c, ok := RevenueCents(&j); !ok || c != 56840 {
		t.Errorf("raw fallback: (%d, %v)", c, ok)
	}

	j = models.Job{InvoiceTotalRaw: strp("n/a")}
	if _, ok := RevenueCents(&j); ok {
		t.Error("unparseable raw should not count")
	}

	j = models.Job{}
	if _, ok := RevenueCents(&j); ok {
		t.Error("empty job has no revenue")
	}
}

func TestTotalsSkipsMalformed(t *testing.T) {
	jobs := []models.Job{
		{InvoiceTotalCents: centsp(100000), GallonsPumped: floatp(1000)},
		{InvoiceTotalRaw: strp("garbage"), GallonsPumpedRaw: strp("unknown")},
		{InvoiceTotalRaw: strp("$500.00"), GallonsPumpedRaw: strp("250 gal")},
	}
	rev, gal := Totals(jobs)
	if rev != 150000 {
		t.Errorf("revenue = %d, want 150000", rev)
	}
	if gal != 1250 {
		t.Errorf("gallons = %v, want 1250", gal)
	}
}

func TestStatusCounts(t *testing.T) {
	jobs := []models.Job{
		{Status: models.StatusCompleted},
		{Status: models.StatusVerified},
		{Status: models.StatusExported},
		{Status: models.StatusScheduled},
		{Status: models.StatusInProgress},
		{Status: models.StatusDraft},
	}
	completed, scheduled, inProgress := StatusCounts(jobs)
	if completed != 3 || scheduled != 1 || inProgress != 1 {
		t.Errorf("counts = (%d, %d, %d), want (3, 1, 1)", completed, scheduled, inProgress)
	}
}

func TestPeriodKey(t *testing.T) {
	cases := []struct {
		date, groupBy, want string
	}{
		{"2026-01-08", "day", "2026-01-08"},
		{"2026-01-08", "month", "2026-01"},
		{"2026-01-08", "week", "2026-W02"},
		{"2024-12-30", "week", "2025-W01"}, // ISO week year rollover
	}
	for _, c := range cases {
		if got := PeriodKey(c.date, c.groupBy); got != c.want {
			t.Errorf("PeriodKey(%q, %q) = %q, want %q", c.date, c.groupBy, got, c.want)
		}
	}
}

func TestCountSeries(t *testing.T) {
	jobs := []models.Job{
		jobOn("2026-01-08"),
		jobOn("2026-01-08"),
		jobOn("2026-01-10"),
		{Status: models.StatusDraft}, // no service date, omitted
	}
	points := CountSeries(jobs, "day")
	if len(points) != 2 {
		t.Fatalf("points = %v, want 2 buckets", points)
	}
	if points[0].Date != "2026-01-08" || points[0].Value != 2 {
		t.Errorf("first bucket = %+v", points[0])
	}
	if points[1].Date != "2026-01-10" || points[1].Value != 1 {
		t.Errorf("second bucket = %+v", points[1])
	}
}

func TestRevenueSeriesMonthly(t *testing.T) {
	jobs := []models.Job{
		jobOn("2026-01-08", func(j *models.Job) { j.InvoiceTotalCents = centsp(100000) }),
		jobOn("2026-01-20", func(j *models.Job) { j.InvoiceTotalCents = centsp(50000) }),
		jobOn("2026-02-01", func(j *models.Job) { j.InvoiceTotalCents = centsp(25000) }),
	}
	points := RevenueSeries(jobs, "month")
	if len(points) != 2 {
		t.Fatalf("points = %v", points)
	}
	if points[0].Date != "2026-01" || points[0].Value != 1500 {
		t.Errorf("jan = %+v", points[0])
	}
	if points[1].Date != "2026-02" || points[1].Value != 250 {
		t.Errorf("feb = %+v", points[1])
	}
}

func TestCountByTechnicianSkipsEmpty(t *testing.T) {
	jobs := []models.Job{
		{Technician: strp("Marcus Williams")},
		{Technician: strp("Marcus Williams")},
		{Technician: strp("Dana Lee")},
		{Technician: strp("")},
		{},
	}
	counts := CountByTechnician(jobs)
	if len(counts) != 2 {
		t.Fatalf("counts = %v", counts)
	}
	if counts["Marcus Williams"] != 2 || counts["Dana Lee"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestTopCustomersByRevenue(t *testing.T) {
	jobs := []models.Job{
		{CustomerName: strp("Big Spender"), InvoiceTotalRaw: strp("$1,000.00")},
		{CustomerName: strp("Big Spender"), InvoiceTotalRaw: strp("$500.00")},
		{CustomerName: strp("Small Customer"), InvoiceTotalRaw: strp("$100.00")},
	}
	top := TopCustomersByRevenue(jobs, 10)
	if len(top) != 2 {
		t.Fatalf("top = %v", top)
	}
	if top[0].CustomerName != "Big Spender" || top[0].Revenue != 1500 {
		t.Errorf("top[0] = %+v", top[0])
	}
	if top[1].CustomerName != "Small Customer" || top[1].Revenue != 100 {
		t.Errorf("top[1] = %+v", top[1])
	}

	if got := TopCustomersByRevenue(jobs, 1); len(got) != 1 {
		t.Errorf("limit not applied: %v", got)
	}
}
