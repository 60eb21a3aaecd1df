package db

// Integration tests. They need a throwaway Postgres database:
//
//	TEST_DATABASE_URL=postgres://localhost:5432/trapcrm_test go test ./internal/db
//
// Without TEST_DATABASE_URL set the tests skip.

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/trapcrm/backend/internal/models"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	s, err := New(context.Background(), url, t.TempDir())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := s.Reset(context.Background()); err != nil {
		t.Fatalf("reset: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func strp(s string) *string { return &s }

func TestBuildJobWhere(t *testing.T) {
	wheres, args := buildJobWhere(JobFilter{Technician: strp("Marcus")})
	if len(wheres) != 1 || wheres[0] != "technician ILIKE $1" {
		t.Errorf("technician clause = %v, want substring match", wheres)
	}
	if len(args) != 1 || args[0] != "%Marcus%" {
		t.Errorf("technician arg = %v", args)
	}

	// Free-text search covers invoice number and customer name, not the
	// technician column.
	wheres, _ = buildJobWhere(JobFilter{Search: strp("tony")})
	if len(wheres) != 1 || strings.Contains(wheres[0], "technician") {
		t.Errorf("search clause = %v", wheres)
	}
}

func TestClampPage(t *testing.T) {
	cases := []struct {
		limit, offset         int
		wantLimit, wantOffset int
	}{
		{0, 0, 100, 0},
		{-5, -3, 100, 0},
		{200, 10, 200, 10},
		{500, 0, 200, 0},
		{25, 50, 25, 50},
	}
	for _, c := range cases {
		limit, offset := clampPage(c.limit, c.offset)
		if limit != c.wantLimit || offset != c.wantOffset {
			t.Errorf("clampPage(%d, %d) = (%d, %d), want (%d, %d)",
				c.limit, c.offset, limit, offset, c.wantLimit, c.wantOffset)
		}
	}
}

func TestJobRoundTrip(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	job := models.NewJob()
	job.InvoiceNumber = strp("GS-2024-003471")
	job.CustomerName = strp("Tony's Ristorante")
	d := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
	job.ServiceDate = &d
	cents := int64(56840)
	job.InvoiceTotalCents = &cents
	gal := 1320.0
	job.GallonsPumped = &gal
	job.ExtractedFields = []string{"invoice_number", "customer_name"}
	job.MissingFields = []string{"technician"}

	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.LoadJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got == nil {
		t.Fatal("job not found after save")
	}
	if got.InvoiceNumber == nil || *got.InvoiceNumber != "GS-2024-003471" {
		t.Errorf("invoice_number = %v", got.InvoiceNumber)
	}
	if got.ServiceDate == nil || !got.ServiceDate.Equal(d) {
		t.Errorf("service_date = %v", got.ServiceDate)
	}
	if got.InvoiceTotalCents == nil || *got.InvoiceTotalCents != 56840 {
		t.Errorf("cents = %v", got.InvoiceTotalCents)
	}
	// Raw strings are re-derived from the typed values on save.
	if got.ServiceDateRaw == nil || *got.ServiceDateRaw != "2026-01-08" {
		t.Errorf("service_date_raw = %v", got.ServiceDateRaw)
	}
	if got.InvoiceTotalRaw == nil || *got.InvoiceTotalRaw != "$568.40" {
		t.Errorf("invoice_total_raw = %v", got.InvoiceTotalRaw)
	}
	if len(got.ExtractedFields) != 2 || len(got.MissingFields) != 1 {
		t.Errorf("field lists = %v / %v", got.ExtractedFields, got.MissingFields)
	}

	// Saving again must be a fixed point.
	if err := s.SaveJob(ctx, got); err != nil {
		t.Fatalf("resave: %v", err)
	}
	again, err := s.LoadJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if *again.ServiceDateRaw != *got.ServiceDateRaw || *again.InvoiceTotalRaw != *got.InvoiceTotalRaw {
		t.Error("save/load is not a fixed point")
	}
}

func TestJobRawOnlyValuesSurvive(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	job := models.NewJob()
	job.ServiceDateRaw = strp("sometime next week")
	job.InvoiceTotalRaw = strp("$TBD")
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.LoadJob(ctx, job.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ServiceDate != nil {
		t.Errorf("typed date = %v, want nil", got.ServiceDate)
	}
	if got.ServiceDateRaw == nil || *got.ServiceDateRaw != "sometime next week" {
		t.Errorf("raw date = %v", got.ServiceDateRaw)
	}
	if got.InvoiceTotalRaw == nil || *got.InvoiceTotalRaw != "$TBD" {
		t.Errorf("raw total = %v", got.InvoiceTotalRaw)
	}
}

func TestLoadJobMissing(t *testing.T) {
	s := testStore(t)
	got, err := s.LoadJob(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != nil {
		t.Errorf("got = %+v, want nil", got)
	}
}

func TestListJobsFilters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mk := func(status models.JobStatus, tech, date string) *models.Job {
		j := models.NewJob()
		j.Status = status
		j.Technician = strp(tech)
		if d, err := time.Parse("2006-01-02", date); err == nil {
			j.ServiceDate = &d
		}
		if err := s.SaveJob(ctx, j); err != nil {
			t.Fatalf("save: %v", err)
		}
		return j
	}
	mk(models.StatusCompleted, "Marcus Williams", "2026-01-08")
	mk(models.StatusCompleted, "Dana Lee", "2026-01-15")
	mk(models.StatusScheduled, "Marcus Williams", "2026-02-01")

	status := models.StatusCompleted
	jobs, err := s.ListJobs(ctx, JobFilter{Status: &status})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("status filter: %d jobs, want 2", len(jobs))
	}

	// Substring is enough to match "Marcus Williams".
	jobs, err = s.ListJobs(ctx, JobFilter{Technician: strp("Marcus")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("technician filter: %d jobs, want 2", len(jobs))
	}

	jobs, err = s.ListJobs(ctx, JobFilter{DateFrom: strp("2026-01-10"), DateTo: strp("2026-02-01")})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(jobs) != 2 {
		t.Errorf("date filter: %d jobs, want 2", len(jobs))
	}

	n, err := s.CountJobs(ctx, JobFilter{Status: &status})
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 2 {
		t.Errorf("count = %d, want 2", n)
	}

	techs, err := s.UniqueTechnicians(ctx)
	if err != nil {
		t.Fatalf("technicians: %v", err)
	}
	if len(techs) != 2 || techs[0] != "Dana Lee" {
		t.Errorf("technicians = %v", techs)
	}
}

func TestUpdateJobPatch(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	job := models.NewJob()
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}

	status := models.StatusVerified
	got, err := s.UpdateJob(ctx, job.ID, models.JobPatch{
		Status:       &status,
		InvoiceTotal: strp("$1,000.00"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if got.Status != models.StatusVerified {
		t.Errorf("status = %q", got.Status)
	}
	if got.InvoiceTotalCents == nil || *got.InvoiceTotalCents != 100000 {
		t.Errorf("cents = %v", got.InvoiceTotalCents)
	}

	missing, err := s.UpdateJob(ctx, uuid.New(), models.JobPatch{Status: &status})
	if err != nil {
		t.Fatalf("update missing: %v", err)
	}
	if missing != nil {
		t.Error("updating a missing job should return nil")
	}
}

func TestDeleteJobKeepsDocuments(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	job := models.NewJob()
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}
	doc := &models.Document{JobID: &job.ID, Type: models.DocInvoice, Filename: "inv.pdf"}
	if err := s.SaveDocument(ctx, doc, []byte("pdf bytes")); err != nil {
		t.Fatalf("save doc: %v", err)
	}

	ok, err := s.DeleteJob(ctx, job.ID)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}

	// Orphaned document is still there and still downloadable.
	got, err := s.GetDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("get doc: %v", err)
	}
	if got == nil {
		t.Fatal("document should survive job deletion")
	}
	if got.StoredPath == nil {
		t.Fatal("stored path missing")
	}
	if _, err := os.Stat(*got.StoredPath); err != nil {
		t.Errorf("stored file: %v", err)
	}
}

func TestCustomerCRUD(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	c := &models.Customer{Name: "Tony's Ristorante", IsActive: true}
	if err := s.CreateCustomer(ctx, c); err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := s.GetCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil || got.Name != "Tony's Ristorante" {
		t.Fatalf("got = %+v", got)
	}

	updated, err := s.UpdateCustomer(ctx, c.ID, models.CustomerPatch{City: strp("Springfield")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.City == nil || *updated.City != "Springfield" {
		t.Errorf("city = %v", updated.City)
	}

	list, err := s.ListCustomers(ctx, "tony", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("search: %d rows, want 1", len(list))
	}

	ok, err := s.DeleteCustomer(ctx, c.ID)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	// Soft delete: the row survives with the active flag off.
	got, err = s.GetCustomer(ctx, c.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got == nil {
		t.Fatal("customer row must survive deletion")
	}
	if got.IsActive {
		t.Error("customer should be inactive after delete")
	}
	list, err = s.ListCustomers(ctx, "", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("inactive customer still listed: %v", list)
	}
	if n, _ := s.CountCustomers(ctx); n != 0 {
		t.Errorf("active count = %d, want 0", n)
	}
}

func TestSiteOverdueQueries(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	past := time.Now().UTC().AddDate(0, 0, -7)
	future := time.Now().UTC().AddDate(0, 0, 7)

	overdue := &models.Site{Name: "Overdue Diner", NextServiceDate: &past, IsActive: true}
	current := &models.Site{Name: "Current Cafe", NextServiceDate: &future, IsActive: true}
	inactive := &models.Site{Name: "Closed Kitchen", NextServiceDate: &past, IsActive: false}
	for _, site := range []*models.Site{overdue, current, inactive} {
		if err := s.CreateSite(ctx, site); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	sites, err := s.ListOverdueSites(ctx)
	if err != nil {
		t.Fatalf("overdue: %v", err)
	}
	if len(sites) != 1 || sites[0].Name != "Overdue Diner" {
		t.Errorf("overdue sites = %+v", sites)
	}

	n, err := s.CountOverdueSites(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestDocumentsAndPacket(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	job := models.NewJob()
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("save: %v", err)
	}

	inv := &models.Document{JobID: &job.ID, Type: models.DocInvoice, Filename: "invoice.pdf"}
	if err := s.SaveDocument(ctx, inv, []byte("invoice content")); err != nil {
		t.Fatalf("save invoice: %v", err)
	}
	if inv.ContentSHA256 == nil || len(*inv.ContentSHA256) != 64 {
		t.Errorf("sha256 = %v", inv.ContentSHA256)
	}
	if inv.FileSize != int64(len("invoice content")) {
		t.Errorf("file size = %d", inv.FileSize)
	}

	packet, err := s.JobPacketFor(ctx, job.ID)
	if err != nil {
		t.Fatalf("packet: %v", err)
	}
	if !packet.HasInvoice || packet.HasManifest || packet.IsComplete() {
		t.Errorf("packet = %+v", packet)
	}

	man := &models.Document{JobID: &job.ID, Type: models.DocManifest, Filename: "manifest.pdf"}
	if err := s.SaveDocument(ctx, man, []byte("manifest content")); err != nil {
		t.Fatalf("save manifest: %v", err)
	}
	packet, err = s.JobPacketFor(ctx, job.ID)
	if err != nil {
		t.Fatalf("packet: %v", err)
	}
	if !packet.IsComplete() {
		t.Errorf("packet should be complete: %+v", packet)
	}

	docType := models.DocInvoice
	docs, err := s.ListDocuments(ctx, &job.ID, &docType)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(docs) != 1 || docs[0].Type != models.DocInvoice {
		t.Errorf("docs = %+v", docs)
	}

	ok, err := s.DeleteDocument(ctx, inv.ID)
	if err != nil || !ok {
		t.Fatalf("delete: %v %v", ok, err)
	}
	if _, err := os.Stat(*inv.StoredPath); !os.IsNotExist(err) {
		t.Errorf("stored file should be removed: %v", err)
	}
}

func TestDashboardKPIs(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mk := func(status models.JobStatus, cents int64) *models.Job {
		j := models.NewJob()
		j.Status = status
		j.InvoiceTotalCents = &cents
		d := time.Date(2026, 1, 8, 0, 0, 0, 0, time.UTC)
		j.ServiceDate = &d
		if err := s.SaveJob(ctx, j); err != nil {
			t.Fatalf("save: %v", err)
		}
		return j
	}
	done := mk(models.StatusCompleted, 100000)
	mk(models.StatusVerified, 50000)
	mk(models.StatusScheduled, 90000)

	doc := &models.Document{JobID: &done.ID, Type: models.DocInvoice, Filename: "inv.pdf"}
	if err := s.SaveDocument(ctx, doc, []byte("x")); err != nil {
		t.Fatalf("save doc: %v", err)
	}

	kpis, err := s.GetDashboardKPIs(ctx, KPIFilter{})
	if err != nil {
		t.Fatalf("kpis: %v", err)
	}
	if kpis.JobsCompleted != 2 || kpis.JobsScheduled != 1 {
		t.Errorf("counts = %+v", kpis)
	}
	// Revenue sums across every matched job, scheduled ones included,
	// and the average divides by the full matched count.
	if kpis.TotalRevenueCents != 240000 {
		t.Errorf("revenue = %d, want 240000", kpis.TotalRevenueCents)
	}
	if kpis.AvgRevenuePerJobCents != 80000 {
		t.Errorf("avg = %d, want 80000", kpis.AvgRevenuePerJobCents)
	}
	// The verified job and the scheduled one have no invoice/manifest.
	if kpis.DocsMissingCount != 2 {
		t.Errorf("docs missing = %d, want 2", kpis.DocsMissingCount)
	}

	series, err := s.GetRevenueByDate(ctx, "month", KPIFilter{})
	if err != nil {
		t.Fatalf("series: %v", err)
	}
	if len(series) != 1 || series[0].Date != "2026-01" {
		t.Errorf("series = %+v", series)
	}

	top, err := s.GetTopCustomersByRevenue(ctx, 5, KPIFilter{})
	if err != nil {
		t.Fatalf("top: %v", err)
	}
	// No customer names on any job.
	if len(top) != 0 {
		t.Errorf("top = %+v", top)
	}
}
