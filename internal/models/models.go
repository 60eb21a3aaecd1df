// Package models defines the persisted entities of the trap CRM: customers,
// their service sites, jobs (one grease-trap service visit each) and the
// documents attached to jobs, plus the derived dashboard types.
//
// Ambiguous job fields (money, quantity, date) are stored as a pair: a
// typed value and the original string from parsing. The typed value is
// authoritative when present; the string is the display fallback when
// typed parsing failed. Collapsing the pair would lose records whose source
// text never parsed cleanly.
package models

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trapcrm/backend/internal/normalize"
	"github.com/trapcrm/backend/internal/parse"
)

type Customer struct {
	ID             uuid.UUID `json:"customer_id"`
	Name           string    `json:"name"`
	LegalName      *string   `json:"legal_name"`
	Phone          *string   `json:"phone"`
	Email          *string   `json:"email"`
	BillingAddress *string   `json:"billing_address"`
	ServiceAddress *string   `json:"service_address"`
	City           *string   `json:"city"`
	State          *string   `json:"state"`
	ZipCode        *string   `json:"zip_code"`
	Notes          *string   `json:"notes"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// DisplayName prefers the DBA name, then the legal name.
func (c *Customer) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	if c.LegalName != nil && *c.LegalName != "" {
		return *c.LegalName
	}
	return "Unnamed Customer"
}

type Site struct {
	ID                   uuid.UUID         `json:"site_id"`
	CustomerID           *uuid.UUID        `json:"customer_id"`
	Name                 string            `json:"name"`
	Address              *string           `json:"address"`
	City                 *string           `json:"city"`
	State                *string           `json:"state"`
	ZipCode              *string           `json:"zip_code"`
	Municipality         *string           `json:"municipality"`
	SewerAuthority       *string           `json:"sewer_authority"`
	PermitNumber         *string           `json:"permit_number"`
	TrapType             *TrapType         `json:"trap_type"`
	TrapSize             *string           `json:"trap_size"`
	TrapLocation         *string           `json:"trap_location"`
	ServiceFrequency     *ServiceFrequency `json:"service_frequency"`
	ServiceFrequencyDays *int              `json:"service_frequency_days"`
	LastServiceDate      *time.Time        `json:"-"`
	NextServiceDate      *time.Time        `json:"-"`
	AccessNotes          *string           `json:"access_notes"`
	Notes                *string           `json:"notes"`
	IsActive             bool              `json:"is_active"`
	CreatedAt            time.Time         `json:"created_at"`
	UpdatedAt            time.Time         `json:"updated_at"`
}

// IsServiceOverdue reports whether now is strictly past the scheduled
// next service date.
func (s *Site) IsServiceOverdue(now time.Time) bool {
	if s.NextServiceDate == nil {
		return false
	}
	return dateOnly(now).After(dateOnly(*s.NextServiceDate))
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// MarshalJSON adds ISO-formatted service dates.
func (s Site) MarshalJSON() ([]byte, error) {
	type alias Site
	return json.Marshal(struct {
		alias
		LastServiceDate *string `json:"last_service_date"`
		NextServiceDate *string `json:"next_service_date"`
	}{
		alias:           alias(s),
		LastServiceDate: isoDatePtr(s.LastServiceDate),
		NextServiceDate: isoDatePtr(s.NextServiceDate),
	})
}

// Job is one service event. It is constructible either from a ParseResult
// (imported invoice text) or from direct user entry.
type Job struct {
	ID         uuid.UUID  `json:"job_id"`
	CustomerID *uuid.UUID `json:"customer_id"`
	SiteID     *uuid.UUID `json:"site_id"`
	AssetID    *uuid.UUID `json:"asset_id"`

	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	ScheduledDate *time.Time `json:"-"`
	ServiceDate   *time.Time `json:"-"` // typed service date; raw fallback below

	SourceFilename  *string  `json:"source_filename"`
	ConfidenceScore int      `json:"confidence_score"`
	ExtractedFields []string `json:"extracted_fields"`
	MissingFields   []string `json:"missing_fields"`

	Status JobStatus `json:"status"`

	InvoiceNumber   *string `json:"invoice_number"`
	ManifestNumber  *string `json:"manifest_number"`
	ServiceDateRaw  *string `json:"service_date_raw"`
	CustomerName    *string `json:"customer_name"`
	CustomerAddress *string `json:"customer_address"`
	Phone           *string `json:"phone"`
	TrapSize        *string `json:"trap_size"`

	GallonsPumped     *float64 `json:"gallons_pumped"`
	InvoiceTotalCents *int64   `json:"invoice_total_cents"`
	GallonsPumpedRaw  *string  `json:"gallons_pumped_raw"`
	InvoiceTotalRaw   *string  `json:"invoice_total_raw"`

	Technician       *string `json:"technician"`
	TruckID          *string `json:"truck_id"`
	DisposalFacility *string `json:"disposal_facility"`
	Notes            *string `json:"notes"`
}

// NewJob returns a Draft job with a fresh id and timestamps.
func NewJob() *Job {
	now := time.Now().UTC()
	return &Job{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
		Status:    StatusDraft,
	}
}

// JobFromParseResult binds a fresh job to extraction provenance and
// derives the typed money/quantity/date values from the record strings.
// Strings that fail to normalize keep only their raw form.
func JobFromParseResult(res parse.Result, sourceFilename *string) *Job {
	rec := res.Record
	job := NewJob()
	job.SourceFilename = sourceFilename
	job.ConfidenceScore = res.ConfidenceScore
	job.ExtractedFields = append([]string(nil), res.ExtractedFields...)
	job.MissingFields = append([]string(nil), res.MissingFields...)

	job.InvoiceNumber = rec.InvoiceNumber
	job.ServiceDateRaw = rec.ServiceDate
	job.CustomerName = rec.CustomerName
	job.CustomerAddress = rec.CustomerAddress
	job.Phone = rec.Phone
	job.TrapSize = rec.TrapSize
	job.GallonsPumpedRaw = rec.GallonsPumped
	job.InvoiceTotalRaw = rec.InvoiceTotal
	job.Technician = rec.Technician
	job.DisposalFacility = rec.DisposalFacility
	job.Notes = rec.Notes

	if rec.GallonsPumped != nil {
		if v, ok := normalize.GallonsFromString(*rec.GallonsPumped); ok {
			job.GallonsPumped = &v
		}
	}
	if rec.InvoiceTotal != nil {
		if c, ok := normalize.CentsFromString(*rec.InvoiceTotal); ok {
			job.InvoiceTotalCents = &c
		}
	}
	if rec.ServiceDate != nil {
		if d, ok := normalize.DateFromString(*rec.ServiceDate); ok {
			job.ServiceDate = &d
		}
	}
	return job
}

// CanVerify reports whether the job has the fields required for the
// Verified transition: invoice number, a service date (typed or raw) and
// a customer name.
func (j *Job) CanVerify() bool {
	return len(j.MissingRequiredFields()) == 0
}

// MissingRequiredFields names the required fields still empty.
func (j *Job) MissingRequiredFields() []string {
	var missing []string
	if !hasText(j.InvoiceNumber) {
		missing = append(missing, "invoice_number")
	}
	if j.ServiceDate == nil && !hasText(j.ServiceDateRaw) {
		missing = append(missing, "service_date")
	}
	if !hasText(j.CustomerName) {
		missing = append(missing, "customer_name")
	}
	return missing
}

// InvoiceTotalDisplay prefers the typed cents value, falling back to the
// raw parsed string, then an em dash.
func (j *Job) InvoiceTotalDisplay() string {
	if j.InvoiceTotalCents != nil {
		return normalize.FormatCents(*j.InvoiceTotalCents)
	}
	if hasText(j.InvoiceTotalRaw) {
		return *j.InvoiceTotalRaw
	}
	return "—"
}

func (j *Job) GallonsDisplay() string {
	if j.GallonsPumped != nil {
		return normalize.FormatGallons(*j.GallonsPumped)
	}
	if hasText(j.GallonsPumpedRaw) {
		return *j.GallonsPumpedRaw
	}
	return "—"
}

func (j *Job) ServiceDateDisplay() string {
	if j.ServiceDate != nil {
		return normalize.FormatDateDisplay(*j.ServiceDate)
	}
	if hasText(j.ServiceDateRaw) {
		return *j.ServiceDateRaw
	}
	return "—"
}

// MarshalJSON adds ISO dates and the derived display strings, and keeps
// the provenance field lists as [] rather than null.
func (j Job) MarshalJSON() ([]byte, error) {
	type alias Job
	a := alias(j)
	if a.ExtractedFields == nil {
		a.ExtractedFields = []string{}
	}
	if a.MissingFields == nil {
		a.MissingFields = []string{}
	}
	return json.Marshal(struct {
		alias
		ScheduledDate       *string `json:"scheduled_date"`
		ServiceDate         *string `json:"service_date"`
		InvoiceTotalDisplay string  `json:"invoice_total_display"`
		GallonsDisplay      string  `json:"gallons_display"`
		ServiceDateDisplay  string  `json:"service_date_display"`
	}{
		alias:               a,
		ScheduledDate:       isoDatePtr(j.ScheduledDate),
		ServiceDate:         isoDatePtr(j.ServiceDate),
		InvoiceTotalDisplay: j.InvoiceTotalDisplay(),
		GallonsDisplay:      j.GallonsDisplay(),
		ServiceDateDisplay:  j.ServiceDateDisplay(),
	})
}

type Document struct {
	ID               uuid.UUID    `json:"doc_id"`
	JobID            *uuid.UUID   `json:"job_id"`
	Type             DocumentType `json:"doc_type"`
	Filename         string       `json:"filename"`
	OriginalFilename *string      `json:"original_filename"`
	FileSize         int64        `json:"file_size"`
	MimeType         *string      `json:"mime_type"`
	StoredPath       *string      `json:"stored_path"`
	ContentSHA256    *string      `json:"content_sha256"`
	Notes            *string      `json:"notes"`
	CreatedAt        time.Time    `json:"created_at"`
}

// JobPacket tracks the completeness of a job's document packet. A packet
// is complete when it has both an invoice and a manifest.
type JobPacket struct {
	JobID         uuid.UUID `json:"job_id"`
	HasInvoice    bool      `json:"has_invoice"`
	HasManifest   bool      `json:"has_manifest"`
	HasInspection bool      `json:"has_inspection"`
	HasPhotos     bool      `json:"has_photos"`
	HasSignature  bool      `json:"has_signature"`
}

func (p *JobPacket) IsComplete() bool {
	return p.HasInvoice && p.HasManifest
}

func (p *JobPacket) CompletenessPercentage() int {
	n := 0
	if p.HasInvoice {
		n++
	}
	if p.HasManifest {
		n++
	}
	return n * 100 / 2
}

func (p JobPacket) MarshalJSON() ([]byte, error) {
	type alias JobPacket
	return json.Marshal(struct {
		alias
		CompletenessPercentage int  `json:"completeness_percentage"`
		IsComplete             bool `json:"is_complete"`
	}{alias(p), p.CompletenessPercentage(), p.IsComplete()})
}

// DashboardKPIs is recomputed on each query, never persisted.
type DashboardKPIs struct {
	JobsCompleted         int     `json:"jobs_completed"`
	JobsScheduled         int     `json:"jobs_scheduled"`
	JobsInProgress        int     `json:"jobs_in_progress"`
	TotalRevenueCents     int64   `json:"total_revenue_cents"`
	TotalGallons          float64 `json:"total_gallons"`
	AvgRevenuePerJobCents int64   `json:"avg_revenue_per_job_cents"`
	AvgGallonsPerJob      float64 `json:"avg_gallons_per_job"`
	DocsMissingCount      int     `json:"docs_missing_count"`
	OverdueServices       int     `json:"overdue_services"`
	CustomerCount         int     `json:"customer_count"`
	SiteCount             int     `json:"site_count"`
}

// MarshalJSON adds the dollar-denominated revenue fields kept for older
// dashboard consumers.
func (k DashboardKPIs) MarshalJSON() ([]byte, error) {
	type alias DashboardKPIs
	return json.Marshal(struct {
		alias
		TotalRevenue     float64 `json:"total_revenue"`
		AvgRevenuePerJob float64 `json:"avg_revenue_per_job"`
	}{alias(k), float64(k.TotalRevenueCents) / 100, float64(k.AvgRevenuePerJobCents) / 100})
}

// TimeSeriesPoint is one bucket of a dashboard chart.
type TimeSeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
	Label *string `json:"label,omitempty"`
}

// CustomerRevenue is one row of the top-customers ranking, grouped by the
// job's denormalized customer name.
type CustomerRevenue struct {
	CustomerName string  `json:"customer_name"`
	Revenue      float64 `json:"revenue"`
}

func hasText(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func isoDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := normalize.FormatDateISO(*t)
	return &s
}
