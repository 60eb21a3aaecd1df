package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trapcrm/backend/internal/models"
	"github.com/trapcrm/backend/internal/normalize"
)

const jobColumns = `job_id, customer_id, site_id, asset_id, created_at, updated_at,
	scheduled_date, service_date, service_date_raw, source_filename, confidence_score,
	extracted_fields, missing_fields, status, invoice_number, manifest_number,
	customer_name, customer_address, phone, trap_size, gallons_pumped, gallons_pumped_raw,
	invoice_total_cents, invoice_total_raw, technician, truck_id, disposal_facility, notes`

// JobFilter narrows job listings and the dashboard aggregates. Date bounds
// are inclusive ISO dates compared against the typed service date.
type JobFilter struct {
	Status     *models.JobStatus
	CustomerID *uuid.UUID
	Technician *string
	Search     *string
	DateFrom   *string
	DateTo     *string
	Limit      int
	Offset     int
}

func buildJobWhere(f JobFilter) ([]string, []any) {
	var wheres []string
	var args []any
	if f.Status != nil {
		args = append(args, string(*f.Status))
		wheres = append(wheres, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.CustomerID != nil {
		args = append(args, f.CustomerID.String())
		wheres = append(wheres, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	// Technician filtering is substring match, so a bare first name
	// still hits "Marcus Williams".
	if f.Technician != nil && *f.Technician != "" {
		args = append(args, "%"+*f.Technician+"%")
		wheres = append(wheres, fmt.Sprintf("technician ILIKE $%d", len(args)))
	}
	if f.Search != nil && *f.Search != "" {
		args = append(args, "%"+*f.Search+"%")
		wheres = append(wheres, fmt.Sprintf("(invoice_number ILIKE $%d OR customer_name ILIKE $%d)", len(args), len(args)))
	}
	if f.DateFrom != nil && *f.DateFrom != "" {
		args = append(args, *f.DateFrom)
		wheres = append(wheres, fmt.Sprintf("service_date >= $%d", len(args)))
	}
	if f.DateTo != nil && *f.DateTo != "" {
		args = append(args, *f.DateTo)
		wheres = append(wheres, fmt.Sprintf("service_date <= $%d", len(args)))
	}
	return wheres, args
}

// SaveJob upserts by job id. The canonical stored strings for money,
// gallons and service date are re-derived from the typed values when those
// are present, so a stale raw string never survives an edit of the typed
// field.
func (s *Store) SaveJob(ctx context.Context, j *models.Job) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	now := time.Now().UTC()
	if j.CreatedAt.IsZero() {
		j.CreatedAt = now
	}
	j.UpdatedAt = now
	if j.Status == "" {
		j.Status = models.StatusDraft
	}

	if j.ServiceDate != nil {
		raw := normalize.FormatDateISO(*j.ServiceDate)
		j.ServiceDateRaw = &raw
	}
	if j.GallonsPumped != nil {
		raw := normalize.FormatGallons(*j.GallonsPumped)
		j.GallonsPumpedRaw = &raw
	}
	if j.InvoiceTotalCents != nil {
		raw := normalize.FormatCents(*j.InvoiceTotalCents)
		j.InvoiceTotalRaw = &raw
	}

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28)
		ON CONFLICT (job_id) DO UPDATE SET
			customer_id = EXCLUDED.customer_id,
			site_id = EXCLUDED.site_id,
			asset_id = EXCLUDED.asset_id,
			updated_at = EXCLUDED.updated_at,
			scheduled_date = EXCLUDED.scheduled_date,
			service_date = EXCLUDED.service_date,
			service_date_raw = EXCLUDED.service_date_raw,
			source_filename = EXCLUDED.source_filename,
			confidence_score = EXCLUDED.confidence_score,
			extracted_fields = EXCLUDED.extracted_fields,
			missing_fields = EXCLUDED.missing_fields,
			status = EXCLUDED.status,
			invoice_number = EXCLUDED.invoice_number,
			manifest_number = EXCLUDED.manifest_number,
			customer_name = EXCLUDED.customer_name,
			customer_address = EXCLUDED.customer_address,
			phone = EXCLUDED.phone,
			trap_size = EXCLUDED.trap_size,
			gallons_pumped = EXCLUDED.gallons_pumped,
			gallons_pumped_raw = EXCLUDED.gallons_pumped_raw,
			invoice_total_cents = EXCLUDED.invoice_total_cents,
			invoice_total_raw = EXCLUDED.invoice_total_raw,
			technician = EXCLUDED.technician,
			truck_id = EXCLUDED.truck_id,
			disposal_facility = EXCLUDED.disposal_facility,
			notes = EXCLUDED.notes
	`, j.ID.String(), encodeUUIDPtr(j.CustomerID), encodeUUIDPtr(j.SiteID), encodeUUIDPtr(j.AssetID),
		encodeTime(j.CreatedAt), encodeTime(j.UpdatedAt),
		encodeDatePtr(j.ScheduledDate), encodeDatePtr(j.ServiceDate), j.ServiceDateRaw,
		j.SourceFilename, j.ConfidenceScore, encodeFields(j.ExtractedFields), encodeFields(j.MissingFields),
		string(j.Status), j.InvoiceNumber, j.ManifestNumber, j.CustomerName, j.CustomerAddress,
		j.Phone, j.TrapSize, j.GallonsPumped, j.GallonsPumpedRaw, j.InvoiceTotalCents, j.InvoiceTotalRaw,
		j.Technician, j.TruckID, j.DisposalFacility, j.Notes)
	return err
}

// LoadJob returns nil when no job has that id.
func (s *Store) LoadJob(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE job_id = $1`, id.String())
	j, err := scanJob(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return j, err
}

// clampPage applies the paging bounds: default 100 per page, cap 200.
func clampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = 100
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (s *Store) ListJobs(ctx context.Context, f JobFilter) ([]models.Job, error) {
	f.Limit, f.Offset = clampPage(f.Limit, f.Offset)

	query := `SELECT ` + jobColumns + ` FROM jobs`
	wheres, args := buildJobWhere(f)
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT $" + fmt.Sprint(len(args)+1) + " OFFSET $" + fmt.Sprint(len(args)+2)
	args = append(args, f.Limit, f.Offset)

	return s.queryJobs(ctx, query, args)
}

// listJobsUnpaged feeds the dashboard aggregates: same filter semantics as
// ListJobs but no limit.
func (s *Store) listJobsUnpaged(ctx context.Context, f JobFilter) ([]models.Job, error) {
	query := `SELECT ` + jobColumns + ` FROM jobs`
	wheres, args := buildJobWhere(f)
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY created_at DESC"
	return s.queryJobs(ctx, query, args)
}

func (s *Store) queryJobs(ctx context.Context, query string, args []any) ([]models.Job, error) {
	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

// CountJobs counts the rows the filter matches, ignoring pagination.
func (s *Store) CountJobs(ctx context.Context, f JobFilter) (int, error) {
	query := `SELECT COUNT(*) FROM jobs`
	wheres, args := buildJobWhere(f)
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	var n int
	err := s.Pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

// UpdateJob applies a partial patch and returns the updated job, nil when
// the job does not exist.
func (s *Store) UpdateJob(ctx context.Context, id uuid.UUID, patch models.JobPatch) (*models.Job, error) {
	j, err := s.LoadJob(ctx, id)
	if err != nil || j == nil {
		return nil, err
	}
	patch.Apply(j)
	if err := s.SaveJob(ctx, j); err != nil {
		return nil, err
	}
	return j, nil
}

// DeleteJob removes the job row only. Documents keep their job_id and
// become orphans; they stay downloadable by document id.
func (s *Store) DeleteJob(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM jobs WHERE job_id = $1`, id.String())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// UniqueTechnicians lists the distinct technician names on record.
func (s *Store) UniqueTechnicians(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT DISTINCT technician FROM jobs
		WHERE technician IS NOT NULL AND technician <> ''
		ORDER BY technician ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanJob(row pgx.Row) (*models.Job, error) {
	var (
		j                              models.Job
		id, created, updated, status   string
		customerID, siteID, assetID    *string
		scheduledDate, serviceDate     *string
		extractedFields, missingFields string
	)
	if err := row.Scan(&id, &customerID, &siteID, &assetID, &created, &updated,
		&scheduledDate, &serviceDate, &j.ServiceDateRaw, &j.SourceFilename, &j.ConfidenceScore,
		&extractedFields, &missingFields, &status, &j.InvoiceNumber, &j.ManifestNumber,
		&j.CustomerName, &j.CustomerAddress, &j.Phone, &j.TrapSize, &j.GallonsPumped,
		&j.GallonsPumpedRaw, &j.InvoiceTotalCents, &j.InvoiceTotalRaw,
		&j.Technician, &j.TruckID, &j.DisposalFacility, &j.Notes); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("job id: %w", err)
	}
	j.ID = parsed
	if j.CustomerID, err = decodeUUIDPtr(customerID); err != nil {
		return nil, err
	}
	if j.SiteID, err = decodeUUIDPtr(siteID); err != nil {
		return nil, err
	}
	if j.AssetID, err = decodeUUIDPtr(assetID); err != nil {
		return nil, err
	}
	if j.CreatedAt, err = decodeTime(created); err != nil {
		return nil, err
	}
	if j.UpdatedAt, err = decodeTime(updated); err != nil {
		return nil, err
	}
	j.ScheduledDate = decodeDatePtr(scheduledDate)
	j.ServiceDate = decodeDatePtr(serviceDate)
	j.ExtractedFields = decodeFields(extractedFields)
	j.MissingFields = decodeFields(missingFields)
	if j.Status, err = models.ParseJobStatus(status); err != nil {
		return nil, err
	}
	return &j, nil
}
