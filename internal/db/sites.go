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
)

const siteColumns = `site_id, customer_id, name, address, city, state, zip_code,
	municipality, sewer_authority, permit_number, trap_type, trap_size, trap_location,
	service_frequency, service_frequency_days, last_service_date, next_service_date,
	access_notes, notes, is_active, created_at, updated_at`

func (s *Store) CreateSite(ctx context.Context, site *models.Site) error {
	if site.ID == uuid.Nil {
		site.ID = uuid.New()
	}
	now := time.Now().UTC()
	if site.CreatedAt.IsZero() {
		site.CreatedAt = now
	}
	site.UpdatedAt = now

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO sites (`+siteColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21,$22)
	`, site.ID.String(), encodeUUIDPtr(site.CustomerID), site.Name, site.Address, site.City,
		site.State, site.ZipCode, site.Municipality, site.SewerAuthority, site.PermitNumber,
		enumPtr(site.TrapType), site.TrapSize, site.TrapLocation, enumPtr(site.ServiceFrequency),
		site.ServiceFrequencyDays, encodeDatePtr(site.LastServiceDate), encodeDatePtr(site.NextServiceDate),
		site.AccessNotes, site.Notes, site.IsActive, encodeTime(site.CreatedAt), encodeTime(site.UpdatedAt))
	return err
}

// GetSite returns nil when no site has that id.
func (s *Store) GetSite(ctx context.Context, id uuid.UUID) (*models.Site, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+siteColumns+` FROM sites WHERE site_id = $1`, id.String())
	site, err := scanSite(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return site, err
}

func (s *Store) ListSites(ctx context.Context, customerID *uuid.UUID, includeInactive bool) ([]models.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM sites`
	var args []any
	var wheres []string
	if !includeInactive {
		wheres = append(wheres, "is_active = TRUE")
	}
	if customerID != nil {
		args = append(args, customerID.String())
		wheres = append(wheres, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += " ORDER BY name ASC"

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *site)
	}
	return out, rows.Err()
}

// ListOverdueSites returns active sites whose next service date is strictly
// before today. ISO text dates make this a plain string comparison.
func (s *Store) ListOverdueSites(ctx context.Context) ([]models.Site, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT `+siteColumns+` FROM sites
		WHERE is_active = TRUE AND next_service_date IS NOT NULL AND next_service_date < $1
		ORDER BY next_service_date ASC
	`, todayISO())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *site)
	}
	return out, rows.Err()
}

// UpdateSite applies a partial patch and returns the updated row, nil when
// the site does not exist.
func (s *Store) UpdateSite(ctx context.Context, id uuid.UUID, patch models.SitePatch) (*models.Site, error) {
	site, err := s.GetSite(ctx, id)
	if err != nil || site == nil {
		return nil, err
	}
	patch.Apply(site)
	site.UpdatedAt = time.Now().UTC()

	_, err = s.Pool.Exec(ctx, `
		UPDATE sites SET customer_id = $1, name = $2, address = $3, city = $4, state = $5,
			zip_code = $6, municipality = $7, sewer_authority = $8, permit_number = $9,
			trap_type = $10, trap_size = $11, trap_location = $12, service_frequency = $13,
			service_frequency_days = $14, last_service_date = $15, next_service_date = $16,
			access_notes = $17, notes = $18, is_active = $19, updated_at = $20
		WHERE site_id = $21
	`, encodeUUIDPtr(site.CustomerID), site.Name, site.Address, site.City, site.State,
		site.ZipCode, site.Municipality, site.SewerAuthority, site.PermitNumber,
		enumPtr(site.TrapType), site.TrapSize, site.TrapLocation, enumPtr(site.ServiceFrequency),
		site.ServiceFrequencyDays, encodeDatePtr(site.LastServiceDate), encodeDatePtr(site.NextServiceDate),
		site.AccessNotes, site.Notes, site.IsActive, encodeTime(site.UpdatedAt), id.String())
	if err != nil {
		return nil, err
	}
	return site, nil
}

func (s *Store) DeleteSite(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM sites WHERE site_id = $1`, id.String())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountSites counts active sites only.
func (s *Store) CountSites(ctx context.Context) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM sites WHERE is_active = TRUE`).Scan(&n)
	return n, err
}

// CountOverdueSites is the dashboard's overdue services figure.
func (s *Store) CountOverdueSites(ctx context.Context) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM sites
		WHERE is_active = TRUE AND next_service_date IS NOT NULL AND next_service_date < $1
	`, todayISO()).Scan(&n)
	return n, err
}

func enumPtr[T ~string](v *T) *string {
	if v == nil {
		return nil
	}
	s := string(*v)
	return &s
}

func scanSite(row pgx.Row) (*models.Site, error) {
	var (
		site                     models.Site
		id, created, updated     string
		customerID               *string
		trapType, frequency      *string
		lastService, nextService *string
	)
	if err := row.Scan(&id, &customerID, &site.Name, &site.Address, &site.City, &site.State,
		&site.ZipCode, &site.Municipality, &site.SewerAuthority, &site.PermitNumber,
		&trapType, &site.TrapSize, &site.TrapLocation, &frequency, &site.ServiceFrequencyDays,
		&lastService, &nextService, &site.AccessNotes, &site.Notes, &site.IsActive,
		&created, &updated); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("site id: %w", err)
	}
	site.ID = parsed
	if site.CustomerID, err = decodeUUIDPtr(customerID); err != nil {
		return nil, err
	}
	if trapType != nil {
		t := models.TrapType(*trapType)
		site.TrapType = &t
	}
	if frequency != nil {
		f, err := models.ParseServiceFrequency(*frequency)
		if err != nil {
			return nil, err
		}
		site.ServiceFrequency = &f
	}
	site.LastServiceDate = decodeDatePtr(lastService)
	site.NextServiceDate = decodeDatePtr(nextService)
	if site.CreatedAt, err = decodeTime(created); err != nil {
		return nil, err
	}
	if site.UpdatedAt, err = decodeTime(updated); err != nil {
		return nil, err
	}
	return &site, nil
}
