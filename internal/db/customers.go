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

const customerColumns = `customer_id, name, legal_name, phone, email, billing_address,
	service_address, city, state, zip_code, notes, is_active, created_at, updated_at`

func (s *Store) CreateCustomer(ctx context.Context, c *models.Customer) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	now := time.Now().UTC()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO customers (`+customerColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`, c.ID.String(), c.Name, c.LegalName, c.Phone, c.Email, c.BillingAddress,
		c.ServiceAddress, c.City, c.State, c.ZipCode, c.Notes, c.IsActive,
		encodeTime(c.CreatedAt), encodeTime(c.UpdatedAt))
	return err
}

// GetCustomer returns nil when no customer has that id.
func (s *Store) GetCustomer(ctx context.Context, id uuid.UUID) (*models.Customer, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE customer_id = $1`, id.String())
	c, err := scanCustomer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return c, err
}

func (s *Store) ListCustomers(ctx context.Context, search string, includeInactive bool) ([]models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customers`
	var args []any
	var wheres []string
	if !includeInactive {
		wheres = append(wheres, "is_active = TRUE")
	}
	if search != "" {
		args = append(args, "%"+search+"%")
		wheres = append(wheres, fmt.Sprintf("(name ILIKE $%d OR legal_name ILIKE $%d OR city ILIKE $%d)", len(args), len(args), len(args)))
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

	out := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// UpdateCustomer applies a partial patch and returns the updated row, nil
// when the customer does not exist.
func (s *Store) UpdateCustomer(ctx context.Context, id uuid.UUID, patch models.CustomerPatch) (*models.Customer, error) {
	c, err := s.GetCustomer(ctx, id)
	if err != nil || c == nil {
		return nil, err
	}
	patch.Apply(c)
	c.UpdatedAt = time.Now().UTC()

	_, err = s.Pool.Exec(ctx, `
		UPDATE customers SET name = $1, legal_name = $2, phone = $3, email = $4,
			billing_address = $5, service_address = $6, city = $7, state = $8,
			zip_code = $9, notes = $10, is_active = $11, updated_at = $12
		WHERE customer_id = $13
	`, c.Name, c.LegalName, c.Phone, c.Email, c.BillingAddress, c.ServiceAddress,
		c.City, c.State, c.ZipCode, c.Notes, c.IsActive, encodeTime(c.UpdatedAt), id.String())
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteCustomer soft-deletes: the row stays so jobs keep their customer
// history, only the active flag flips.
func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) (bool, error) {
	tag, err := s.Pool.Exec(ctx, `
		UPDATE customers SET is_active = FALSE, updated_at = $1 WHERE customer_id = $2
	`, encodeTime(time.Now().UTC()), id.String())
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

// CountCustomers counts active customers only.
func (s *Store) CountCustomers(ctx context.Context) (int, error) {
	var n int
	err := s.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM customers WHERE is_active = TRUE`).Scan(&n)
	return n, err
}

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var (
		c                    models.Customer
		id, created, updated string
	)
	if err := row.Scan(&id, &c.Name, &c.LegalName, &c.Phone, &c.Email, &c.BillingAddress,
		&c.ServiceAddress, &c.City, &c.State, &c.ZipCode, &c.Notes, &c.IsActive,
		&created, &updated); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("customer id: %w", err)
	}
	c.ID = parsed
	if c.CreatedAt, err = decodeTime(created); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = decodeTime(updated); err != nil {
		return nil, err
	}
	return &c, nil
}
