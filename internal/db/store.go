// Package db is the persistence layer. All dates and timestamps are stored
// as ISO-8601 text so date filters and ordering reduce to string
// comparisons, enums are stored under their display labels, and the
// extraction provenance lists are stored as JSON arrays in text columns.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/trapcrm/backend/internal/normalize"
)

type Store struct {
	Pool *pgxpool.Pool

	// DocumentsDir is where uploaded document files land.
	DocumentsDir string
}

func New(ctx context.Context, databaseURL, documentsDir string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool, DocumentsDir: documentsDir}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		legal_name TEXT,
		phone TEXT,
		email TEXT,
		billing_address TEXT,
		service_address TEXT,
		city TEXT,
		state TEXT,
		zip_code TEXT,
		notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sites (
		site_id TEXT PRIMARY KEY,
		customer_id TEXT,
		name TEXT NOT NULL,
		address TEXT,
		city TEXT,
		state TEXT,
		zip_code TEXT,
		municipality TEXT,
		sewer_authority TEXT,
		permit_number TEXT,
		trap_type TEXT,
		trap_size TEXT,
		trap_location TEXT,
		service_frequency TEXT,
		service_frequency_days INTEGER,
		last_service_date TEXT,
		next_service_date TEXT,
		access_notes TEXT,
		notes TEXT,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS jobs (
		job_id TEXT PRIMARY KEY,
		customer_id TEXT,
		site_id TEXT,
		asset_id TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		scheduled_date TEXT,
		service_date TEXT,
		service_date_raw TEXT,
		source_filename TEXT,
		confidence_score INTEGER NOT NULL DEFAULT 0,
		extracted_fields TEXT NOT NULL DEFAULT '[]',
		missing_fields TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'Draft',
		invoice_number TEXT,
		manifest_number TEXT,
		customer_name TEXT,
		customer_address TEXT,
		phone TEXT,
		trap_size TEXT,
		gallons_pumped DOUBLE PRECISION,
		gallons_pumped_raw TEXT,
		invoice_total_cents BIGINT,
		invoice_total_raw TEXT,
		technician TEXT,
		truck_id TEXT,
		disposal_facility TEXT,
		notes TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		doc_id TEXT PRIMARY KEY,
		job_id TEXT,
		doc_type TEXT NOT NULL DEFAULT 'other',
		filename TEXT NOT NULL,
		original_filename TEXT,
		file_size BIGINT NOT NULL DEFAULT 0,
		mime_type TEXT,
		stored_path TEXT,
		content_sha256 TEXT,
		notes TEXT,
		created_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_status ON jobs (status)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_customer ON jobs (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_jobs_service_date ON jobs (service_date)`,
	`CREATE INDEX IF NOT EXISTS idx_sites_customer ON sites (customer_id)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_job ON documents (job_id)`,
}

// Init creates the tables and indexes when they do not exist yet.
func (s *Store) Init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// Reset drops every table and recreates the schema. Admin-only.
func (s *Store) Reset(ctx context.Context) error {
	for _, table := range []string{"documents", "jobs", "sites", "customers"} {
		if _, err := s.Pool.Exec(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return fmt.Errorf("reset: drop %s: %w", table, err)
		}
	}
	return s.Init(ctx)
}

// Text encoding helpers. Timestamps round-trip through RFC 3339 UTC, dates
// through YYYY-MM-DD.

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func decodeTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("timestamp %q: %w", s, err)
	}
	return t, nil
}

func encodeDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := normalize.FormatDateISO(*t)
	return &s
}

func decodeDatePtr(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	if d, ok := normalize.DateFromString(*s); ok {
		return &d
	}
	return nil
}

func encodeUUIDPtr(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func decodeUUIDPtr(s *string) (*uuid.UUID, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil, fmt.Errorf("uuid %q: %w", *s, err)
	}
	return &id, nil
}

func encodeFields(fields []string) string {
	if fields == nil {
		fields = []string{}
	}
	b, _ := json.Marshal(fields)
	return string(b)
}

func decodeFields(raw string) []string {
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// todayISO is the date boundary used by overdue checks.
func todayISO() string {
	return normalize.FormatDateISO(time.Now().UTC())
}
