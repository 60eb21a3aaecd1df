package db

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/trapcrm/backend/internal/models"
	"github.com/trapcrm/backend/internal/utils"
)

const documentColumns = `doc_id, job_id, doc_type, filename, original_filename,
	file_size, mime_type, stored_path, content_sha256, notes, created_at`

// SaveDocument writes the file under DocumentsDir as <doc_id>_<filename>
// and then inserts the record. The file goes first: an insert failure
// leaves at worst an unreferenced file, never a record pointing at nothing.
func (s *Store) SaveDocument(ctx context.Context, doc *models.Document, content []byte) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if doc.Type == "" {
		doc.Type = models.DocOther
	}
	doc.Filename = utils.SafeFilename(doc.Filename)
	doc.FileSize = int64(len(content))
	sum := utils.SHA256Hex(content)
	doc.ContentSHA256 = &sum

	if err := os.MkdirAll(s.DocumentsDir, 0o755); err != nil {
		return fmt.Errorf("documents dir: %w", err)
	}
	path := filepath.Join(s.DocumentsDir, doc.ID.String()+"_"+doc.Filename)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write document: %w", err)
	}
	doc.StoredPath = &path

	_, err := s.Pool.Exec(ctx, `
		INSERT INTO documents (`+documentColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, doc.ID.String(), encodeUUIDPtr(doc.JobID), string(doc.Type), doc.Filename,
		doc.OriginalFilename, doc.FileSize, doc.MimeType, doc.StoredPath,
		doc.ContentSHA256, doc.Notes, encodeTime(doc.CreatedAt))
	return err
}

// GetDocument returns nil when no document has that id.
func (s *Store) GetDocument(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	row := s.Pool.QueryRow(ctx, `SELECT `+documentColumns+` FROM documents WHERE doc_id = $1`, id.String())
	doc, err := scanDocument(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return doc, err
}

// ListDocuments returns documents newest first, optionally narrowed to
// one job and one document type.
func (s *Store) ListDocuments(ctx context.Context, jobID *uuid.UUID, docType *models.DocumentType) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents`
	var args []any
	var wheres []string
	if jobID != nil {
		args = append(args, jobID.String())
		wheres = append(wheres, fmt.Sprintf("job_id = $%d", len(args)))
	}
	if docType != nil {
		args = append(args, string(*docType))
		wheres = append(wheres, fmt.Sprintf("doc_type = $%d", len(args)))
	}
	if len(wheres) > 0 {
		query += " WHERE " + strings.Join(wheres, " AND ")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *doc)
	}
	return out, rows.Err()
}

// DeleteDocument removes the record and best-effort removes the stored
// file; a missing file does not fail the delete.
func (s *Store) DeleteDocument(ctx context.Context, id uuid.UUID) (bool, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil || doc == nil {
		return false, err
	}
	tag, err := s.Pool.Exec(ctx, `DELETE FROM documents WHERE doc_id = $1`, id.String())
	if err != nil {
		return false, err
	}
	if doc.StoredPath != nil {
		_ = os.Remove(*doc.StoredPath)
	}
	return tag.RowsAffected() > 0, nil
}

// JobPacketFor reports which document types a job has on file.
func (s *Store) JobPacketFor(ctx context.Context, jobID uuid.UUID) (*models.JobPacket, error) {
	docs, err := s.ListDocuments(ctx, &jobID, nil)
	if err != nil {
		return nil, err
	}
	packet := &models.JobPacket{JobID: jobID}
	for i := range docs {
		switch docs[i].Type {
		case models.DocInvoice:
			packet.HasInvoice = true
		case models.DocManifest:
			packet.HasManifest = true
		case models.DocInspection:
			packet.HasInspection = true
		case models.DocPhoto:
			packet.HasPhotos = true
		case models.DocSignature:
			packet.HasSignature = true
		}
	}
	return packet, nil
}

func scanDocument(row pgx.Row) (*models.Document, error) {
	var (
		doc            models.Document
		id, created    string
		jobID, docType *string
	)
	if err := row.Scan(&id, &jobID, &docType, &doc.Filename, &doc.OriginalFilename,
		&doc.FileSize, &doc.MimeType, &doc.StoredPath, &doc.ContentSHA256,
		&doc.Notes, &created); err != nil {
		return nil, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("document id: %w", err)
	}
	doc.ID = parsed
	if doc.JobID, err = decodeUUIDPtr(jobID); err != nil {
		return nil, err
	}
	if docType != nil {
		if doc.Type, err = models.ParseDocumentType(*docType); err != nil {
			return nil, err
		}
	}
	if doc.CreatedAt, err = decodeTime(created); err != nil {
		return nil, err
	}
	return &doc, nil
}
