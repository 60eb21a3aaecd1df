// Package service holds application logic that sits above the store:
// currently the XLSX export.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"github.com/trapcrm/backend/internal/db"
	"github.com/trapcrm/backend/internal/models"
)

type ExportService struct {
	store  *db.Store
	logger zerolog.Logger
}

func NewExportService(store *db.Store, logger zerolog.Logger) *ExportService {
	return &ExportService{store: store, logger: logger}
}

var jobExportHeaders = []string{
	"Invoice #",
	"Service Date",
	"Customer",
	"Address",
	"Technician",
	"Gallons Pumped",
	"Invoice Total",
	"Status",
	"Confidence",
	"Disposal Facility",
}

// JobsXLSX renders the filtered job list as an XLSX workbook. Money,
// gallons and dates use the same display strings as the JSON API, so an
// unparsed raw value exports as-is instead of dropping out.
func (s *ExportService) JobsXLSX(ctx context.Context, filter db.JobFilter) ([]byte, error) {
	start := time.Now()

	// The export ignores pagination; cap high enough for a full book.
	filter.Limit = 200
	filter.Offset = 0
	var jobs []models.Job
	for {
		page, err := s.store.ListJobs(ctx, filter)
		if err != nil {
			return nil, fmt.Errorf("query jobs: %w", err)
		}
		jobs = append(jobs, page...)
		if len(page) < filter.Limit {
			break
		}
		filter.Offset += filter.Limit
	}

	f := excelize.NewFile()
	const sheet = "Jobs"
	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	for i, h := range jobExportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for rowIdx := range jobs {
		j := &jobs[rowIdx]
		row := rowIdx + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, deref(j.InvoiceNumber))
		write(2, j.ServiceDateDisplay())
		write(3, deref(j.CustomerName))
		write(4, deref(j.CustomerAddress))
		write(5, deref(j.Technician))
		write(6, j.GallonsDisplay())
		write(7, j.InvoiceTotalDisplay())
		write(8, string(j.Status))
		write(9, j.ConfidenceScore)
		write(10, deref(j.DisposalFacility))
	}

	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 14)
	_ = f.SetColWidth(sheet, "C", "D", 32)
	_ = f.SetColWidth(sheet, "E", "E", 20)
	_ = f.SetColWidth(sheet, "F", "G", 16)
	_ = f.SetColWidth(sheet, "H", "J", 14)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info().
		Int("rows", len(jobs)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("jobs export written")
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
