package db

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/trapcrm/backend/internal/analytics"
	"github.com/trapcrm/backend/internal/models"
)

// The dashboard queries fetch the filtered job rows and aggregate in Go.
// Revenue and gallons need the raw-string fallback normalization, which
// lives in the analytics package, so SQL-side SUMs would disagree with the
// rest of the app on partially parsed rows.

// KPIFilter narrows the dashboard aggregates. Same semantics as JobFilter
// minus pagination.
type KPIFilter struct {
	DateFrom   *string
	DateTo     *string
	CustomerID *uuid.UUID
	Technician *string
}

func (f KPIFilter) jobFilter() JobFilter {
	return JobFilter{
		CustomerID: f.CustomerID,
		Technician: f.Technician,
		DateFrom:   f.DateFrom,
		DateTo:     f.DateTo,
	}
}

// GetDashboardKPIs computes the headline numbers. Job-derived figures
// honor the filter; overdue services and the customer/site counts are
// global.
func (s *Store) GetDashboardKPIs(ctx context.Context, f KPIFilter) (*models.DashboardKPIs, error) {
	jobs, err := s.listJobsUnpaged(ctx, f.jobFilter())
	if err != nil {
		return nil, err
	}

	kpis := &models.DashboardKPIs{}
	kpis.JobsCompleted, kpis.JobsScheduled, kpis.JobsInProgress = analytics.StatusCounts(jobs)

	// Totals and averages run over every matched job, not just the
	// completed ones: a Scheduled job with an invoice total counts.
	kpis.TotalRevenueCents, kpis.TotalGallons = analytics.Totals(jobs)
	if n := len(jobs); n > 0 {
		kpis.AvgRevenuePerJobCents = kpis.TotalRevenueCents / int64(n)
		kpis.AvgGallonsPerJob = kpis.TotalGallons / float64(n)
	}

	if kpis.DocsMissingCount, err = s.countJobsMissingDocs(ctx, f.jobFilter()); err != nil {
		return nil, err
	}
	if kpis.OverdueServices, err = s.CountOverdueSites(ctx); err != nil {
		return nil, err
	}
	if kpis.CustomerCount, err = s.CountCustomers(ctx); err != nil {
		return nil, err
	}
	if kpis.SiteCount, err = s.CountSites(ctx); err != nil {
		return nil, err
	}
	return kpis, nil
}

// countJobsMissingDocs counts filtered jobs with neither an invoice nor a
// manifest document attached.
func (s *Store) countJobsMissingDocs(ctx context.Context, f JobFilter) (int, error) {
	query := `SELECT COUNT(*) FROM jobs`
	wheres, args := buildJobWhere(f)
	wheres = append(wheres, `NOT EXISTS (
		SELECT 1 FROM documents d
		WHERE d.job_id = jobs.job_id AND d.doc_type IN ('invoice', 'manifest')
	)`)
	query += " WHERE " + strings.Join(wheres, " AND ")

	var n int
	err := s.Pool.QueryRow(ctx, query, args...).Scan(&n)
	return n, err
}

func (s *Store) GetJobsByDate(ctx context.Context, groupBy string, f KPIFilter) ([]models.TimeSeriesPoint, error) {
	jobs, err := s.listJobsUnpaged(ctx, f.jobFilter())
	if err != nil {
		return nil, err
	}
	return analytics.CountSeries(jobs, groupBy), nil
}

func (s *Store) GetRevenueByDate(ctx context.Context, groupBy string, f KPIFilter) ([]models.TimeSeriesPoint, error) {
	jobs, err := s.listJobsUnpaged(ctx, f.jobFilter())
	if err != nil {
		return nil, err
	}
	return analytics.RevenueSeries(jobs, groupBy), nil
}

func (s *Store) GetGallonsByDate(ctx context.Context, groupBy string, f KPIFilter) ([]models.TimeSeriesPoint, error) {
	jobs, err := s.listJobsUnpaged(ctx, f.jobFilter())
	if err != nil {
		return nil, err
	}
	return analytics.GallonsSeries(jobs, groupBy), nil
}

func (s *Store) GetJobsByStatus(ctx context.Context, f KPIFilter) (map[string]int, error) {
	jobs, err := s.listJobsUnpaged(ctx, f.jobFilter())
	if err != nil {
		return nil, err
	}
	return analytics.CountByStatus(jobs), nil
}

func (s *Store) GetJobsByTechnician(ctx context.Context, f KPIFilter) (map[string]int, error) {
	jobs, err := s.listJobsUnpaged(ctx, f.jobFilter())
	if err != nil {
		return nil, err
	}
	return analytics.CountByTechnician(jobs), nil
}

func (s *Store) GetTopCustomersByRevenue(ctx context.Context, limit int, f KPIFilter) ([]models.CustomerRevenue, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	jobs, err := s.listJobsUnpaged(ctx, f.jobFilter())
	if err != nil {
		return nil, err
	}
	return analytics.TopCustomersByRevenue(jobs, limit), nil
}
