package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/trapcrm/backend/internal/db"
	"github.com/trapcrm/backend/internal/models"
)

// @Summary Dashboard KPIs
// @Tags dashboard
// @Produce json
// @Param date_from query string false "inclusive ISO date"
// @Param date_to query string false "inclusive ISO date"
// @Param customer_id query string false "customer uuid"
// @Param technician query string false "exact technician name"
// @Success 200 {object} models.DashboardKPIs
// @Router /api/dashboard/kpis [get]
func (h *Handler) DashboardKPIs(c *gin.Context) {
	filter, ok := kpiFilterFromQuery(c)
	if !ok {
		return
	}
	kpis, err := h.Store.GetDashboardKPIs(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute KPIs", err.Error())
		return
	}
	c.JSON(http.StatusOK, kpis)
}

func groupByParam(c *gin.Context) (string, bool) {
	groupBy := c.DefaultQuery("group_by", "day")
	switch groupBy {
	case "day", "week", "month":
		return groupBy, true
	}
	writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "group_by must be day, week or month", nil)
	return "", false
}

func (h *Handler) seriesEndpoint(c *gin.Context, fetch func(groupBy string, f db.KPIFilter) ([]models.TimeSeriesPoint, error)) {
	filter, ok := kpiFilterFromQuery(c)
	if !ok {
		return
	}
	groupBy, ok := groupByParam(c)
	if !ok {
		return
	}
	points, err := fetch(groupBy, filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to compute series", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": points, "group_by": groupBy})
}

func (h *Handler) JobsByDate(c *gin.Context) {
	h.seriesEndpoint(c, func(groupBy string, f db.KPIFilter) ([]models.TimeSeriesPoint, error) {
		return h.Store.GetJobsByDate(c.Request.Context(), groupBy, f)
	})
}

func (h *Handler) RevenueByDate(c *gin.Context) {
	h.seriesEndpoint(c, func(groupBy string, f db.KPIFilter) ([]models.TimeSeriesPoint, error) {
		return h.Store.GetRevenueByDate(c.Request.Context(), groupBy, f)
	})
}

func (h *Handler) GallonsByDate(c *gin.Context) {
	h.seriesEndpoint(c, func(groupBy string, f db.KPIFilter) ([]models.TimeSeriesPoint, error) {
		return h.Store.GetGallonsByDate(c.Request.Context(), groupBy, f)
	})
}

func (h *Handler) JobsByStatus(c *gin.Context) {
	filter, ok := kpiFilterFromQuery(c)
	if !ok {
		return
	}
	counts, err := h.Store.GetJobsByStatus(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to group jobs", err.Error())
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) JobsByTechnician(c *gin.Context) {
	filter, ok := kpiFilterFromQuery(c)
	if !ok {
		return
	}
	counts, err := h.Store.GetJobsByTechnician(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to group jobs", err.Error())
		return
	}
	c.JSON(http.StatusOK, counts)
}

func (h *Handler) TopCustomers(c *gin.Context) {
	filter, ok := kpiFilterFromQuery(c)
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	top, err := h.Store.GetTopCustomersByRevenue(c.Request.Context(), limit, filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to rank customers", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": top})
}

func (h *Handler) ExportJobsXLSX(c *gin.Context) {
	filter, ok := jobFilterFromQuery(c)
	if !ok {
		return
	}
	out, err := h.Export.JobsXLSX(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "EXPORT_ERROR", "Failed to build export", err.Error())
		return
	}
	name := "jobs_" + time.Now().UTC().Format("20060102") + ".xlsx"
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", out)
}
