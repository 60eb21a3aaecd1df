package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/trapcrm/backend/internal/db"
	"github.com/trapcrm/backend/internal/models"
	"github.com/trapcrm/backend/internal/service"
)

type Handler struct {
	Store     *db.Store
	Export    *service.ExportService
	Validator *validator.Validate
	Logger    zerolog.Logger
	AdminKey  string
}

func (h *Handler) Healthz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		writeError(c, http.StatusServiceUnavailable, "DB_UNAVAILABLE", "Database unavailable", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// idParam parses the :id path segment. A malformed id cannot match any
// record, so it reports not-found rather than bad-request.
func idParam(c *gin.Context, what string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", what+" not found", nil)
		return uuid.Nil, false
	}
	return id, true
}

func queryUUID(c *gin.Context, name string) (*uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", name+" must be a uuid", nil)
		return nil, false
	}
	return &id, true
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// jobFilterFromQuery reads the shared list/aggregate filter parameters.
func jobFilterFromQuery(c *gin.Context) (db.JobFilter, bool) {
	var f db.JobFilter
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseJobStatus(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return f, false
		}
		f.Status = &status
	}
	customerID, ok := queryUUID(c, "customer_id")
	if !ok {
		return f, false
	}
	f.CustomerID = customerID
	f.Technician = strPtr(c.Query("technician"))
	f.Search = strPtr(c.Query("q"))
	f.DateFrom = strPtr(c.Query("date_from"))
	f.DateTo = strPtr(c.Query("date_to"))
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "100"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return f, true
}

func kpiFilterFromQuery(c *gin.Context) (db.KPIFilter, bool) {
	var f db.KPIFilter
	customerID, ok := queryUUID(c, "customer_id")
	if !ok {
		return f, false
	}
	f.CustomerID = customerID
	f.Technician = strPtr(c.Query("technician"))
	f.DateFrom = strPtr(c.Query("date_from"))
	f.DateTo = strPtr(c.Query("date_to"))
	return f, true
}
