package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/trapcrm/backend/internal/models"
	"github.com/trapcrm/backend/internal/normalize"
)

type createSiteRequest struct {
	CustomerID           *uuid.UUID `json:"customer_id"`
	Name                 string     `json:"name" validate:"required"`
	Address              *string    `json:"address"`
	City                 *string    `json:"city"`
	State                *string    `json:"state"`
	ZipCode              *string    `json:"zip_code"`
	Municipality         *string    `json:"municipality"`
	SewerAuthority       *string    `json:"sewer_authority"`
	PermitNumber         *string    `json:"permit_number"`
	TrapType             *string    `json:"trap_type"`
	TrapSize             *string    `json:"trap_size"`
	TrapLocation         *string    `json:"trap_location"`
	ServiceFrequency     *string    `json:"service_frequency"`
	ServiceFrequencyDays *int       `json:"service_frequency_days"`
	LastServiceDate      *string    `json:"last_service_date"`
	NextServiceDate      *string    `json:"next_service_date"`
	AccessNotes          *string    `json:"access_notes"`
	Notes                *string    `json:"notes"`
}

func (h *Handler) CreateSite(c *gin.Context) {
	var req createSiteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "validation failed", err.Error())
		return
	}

	site := &models.Site{
		CustomerID:           req.CustomerID,
		Name:                 req.Name,
		Address:              req.Address,
		City:                 req.City,
		State:                req.State,
		ZipCode:              req.ZipCode,
		Municipality:         req.Municipality,
		SewerAuthority:       req.SewerAuthority,
		PermitNumber:         req.PermitNumber,
		TrapSize:             req.TrapSize,
		TrapLocation:         req.TrapLocation,
		ServiceFrequencyDays: req.ServiceFrequencyDays,
		AccessNotes:          req.AccessNotes,
		Notes:                req.Notes,
		IsActive:             true,
	}
	if req.TrapType != nil {
		t := models.TrapType(*req.TrapType)
		site.TrapType = &t
	}
	if req.ServiceFrequency != nil {
		freq, err := models.ParseServiceFrequency(*req.ServiceFrequency)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		site.ServiceFrequency = &freq
	}
	if req.LastServiceDate != nil {
		if d, ok := normalize.DateFromString(*req.LastServiceDate); ok {
			site.LastServiceDate = &d
		}
	}
	if req.NextServiceDate != nil {
		if d, ok := normalize.DateFromString(*req.NextServiceDate); ok {
			site.NextServiceDate = &d
		}
	}

	if err := h.Store.CreateSite(c.Request.Context(), site); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create site", err.Error())
		return
	}
	c.JSON(http.StatusCreated, site)
}

func (h *Handler) SitesList(c *gin.Context) {
	customerID, ok := queryUUID(c, "customer_id")
	if !ok {
		return
	}
	includeInactive := c.Query("include_inactive") == "true"
	sites, err := h.Store.ListSites(c.Request.Context(), customerID, includeInactive)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list sites", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sites})
}

// @Summary Overdue sites
// @Description Active sites whose next service date has passed
// @Tags sites
// @Produce json
// @Success 200 {object} map[string]any
// @Router /api/sites/overdue [get]
func (h *Handler) OverdueSites(c *gin.Context) {
	sites, err := h.Store.ListOverdueSites(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list overdue sites", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": sites})
}

func (h *Handler) SiteDetails(c *gin.Context) {
	id, ok := idParam(c, "Site")
	if !ok {
		return
	}
	site, err := h.Store.GetSite(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get site", err.Error())
		return
	}
	if site == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Site not found", nil)
		return
	}
	c.JSON(http.StatusOK, site)
}

func (h *Handler) UpdateSite(c *gin.Context) {
	id, ok := idParam(c, "Site")
	if !ok {
		return
	}
	var patch models.SitePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid body", err.Error())
		return
	}
	site, err := h.Store.UpdateSite(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update site", err.Error())
		return
	}
	if site == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Site not found", nil)
		return
	}
	c.JSON(http.StatusOK, site)
}
