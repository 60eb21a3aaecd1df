package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trapcrm/backend/internal/models"
)

type createCustomerRequest struct {
	Name           string  `json:"name" validate:"required"`
	LegalName      *string `json:"legal_name"`
	Phone          *string `json:"phone"`
	Email          *string `json:"email" validate:"omitempty,email"`
	BillingAddress *string `json:"billing_address"`
	ServiceAddress *string `json:"service_address"`
	City           *string `json:"city"`
	State          *string `json:"state"`
	ZipCode        *string `json:"zip_code"`
	Notes          *string `json:"notes"`
}

func (h *Handler) CreateCustomer(c *gin.Context) {
	var req createCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid body", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "validation failed", err.Error())
		return
	}

	customer := &models.Customer{
		Name:           req.Name,
		LegalName:      req.LegalName,
		Phone:          req.Phone,
		Email:          req.Email,
		BillingAddress: req.BillingAddress,
		ServiceAddress: req.ServiceAddress,
		City:           req.City,
		State:          req.State,
		ZipCode:        req.ZipCode,
		Notes:          req.Notes,
		IsActive:       true,
	}
	if err := h.Store.CreateCustomer(c.Request.Context(), customer); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to create customer", err.Error())
		return
	}
	c.JSON(http.StatusCreated, customer)
}

func (h *Handler) CustomersList(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	customers, err := h.Store.ListCustomers(c.Request.Context(), c.Query("q"), includeInactive)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list customers", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": customers})
}

func (h *Handler) CustomerDetails(c *gin.Context) {
	id, ok := idParam(c, "Customer")
	if !ok {
		return
	}
	customer, err := h.Store.GetCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get customer", err.Error())
		return
	}
	if customer == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) UpdateCustomer(c *gin.Context) {
	id, ok := idParam(c, "Customer")
	if !ok {
		return
	}
	var patch models.CustomerPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid body", err.Error())
		return
	}
	customer, err := h.Store.UpdateCustomer(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update customer", err.Error())
		return
	}
	if customer == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
		return
	}
	c.JSON(http.StatusOK, customer)
}

func (h *Handler) DeleteCustomer(c *gin.Context) {
	id, ok := idParam(c, "Customer")
	if !ok {
		return
	}
	deleted, err := h.Store.DeleteCustomer(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete customer", err.Error())
		return
	}
	if !deleted {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Customer not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
