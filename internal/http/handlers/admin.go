package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type resetRequest struct {
	Confirm string `json:"confirm"`
}

// @Summary Reset the database
// @Description Drops and recreates every table. Requires the admin key and the literal confirm token.
// @Tags admin
// @Accept json
// @Produce json
// @Success 200 {object} map[string]any
// @Failure 400 {object} map[string]any
// @Router /api/admin/reset [post]
func (h *Handler) AdminReset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Confirm != "RESET" {
		writeError(c, http.StatusBadRequest, "CONFIRM_REQUIRED", `body must be {"confirm":"RESET"}`, nil)
		return
	}
	if err := h.Store.Reset(c.Request.Context()); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to reset database", err.Error())
		return
	}
	h.Logger.Warn().Msg("database reset")
	c.JSON(http.StatusOK, gin.H{"reset": true})
}
