package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trapcrm/backend/internal/models"
	"github.com/trapcrm/backend/internal/parse"
)

type parseRequest struct {
	Text string `json:"text" validate:"required"`
}

// @Summary Parse invoice text
// @Description Run the field extractors over raw invoice text without creating a job
// @Tags parse
// @Accept json
// @Produce json
// @Success 200 {object} parse.Result
// @Failure 400 {object} map[string]any
// @Router /api/parse [post]
func (h *Handler) Parse(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "text field required", err.Error())
		return
	}
	if err := h.Validator.Struct(req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "text field required", err.Error())
		return
	}
	c.JSON(http.StatusOK, parse.ExtractAndScore(req.Text))
}

// @Summary Import an invoice file
// @Description Parse an uploaded text invoice and create a Draft job from it
// @Tags jobs
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "invoice text file"
// @Success 201 {object} models.Job
// @Failure 400 {object} map[string]any
// @Router /api/jobs/import [post]
func (h *Handler) ImportJob(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file required", nil)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot read file", err.Error())
		return
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "cannot read file", err.Error())
		return
	}

	res := parse.ExtractAndScore(string(content))
	filename := fileHeader.Filename
	job := models.JobFromParseResult(res, &filename)

	if err := h.Store.SaveJob(c.Request.Context(), job); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save job", err.Error())
		return
	}
	h.Logger.Info().
		Str("job_id", job.ID.String()).
		Str("filename", filename).
		Int("confidence", job.ConfidenceScore).
		Msg("invoice imported")
	c.JSON(http.StatusCreated, job)
}
