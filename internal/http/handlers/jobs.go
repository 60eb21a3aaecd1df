package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trapcrm/backend/internal/models"
	"github.com/trapcrm/backend/internal/parse"
)

type createJobRequest struct {
	// Either raw invoice text to parse...
	FromParse *struct {
		Text           string  `json:"text"`
		SourceFilename *string `json:"source_filename"`
	} `json:"from_parse"`
	// ...or a direct-entry patch applied to a fresh Draft job.
	Job *models.JobPatch `json:"job"`
}

// @Summary Create a job
// @Description Create from parsed invoice text or from direct field entry
// @Tags jobs
// @Accept json
// @Produce json
// @Success 201 {object} models.Job
// @Failure 400 {object} map[string]any
// @Router /api/jobs [post]
func (h *Handler) CreateJob(c *gin.Context) {
	var req createJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid body", err.Error())
		return
	}

	var job *models.Job
	switch {
	case req.FromParse != nil:
		res := parse.ExtractAndScore(req.FromParse.Text)
		job = models.JobFromParseResult(res, req.FromParse.SourceFilename)
	case req.Job != nil:
		job = models.NewJob()
		req.Job.Apply(job)
	default:
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "from_parse or job required", nil)
		return
	}

	if err := h.Store.SaveJob(c.Request.Context(), job); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save job", err.Error())
		return
	}
	c.JSON(http.StatusCreated, job)
}

func (h *Handler) JobsList(c *gin.Context) {
	filter, ok := jobFilterFromQuery(c)
	if !ok {
		return
	}
	jobs, err := h.Store.ListJobs(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list jobs", err.Error())
		return
	}
	total, err := h.Store.CountJobs(c.Request.Context(), filter)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to count jobs", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": jobs, "total": total, "limit": filter.Limit, "offset": filter.Offset})
}

func (h *Handler) JobDetails(c *gin.Context) {
	id, ok := idParam(c, "Job")
	if !ok {
		return
	}
	job, err := h.Store.LoadJob(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get job", err.Error())
		return
	}
	if job == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) UpdateJob(c *gin.Context) {
	id, ok := idParam(c, "Job")
	if !ok {
		return
	}
	var patch models.JobPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "invalid body", err.Error())
		return
	}
	job, err := h.Store.UpdateJob(c.Request.Context(), id, patch)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to update job", err.Error())
		return
	}
	if job == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}
	c.JSON(http.StatusOK, job)
}

// @Summary Verify a job
// @Description Transition to Verified; fails with the missing-field list when required fields are empty
// @Tags jobs
// @Produce json
// @Success 200 {object} models.Job
// @Failure 409 {object} map[string]any
// @Router /api/jobs/{id}/verify [post]
func (h *Handler) VerifyJob(c *gin.Context) {
	id, ok := idParam(c, "Job")
	if !ok {
		return
	}
	job, err := h.Store.LoadJob(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get job", err.Error())
		return
	}
	if job == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}
	if missing := job.MissingRequiredFields(); len(missing) > 0 {
		writeError(c, http.StatusConflict, "MISSING_FIELDS", "Job is missing required fields", missing)
		return
	}
	job.Status = models.StatusVerified
	if err := h.Store.SaveJob(c.Request.Context(), job); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save job", err.Error())
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *Handler) JobPacket(c *gin.Context) {
	id, ok := idParam(c, "Job")
	if !ok {
		return
	}
	job, err := h.Store.LoadJob(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get job", err.Error())
		return
	}
	if job == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}
	packet, err := h.Store.JobPacketFor(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get packet", err.Error())
		return
	}
	c.JSON(http.StatusOK, packet)
}

// DeleteJob hard-deletes; attached documents are kept as orphans.
func (h *Handler) DeleteJob(c *gin.Context) {
	id, ok := idParam(c, "Job")
	if !ok {
		return
	}
	deleted, err := h.Store.DeleteJob(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete job", err.Error())
		return
	}
	if !deleted {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (h *Handler) TechniciansList(c *gin.Context) {
	techs, err := h.Store.UniqueTechnicians(c.Request.Context())
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list technicians", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": techs})
}
