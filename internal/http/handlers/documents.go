package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trapcrm/backend/internal/models"
)

// @Summary Upload a job document
// @Tags documents
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "document file"
// @Param doc_type formData string false "invoice|manifest|inspection|photo|signature|other"
// @Success 201 {object} models.Document
// @Failure 400 {object} map[string]any
// @Router /api/jobs/{id}/documents [post]
func (h *Handler) UploadDocument(c *gin.Context) {
	jobID, ok := idParam(c, "Job")
	if !ok {
		return
	}
	job, err := h.Store.LoadJob(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get job", err.Error())
		return
	}
	if job == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "file required", nil)
		return
	}
	docType := models.DocOther
	if raw := c.PostForm("doc_type"); raw != "" {
		if docType, err = models.ParseDocumentType(raw); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
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

	original := fileHeader.Filename
	doc := &models.Document{
		JobID:            &jobID,
		Type:             docType,
		Filename:         original,
		OriginalFilename: &original,
		MimeType:         strPtr(fileHeader.Header.Get("Content-Type")),
		Notes:            strPtr(c.PostForm("notes")),
	}
	if err := h.Store.SaveDocument(c.Request.Context(), doc, content); err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to save document", err.Error())
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) DocumentsList(c *gin.Context) {
	jobID, ok := queryUUID(c, "job_id")
	if !ok {
		return
	}
	var docType *models.DocumentType
	if raw := c.Query("type"); raw != "" {
		t, err := models.ParseDocumentType(raw)
		if err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error(), nil)
			return
		}
		docType = &t
	}
	docs, err := h.Store.ListDocuments(c.Request.Context(), jobID, docType)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to list documents", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": docs})
}

func (h *Handler) DownloadDocument(c *gin.Context) {
	id, ok := idParam(c, "Document")
	if !ok {
		return
	}
	doc, err := h.Store.GetDocument(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to get document", err.Error())
		return
	}
	if doc == nil || doc.StoredPath == nil {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Document not found", nil)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+doc.Filename+`"`)
	if doc.MimeType != nil {
		c.Header("Content-Type", *doc.MimeType)
	}
	c.File(*doc.StoredPath)
}

func (h *Handler) DeleteDocument(c *gin.Context) {
	id, ok := idParam(c, "Document")
	if !ok {
		return
	}
	deleted, err := h.Store.DeleteDocument(c.Request.Context(), id)
	if err != nil {
		writeError(c, http.StatusInternalServerError, "DB_ERROR", "Failed to delete document", err.Error())
		return
	}
	if !deleted {
		writeError(c, http.StatusNotFound, "NOT_FOUND", "Document not found", nil)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
