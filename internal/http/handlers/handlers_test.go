package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/trapcrm/backend/internal/http/middleware"
)

// The store-free paths (parsing, validation, auth) are tested here; the
// full round trips live in the db package's integration tests.

func testHandler() *Handler {
	gin.SetMode(gin.TestMode)
	return &Handler{
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}
}

func TestParseEndpoint(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.POST("/api/parse", h.Parse)

	body := `{"text": "INVOICE #: GS-2024-003471\nTOTAL DUE: $568.40"}`
	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var res struct {
		Record          map[string]any `json:"record"`
		ExtractedFields []string       `json:"extracted_fields"`
		ConfidenceScore int            `json:"confidence_score"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if res.ConfidenceScore != 20 {
		t.Errorf("confidence = %d, want 20", res.ConfidenceScore)
	}
	if res.Record["invoice_number"] != "GS-2024-003471" {
		t.Errorf("invoice_number = %v", res.Record["invoice_number"])
	}
}

func TestParseEndpointRequiresText(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.POST("/api/parse", h.Parse)

	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestMalformedIDIsNotFound(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.GET("/api/jobs/:id", h.JobDetails)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/not-a-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestBadStatusFilterRejected(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.GET("/api/jobs", h.JobsList)

	req := httptest.NewRequest(http.MethodGet, "/api/jobs?status=Done", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestGroupByValidation(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.GET("/api/dashboard/jobs-by-date", h.JobsByDate)

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/jobs-by-date?group_by=hour", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestAdminKeyGuard(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	guarded := r.Group("", middleware.AdminKey("secret"))
	guarded.POST("/api/admin/reset", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("missing key: status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/api/admin/reset", nil)
	req.Header.Set("X-Admin-Key", "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("valid key: status = %d, want 200", w.Code)
	}
}

func TestAdminResetRequiresConfirmToken(t *testing.T) {
	h := testHandler()
	r := gin.New()
	r.POST("/api/admin/reset", h.AdminReset)

	for _, body := range []string{``, `{}`, `{"confirm":"reset"}`, `{"confirm":"yes"}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/reset", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status = %d, want 400", body, w.Code)
		}
	}
}
