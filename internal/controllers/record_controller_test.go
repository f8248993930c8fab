package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/logvault/backend/internal/cache"
	"github.com/logvault/backend/internal/index"
	"github.com/logvault/backend/internal/models"
	"github.com/logvault/backend/internal/services"
	"github.com/logvault/backend/internal/storage"
)

func newTestRouter(t *testing.T) (*gin.Engine, *services.RecordService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	rootID, err := store.FindOrCreateFolder(context.Background(), "LogVault_Logs", "")
	if err != nil {
		t.Fatalf("create root folder: %v", err)
	}
	idx := index.New(store, rootID)
	proj := cache.New()
	service := services.NewRecordService(store, idx, proj, rootID)
	reconciler := services.NewReconciler(idx, proj)

	rc := NewRecordController(service, reconciler, "memory")

	r := gin.New()
	r.GET("/health", rc.Health)
	r.POST("/log", rc.CreateLog)
	r.DELETE("/log", rc.DeleteLog)
	r.GET("/stats", rc.GetStats)
	r.GET("/histogram", rc.GetHistogram)
	r.GET("/logs", rc.GetLogs)
	r.GET("/log_text", rc.GetLogText)
	r.GET("/summary", rc.GetSummary)
	return r, service
}

func doJSON(t *testing.T, r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateThenList(t *testing.T) {
	r, _ := newTestRouter(t)

	body := `{"filename":"a.txt","duration":1.5,"size":10,"received_at":"2025-01-01 00:00:00","queue_time":0.1,"process_time":0.2,"text":"hi"}`
	w := doJSON(t, r, http.MethodPost, "/log", body)
	if w.Code != http.StatusOK {
		t.Fatalf("POST /log: got %d, body %s", w.Code, w.Body.String())
	}

	var created struct {
		Status string `json:"status"`
		BlobID string `json:"blob_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Status != "ok" || created.BlobID == "" {
		t.Fatalf("unexpected create response: %+v", created)
	}

	w = doJSON(t, r, http.MethodGet, "/logs?filename=a", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /logs: got %d", w.Code)
	}
	var listed []models.LogRecord
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("expected exactly 1 record, got %d", len(listed))
	}
	if listed[0].BlobID != created.BlobID {
		t.Errorf("listed blob ID %q, want %q", listed[0].BlobID, created.BlobID)
	}
}

func TestCreateCoercesMalformedSize(t *testing.T) {
	r, service := newTestRouter(t)

	body := `{"filename":"a.txt","duration":1.5,"size":"not-a-number","received_at":"2025-01-01 00:00:00","queue_time":0.1,"process_time":0.2,"text":"hi"}`
	w := doJSON(t, r, http.MethodPost, "/log", body)
	if w.Code != http.StatusOK {
		t.Fatalf("malformed size must not reject the record: got %d, body %s", w.Code, w.Body.String())
	}

	got := service.Cache().Query("a.txt", "")
	if len(got) != 1 {
		t.Fatalf("expected 1 record, got %d", len(got))
	}
	if got[0].Size != 0 {
		t.Errorf("size: got %d, want 0", got[0].Size)
	}
}

func TestCreateRequiresFilename(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/log", `{"text":"hi"}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", w.Code)
	}
}

func TestCreateDefaultsReceivedAt(t *testing.T) {
	r, service := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/log", `{"filename":"a.txt","text":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("got %d, body %s", w.Code, w.Body.String())
	}

	got := service.Cache().Query("a.txt", "")
	if len(got) != 1 || got[0].ReceivedAt == "" {
		t.Errorf("expected defaulted received_at, got %+v", got)
	}
}

func TestDeleteThenListAndIdempotence(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/log",
		`{"filename":"a.txt","received_at":"2025-01-01 00:00:00","text":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST: got %d", w.Code)
	}
	var created struct {
		BlobID string `json:"blob_id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	w = doJSON(t, r, http.MethodDelete, "/log?blob_id="+created.BlobID, "")
	if w.Code != http.StatusOK {
		t.Fatalf("DELETE: got %d, body %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, "/logs", "")
	var listed []models.LogRecord
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decode listing: %v", err)
	}
	if len(listed) != 0 {
		t.Errorf("deleted record still listed: %+v", listed)
	}

	// Second delete of the same ID succeeds.
	w = doJSON(t, r, http.MethodDelete, "/log?blob_id="+created.BlobID, "")
	if w.Code != http.StatusOK {
		t.Errorf("second DELETE: got %d", w.Code)
	}
}

func TestDeleteRequiresBlobID(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodDelete, "/log", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("got %d, want 400", w.Code)
	}
}

func TestStatsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	for _, ts := range []string{"2025-01-01 10:00:00", "2025-01-01 10:00:30", "2025-01-01 11:00:00"} {
		w := doJSON(t, r, http.MethodPost, "/log",
			`{"filename":"a.txt","received_at":"`+ts+`","text":"hi"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("POST: got %d", w.Code)
		}
	}

	w := doJSON(t, r, http.MethodGet, "/stats", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /stats: got %d", w.Code)
	}
	var stats map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	want := map[string]int{"2025-01-01 10:00": 2, "2025-01-01 11:00": 1}
	if len(stats) != len(want) || stats["2025-01-01 10:00"] != 2 || stats["2025-01-01 11:00"] != 1 {
		t.Errorf("got %v, want %v", stats, want)
	}

	w = doJSON(t, r, http.MethodGet, "/histogram", "")
	var hist map[string]int
	if err := json.Unmarshal(w.Body.Bytes(), &hist); err != nil {
		t.Fatalf("decode histogram: %v", err)
	}
	if hist["2025-01-01"] != 3 {
		t.Errorf("histogram: got %v", hist)
	}
}

func TestLogTextEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/log",
		`{"filename":"a.txt","received_at":"2025-01-01 00:00:00","text":"the body"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST: got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/log_text?filename=a.txt&received_at=2025-01-01+00%3A00%3A00", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /log_text: got %d, body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Text != "the body" {
		t.Errorf("got %q, want %q", resp.Text, "the body")
	}

	w = doJSON(t, r, http.MethodGet, "/log_text?filename=missing.txt&received_at=2025-01-01+00%3A00%3A00", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("missing record: got %d, want 404", w.Code)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodPost, "/log",
		`{"filename":"a.txt","duration":1.5,"size":10,"received_at":"2025-01-01 00:00:00","text":"hi"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("POST: got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/summary", "")
	var sum models.UsageSummary
	if err := json.Unmarshal(w.Body.Bytes(), &sum); err != nil {
		t.Fatalf("decode summary: %v", err)
	}
	if sum.TotalRecords != 1 || sum.TotalDurationSeconds != 1.5 || sum.TotalSizeBytes != 10 {
		t.Errorf("unexpected summary: %+v", sum)
	}
}

func TestHealthReportsDegradedBeforeReconcile(t *testing.T) {
	r, _ := newTestRouter(t)

	w := doJSON(t, r, http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("GET /health: got %d", w.Code)
	}
	var resp struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode health: %v", err)
	}
	// The reconciler was never started in this fixture.
	if resp.Status != "degraded" {
		t.Errorf("got status %q, want degraded", resp.Status)
	}
}
