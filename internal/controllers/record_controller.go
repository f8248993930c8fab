package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/logvault/backend/internal/models"
	"github.com/logvault/backend/internal/services"
)

// RecordController serves the log record API. Write operations go
// through the record service; read operations answer from the cache
// projection only.
type RecordController struct {
	service    *services.RecordService
	reconciler *services.Reconciler
	backend    string
}

func NewRecordController(service *services.RecordService, reconciler *services.Reconciler, backend string) *RecordController {
	return &RecordController{
		service:    service,
		reconciler: reconciler,
		backend:    backend,
	}
}

// LogPayload is the POST /log request body. Numeric fields use the
// flex wrappers: malformed values coerce to zero, the record is never
// rejected for them.
type LogPayload struct {
	Filename    string           `json:"filename"`
	Duration    models.FlexFloat `json:"duration"`
	Size        models.FlexInt   `json:"size"`
	ReceivedAt  string           `json:"received_at"`
	QueueTime   models.FlexFloat `json:"queue_time"`
	ProcessTime models.FlexFloat `json:"process_time"`
	Text        string           `json:"text"`
}

// CreateLog handles POST /log
func (rc *RecordController) CreateLog(c *gin.Context) {
	var payload LogPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if payload.Filename == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename is required"})
		return
	}

	rec := models.LogRecord{
		Filename:    payload.Filename,
		Duration:    float64(payload.Duration),
		Size:        int64(payload.Size),
		ReceivedAt:  payload.ReceivedAt,
		QueueTime:   float64(payload.QueueTime),
		ProcessTime: float64(payload.ProcessTime),
		Text:        payload.Text,
	}
	if rec.ReceivedAt == "" {
		rec.ReceivedAt = time.Now().Format(models.ReceivedAtLayout)
	}

	blobID, err := rc.service.Create(c.Request.Context(), rec)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok", "blob_id": blobID})
}

// DeleteLog handles DELETE /log?blob_id=...
func (rc *RecordController) DeleteLog(c *gin.Context) {
	blobID := c.Query("blob_id")
	if blobID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "blob_id is required"})
		return
	}

	if err := rc.service.Delete(c.Request.Context(), blobID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// GetStats handles GET /stats
func (rc *RecordController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, rc.service.Cache().StatsByMinute())
}

// GetHistogram handles GET /histogram
func (rc *RecordController) GetHistogram(c *gin.Context) {
	c.JSON(http.StatusOK, rc.service.Cache().HistogramByDay())
}

// GetLogs handles GET /logs?filename=&date=
func (rc *RecordController) GetLogs(c *gin.Context) {
	records := rc.service.Cache().Query(c.Query("filename"), c.Query("date"))
	c.JSON(http.StatusOK, records)
}

// GetLogText handles GET /log_text?filename=&received_at=
func (rc *RecordController) GetLogText(c *gin.Context) {
	filename := c.Query("filename")
	receivedAt := c.Query("received_at")
	if filename == "" || receivedAt == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "filename and received_at are required"})
		return
	}

	rec, ok := rc.service.Cache().FindByKey(filename, receivedAt)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "log not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"text": rec.Text})
}

// GetSummary handles GET /summary
func (rc *RecordController) GetSummary(c *gin.Context) {
	c.JSON(http.StatusOK, rc.service.Cache().Summary())
}

// Health handles GET /health
func (rc *RecordController) Health(c *gin.Context) {
	ready := rc.reconciler.Ready()

	status := "ok"
	if !ready {
		// Serving with an unreconciled cache is degraded, not down.
		status = "degraded"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    status,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   "1.0.0",
		"services": gin.H{
			"store": gin.H{
				"backend": rc.backend,
			},
			"reconciler": gin.H{
				"ready": ready,
			},
			"cache": gin.H{
				"records": rc.service.Cache().Len(),
			},
		},
	})
}
