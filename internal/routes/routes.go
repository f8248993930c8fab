package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/logvault/backend/internal/controllers"
	"github.com/logvault/backend/internal/services"
)

// SetupRoutes configures all application routes
func SetupRoutes(r *gin.Engine, service *services.RecordService, reconciler *services.Reconciler, backend string) {
	recordController := controllers.NewRecordController(service, reconciler, backend)

	r.GET("/health", recordController.Health)

	r.POST("/log", recordController.CreateLog)
	r.DELETE("/log", recordController.DeleteLog)
	r.GET("/stats", recordController.GetStats)
	r.GET("/histogram", recordController.GetHistogram)
	r.GET("/logs", recordController.GetLogs)
	r.GET("/log_text", recordController.GetLogText)
	r.GET("/summary", recordController.GetSummary)
}
