package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/logvault/backend/internal/cache"
	"github.com/logvault/backend/internal/db"
	"github.com/logvault/backend/internal/index"
	"github.com/logvault/backend/internal/logger"
	"github.com/logvault/backend/internal/middleware"
	"github.com/logvault/backend/internal/routes"
	"github.com/logvault/backend/internal/services"
	"github.com/logvault/backend/internal/storage"

	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

const defaultRootFolderName = "LogVault_Logs"

func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Set CORS headers for all requests
		origin := "http://localhost:5173"
		if os.Getenv("ENV") != "local" && os.Getenv("ENV") != "" {
			if corsOrigin := os.Getenv("CORS_ORIGIN"); corsOrigin != "" {
				origin = corsOrigin
			}
		}

		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")

		// Handle preflight request
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusOK)
			return
		}

		c.Next()
	}
}

// buildStore selects the blob store backend from STORE_BACKEND and
// resolves the root folder every blob lives under. lifeCtx must live
// as long as the process (the Drive client binds it into its token
// source); startupCtx bounds only the remote calls made here.
func buildStore(lifeCtx, startupCtx context.Context) (storage.Store, string, string) {
	backend := os.Getenv("STORE_BACKEND")
	if backend == "" {
		backend = "drive"
	}

	var store storage.Store
	switch backend {
	case "drive":
		credFile := os.Getenv("GOOGLE_CREDENTIALS_FILE")
		if credFile == "" {
			credFile = "client_secret.json"
		}
		driveStore, err := storage.NewDriveStore(lifeCtx, credFile)
		if err != nil {
			logger.Fatal("Failed to initialize Drive store", map[string]interface{}{
				"error":            err.Error(),
				"credentials_file": credFile,
			})
		}
		store = driveStore
	case "postgres":
		db.Connect()
		db.AutoMigrate()
		store = storage.NewPostgresStore(db.GetDB())
	case "memory":
		store = storage.NewMemoryStore()
	default:
		logger.Fatal("Unknown STORE_BACKEND", map[string]interface{}{
			"backend": backend,
		})
	}

	folderName := os.Getenv("ROOT_FOLDER_NAME")
	if folderName == "" {
		folderName = defaultRootFolderName
	}

	rootFolderID, err := store.FindOrCreateFolder(startupCtx, folderName, "")
	if err != nil {
		logger.Fatal("Failed to resolve root folder", map[string]interface{}{
			"error":  err.Error(),
			"folder": folderName,
		})
	}

	return store, rootFolderID, backend
}

func main() {
	// Initialize logger first
	logger.Initialize()

	// Load environment variables
	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using environment variables", nil)
	}

	startupCtx, startupCancel := context.WithTimeout(context.Background(), 60*time.Second)
	store, rootFolderID, backend := buildStore(context.Background(), startupCtx)
	startupCancel()

	proj := cache.New()
	idx := index.New(store, rootFolderID)
	service := services.NewRecordService(store, idx, proj, rootFolderID)

	// Rebuild the cache from the remote index in the background; the
	// server is reachable before this completes.
	reconciler := services.NewReconciler(idx, proj)
	reconciler.Start(context.Background())

	// Setup graceful shutdown
	stopChan := make(chan struct{})
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		logger.Warn("Received shutdown signal, stopping...", nil)
		close(stopChan)
	}()

	// Set Gin mode
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	r := gin.New()

	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false

	// Use our custom logging middleware instead of gin.Default()
	r.Use(middleware.CustomLoggerMiddleware())
	r.Use(CORSMiddleware())
	r.Use(gin.Recovery())

	// Setup routes
	routes.SetupRoutes(r, service, reconciler, backend)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	logger.Info("Starting LogVault backend server", map[string]interface{}{
		"port":     port,
		"backend":  backend,
		"gin_mode": gin.Mode(),
	})

	// Start server in a goroutine
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	// Wait for shutdown signal
	<-stopChan
	logger.Info("Shutting down server gracefully...", nil)

	// Create a context with timeout for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", map[string]interface{}{
			"error": err.Error(),
		})
	} else {
		logger.Info("Server exited gracefully", nil)
	}
}
