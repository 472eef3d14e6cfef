// routes.go - Route registration helpers
package api

import (
	"github.com/labstack/echo/v4"

	"github.com/filepanel/backend/internal/convert"
	"github.com/filepanel/backend/internal/imaging"
	"github.com/filepanel/backend/internal/jobs"
	"github.com/filepanel/backend/internal/storage"
)

// Dependencies holds all handler dependencies
type Dependencies struct {
	Store             storage.Store
	Registry          *convert.Registry
	Profiles          *convert.Profiles
	JobManager        *jobs.Manager
	Activity          ActivityLog
	Imaging           imaging.Options
	AllowFileDeletion bool
	Version           string
}

// Handlers holds all handler instances
type Handlers struct {
	Health   HealthHandler
	Files    FileHandler
	Convert  ConvertHandler
	Images   ImageHandler
	Jobs     JobHandler
	Activity ActivityHandler
	WS       *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		Health:   NewHealthHandler(deps.Version),
		Files:    NewFileHandler(deps.Store, deps.Activity, deps.AllowFileDeletion),
		Convert:  NewConvertHandler(deps.Registry, deps.Profiles, deps.JobManager, deps.Activity),
		Images:   NewImageHandler(deps.Imaging, deps.JobManager, deps.Activity),
		Jobs:     NewJobHandler(deps.JobManager),
		Activity: NewActivityHandler(deps.Activity),
		WS:       NewWebSocketHandler(deps.JobManager),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers, allowFileDeletion bool) {
	apiGroup := e.Group("/api")

	// Health check
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	// File management
	filesGroup := apiGroup.Group("/files")
	filesGroup.POST("/upload", handlers.Files.HandleUploadFile)
	filesGroup.POST("/upload/binary", handlers.Files.HandleUploadBinary)
	filesGroup.POST("/upload/chunk", handlers.Files.HandleUploadChunk)
	filesGroup.POST("/upload/complete", handlers.Files.HandleCompleteUpload)
	filesGroup.GET("", handlers.Files.HandleListFiles)
	filesGroup.GET("/:id", handlers.Files.HandleGetFile)
	filesGroup.GET("/:id/download", handlers.Files.HandleDownloadFile)
	filesGroup.PUT("/:id", handlers.Files.HandleRenameFile)
	filesGroup.POST("/:id/copy", handlers.Files.HandleCopyFile)
	filesGroup.POST("/:id/move", handlers.Files.HandleMoveFile)
	filesGroup.POST("/batch", handlers.Files.HandleBatch)

	// Conditional delete based on config
	if allowFileDeletion {
		filesGroup.DELETE("/:id", handlers.Files.HandleDeleteFile)
	}

	// Document conversion
	apiGroup.POST("/convert", handlers.Convert.HandleConvert)
	apiGroup.POST("/convert/batch", handlers.Convert.HandleConvertBatch)
	apiGroup.GET("/convert/profiles", handlers.Convert.HandleGetProfiles)

	// Image compression
	apiGroup.POST("/images/compress", handlers.Images.HandleCompress)
	apiGroup.POST("/images/compress/batch", handlers.Images.HandleCompressBatch)

	// Batch jobs
	apiGroup.GET("/jobs/:id", handlers.Jobs.HandleGetJob)
	apiGroup.GET("/ws/jobs", handlers.WS.HandleJobProgress)

	// Activity feed
	apiGroup.GET("/activity", handlers.Activity.HandleGetActivity)
}
