// interfaces.go - Handler interface definitions for clean separation of concerns
package api

import (
	"context"

	"github.com/labstack/echo/v4"

	"github.com/filepanel/backend/internal/models"
)

// FileHandler handles file list operations
type FileHandler interface {
	HandleUploadFile(c echo.Context) error
	HandleUploadBinary(c echo.Context) error
	HandleUploadChunk(c echo.Context) error
	HandleCompleteUpload(c echo.Context) error
	HandleListFiles(c echo.Context) error
	HandleGetFile(c echo.Context) error
	HandleDownloadFile(c echo.Context) error
	HandleRenameFile(c echo.Context) error
	HandleCopyFile(c echo.Context) error
	HandleMoveFile(c echo.Context) error
	HandleDeleteFile(c echo.Context) error
	HandleBatch(c echo.Context) error
}

// ConvertHandler handles document conversion operations
type ConvertHandler interface {
	HandleConvert(c echo.Context) error
	HandleConvertBatch(c echo.Context) error
	HandleGetProfiles(c echo.Context) error
}

// ImageHandler handles image compression operations
type ImageHandler interface {
	HandleCompress(c echo.Context) error
	HandleCompressBatch(c echo.Context) error
}

// JobHandler handles batch job status operations
type JobHandler interface {
	HandleGetJob(c echo.Context) error
}

// ActivityHandler handles the activity feed
type ActivityHandler interface {
	HandleGetActivity(c echo.Context) error
}

// HealthHandler handles health check operations
type HealthHandler interface {
	HandleHealth(c echo.Context) error
}

// ActivityLog is the slice of the history log the API needs.
// This allows mocking in tests.
type ActivityLog interface {
	Record(ctx context.Context, op, fileID, fileName, detail string) error
	Recent(ctx context.Context, limit int) ([]models.ActivityEntry, error)
}
