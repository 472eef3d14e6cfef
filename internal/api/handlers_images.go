// handlers_images.go - Image compression handlers
package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/filepanel/backend/internal/imaging"
	"github.com/filepanel/backend/internal/jobs"
	"github.com/filepanel/backend/internal/models"
)

// ImageHandlerImpl implements the ImageHandler interface
type ImageHandlerImpl struct {
	opts     imaging.Options
	jobMgr   *jobs.Manager
	activity ActivityLog
}

// NewImageHandler creates a new image handler instance
func NewImageHandler(opts imaging.Options, jobMgr *jobs.Manager, activity ActivityLog) ImageHandler {
	return &ImageHandlerImpl{
		opts:     opts,
		jobMgr:   jobMgr,
		activity: activity,
	}
}

// HandleCompress compresses a single uploaded image and returns the JPEG as a
// download.
func (h *ImageHandlerImpl) HandleCompress(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("missing file part", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	input, err := io.ReadAll(src)
	if err != nil {
		return NewInternalError("failed to read uploaded file", err)
	}

	res, err := imaging.Compress(input, h.opts)
	if err != nil {
		if errors.Is(err, imaging.ErrNotAnImage) {
			return NewBadRequestError("unsupported image", err)
		}
		return NewInternalError("compression failed", err)
	}

	name := imaging.JPEGName(file.Filename)
	if h.activity != nil {
		detail := fmt.Sprintf("%dx%d -> %dx%d", res.OriginalWidth, res.OriginalHeight, res.Width, res.Height)
		_ = h.activity.Record(c.Request().Context(), models.OpCompress, "", name, detail)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, name))
	return c.Blob(http.StatusOK, res.ContentType, res.Data)
}

// HandleCompressBatch starts an async compression job over stored files
func (h *ImageHandlerImpl) HandleCompressBatch(c echo.Context) error {
	var req compressBatchRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if len(req.IDs) == 0 {
		return NewValidationError("ids")
	}

	job, err := h.jobMgr.StartCompressJob(req.IDs)
	if err != nil {
		return NewBadRequestError("failed to start compression job", err)
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"jobId":  job.ID,
		"status": job.Status,
	})
}

type compressBatchRequest struct {
	IDs []string `json:"ids"`
}
