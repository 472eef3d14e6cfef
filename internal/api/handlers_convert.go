// handlers_convert.go - Document conversion handlers
package api

import (
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/filepanel/backend/internal/convert"
	"github.com/filepanel/backend/internal/jobs"
	"github.com/filepanel/backend/internal/models"
)

// ConvertHandlerImpl implements the ConvertHandler interface
type ConvertHandlerImpl struct {
	registry *convert.Registry
	profiles *convert.Profiles
	jobMgr   *jobs.Manager
	activity ActivityLog
}

// NewConvertHandler creates a new conversion handler instance
func NewConvertHandler(registry *convert.Registry, profiles *convert.Profiles, jobMgr *jobs.Manager, activity ActivityLog) ConvertHandler {
	if profiles == nil {
		profiles = convert.DefaultProfiles()
	}
	return &ConvertHandlerImpl{
		registry: registry,
		profiles: profiles,
		jobMgr:   jobMgr,
		activity: activity,
	}
}

// HandleConvert converts an uploaded document to the requested target format
// and returns the result as a download. Requests missing the file part or the
// targetFormat part are rejected with 400.
func (h *ConvertHandlerImpl) HandleConvert(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("missing file part", err)
	}

	targetFormat := c.FormValue("targetFormat")
	if targetFormat == "" {
		return NewValidationError("targetFormat")
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

	res, err := h.registry.Convert(file.Filename, targetFormat, input)
	if err != nil {
		return NewBadRequestError("conversion failed", err)
	}

	if h.activity != nil {
		_ = h.activity.Record(c.Request().Context(), models.OpConvert, "", res.FileName, res.Converter)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, res.FileName))
	return c.Blob(http.StatusOK, res.ContentType, res.Data)
}

// HandleConvertBatch starts an async conversion job over stored files
func (h *ConvertHandlerImpl) HandleConvertBatch(c echo.Context) error {
	var req convertBatchRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if len(req.IDs) == 0 {
		return NewValidationError("ids")
	}
	if req.TargetFormat == "" {
		return NewValidationError("targetFormat")
	}

	job, err := h.jobMgr.StartConvertJob(req.IDs, req.TargetFormat)
	if err != nil {
		return NewBadRequestError("failed to start conversion job", err)
	}

	return c.JSON(http.StatusAccepted, map[string]interface{}{
		"jobId":  job.ID,
		"status": job.Status,
	})
}

// HandleGetProfiles returns the format picker configuration
func (h *ConvertHandlerImpl) HandleGetProfiles(c echo.Context) error {
	return c.JSON(http.StatusOK, h.profiles)
}

type convertBatchRequest struct {
	IDs          []string `json:"ids"`
	TargetFormat string   `json:"targetFormat"`
}
