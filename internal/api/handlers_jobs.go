// handlers_jobs.go - Batch job status handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/filepanel/backend/internal/jobs"
)

// JobHandlerImpl implements the JobHandler interface
type JobHandlerImpl struct {
	jobMgr *jobs.Manager
}

// NewJobHandler creates a new job handler instance
func NewJobHandler(jobMgr *jobs.Manager) JobHandler {
	return &JobHandlerImpl{jobMgr: jobMgr}
}

// HandleGetJob returns the current snapshot of a batch job
func (h *JobHandlerImpl) HandleGetJob(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	job, ok := h.jobMgr.GetJob(id)
	if !ok {
		return NewNotFoundError("job", id)
	}

	return c.JSON(http.StatusOK, job)
}
