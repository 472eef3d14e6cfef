// handlers_activity.go - Activity feed handlers
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/filepanel/backend/internal/history"
)

// ActivityHandlerImpl implements the ActivityHandler interface
type ActivityHandlerImpl struct {
	activity ActivityLog
}

// NewActivityHandler creates a new activity handler instance
func NewActivityHandler(activity ActivityLog) ActivityHandler {
	return &ActivityHandlerImpl{activity: activity}
}

// HandleGetActivity returns recent activity entries. The format query selects
// the encoding: json (default), msgpack for the panel's compact transfer, or
// csv for the export download.
func (h *ActivityHandlerImpl) HandleGetActivity(c echo.Context) error {
	limit := 50
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	if h.activity == nil {
		return c.JSON(http.StatusOK, []struct{}{})
	}

	entries, err := h.activity.Recent(c.Request().Context(), limit)
	if err != nil {
		return NewInternalError("failed to query activity", err)
	}

	switch c.QueryParam("format") {
	case "", "json":
		return c.JSON(http.StatusOK, entries)
	case "msgpack":
		data, err := history.EncodeMsgpack(entries)
		if err != nil {
			return NewInternalError("failed to encode activity", err)
		}
		return c.Blob(http.StatusOK, "application/x-msgpack", data)
	case "csv":
		data, err := history.EncodeCSV(entries)
		if err != nil {
			return NewInternalError("failed to encode activity", err)
		}
		c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="activity.csv"`)
		return c.Blob(http.StatusOK, "text/csv", data)
	default:
		return NewValidationError("format")
	}
}
