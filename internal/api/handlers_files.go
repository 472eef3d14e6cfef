// handlers_files.go - File list operation handlers
package api

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gabriel-vasile/mimetype"
	"github.com/labstack/echo/v4"

	"github.com/filepanel/backend/internal/models"
	"github.com/filepanel/backend/internal/storage"
)

// FileHandlerImpl implements the FileHandler interface
type FileHandlerImpl struct {
	store         storage.Store
	activity      ActivityLog
	allowDeletion bool
}

// NewFileHandler creates a new file handler instance
func NewFileHandler(store storage.Store, activity ActivityLog, allowDeletion bool) FileHandler {
	return &FileHandlerImpl{
		store:         store,
		activity:      activity,
		allowDeletion: allowDeletion,
	}
}

// HandleUploadFile accepts a file as base64 JSON and saves it to storage
func (h *FileHandlerImpl) HandleUploadFile(c echo.Context) error {
	var req uploadFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	// Decode base64 content
	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(decoded).String()
	}

	rec, err := h.store.SaveBytes(req.Name, contentType, decoded)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	h.record(c, models.OpUpload, rec, "")
	return c.JSON(http.StatusCreated, rec)
}

// HandleUploadBinary accepts raw binary file upload (multipart/form-data)
func (h *FileHandlerImpl) HandleUploadBinary(c echo.Context) error {
	file, err := c.FormFile("file")
	if err != nil {
		return NewBadRequestError("no file provided", err)
	}

	src, err := file.Open()
	if err != nil {
		return NewInternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	contentType := file.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		if mtype, err := mimetype.DetectReader(src); err == nil {
			contentType = mtype.String()
		}
		if _, err := src.Seek(0, 0); err != nil {
			return NewInternalError("failed to rewind uploaded file", err)
		}
	}

	rec, err := h.store.Save(file.Filename, contentType, src)
	if err != nil {
		return NewInternalError("failed to save file", err)
	}

	h.record(c, models.OpUpload, rec, "")
	return c.JSON(http.StatusCreated, rec)
}

// HandleUploadChunk accepts a single chunk of a chunked upload
func (h *FileHandlerImpl) HandleUploadChunk(c echo.Context) error {
	var req uploadChunkRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	decoded, err := base64.StdEncoding.DecodeString(req.Data)
	if err != nil {
		return NewBadRequestError("invalid base64 data", err)
	}

	if err := h.store.SaveChunk(req.UploadID, req.ChunkIndex, bytes.NewReader(decoded)); err != nil {
		return NewInternalError("failed to save chunk", err)
	}

	return c.NoContent(http.StatusAccepted)
}

// HandleCompleteUpload assembles a chunked upload into a file record
func (h *FileHandlerImpl) HandleCompleteUpload(c echo.Context) error {
	var req completeUploadRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	rec, err := h.store.CompleteChunkedUpload(req.UploadID, req.Name, req.ContentType, req.TotalChunks)
	if err != nil {
		return NewInternalError("failed to assemble upload", err)
	}

	h.record(c, models.OpUpload, rec, "chunked")
	return c.JSON(http.StatusCreated, rec)
}

// HandleListFiles returns the current file list, newest first
func (h *FileHandlerImpl) HandleListFiles(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return NewValidationError("limit")
		}
		limit = n
	}

	files, err := h.store.List(limit)
	if err != nil {
		return NewInternalError("failed to list files", err)
	}

	return c.JSON(http.StatusOK, files)
}

// HandleGetFile returns metadata for a specific file
func (h *FileHandlerImpl) HandleGetFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	rec, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	return c.JSON(http.StatusOK, rec)
}

// HandleDownloadFile streams a file payload as an attachment
func (h *FileHandlerImpl) HandleDownloadFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	rec, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	src, err := h.store.Open(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	defer src.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, rec.Name))
	return c.Stream(http.StatusOK, rec.ContentType, src)
}

// HandleRenameFile updates the name of a file
func (h *FileHandlerImpl) HandleRenameFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req renameFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if req.Name == "" {
		return NewValidationError("name")
	}

	prev, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}
	oldName := prev.Name

	rec, err := h.store.Rename(id, req.Name)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	h.record(c, models.OpRename, rec, oldName+" -> "+rec.Name)
	return c.JSON(http.StatusOK, rec)
}

// HandleCopyFile duplicates a file under a fresh ID
func (h *FileHandlerImpl) HandleCopyFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	rec, err := h.store.Copy(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	h.record(c, models.OpCopy, rec, "from "+id)
	return c.JSON(http.StatusCreated, rec)
}

// HandleMoveFile assigns a file to a folder
func (h *FileHandlerImpl) HandleMoveFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	var req moveFileRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	rec, err := h.store.Move(id, req.Folder)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	h.record(c, models.OpMove, rec, "to "+req.Folder)
	return c.JSON(http.StatusOK, rec)
}

// HandleDeleteFile deletes a file
func (h *FileHandlerImpl) HandleDeleteFile(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return NewValidationError("id")
	}

	rec, err := h.store.Get(id)
	if err != nil {
		return NewNotFoundError("file", id)
	}

	if err := h.store.Delete(id); err != nil {
		return NewNotFoundError("file", id)
	}

	h.record(c, models.OpDelete, rec, "")
	return c.NoContent(http.StatusNoContent)
}

// HandleBatch applies one operation to a selection of files. Failures are
// reported per item; the batch always runs to the end.
func (h *FileHandlerImpl) HandleBatch(c echo.Context) error {
	var req batchRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid request body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	if req.Op == "delete" && !h.allowDeletion {
		return NewForbiddenError("file deletion is disabled")
	}

	results := make([]batchItemResult, 0, len(req.IDs))
	for _, id := range req.IDs {
		res := batchItemResult{ID: id}

		switch req.Op {
		case "delete":
			rec, err := h.store.Get(id)
			if err == nil {
				err = h.store.Delete(id)
			}
			if err != nil {
				res.Error = err.Error()
			} else {
				h.record(c, models.OpDelete, rec, "batch")
			}
		case "move":
			rec, err := h.store.Move(id, req.Folder)
			if err != nil {
				res.Error = err.Error()
			} else {
				h.record(c, models.OpMove, rec, "batch to "+req.Folder)
			}
		case "copy":
			rec, err := h.store.Copy(id)
			if err != nil {
				res.Error = err.Error()
			} else {
				res.ResultID = rec.ID
				h.record(c, models.OpCopy, rec, "batch from "+id)
			}
		}

		results = append(results, res)
	}

	return c.JSON(http.StatusOK, batchResponse{Results: results})
}

// record appends to the activity log, ignoring log failures: the operation
// itself already succeeded.
func (h *FileHandlerImpl) record(c echo.Context, op string, rec *models.FileRecord, detail string) {
	if h.activity == nil {
		return
	}
	_ = h.activity.Record(c.Request().Context(), op, rec.ID, rec.Name, detail)
}

// Request/Response types

type uploadFileRequest struct {
	Name        string `json:"name"`
	Data        string `json:"data"` // Base64-encoded content
	ContentType string `json:"contentType"`
}

func (r *uploadFileRequest) validate() error {
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	return nil
}

type uploadChunkRequest struct {
	UploadID   string `json:"uploadId"`
	ChunkIndex int    `json:"chunkIndex"`
	Data       string `json:"data"` // Base64-encoded chunk
}

func (r *uploadChunkRequest) validate() error {
	if r.UploadID == "" {
		return NewValidationError("uploadId")
	}
	if r.Data == "" {
		return NewValidationError("data")
	}
	if r.ChunkIndex < 0 {
		return NewBadRequestError("chunkIndex must not be negative", nil)
	}
	return nil
}

type completeUploadRequest struct {
	UploadID    string `json:"uploadId"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	TotalChunks int    `json:"totalChunks"`
}

func (r *completeUploadRequest) validate() error {
	if r.UploadID == "" {
		return NewValidationError("uploadId")
	}
	if r.Name == "" {
		return NewValidationError("name")
	}
	if r.TotalChunks <= 0 {
		return NewBadRequestError("totalChunks must be positive", nil)
	}
	return nil
}

type renameFileRequest struct {
	Name string `json:"name"`
}

type moveFileRequest struct {
	Folder string `json:"folder"`
}

type batchRequest struct {
	Op     string   `json:"op"` // "delete", "move", "copy"
	IDs    []string `json:"ids"`
	Folder string   `json:"folder"`
}

func (r *batchRequest) validate() error {
	switch r.Op {
	case "delete", "copy":
	case "move":
		if r.Folder == "" {
			return NewValidationError("folder")
		}
	default:
		return NewValidationError("op")
	}
	if len(r.IDs) == 0 {
		return NewValidationError("ids")
	}
	return nil
}

type batchItemResult struct {
	ID       string `json:"id"`
	ResultID string `json:"resultId,omitempty"`
	Error    string `json:"error,omitempty"`
}

type batchResponse struct {
	Results []batchItemResult `json:"results"`
}
