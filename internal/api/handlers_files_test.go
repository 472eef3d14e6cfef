// handlers_files_test.go - Tests for file list handlers
package api

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/filepanel/backend/internal/models"
	"github.com/filepanel/backend/internal/testutil"
)

func TestFileHandler_HandleUploadFile(t *testing.T) {
	tests := []struct {
		name       string
		request    uploadFileRequest
		wantStatus int
		wantErr    bool
		errCode    string
	}{
		{
			name: "valid file upload",
			request: uploadFileRequest{
				Name: "test.txt",
				Data: base64.StdEncoding.EncodeToString([]byte("hello world")),
			},
			wantStatus: http.StatusCreated,
			wantErr:    false,
		},
		{
			name: "empty name",
			request: uploadFileRequest{
				Name: "",
				Data: base64.StdEncoding.EncodeToString([]byte("content")),
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name: "empty data",
			request: uploadFileRequest{
				Name: "test.txt",
				Data: "",
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
		{
			name: "invalid base64",
			request: uploadFileRequest{
				Name: "test.txt",
				Data: "not-valid-base64!!!",
			},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "BAD_REQUEST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Setup
			store := testutil.NewMockStorage()
			handler := NewFileHandler(store, nil, true)

			e := echo.New()
			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/api/files/upload", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			// Execute
			err := handler.HandleUploadFile(c)

			// Assert
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error, got nil")
					return
				}
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Errorf("expected APIError, got %T", err)
					return
				}
				if apiErr.Status != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, apiErr.Status)
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected error code %s, got %s", tt.errCode, apiErr.Code)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if rec.Code != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
				}

				var response models.FileRecord
				if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
					t.Errorf("failed to unmarshal response: %v", err)
					return
				}
				if response.ID == "" {
					t.Error("expected non-empty ID in response")
				}
				if response.Name != tt.request.Name {
					t.Errorf("expected name %s, got %s", tt.request.Name, response.Name)
				}
				if response.ContentType == "" {
					t.Error("expected sniffed content type")
				}
			}
		})
	}
}

func TestFileHandler_UploadNFiles(t *testing.T) {
	store := testutil.NewMockStorage()
	handler := NewFileHandler(store, nil, true)
	e := echo.New()

	const n = 5
	payloads := map[string]int{}
	for i := 0; i < n; i++ {
		name := fmt.Sprintf("file%d.txt", i)
		content := bytes.Repeat([]byte("x"), i+10)
		payloads[name] = len(content)

		body, _ := json.Marshal(uploadFileRequest{
			Name: name,
			Data: base64.StdEncoding.EncodeToString(content),
		})
		req := httptest.NewRequest(http.MethodPost, "/api/files/upload", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		if err := handler.HandleUploadFile(e.NewContext(req, rec)); err != nil {
			t.Fatalf("upload %d: %v", i, err)
		}
	}

	// List and check metadata
	req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
	rec := httptest.NewRecorder()
	if err := handler.HandleListFiles(e.NewContext(req, rec)); err != nil {
		t.Fatalf("HandleListFiles: %v", err)
	}

	var files []models.FileRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &files); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(files) != n {
		t.Fatalf("expected %d records, got %d", n, len(files))
	}
	for _, f := range files {
		wantSize, ok := payloads[f.Name]
		if !ok {
			t.Errorf("unexpected record %s", f.Name)
			continue
		}
		if f.Size != int64(wantSize) {
			t.Errorf("record %s: expected size %d, got %d", f.Name, wantSize, f.Size)
		}
	}
}

func TestFileHandler_HandleUploadBinary(t *testing.T) {
	store := testutil.NewMockStorage()
	handler := NewFileHandler(store, nil, true)
	e := echo.New()

	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	part, _ := writer.CreateFormFile("file", "upload.bin")
	part.Write([]byte{0x01, 0x02, 0x03, 0x04})
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/files/upload/binary", body)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.HandleUploadBinary(c); err != nil {
		t.Fatalf("HandleUploadBinary: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201, got %d", rec.Code)
	}

	var response models.FileRecord
	json.Unmarshal(rec.Body.Bytes(), &response)
	if response.Name != "upload.bin" || response.Size != 4 {
		t.Errorf("unexpected record: %+v", response)
	}

	// Missing file part
	req = httptest.NewRequest(http.MethodPost, "/api/files/upload/binary", nil)
	rec = httptest.NewRecorder()
	err := handler.HandleUploadBinary(e.NewContext(req, rec))
	if err == nil {
		t.Fatal("expected error for missing file part")
	}
	if apiErr, ok := err.(*APIError); !ok || apiErr.Status != http.StatusBadRequest {
		t.Errorf("expected 400 APIError, got %v", err)
	}
}

func TestFileHandler_HandleDeleteFile(t *testing.T) {
	tests := []struct {
		name       string
		fileID     string
		setupFiles map[string][]byte
		wantStatus int
		wantErr    bool
		errCode    string
	}{
		{
			name:   "delete existing file",
			fileID: "test-id-1",
			setupFiles: map[string][]byte{
				"test-id-1": []byte("content"),
			},
			wantStatus: http.StatusNoContent,
			wantErr:    false,
		},
		{
			name:       "delete non-existent file",
			fileID:     "does-not-exist",
			setupFiles: map[string][]byte{},
			wantStatus: http.StatusNotFound,
			wantErr:    true,
			errCode:    "NOT_FOUND",
		},
		{
			name:       "missing id",
			fileID:     "",
			setupFiles: map[string][]byte{},
			wantStatus: http.StatusBadRequest,
			wantErr:    true,
			errCode:    "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStorage()
			for id, data := range tt.setupFiles {
				store.AddFile(id, "test.txt", data)
			}
			handler := NewFileHandler(store, nil, true)

			e := echo.New()
			req := httptest.NewRequest(http.MethodDelete, "/api/files/:id", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			c.SetParamNames("id")
			c.SetParamValues(tt.fileID)

			err := handler.HandleDeleteFile(c)

			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
					return
				}
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Errorf("expected APIError, got %T", err)
					return
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected error code %s, got %s", tt.errCode, apiErr.Code)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
				if rec.Code != tt.wantStatus {
					t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
				}
			}
		})
	}
}

func TestFileHandler_HandleBatch(t *testing.T) {
	tests := []struct {
		name          string
		request       batchRequest
		allowDeletion bool
		seed          []string
		wantErr       bool
		errCode       string
		checkResults  func(t *testing.T, results []batchItemResult, store *testutil.MockStorage)
	}{
		{
			name:          "batch delete removes exactly the selected ids",
			request:       batchRequest{Op: "delete", IDs: []string{"a", "c"}},
			allowDeletion: true,
			seed:          []string{"a", "b", "c", "d"},
			checkResults: func(t *testing.T, results []batchItemResult, store *testutil.MockStorage) {
				for _, res := range results {
					if res.Error != "" {
						t.Errorf("item %s failed: %s", res.ID, res.Error)
					}
				}
				files, _ := store.List(0)
				if len(files) != 2 {
					t.Fatalf("expected 2 survivors, got %d", len(files))
				}
				for _, f := range files {
					if f.ID == "a" || f.ID == "c" {
						t.Errorf("file %s should have been deleted", f.ID)
					}
				}
			},
		},
		{
			name:          "batch delete reports missing ids per item",
			request:       batchRequest{Op: "delete", IDs: []string{"a", "ghost"}},
			allowDeletion: true,
			seed:          []string{"a"},
			checkResults: func(t *testing.T, results []batchItemResult, store *testutil.MockStorage) {
				if results[0].Error != "" {
					t.Errorf("expected first item to succeed: %s", results[0].Error)
				}
				if results[1].Error == "" {
					t.Error("expected error for missing file")
				}
			},
		},
		{
			name:          "batch move assigns folder",
			request:       batchRequest{Op: "move", IDs: []string{"a", "b"}, Folder: "archive"},
			allowDeletion: true,
			seed:          []string{"a", "b"},
			checkResults: func(t *testing.T, results []batchItemResult, store *testutil.MockStorage) {
				for _, id := range []string{"a", "b"} {
					rec, _ := store.Get(id)
					if rec.Folder != "archive" {
						t.Errorf("file %s not moved: folder=%q", id, rec.Folder)
					}
				}
			},
		},
		{
			name:          "batch copy creates new records",
			request:       batchRequest{Op: "copy", IDs: []string{"a"}},
			allowDeletion: true,
			seed:          []string{"a"},
			checkResults: func(t *testing.T, results []batchItemResult, store *testutil.MockStorage) {
				if results[0].ResultID == "" {
					t.Fatal("expected result id for copy")
				}
				if _, err := store.Get(results[0].ResultID); err != nil {
					t.Errorf("copy record missing: %v", err)
				}
			},
		},
		{
			name:          "delete forbidden when disabled",
			request:       batchRequest{Op: "delete", IDs: []string{"a"}},
			allowDeletion: false,
			seed:          []string{"a"},
			wantErr:       true,
			errCode:       "FORBIDDEN",
		},
		{
			name:          "unknown op rejected",
			request:       batchRequest{Op: "truncate", IDs: []string{"a"}},
			allowDeletion: true,
			wantErr:       true,
			errCode:       "VALIDATION_ERROR",
		},
		{
			name:          "empty ids rejected",
			request:       batchRequest{Op: "delete", IDs: nil},
			allowDeletion: true,
			wantErr:       true,
			errCode:       "VALIDATION_ERROR",
		},
		{
			name:          "move without folder rejected",
			request:       batchRequest{Op: "move", IDs: []string{"a"}},
			allowDeletion: true,
			wantErr:       true,
			errCode:       "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := testutil.NewMockStorage()
			for _, id := range tt.seed {
				store.AddFile(id, id+".txt", []byte("content"))
			}
			handler := NewFileHandler(store, nil, tt.allowDeletion)

			e := echo.New()
			body, _ := json.Marshal(tt.request)
			req := httptest.NewRequest(http.MethodPost, "/api/files/batch", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler.HandleBatch(c)

			if tt.wantErr {
				apiErr, ok := err.(*APIError)
				if !ok {
					t.Fatalf("expected APIError, got %v", err)
				}
				if apiErr.Code != tt.errCode {
					t.Errorf("expected code %s, got %s", tt.errCode, apiErr.Code)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var response batchResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &response); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(response.Results) != len(tt.request.IDs) {
				t.Fatalf("expected %d results, got %d", len(tt.request.IDs), len(response.Results))
			}
			if tt.checkResults != nil {
				tt.checkResults(t, response.Results, store)
			}
		})
	}
}

func TestFileHandler_RenameCopyMove(t *testing.T) {
	store := testutil.NewMockStorage()
	store.AddFile("f1", "draft.txt", []byte("body"))
	handler := NewFileHandler(store, nil, true)
	e := echo.New()

	// Rename
	body, _ := json.Marshal(renameFileRequest{Name: "final.txt"})
	req := httptest.NewRequest(http.MethodPut, "/api/files/:id", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("f1")
	if err := handler.HandleRenameFile(c); err != nil {
		t.Fatalf("HandleRenameFile: %v", err)
	}
	got, _ := store.Get("f1")
	if got.Name != "final.txt" {
		t.Errorf("rename not applied: %s", got.Name)
	}

	// Copy
	req = httptest.NewRequest(http.MethodPost, "/api/files/:id/copy", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("f1")
	if err := handler.HandleCopyFile(c); err != nil {
		t.Fatalf("HandleCopyFile: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Errorf("expected 201 for copy, got %d", rec.Code)
	}

	// Move
	body, _ = json.Marshal(moveFileRequest{Folder: "docs"})
	req = httptest.NewRequest(http.MethodPost, "/api/files/:id/move", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("f1")
	if err := handler.HandleMoveFile(c); err != nil {
		t.Fatalf("HandleMoveFile: %v", err)
	}
	got, _ = store.Get("f1")
	if got.Folder != "docs" {
		t.Errorf("move not applied: %s", got.Folder)
	}
}
