// mock_storage.go - Mock storage implementation for testing
package testutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/filepanel/backend/internal/models"
)

// MockStorage implements storage.Store in memory for handler tests.
type MockStorage struct {
	files    map[string]*models.FileRecord
	fileData map[string][]byte
	chunks   map[string]map[int][]byte // uploadID -> chunkIndex -> data
	nextID   int
	mu       sync.RWMutex
}

// NewMockStorage creates a new mock storage
func NewMockStorage() *MockStorage {
	return &MockStorage{
		files:    make(map[string]*models.FileRecord),
		fileData: make(map[string][]byte),
		chunks:   make(map[string]map[int][]byte),
	}
}

// AddFile seeds the mock with a record under a fixed ID.
func (m *MockStorage) AddFile(id, name string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[id] = &models.FileRecord{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: time.Now(),
		Status:     models.StatusUploaded,
	}
	m.fileData[id] = data
}

func (m *MockStorage) Save(name string, contentType string, r io.Reader) (*models.FileRecord, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return m.SaveBytes(name, contentType, data)
}

func (m *MockStorage) SaveBytes(name string, contentType string, data []byte) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	id := fmt.Sprintf("mock-%d", m.nextID)
	rec := &models.FileRecord{
		ID:          id,
		Name:        name,
		Size:        int64(len(data)),
		ContentType: contentType,
		UploadedAt:  time.Now(),
		Status:      models.StatusUploaded,
	}

	m.files[id] = rec
	m.fileData[id] = data
	return rec, nil
}

func (m *MockStorage) Get(id string) (*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rec, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return rec, nil
}

func (m *MockStorage) Open(id string) (io.ReadCloser, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.fileData[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *MockStorage) List(limit int) ([]*models.FileRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var files []*models.FileRecord
	for _, rec := range m.files {
		files = append(files, rec)
		if limit > 0 && len(files) >= limit {
			break
		}
	}
	return files, nil
}

func (m *MockStorage) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.files[id]; !ok {
		return errors.New("file not found")
	}
	delete(m.files, id)
	delete(m.fileData, id)
	return nil
}

func (m *MockStorage) Rename(id string, newName string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	rec.Name = newName
	return rec, nil
}

func (m *MockStorage) Copy(id string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	src, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}

	m.nextID++
	newID := fmt.Sprintf("mock-%d", m.nextID)
	dup := *src
	dup.ID = newID
	dup.UploadedAt = time.Now()
	m.files[newID] = &dup
	m.fileData[newID] = append([]byte(nil), m.fileData[id]...)
	return &dup, nil
}

func (m *MockStorage) Move(id string, folder string) (*models.FileRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.files[id]
	if !ok {
		return nil, errors.New("file not found")
	}
	rec.Folder = folder
	return rec, nil
}

func (m *MockStorage) GetFilePath(id string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.files[id]; !ok {
		return "", errors.New("file not found")
	}
	return "/mock/" + id, nil
}

func (m *MockStorage) RegisterFile(rec *models.FileRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.files[rec.ID] = rec
}

func (m *MockStorage) SaveChunk(uploadID string, chunkIndex int, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.chunks[uploadID] == nil {
		m.chunks[uploadID] = make(map[int][]byte)
	}
	m.chunks[uploadID][chunkIndex] = data
	return nil
}

func (m *MockStorage) CompleteChunkedUpload(uploadID string, name string, contentType string, totalChunks int) (*models.FileRecord, error) {
	m.mu.Lock()
	chunks, ok := m.chunks[uploadID]
	m.mu.Unlock()
	if !ok {
		return nil, errors.New("upload not found")
	}

	var buf bytes.Buffer
	for i := 0; i < totalChunks; i++ {
		data, ok := chunks[i]
		if !ok {
			return nil, fmt.Errorf("missing chunk %d", i)
		}
		buf.Write(data)
	}

	rec, err := m.SaveBytes(name, contentType, buf.Bytes())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	delete(m.chunks, uploadID)
	m.mu.Unlock()
	return rec, nil
}
