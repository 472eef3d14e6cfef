package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/filepanel/backend/internal/models"
)

// Store defines the interface for file storage.
type Store interface {
	Save(name string, contentType string, r io.Reader) (*models.FileRecord, error)
	SaveBytes(name string, contentType string, data []byte) (*models.FileRecord, error)
	Get(id string) (*models.FileRecord, error)
	Open(id string) (io.ReadCloser, error)
	List(limit int) ([]*models.FileRecord, error)
	Delete(id string) error
	Rename(id string, newName string) (*models.FileRecord, error)
	Copy(id string) (*models.FileRecord, error)
	Move(id string, folder string) (*models.FileRecord, error)
	GetFilePath(id string) (string, error)
	RegisterFile(rec *models.FileRecord)
	SaveChunk(uploadID string, chunkIndex int, r io.Reader) error
	CompleteChunkedUpload(uploadID string, name string, contentType string, totalChunks int) (*models.FileRecord, error)
}

// LocalStore implements Store using the local filesystem for payloads and an
// in-memory map for records.
type LocalStore struct {
	mu        sync.RWMutex
	uploadDir string
	files     map[string]*models.FileRecord
}

// NewLocalStore creates a new LocalStore.
func NewLocalStore(uploadDir string) (*LocalStore, error) {
	if err := os.MkdirAll(uploadDir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload directory: %w", err)
	}

	return &LocalStore{
		uploadDir: uploadDir,
		files:     make(map[string]*models.FileRecord),
	}, nil
}

// Save saves a file to the local filesystem.
func (s *LocalStore) Save(name string, contentType string, r io.Reader) (*models.FileRecord, error) {
	id := uuid.New().String()
	path := filepath.Join(s.uploadDir, id)

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer f.Close()

	size, err := io.Copy(f, r)
	if err != nil {
		os.Remove(path)
		return nil, fmt.Errorf("writing file: %w", err)
	}

	rec := &models.FileRecord{
		ID:          id,
		Name:        name,
		Size:        size,
		ContentType: contentType,
		UploadedAt:  time.Now(),
		Status:      models.StatusUploaded,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[id] = rec

	return rec, nil
}

// SaveBytes saves in-memory content as a new file.
func (s *LocalStore) SaveBytes(name string, contentType string, data []byte) (*models.FileRecord, error) {
	return s.Save(name, contentType, bytes.NewReader(data))
}

// Get retrieves file metadata by ID.
func (s *LocalStore) Get(id string) (*models.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}

	return rec, nil
}

// Open returns a reader over the stored payload.
func (s *LocalStore) Open(id string) (io.ReadCloser, error) {
	path, err := s.GetFilePath(id)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// List returns the most recent files.
func (s *LocalStore) List(limit int) ([]*models.FileRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.FileRecord
	for _, rec := range s.files {
		list = append(list, rec)
	}

	// Sort by UploadedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}

	return list, nil
}

// Delete removes a file from storage.
func (s *LocalStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("file not found: %s", id)
	}

	path := filepath.Join(s.uploadDir, id)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("deleting file: %w", err)
	}

	delete(s.files, id)

	return nil
}

// Rename updates the display name of a file.
func (s *LocalStore) Rename(id string, newName string) (*models.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}

	rec.Name = newName
	return rec, nil
}

// Copy duplicates a file's payload and record under a fresh ID.
func (s *LocalStore) Copy(id string) (*models.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}

	newID := uuid.New().String()
	srcPath := filepath.Join(s.uploadDir, id)
	dstPath := filepath.Join(s.uploadDir, newID)

	in, err := os.Open(srcPath)
	if err != nil {
		return nil, fmt.Errorf("opening source payload: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dstPath)
	if err != nil {
		return nil, fmt.Errorf("creating copy payload: %w", err)
	}
	defer out.Close()

	size, err := io.Copy(out, in)
	if err != nil {
		os.Remove(dstPath)
		return nil, fmt.Errorf("copying payload: %w", err)
	}

	rec := &models.FileRecord{
		ID:          newID,
		Name:        copyName(src.Name),
		Size:        size,
		ContentType: src.ContentType,
		Folder:      src.Folder,
		UploadedAt:  time.Now(),
		Status:      src.Status,
	}
	s.files[newID] = rec

	return rec, nil
}

// Move assigns a file to a folder. The payload stays in place; folders are a
// grouping label on the record.
func (s *LocalStore) Move(id string, folder string) (*models.FileRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", id)
	}

	rec.Folder = folder
	return rec, nil
}

// GetFilePath returns the absolute path to a file.
func (s *LocalStore) GetFilePath(id string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if _, ok := s.files[id]; !ok {
		return "", fmt.Errorf("file not found: %s", id)
	}

	return filepath.Join(s.uploadDir, id), nil
}

// RegisterFile inserts or replaces a record. Used when processing rewrites a
// payload in place and the metadata needs updating.
func (s *LocalStore) RegisterFile(rec *models.FileRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[rec.ID] = rec
}

// SaveChunk saves a single chunk to a temporary location.
func (s *LocalStore) SaveChunk(uploadID string, chunkIndex int, r io.Reader) error {
	chunkDir := filepath.Join(s.uploadDir, "chunks", uploadID)
	if err := os.MkdirAll(chunkDir, 0755); err != nil {
		return fmt.Errorf("creating chunk directory: %w", err)
	}

	path := filepath.Join(chunkDir, fmt.Sprintf("chunk_%d", chunkIndex))
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating chunk file: %w", err)
	}
	defer f.Close()

	_, err = io.Copy(f, r)
	if err != nil {
		return fmt.Errorf("writing chunk: %w", err)
	}

	return nil
}

// CompleteChunkedUpload assembles all chunks into a final file.
func (s *LocalStore) CompleteChunkedUpload(uploadID string, name string, contentType string, totalChunks int) (*models.FileRecord, error) {
	id := uuid.New().String()
	finalPath := filepath.Join(s.uploadDir, id)
	chunkDir := filepath.Join(s.uploadDir, "chunks", uploadID)

	out, err := os.Create(finalPath)
	if err != nil {
		return nil, fmt.Errorf("creating final file: %w", err)
	}
	defer out.Close()

	var totalSize int64
	for i := 0; i < totalChunks; i++ {
		chunkPath := filepath.Join(chunkDir, fmt.Sprintf("chunk_%d", i))
		in, err := os.Open(chunkPath)
		if err != nil {
			return nil, fmt.Errorf("opening chunk %d: %w", i, err)
		}

		n, err := io.Copy(out, in)
		in.Close()
		if err != nil {
			return nil, fmt.Errorf("copying chunk %d: %w", i, err)
		}
		totalSize += n
	}

	rec := &models.FileRecord{
		ID:          id,
		Name:        name,
		Size:        totalSize,
		ContentType: contentType,
		UploadedAt:  time.Now(),
		Status:      models.StatusUploaded,
	}

	s.mu.Lock()
	s.files[id] = rec
	s.mu.Unlock()

	// Cleanup chunks
	os.RemoveAll(chunkDir)

	return rec, nil
}

// copyName derives the display name for a duplicated file, keeping the
// extension so conversion targeting still works on the copy.
func copyName(name string) string {
	ext := filepath.Ext(name)
	base := name[:len(name)-len(ext)]
	return base + " (copy)" + ext
}
