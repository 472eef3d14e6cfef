// Package jobs runs the panel's async batch operations (image compression,
// document conversion) over stored files.
package jobs

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/filepanel/backend/internal/convert"
	"github.com/filepanel/backend/internal/imaging"
	"github.com/filepanel/backend/internal/models"
	"github.com/filepanel/backend/internal/storage"
)

// Status represents the batch job status.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusComplete   Status = "complete"
	StatusError      Status = "error"
)

// Job kinds
const (
	KindCompress = "compress"
	KindConvert  = "convert"
)

// ItemResult is the outcome for one file in a batch.
type ItemResult struct {
	FileID   string `json:"fileId"`
	FileName string `json:"fileName"`
	ResultID string `json:"resultId,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Job represents an async batch job.
type Job struct {
	ID          string       `json:"id"`
	Kind        string       `json:"kind"`
	Status      Status       `json:"status"`
	Progress    float64      `json:"progress"`
	Stage       string       `json:"stage"`
	Items       []ItemResult `json:"items"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   time.Time    `json:"createdAt"`
	CompletedAt *time.Time   `json:"completedAt,omitempty"`
}

// Recorder appends finished operations to the activity log.
type Recorder interface {
	Record(ctx context.Context, op, fileID, fileName, detail string) error
}

// Options configures job processing.
type Options struct {
	// MaxWorkers bounds per-job concurrency. Zero means 3.
	MaxWorkers int
	// Imaging holds the compression settings applied by compress jobs.
	Imaging imaging.Options
}

// Manager handles async batch processing.
type Manager struct {
	jobs     map[string]*Job
	mu       sync.RWMutex
	store    storage.Store
	registry *convert.Registry
	recorder Recorder
	opts     Options

	subMu       sync.Mutex
	subscribers map[chan Job]struct{}
}

// NewManager creates a new batch job manager.
func NewManager(store storage.Store, registry *convert.Registry, recorder Recorder, opts Options) *Manager {
	if opts.MaxWorkers <= 0 {
		opts.MaxWorkers = 3
	}
	return &Manager{
		jobs:        make(map[string]*Job),
		store:       store,
		registry:    registry,
		recorder:    recorder,
		opts:        opts,
		subscribers: make(map[chan Job]struct{}),
	}
}

// StartCompressJob begins async compression of the given stored files. Each
// successfully compressed image is saved as a new file record.
func (m *Manager) StartCompressJob(fileIDs []string) (*Job, error) {
	return m.startJob(KindCompress, fileIDs, func(ctx context.Context, item *ItemResult) error {
		data, name, err := m.readPayload(item.FileID)
		if err != nil {
			return err
		}
		item.FileName = name

		res, err := imaging.Compress(data, m.opts.Imaging)
		if err != nil {
			return err
		}

		rec, err := m.store.SaveBytes(imaging.JPEGName(name), res.ContentType, res.Data)
		if err != nil {
			return err
		}
		rec.Status = models.StatusReady
		m.store.RegisterFile(rec)
		item.ResultID = rec.ID

		if m.recorder != nil {
			detail := fmt.Sprintf("%dx%d -> %dx%d", res.OriginalWidth, res.OriginalHeight, res.Width, res.Height)
			m.recorder.Record(ctx, models.OpCompress, rec.ID, rec.Name, detail)
		}
		return nil
	})
}

// StartConvertJob begins async conversion of the given stored files to the
// target format. Each converted document is saved as a new file record.
func (m *Manager) StartConvertJob(fileIDs []string, targetFormat string) (*Job, error) {
	if targetFormat == "" {
		return nil, fmt.Errorf("empty target format")
	}
	return m.startJob(KindConvert, fileIDs, func(ctx context.Context, item *ItemResult) error {
		data, name, err := m.readPayload(item.FileID)
		if err != nil {
			return err
		}
		item.FileName = name

		res, err := m.registry.Convert(name, targetFormat, data)
		if err != nil {
			return err
		}

		rec, err := m.store.SaveBytes(res.FileName, convert.TypeByExtension(targetFormat), res.Data)
		if err != nil {
			return err
		}
		rec.Status = models.StatusReady
		m.store.RegisterFile(rec)
		item.ResultID = rec.ID

		if m.recorder != nil {
			m.recorder.Record(ctx, models.OpConvert, rec.ID, rec.Name, res.Converter)
		}
		return nil
	})
}

// startJob registers the job and processes items on background goroutines with
// bounded concurrency.
func (m *Manager) startJob(kind string, fileIDs []string, process func(ctx context.Context, item *ItemResult) error) (*Job, error) {
	if len(fileIDs) == 0 {
		return nil, fmt.Errorf("no files given")
	}

	job := &Job{
		ID:        uuid.New().String(),
		Kind:      kind,
		Status:    StatusProcessing,
		Stage:     "queued",
		Items:     make([]ItemResult, len(fileIDs)),
		CreatedAt: time.Now(),
	}
	for i, id := range fileIDs {
		job.Items[i] = ItemResult{FileID: id}
	}

	m.mu.Lock()
	m.jobs[job.ID] = job
	m.mu.Unlock()

	go m.processJob(job, process)

	return job, nil
}

func (m *Manager) processJob(job *Job, process func(ctx context.Context, item *ItemResult) error) {
	m.updateStage(job, "processing", 0)

	total := len(job.Items)
	var done int

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(m.opts.MaxWorkers)

	for i := range job.Items {
		i := i
		g.Go(func() error {
			item := ItemResult{FileID: job.Items[i].FileID}
			err := process(ctx, &item)
			if err != nil {
				item.Error = err.Error()
			}

			m.mu.Lock()
			job.Items[i] = item
			done++
			job.Progress = float64(done) / float64(total) * 100
			snapshot := snapshotLocked(job)
			m.mu.Unlock()
			m.broadcast(snapshot)

			// Item failures are reported per item, never abort the batch.
			return nil
		})
	}
	g.Wait()

	m.mu.Lock()
	job.Status = StatusComplete
	job.Progress = 100
	job.Stage = "done"
	var failed int
	for _, item := range job.Items {
		if item.Error != "" {
			failed++
		}
	}
	if failed == total {
		job.Status = StatusError
		job.Error = "all items failed"
	}
	now := time.Now()
	job.CompletedAt = &now
	snapshot := snapshotLocked(job)
	m.mu.Unlock()

	m.broadcast(snapshot)
}

// GetJob retrieves a snapshot of a job by ID.
func (m *Manager) GetJob(id string) (Job, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, false
	}
	return snapshotLocked(job), true
}

// Subscribe registers for job progress snapshots. The returned cancel func
// must be called to release the channel.
func (m *Manager) Subscribe() (<-chan Job, func()) {
	ch := make(chan Job, 16)
	m.subMu.Lock()
	m.subscribers[ch] = struct{}{}
	m.subMu.Unlock()

	cancel := func() {
		m.subMu.Lock()
		delete(m.subscribers, ch)
		m.subMu.Unlock()
	}
	return ch, cancel
}

// broadcast pushes a snapshot to all subscribers, dropping updates for slow
// consumers rather than blocking job processing.
func (m *Manager) broadcast(snapshot Job) {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	for ch := range m.subscribers {
		select {
		case ch <- snapshot:
		default:
		}
	}
}

func (m *Manager) updateStage(job *Job, stage string, progress float64) {
	m.mu.Lock()
	job.Stage = stage
	job.Progress = progress
	snapshot := snapshotLocked(job)
	m.mu.Unlock()
	m.broadcast(snapshot)
}

// snapshotLocked copies a job, including its item slice, for readers outside
// the manager lock. Callers must hold mu.
func snapshotLocked(job *Job) Job {
	snapshot := *job
	snapshot.Items = append([]ItemResult(nil), job.Items...)
	return snapshot
}

func (m *Manager) readPayload(fileID string) ([]byte, string, error) {
	rec, err := m.store.Get(fileID)
	if err != nil {
		return nil, "", err
	}
	r, err := m.store.Open(fileID)
	if err != nil {
		return nil, "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	return data, rec.Name, nil
}

// CleanupOldJobs removes finished jobs older than the specified duration.
func (m *Manager) CleanupOldJobs(maxAge time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for id, job := range m.jobs {
		if job.Status == StatusComplete || job.Status == StatusError {
			if job.CompletedAt != nil && job.CompletedAt.Before(cutoff) {
				delete(m.jobs, id)
			}
		}
	}
}
