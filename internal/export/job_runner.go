package export

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/logger"
	"tmsbilling/internal/port"
	"tmsbilling/internal/render"
)

// PDFExporter is the part of render.Exporter the runner needs.
type PDFExporter interface {
	ExportPDF(ctx context.Context, req render.ExportRequest, w io.Writer) (*render.ExportResult, error)
}

// JobRequest is a PDF export to run in the background. Snapshot holds the
// full encoded image; the request body it came from may be gone by the time
// the job runs.
type JobRequest struct {
	InvoiceID uuid.UUID
	FileName  string
	Width     float64
	Snapshot  []byte
}

// JobService submits and tracks export jobs.
type JobService interface {
	Submit(ctx context.Context, req JobRequest) (*domain.ExportJob, error)
	// Get returns domain.ErrExportJobNotFound for unknown ids. Completed
	// jobs carry a presigned DownloadURL.
	Get(ctx context.Context, id uuid.UUID) (*domain.ExportJob, error)
	// Download returns the archived PDF of a completed job.
	Download(ctx context.Context, id uuid.UUID) (*domain.ExportJob, []byte, error)
	// Discard forgets a finished job and removes its archived PDF.
	Discard(ctx context.Context, id uuid.UUID) error
}

// JobRunnerConfig holds settings for the export job runner.
type JobRunnerConfig struct {
	Concurrency   int
	Bucket        string
	KeyPrefix     string
	PresignExpiry int64
	JobTimeout    time.Duration
	Now           func() time.Time
}

// JobRunner renders PDFs with bounded concurrency and archives them in
// object storage. Job state lives in memory only.
type JobRunner struct {
	exporter PDFExporter
	storage  port.ObjectStorage
	cfg      JobRunnerConfig
	log      logrus.FieldLogger

	sem  chan struct{}
	wg   sync.WaitGroup
	mu   sync.RWMutex
	jobs map[uuid.UUID]*domain.ExportJob
}

// NewJobRunner creates a JobRunner.
func NewJobRunner(exporter PDFExporter, storage port.ObjectStorage, cfg JobRunnerConfig, log logrus.FieldLogger) *JobRunner {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 5 * time.Minute
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &JobRunner{
		exporter: exporter,
		storage:  storage,
		cfg:      cfg,
		log:      logger.Component(log, "export.JobRunner"),
		sem:      make(chan struct{}, cfg.Concurrency),
		jobs:     make(map[uuid.UUID]*domain.ExportJob),
	}
}

// Submit records a pending job and starts it. The job outlives ctx.
func (r *JobRunner) Submit(_ context.Context, req JobRequest) (*domain.ExportJob, error) {
	if len(req.Snapshot) == 0 {
		return nil, fmt.Errorf("export.Submit: %w: empty snapshot", domain.ErrInvalidSnapshot)
	}

	job := &domain.ExportJob{
		ID:        uuid.New(),
		InvoiceID: req.InvoiceID,
		FileName:  req.FileName,
		Status:    domain.ExportJobPending,
		CreatedAt: r.cfg.Now().UTC(),
	}
	r.mu.Lock()
	r.jobs[job.ID] = job
	snapshot := *job
	r.mu.Unlock()

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.sem <- struct{}{} // acquire
		defer func() { <-r.sem }()

		// Fresh context so in-flight exports complete even during shutdown.
		ctx, cancel := context.WithTimeout(context.Background(), r.cfg.JobTimeout)
		defer cancel()
		r.run(ctx, job.ID, req)
	}()

	r.log.WithFields(logrus.Fields{
		"job_id":     job.ID,
		"invoice_id": req.InvoiceID,
	}).Info("export.Submit: job queued")
	return &snapshot, nil
}

func (r *JobRunner) run(ctx context.Context, id uuid.UUID, req JobRequest) {
	r.update(id, func(j *domain.ExportJob) { j.Status = domain.ExportJobRunning })

	var buf bytes.Buffer
	res, err := r.exporter.ExportPDF(ctx, render.ExportRequest{
		Region:   render.SnapshotRegion(req.Width, req.Snapshot),
		FileName: req.FileName,
	}, &buf)
	if err != nil {
		r.fail(id, err)
		return
	}

	key := path.Join(r.cfg.KeyPrefix, req.InvoiceID.String(), id.String(), req.FileName)
	if _, err := r.storage.Upload(ctx, port.UploadInput{
		Bucket:      r.cfg.Bucket,
		Key:         key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: "application/pdf",
		Size:        int64(buf.Len()),
	}); err != nil {
		r.fail(id, fmt.Errorf("archiving export: %w", err))
		return
	}

	completed := r.cfg.Now().UTC()
	r.update(id, func(j *domain.ExportJob) {
		j.Status = domain.ExportJobCompleted
		j.Pages = res.Pages
		j.ObjectKey = key
		j.CompletedAt = &completed
	})
	r.log.WithFields(logrus.Fields{
		"job_id": id,
		"pages":  res.Pages,
		"key":    key,
	}).Info("export.run: job completed")
}

func (r *JobRunner) fail(id uuid.UUID, err error) {
	logger.LogError(r.log, "export.JobRunner", "run", "export job failed", id.String(), err)
	completed := r.cfg.Now().UTC()
	r.update(id, func(j *domain.ExportJob) {
		j.Status = domain.ExportJobFailed
		j.Error = err.Error()
		j.CompletedAt = &completed
	})
}

func (r *JobRunner) update(id uuid.UUID, fn func(*domain.ExportJob)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if j, ok := r.jobs[id]; ok {
		fn(j)
	}
}

// Get returns a copy of the job, with a download link once completed.
func (r *JobRunner) Get(ctx context.Context, id uuid.UUID) (*domain.ExportJob, error) {
	job, ok := r.lookup(id)
	if !ok {
		return nil, domain.ErrExportJobNotFound
	}

	if job.Status == domain.ExportJobCompleted && job.ObjectKey != "" {
		url, err := r.storage.GetPresignedURL(ctx, r.cfg.Bucket, job.ObjectKey, r.cfg.PresignExpiry)
		if err != nil {
			return nil, fmt.Errorf("export.Get: presigning %s: %w", job.ObjectKey, err)
		}
		job.DownloadURL = url
	}
	return &job, nil
}

func (r *JobRunner) lookup(id uuid.UUID) (domain.ExportJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.jobs[id]
	if !ok {
		return domain.ExportJob{}, false
	}
	return *j, true
}

// Download reads the archived PDF back from object storage. Jobs that are
// still pending, running or failed return domain.ErrExportNotReady.
func (r *JobRunner) Download(ctx context.Context, id uuid.UUID) (*domain.ExportJob, []byte, error) {
	job, ok := r.lookup(id)
	if !ok {
		return nil, nil, domain.ErrExportJobNotFound
	}
	if job.Status != domain.ExportJobCompleted {
		return nil, nil, fmt.Errorf("export.Download: %w: job is %s", domain.ErrExportNotReady, job.Status)
	}

	data, err := r.storage.Download(ctx, r.cfg.Bucket, job.ObjectKey)
	if err != nil {
		return nil, nil, fmt.Errorf("export.Download: reading %s: %w", job.ObjectKey, err)
	}
	return &job, data, nil
}

// Discard drops a completed or failed job. In-flight jobs cannot be
// discarded.
func (r *JobRunner) Discard(ctx context.Context, id uuid.UUID) error {
	job, ok := r.lookup(id)
	if !ok {
		return domain.ErrExportJobNotFound
	}
	if job.Status == domain.ExportJobPending || job.Status == domain.ExportJobRunning {
		return fmt.Errorf("export.Discard: %w: job is %s", domain.ErrExportNotReady, job.Status)
	}

	if job.ObjectKey != "" {
		if err := r.storage.Delete(ctx, r.cfg.Bucket, job.ObjectKey); err != nil {
			return fmt.Errorf("export.Discard: deleting %s: %w", job.ObjectKey, err)
		}
	}

	r.mu.Lock()
	delete(r.jobs, id)
	r.mu.Unlock()

	r.log.WithField("job_id", id).Info("export.Discard: job discarded")
	return nil
}

// Wait blocks until every submitted job has finished.
func (r *JobRunner) Wait() {
	r.log.Info("export.JobRunner: waiting for in-flight exports...")
	r.wg.Wait()
	r.log.Info("export.JobRunner: shutdown complete")
}
