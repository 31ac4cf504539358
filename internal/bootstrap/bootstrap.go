// Package bootstrap wires configured adapters into the ports the services
// consume. Both the HTTP server and billingctl start from here.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"tmsbilling/internal/config"
	"tmsbilling/internal/export"
	"tmsbilling/internal/port"
	"tmsbilling/internal/render"
	"tmsbilling/internal/render/bitmap"
	"tmsbilling/internal/render/htmlsurface"
	"tmsbilling/internal/render/pdfdoc"
	"tmsbilling/internal/repository"
	"tmsbilling/internal/repository/file"
	"tmsbilling/internal/repository/memory"
	"tmsbilling/internal/repository/postgres"
	redisrepo "tmsbilling/internal/repository/redis"
	"tmsbilling/internal/service"
	"tmsbilling/internal/storage/local"
	s3storage "tmsbilling/internal/storage/s3"
)

// ArchiveS3 selects S3 for export archives.
const ArchiveS3 = "s3"

// Backend is an opened store backend.
type Backend struct {
	Blobs   port.BlobStore
	Locker  port.Locker
	closers []func() error
}

// Close releases backend connections.
func (b *Backend) Close() error {
	var errs []error
	for i := len(b.closers) - 1; i >= 0; i-- {
		if err := b.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenBackend connects the configured blob store and its locker. Only the
// redis backend gets a distributed lock; every other backend serializes
// writers inside this process.
func OpenBackend(ctx context.Context, cfg *config.Config, log logrus.FieldLogger) (*Backend, error) {
	b := &Backend{Locker: memory.NewLocker()}

	switch cfg.Store.Backend {
	case config.BackendMemory:
		b.Blobs = memory.NewBlobStore()
	case config.BackendFile:
		blobs, err := file.NewBlobStore(cfg.Store.FilePath)
		if err != nil {
			return nil, fmt.Errorf("opening file store: %w", err)
		}
		b.Blobs = blobs
	case config.BackendPostgres:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		b.closers = append(b.closers, db.Close)
		b.Blobs = postgres.NewBlobStore(db)
	case config.BackendRedis:
		rdb, err := redisrepo.NewClient(ctx, &cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to redis: %w", err)
		}
		b.closers = append(b.closers, rdb.Close)
		b.Blobs = redisrepo.NewBlobStore(rdb)
		b.Locker = redisrepo.NewLocker(rdb)
	case config.BackendS3:
		client, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		b.Blobs = client
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	log.WithFields(logrus.Fields{
		"module":  "bootstrap",
		"backend": cfg.Store.Backend,
		"key":     cfg.Store.Key,
	}).Info("invoice store opened")
	return b, nil
}

// InvoiceService builds the invoice service over an opened backend.
func InvoiceService(b *Backend, cfg *config.Config, log logrus.FieldLogger) service.InvoiceService {
	store := repository.NewInvoiceStore(b.Blobs, cfg.Store.Key, log)
	return service.NewInvoiceService(store, b.Locker, service.InvoiceServiceConfig{
		LockKey: cfg.Store.Key,
		LockTTL: cfg.Store.LockTTL,
		Now:     time.Now,
	}, log)
}

// Exporter builds the PDF exporter over the snapshot capturer and fpdf writer.
func Exporter(log logrus.FieldLogger) *render.Exporter {
	return render.NewExporter(bitmap.NewCapturer(), pdfdoc.NewWriter(), log)
}

// Printer builds the HTML print pipeline.
func Printer(cfg *config.Config, log logrus.FieldLogger) *render.Printer {
	return render.NewPrinter(htmlsurface.New(), cfg.Export.PrintDelay, log)
}

// Archive opens the object storage export jobs upload to and returns the
// bucket to use with it.
func Archive(cfg *config.Config) (port.ObjectStorage, string, error) {
	if cfg.Export.ArchiveStorage == ArchiveS3 {
		client, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return nil, "", fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		return client, client.Bucket(), nil
	}
	storage, err := local.NewStorage(cfg.Export.ArchiveDir)
	if err != nil {
		return nil, "", err
	}
	return storage, "", nil
}

// JobRunner builds the background export runner.
func JobRunner(cfg *config.Config, exporter export.PDFExporter, archive port.ObjectStorage, bucket string, log logrus.FieldLogger) *export.JobRunner {
	return export.NewJobRunner(exporter, archive, export.JobRunnerConfig{
		Concurrency:   cfg.Export.Concurrency,
		Bucket:        bucket,
		KeyPrefix:     cfg.Export.KeyPrefix,
		PresignExpiry: cfg.S3.PresignExpiry,
	}, log)
}
