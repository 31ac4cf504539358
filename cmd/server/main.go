package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"tmsbilling/internal/bootstrap"
	"tmsbilling/internal/config"
	"tmsbilling/internal/handler"
	"tmsbilling/internal/logger"
	"tmsbilling/internal/router"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logr := logger.New(cfg.Log)
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := bootstrap.OpenBackend(ctx, cfg, logr)
	if err != nil {
		return err
	}
	defer func() {
		if err := backend.Close(); err != nil {
			logr.WithError(err).Warn("closing invoice store")
		}
	}()

	archive, bucket, err := bootstrap.Archive(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize export archive: %w", err)
	}

	// Initialize services
	invoiceSvc := bootstrap.InvoiceService(backend, cfg, logr)
	exporter := bootstrap.Exporter(logr)
	printer := bootstrap.Printer(cfg, logr)
	jobs := bootstrap.JobRunner(cfg, exporter, archive, bucket, logr)

	// Initialize handlers
	invoiceH := handler.NewInvoiceHandler(invoiceSvc, logr)
	documentH := handler.NewDocumentHandler(invoiceSvc, exporter, printer, jobs, cfg.Export.MaxSnapshotMB<<20, logr)
	healthH := handler.NewHealthHandler(backend.Blobs)

	// Setup router
	r := router.Setup(logr, cfg.CORS.AllowedOrigins, invoiceH, documentH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logr.Infof("Server starting on %s (store=%s)", cfg.Server.Port, cfg.Store.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logr.Info("shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.WithError(err).Warn("server shutdown")
	}
	jobs.Wait()
	return nil
}
