package render

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"io"

	"github.com/sirupsen/logrus"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/logger"
	"tmsbilling/internal/port"
)

// ExportRequest describes one PDF export.
type ExportRequest struct {
	Region   port.Region
	FileName string
}

// ExportResult reports what was written.
type ExportResult struct {
	FileName string  `json:"file_name"`
	Pages    int     `json:"pages"`
	Scale    float64 `json:"scale"`
}

// Exporter rasterizes a region and lays it out as a paginated A4 PDF.
type Exporter struct {
	capturer port.BitmapCapturer
	writer   port.DocumentWriter
	log      logrus.FieldLogger
}

// NewExporter creates an Exporter.
func NewExporter(capturer port.BitmapCapturer, writer port.DocumentWriter, log logrus.FieldLogger) *Exporter {
	return &Exporter{
		capturer: capturer,
		writer:   writer,
		log:      logger.Component(log, "render.Exporter"),
	}
}

// ExportPDF captures req.Region, paginates it onto portrait A4 pages and
// saves the document to w. Capture errors wrap domain.ErrCaptureFailed and
// leave w untouched.
func (e *Exporter) ExportPDF(ctx context.Context, req ExportRequest, w io.Writer) (*ExportResult, error) {
	scale := CaptureScale(req.Region.Width)
	bmp, err := e.capturer.Capture(ctx, req.Region, port.CaptureOptions{
		Scale:          scale,
		Background:     color.White,
		MinRenderWidth: MinRenderWidth,
	})
	if err != nil {
		logger.LogError(e.log, "render.Exporter", "ExportPDF", "capture", req.FileName, err)
		return nil, fmt.Errorf("%w: %v", domain.ErrCaptureFailed, err)
	}
	if bmp == nil || bmp.Image == nil {
		return nil, fmt.Errorf("%w: capturer returned no image", domain.ErrCaptureFailed)
	}

	doc, err := e.writer.NewDocument(domain.PageSizeA4, string(domain.OrientationPortrait))
	if err != nil {
		return nil, fmt.Errorf("render.ExportPDF: creating document: %w", err)
	}
	pageW, pageH := doc.PageSize()

	placements := Paginate(bmp.Width, bmp.Height, pageW, pageH)
	for _, p := range placements {
		if p.Page > 0 {
			if err := doc.AddPage(); err != nil {
				return nil, fmt.Errorf("render.ExportPDF: adding page %d: %w", p.Page+1, err)
			}
		}
		if err := doc.AddImage(bmp, p.X, p.Y, p.Width, p.Height); err != nil {
			return nil, fmt.Errorf("render.ExportPDF: placing image on page %d: %w", p.Page+1, err)
		}
	}

	if err := doc.Save(w); err != nil {
		return nil, fmt.Errorf("render.ExportPDF: saving document: %w", err)
	}

	e.log.WithFields(logrus.Fields{
		"file_name": req.FileName,
		"pages":     len(placements),
		"scale":     scale,
		"width_px":  bmp.Width,
		"height_px": bmp.Height,
	}).Info("render.ExportPDF: document exported")

	return &ExportResult{FileName: req.FileName, Pages: len(placements), Scale: scale}, nil
}

// ExportPDFAsync runs ExportPDF in its own goroutine and reports through done.
// Once started the export is not cancelled; ctx is detached from the caller.
func (e *Exporter) ExportPDFAsync(ctx context.Context, req ExportRequest, w io.Writer, done func(*ExportResult, error)) {
	ctx = context.WithoutCancel(ctx)
	go func() {
		res, err := e.ExportPDF(ctx, req, w)
		if done != nil {
			done(res, err)
		}
	}()
}

// SnapshotRegion wraps an encoded snapshot of a region width CSS pixels wide.
func SnapshotRegion(width float64, snapshot []byte) port.Region {
	return port.Region{Width: width, Snapshot: bytes.NewReader(snapshot)}
}
