// Package pdfdoc implements port.DocumentWriter with go-pdf/fpdf.
package pdfdoc

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/go-pdf/fpdf"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/port"
)

const unit = "mm"

// Writer creates PDF documents measured in millimetres.
type Writer struct{}

// NewWriter creates a Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// NewDocument opens a document with one empty page.
func (w *Writer) NewDocument(pageSize, orientation string) (port.Document, error) {
	var orient string
	switch domain.PageOrientation(strings.ToLower(orientation)) {
	case domain.OrientationPortrait, "":
		orient = "P"
	case domain.OrientationLandscape:
		orient = "L"
	default:
		return nil, fmt.Errorf("pdfdoc: unsupported orientation %q", orientation)
	}
	if pageSize == "" {
		pageSize = domain.PageSizeA4
	}

	pdf := fpdf.New(orient, unit, pageSize, "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(0, 0, 0)
	pdf.AddPage()
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("pdfdoc: %w", err)
	}
	return &document{pdf: pdf, images: make(map[*port.Bitmap]string)}, nil
}

type document struct {
	pdf    *fpdf.Fpdf
	images map[*port.Bitmap]string
}

func (d *document) PageSize() (float64, float64) {
	return d.pdf.GetPageSize()
}

func (d *document) AddPage() error {
	d.pdf.AddPage()
	return d.pdf.Error()
}

// AddImage draws bmp at (x, y) scaled to width x height. Each bitmap is
// embedded once however many pages it is drawn on.
func (d *document) AddImage(bmp *port.Bitmap, x, y, width, height float64) error {
	if bmp == nil || bmp.Image == nil {
		return fmt.Errorf("pdfdoc: nil bitmap")
	}
	opts := fpdf.ImageOptions{ImageType: "PNG", AllowNegativePosition: true}

	name, ok := d.images[bmp]
	if !ok {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, bmp.Image, imaging.PNG); err != nil {
			return fmt.Errorf("pdfdoc: encoding bitmap: %w", err)
		}
		name = fmt.Sprintf("capture-%d", len(d.images))
		d.pdf.RegisterImageOptionsReader(name, opts, &buf)
		if err := d.pdf.Error(); err != nil {
			return fmt.Errorf("pdfdoc: registering bitmap: %w", err)
		}
		d.images[bmp] = name
	}

	d.pdf.ImageOptions(name, x, y, width, height, false, opts, 0, "")
	return d.pdf.Error()
}

func (d *document) Save(w io.Writer) error {
	if err := d.pdf.Output(w); err != nil {
		return fmt.Errorf("pdfdoc: writing output: %w", err)
	}
	return nil
}
