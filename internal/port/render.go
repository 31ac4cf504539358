package port

import (
	"context"
	"image"
	"image/color"
	"io"
)

// Region is a rendered visual region handed to the capturer. Width is the
// CSS pixel width of the element; Snapshot is the encoded image the client
// rendered at scale 1.
type Region struct {
	Width    float64
	Snapshot io.Reader
}

// CaptureOptions control rasterization.
type CaptureOptions struct {
	Scale          float64
	Background     color.Color
	MinRenderWidth int
}

// Bitmap is a captured image with its pixel dimensions.
type Bitmap struct {
	Image  image.Image
	Width  int
	Height int
}

// BitmapCapturer renders a region to a bitmap.
type BitmapCapturer interface {
	Capture(ctx context.Context, region Region, opts CaptureOptions) (*Bitmap, error)
}

// Document is an open fixed-page-size document.
type Document interface {
	PageSize() (width, height float64)
	AddImage(bmp *Bitmap, x, y, width, height float64) error
	AddPage() error
	Save(w io.Writer) error
}

// DocumentWriter creates documents.
type DocumentWriter interface {
	NewDocument(pageSize, orientation string) (Document, error)
}

// Surface is an isolated rendering surface that can be printed.
type Surface interface {
	Write(markup string) error
	Print(delayMillis int) error
	Close() error
}

// PrintSurface opens print surfaces.
type PrintSurface interface {
	Open(ctx context.Context, title string, w io.Writer) (Surface, error)
}
