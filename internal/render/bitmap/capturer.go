// Package bitmap implements port.BitmapCapturer over client-rendered
// snapshots: the browser renders the region once at 1x and uploads it, and
// the capturer supersamples and flattens it server-side.
package bitmap

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/disintegration/imaging"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/port"
)

// maxSide bounds the scaled bitmap so a hostile snapshot cannot exhaust memory.
const maxSide = 16384

// Capturer decodes PNG or JPEG snapshots.
type Capturer struct{}

// NewCapturer creates a Capturer.
func NewCapturer() *Capturer {
	return &Capturer{}
}

// Capture decodes region.Snapshot, resizes it by opts.Scale and flattens it
// onto opts.Background (white when unset). Layout width is fixed by whoever
// rendered the snapshot, so opts.MinRenderWidth is not applied here.
func (c *Capturer) Capture(ctx context.Context, region port.Region, opts port.CaptureOptions) (*port.Bitmap, error) {
	if region.Snapshot == nil {
		return nil, fmt.Errorf("%w: no snapshot", domain.ErrInvalidSnapshot)
	}
	src, err := imaging.Decode(region.Snapshot, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidSnapshot, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	scale := opts.Scale
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	bounds := src.Bounds()
	w := int(math.Round(float64(bounds.Dx()) * scale))
	h := int(math.Round(float64(bounds.Dy()) * scale))
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrInvalidSnapshot)
	}
	if w > maxSide || h > maxSide {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d px", domain.ErrInvalidSnapshot, w, h, maxSide)
	}

	scaled := src
	if w != bounds.Dx() || h != bounds.Dy() {
		scaled = imaging.Resize(src, w, h, imaging.Lanczos)
	}

	var bg color.Color = color.White
	if opts.Background != nil {
		bg = opts.Background
	}
	flat := imaging.Overlay(imaging.New(w, h, bg), scaled, image.Pt(0, 0), 1.0)

	return &port.Bitmap{Image: flat, Width: w, Height: h}, nil
}
