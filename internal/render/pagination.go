// Package render turns invoices into print-ready documents: it picks the
// capture scale, plans how a tall bitmap is sliced across fixed-size pages,
// and drives the capture, document and print ports.
package render

import "math"

// MinRenderWidth is the layout width the capturer renders at, in CSS pixels.
const MinRenderWidth = 1440

const (
	minCaptureScale = 1.0
	maxCaptureScale = 2.0
)

// CaptureScale returns the supersampling factor for a region of the given
// width: MinRenderWidth/width clamped to [1, 2]. Non-positive or non-finite
// widths get the maximum scale.
func CaptureScale(elementWidth float64) float64 {
	if elementWidth <= 0 || math.IsNaN(elementWidth) || math.IsInf(elementWidth, 0) {
		return maxCaptureScale
	}
	scale := MinRenderWidth / elementWidth
	return math.Max(minCaptureScale, math.Min(maxCaptureScale, scale))
}

// Placement positions the full captured image on one page.
type Placement struct {
	Page   int
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Paginate plans a multi-page layout for an imgW x imgH bitmap on pages of
// pageW x pageH units. The image is scaled to the page width and drawn whole
// on every page, shifted up by one page height per page, so each page shows
// the next slice. Degenerate sizes yield a single placement at the origin.
func Paginate(imgW, imgH int, pageW, pageH float64) []Placement {
	if imgW <= 0 || imgH <= 0 || pageW <= 0 || pageH <= 0 {
		return []Placement{{Page: 0, Width: math.Max(pageW, 0), Height: math.Max(pageH, 0)}}
	}

	imgHeight := float64(imgH) * pageW / float64(imgW)
	placements := []Placement{{Page: 0, Width: pageW, Height: imgHeight}}

	heightLeft := imgHeight - pageH
	for page := 1; heightLeft > 0; page++ {
		placements = append(placements, Placement{
			Page:   page,
			Y:      -float64(page) * pageH,
			Width:  pageW,
			Height: imgHeight,
		})
		heightLeft -= pageH
	}
	return placements
}

// PageCount is the number of pages Paginate produces.
func PageCount(imgW, imgH int, pageW, pageH float64) int {
	return len(Paginate(imgW, imgH, pageW, pageH))
}
