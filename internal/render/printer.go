package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/logger"
	"tmsbilling/internal/port"
)

// DefaultPrintDelay gives the surface time to lay out before printing.
const DefaultPrintDelay = 300 * time.Millisecond

// PrintStyles isolate the printed markup from the host page's styling.
const PrintStyles = `<style>
@page { size: A4; margin: 12mm; }
html, body { margin: 0; padding: 0; background: #ffffff; color: #111827; }
body { font-family: "Helvetica Neue", Helvetica, Arial, sans-serif; font-size: 12px; line-height: 1.45; }
* { box-sizing: border-box; -webkit-print-color-adjust: exact; print-color-adjust: exact; }
table { width: 100%; border-collapse: collapse; }
th, td { padding: 6px 8px; border-bottom: 1px solid #e5e7eb; text-align: left; }
td.amount, th.amount { text-align: right; font-variant-numeric: tabular-nums; }
</style>`

// PrintRequest is one print job.
type PrintRequest struct {
	Title  string
	Markup string
}

// Printer sends markup to an isolated print surface.
type Printer struct {
	surfaces port.PrintSurface
	delay    time.Duration
	log      logrus.FieldLogger
}

// NewPrinter creates a Printer. A non-positive delay uses DefaultPrintDelay.
func NewPrinter(surfaces port.PrintSurface, delay time.Duration, log logrus.FieldLogger) *Printer {
	if delay <= 0 {
		delay = DefaultPrintDelay
	}
	return &Printer{
		surfaces: surfaces,
		delay:    delay,
		log:      logger.Component(log, "render.Printer"),
	}
}

// Print opens a surface bound to w, writes the styled markup, schedules the
// print after the configured delay and closes the surface.
// A surface that cannot be opened yields domain.ErrPrintSurfaceUnavailable.
func (p *Printer) Print(ctx context.Context, req PrintRequest, w io.Writer) error {
	surface, err := p.surfaces.Open(ctx, req.Title, w)
	if err != nil || surface == nil {
		if err == nil {
			err = errors.New("no surface returned")
		}
		logger.LogError(p.log, "render.Printer", "Print", "open surface", req.Title, err)
		return fmt.Errorf("%w: %v", domain.ErrPrintSurfaceUnavailable, err)
	}
	defer func() {
		if cerr := surface.Close(); cerr != nil {
			p.log.WithError(cerr).Warn("render.Print: closing surface")
		}
	}()

	if err := surface.Write(PrintStyles + req.Markup); err != nil {
		return fmt.Errorf("render.Print: writing markup: %w", err)
	}
	if err := surface.Print(int(p.delay / time.Millisecond)); err != nil {
		return fmt.Errorf("render.Print: %w", err)
	}
	return nil
}
