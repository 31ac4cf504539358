// Package htmlsurface implements port.PrintSurface as a standalone HTML page
// that prints itself once loaded and closes after printing.
package htmlsurface

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"sync"

	"tmsbilling/internal/port"
)

var pageTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="en-IN">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Body}}
{{- if .Print}}
<script>
window.onafterprint = function () { window.close(); };
window.addEventListener("load", function () {
  setTimeout(function () { window.focus(); window.print(); }, {{.DelayMillis}});
});
</script>
{{- end}}
</body>
</html>
`))

var (
	errNoWriter = errors.New("htmlsurface: no output writer")
	errClosed   = errors.New("htmlsurface: surface closed")
)

// Surfaces opens HTML print surfaces.
type Surfaces struct{}

// New creates a Surfaces.
func New() *Surfaces {
	return &Surfaces{}
}

// Open binds a surface to w. Nothing is written until Close.
func (s *Surfaces) Open(ctx context.Context, title string, w io.Writer) (port.Surface, error) {
	if w == nil {
		return nil, errNoWriter
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Surface{title: title, out: w}, nil
}

// Surface buffers markup and emits the page on Close.
type Surface struct {
	mu     sync.Mutex
	title  string
	out    io.Writer
	body   string
	print  bool
	delay  int
	closed bool
}

// Write replaces the surface body. markup is trusted HTML.
func (s *Surface) Write(markup string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	s.body = markup
	return nil
}

// Print schedules window.print() delayMillis after load.
func (s *Surface) Print(delayMillis int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}
	if delayMillis < 0 {
		delayMillis = 0
	}
	s.print = true
	s.delay = delayMillis
	return nil
}

// Close renders the page to the bound writer. Later calls are no-ops.
func (s *Surface) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	bw := bufio.NewWriter(s.out)
	err := pageTemplate.Execute(bw, struct {
		Title       string
		Body        template.HTML
		Print       bool
		DelayMillis int
	}{s.title, template.HTML(s.body), s.print, s.delay}) //nolint:gosec // body is produced by our own templates
	if err != nil {
		return fmt.Errorf("htmlsurface: rendering page: %w", err)
	}
	return bw.Flush()
}
