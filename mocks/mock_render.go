package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"tmsbilling/internal/port"
	"tmsbilling/internal/render"
)

// MockBitmapCapturer is a mock implementation of port.BitmapCapturer.
type MockBitmapCapturer struct {
	mock.Mock
}

func (m *MockBitmapCapturer) Capture(ctx context.Context, region port.Region, opts port.CaptureOptions) (*port.Bitmap, error) {
	args := m.Called(ctx, region, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.Bitmap), args.Error(1)
}

// MockDocumentWriter is a mock implementation of port.DocumentWriter.
type MockDocumentWriter struct {
	mock.Mock
}

func (m *MockDocumentWriter) NewDocument(pageSize, orientation string) (port.Document, error) {
	args := m.Called(pageSize, orientation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Document), args.Error(1)
}

// MockDocument is a mock implementation of port.Document.
type MockDocument struct {
	mock.Mock
}

func (m *MockDocument) PageSize() (float64, float64) {
	args := m.Called()
	return args.Get(0).(float64), args.Get(1).(float64)
}

func (m *MockDocument) AddImage(bmp *port.Bitmap, x, y, width, height float64) error {
	args := m.Called(bmp, x, y, width, height)
	return args.Error(0)
}

func (m *MockDocument) AddPage() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockDocument) Save(w io.Writer) error {
	args := m.Called(w)
	return args.Error(0)
}

// MockPrintSurface is a mock implementation of port.PrintSurface.
type MockPrintSurface struct {
	mock.Mock
}

func (m *MockPrintSurface) Open(ctx context.Context, title string, w io.Writer) (port.Surface, error) {
	args := m.Called(ctx, title, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(port.Surface), args.Error(1)
}

// MockSurface is a mock implementation of port.Surface.
type MockSurface struct {
	mock.Mock
}

func (m *MockSurface) Write(markup string) error {
	args := m.Called(markup)
	return args.Error(0)
}

func (m *MockSurface) Print(delayMillis int) error {
	args := m.Called(delayMillis)
	return args.Error(0)
}

func (m *MockSurface) Close() error {
	args := m.Called()
	return args.Error(0)
}

// MockPrinter is a mock implementation of handler.Printer.
type MockPrinter struct {
	mock.Mock
}

func (m *MockPrinter) Print(ctx context.Context, req render.PrintRequest, w io.Writer) error {
	args := m.Called(ctx, req, w)
	return args.Error(0)
}
