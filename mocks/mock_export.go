package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"tmsbilling/internal/domain"
	"tmsbilling/internal/export"
	"tmsbilling/internal/render"
)

// MockPDFExporter is a mock implementation of export.PDFExporter.
type MockPDFExporter struct {
	mock.Mock
}

func (m *MockPDFExporter) ExportPDF(ctx context.Context, req render.ExportRequest, w io.Writer) (*render.ExportResult, error) {
	args := m.Called(ctx, req, w)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*render.ExportResult), args.Error(1)
}

// MockExportJobService is a mock implementation of export.JobService.
type MockExportJobService struct {
	mock.Mock
}

func (m *MockExportJobService) Submit(ctx context.Context, req export.JobRequest) (*domain.ExportJob, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportJob), args.Error(1)
}

func (m *MockExportJobService) Download(ctx context.Context, id uuid.UUID) (*domain.ExportJob, []byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.ExportJob), args.Get(1).([]byte), args.Error(2)
}

func (m *MockExportJobService) Discard(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockExportJobService) Get(ctx context.Context, id uuid.UUID) (*domain.ExportJob, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExportJob), args.Error(1)
}
