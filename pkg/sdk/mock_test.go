package pdfocr

import (
	"context"

	"github.com/kailas-cloud/pdfocr/internal/usecase/extraction"
	healthuc "github.com/kailas-cloud/pdfocr/internal/usecase/health"
)

// --- extractionUseCase mock ---

type mockExtractionUC struct {
	extractFn    func(ctx context.Context, data []byte) (extraction.Result, error)
	extractURLFn func(ctx context.Context, url string) (extraction.Result, error)
}

func (m *mockExtractionUC) Extract(ctx context.Context, data []byte) (extraction.Result, error) {
	return m.extractFn(ctx, data)
}

func (m *mockExtractionUC) ExtractURL(ctx context.Context, url string) (extraction.Result, error) {
	return m.extractURLFn(ctx, url)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- Recognizer mock ---

type mockRecognizer struct {
	fn        func(ctx context.Context, img Image) ([]string, error)
	healthErr error
}

func (m *mockRecognizer) Recognize(ctx context.Context, img Image) ([]string, error) {
	return m.fn(ctx, img)
}

func (m *mockRecognizer) HealthCheck(_ context.Context) error { return m.healthErr }
