package recognition

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfocr/internal/domain"
	"github.com/kailas-cloud/pdfocr/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.RegisterExtractionMetrics()
	os.Exit(m.Run())
}

type mockRecognizer struct {
	fragments []string
	err       error
	healthErr error
}

func (m *mockRecognizer) Recognize(_ context.Context, _ domain.RasterImage) ([]string, error) {
	return m.fragments, m.err
}

func (m *mockRecognizer) HealthCheck(_ context.Context) error { return m.healthErr }

type plainRecognizer struct{}

func (plainRecognizer) Recognize(_ context.Context, _ domain.RasterImage) ([]string, error) {
	return nil, nil
}

func TestInstrumentedRecognizer_Success(t *testing.T) {
	inner := &mockRecognizer{fragments: []string{"HELLO", "WORLD"}}
	r := NewInstrumentedRecognizer(inner, "test-ok", zap.NewNop())

	got, err := r.Recognize(context.Background(), domain.RasterImage{PNG: []byte{1}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0] != "HELLO" {
		t.Errorf("fragments = %q", got)
	}

	if v := testutil.ToFloat64(metrics.RecognitionRequestsTotal.WithLabelValues("test-ok", "success")); v != 1 {
		t.Errorf("success counter = %f, want 1", v)
	}
}

func TestInstrumentedRecognizer_Error(t *testing.T) {
	boom := errors.New("engine crash")
	r := NewInstrumentedRecognizer(&mockRecognizer{err: boom}, "test-err", zap.NewNop())

	_, err := r.Recognize(context.Background(), domain.RasterImage{PNG: []byte{1}})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped engine error, got %v", err)
	}

	if v := testutil.ToFloat64(metrics.RecognitionRequestsTotal.WithLabelValues("test-err", "error")); v != 1 {
		t.Errorf("error counter = %f, want 1", v)
	}
}

func TestInstrumentedRecognizer_HealthCheck(t *testing.T) {
	ok := NewInstrumentedRecognizer(&mockRecognizer{}, "h", zap.NewNop())
	if err := ok.HealthCheck(context.Background()); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	bad := NewInstrumentedRecognizer(&mockRecognizer{healthErr: errors.New("down")}, "h", zap.NewNop())
	if err := bad.HealthCheck(context.Background()); err == nil {
		t.Error("expected health error")
	}

	plain := NewInstrumentedRecognizer(plainRecognizer{}, "h", zap.NewNop())
	if err := plain.HealthCheck(context.Background()); err != nil {
		t.Errorf("recognizer without health check should pass, got %v", err)
	}
}
