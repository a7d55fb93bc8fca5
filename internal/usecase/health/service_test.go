package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockEngineChecker struct {
	err error
}

func (m *mockEngineChecker) HealthCheck(_ context.Context) error { return m.err }

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockEngineChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if r.Checks["database"] != CheckOK {
		t.Errorf("expected database %q, got %q", CheckOK, r.Checks["database"])
	}
	if r.Checks["ocr"] != CheckOK {
		t.Errorf("expected ocr %q, got %q", CheckOK, r.Checks["ocr"])
	}
}

func TestCheck_DBError(t *testing.T) {
	svc := New(&mockDBPinger{err: errors.New("conn refused")}, &mockEngineChecker{})
	r := svc.Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if r.Checks["ocr"] != CheckOK {
		t.Errorf("expected ocr %q, got %q", CheckOK, r.Checks["ocr"])
	}
}

func TestCheck_EngineError(t *testing.T) {
	svc := New(&mockDBPinger{}, &mockEngineChecker{err: errors.New("closed")})
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["ocr"] != CheckError {
		t.Errorf("expected ocr %q, got %q", CheckError, r.Checks["ocr"])
	}
}

func TestCheck_BothFail(t *testing.T) {
	svc := New(
		&mockDBPinger{err: errors.New("db down")},
		&mockEngineChecker{err: errors.New("ocr down")},
	)
	r := svc.Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Error("expected database error")
	}
	if r.Checks["ocr"] != CheckError {
		t.Error("expected ocr error")
	}
}

func TestCheck_NoDatabase(t *testing.T) {
	svc := New(nil, &mockEngineChecker{})
	r := svc.Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["database"]; ok {
		t.Error("database check should be absent when rate limiting is disabled")
	}
	if r.Checks["ocr"] != CheckOK {
		t.Errorf("expected ocr %q, got %q", CheckOK, r.Checks["ocr"])
	}
}
