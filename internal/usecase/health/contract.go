package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EngineChecker checks OCR engine availability.
type EngineChecker interface {
	HealthCheck(ctx context.Context) error
}
