package sales

import (
	"context"
	"time"
)

// StoreObserver receives store health signals. telemetry.StoreMetrics
// implements it with OpenTelemetry instruments.
type StoreObserver interface {
	RecordInconsistency(ctx context.Context, op string)
	RecordAllocationRetry(ctx context.Context, sequence string)
	ObserveOperation(ctx context.Context, op string, d time.Duration, err error)
}

type noopObserver struct{}

func (noopObserver) RecordInconsistency(context.Context, string) {}
func (noopObserver) RecordAllocationRetry(context.Context, string) {}
func (noopObserver) ObserveOperation(context.Context, string, time.Duration, error) {}
