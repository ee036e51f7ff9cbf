package telemetry

import (
	"context"
	"errors"
	"time"

	"github.com/erp/crm/internal/domain/shared"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names
const (
	MetricCacheInconsistencies = "crm.recency_cache.inconsistencies"
	MetricAllocationRetries    = "crm.id_allocator.retries"
	MetricStoreOpDuration      = "crm.store.operation.duration"
)

// StoreMetrics records opportunity store health: cache writes that failed
// after a successful authoritative write, allocation retries and per
// operation latency.
type StoreMetrics struct {
	inconsistencies   *Counter
	allocationRetries *Counter
	opDuration        *Histogram
	backend           attribute.KeyValue
}

// NewStoreMetrics creates the store instruments on meter. cacheBackend is
// attached to every inconsistency data point.
func NewStoreMetrics(meter metric.Meter, cacheBackend string) (*StoreMetrics, error) {
	if meter == nil {
		return nil, errors.New("telemetry: meter cannot be nil")
	}

	inconsistencies, err := NewCounter(meter, MetricCacheInconsistencies,
		"Recency cache mutations that failed after the store write succeeded", "{event}")
	if err != nil {
		return nil, err
	}
	retries, err := NewCounter(meter, MetricAllocationRetries,
		"Identifier allocations retried after a duplicate key on insert", "{retry}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, HistogramOpts{
		Name:        MetricStoreOpDuration,
		Description: "Duration of opportunity store operations",
		Unit:        "s",
		Boundaries:  StoreDurationBuckets,
	})
	if err != nil {
		return nil, err
	}

	return &StoreMetrics{
		inconsistencies:   inconsistencies,
		allocationRetries: retries,
		opDuration:        duration,
		backend:           AttrCacheBackend.String(cacheBackend),
	}, nil
}

// RecordInconsistency counts one cache mutation lost after a store write
func (m *StoreMetrics) RecordInconsistency(ctx context.Context, op string) {
	m.inconsistencies.Inc(ctx, AttrOperation.String(op), m.backend)
}

// RecordAllocationRetry counts one retried id allocation
func (m *StoreMetrics) RecordAllocationRetry(ctx context.Context, sequence string) {
	m.allocationRetries.Inc(ctx, attribute.String(SpanAttrSequence, sequence))
}

// ObserveOperation records the duration and outcome of a store operation
func (m *StoreMetrics) ObserveOperation(ctx context.Context, op string, d time.Duration, err error) {
	m.opDuration.RecordDuration(ctx, d, AttrOperation.String(op), AttrOutcome.String(Outcome(err)))
}

// Outcome classifies err for metric attributes: "ok", the domain error code
// in lower case, or "error".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		switch domainErr.Code {
		case shared.CodeNotFound:
			return "not_found"
		case shared.CodeInvalidInput:
			return "invalid_input"
		case shared.CodeConcurrencyConflict:
			return "conflict"
		case shared.CodeAllocationFailed:
			return "allocation_failed"
		case shared.CodeTimeout:
			return "timeout"
		}
	}
	return "error"
}
