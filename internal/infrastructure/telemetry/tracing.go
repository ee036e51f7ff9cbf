package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the tracer name for service spans
const TracerName = "github.com/erp/crm"

// Span attribute keys
const (
	SpanAttrCustomerID    = "crm.customer_id"
	SpanAttrOpportunityID = "crm.opportunity_id"
	SpanAttrSequence      = "crm.sequence"
	SpanAttrAttempt       = "crm.allocation.attempt"
)

// StartServiceSpan starts a span named {service}.{method}.
// The caller must end the returned span.
//
//	ctx, span := telemetry.StartServiceSpan(ctx, "opportunity", "create")
//	defer span.End()
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, fmt.Sprintf("%s.%s", service, method),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// RecordError records an error on the span and sets the span status to error.
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// AddEvent adds a named event carrying the given attributes
func AddEvent(span trace.Span, name string, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.AddEvent(name, trace.WithAttributes(attrs...))
}

// CustomerAttr is the span attribute for a customer id
func CustomerAttr(id int64) attribute.KeyValue {
	return attribute.Int64(SpanAttrCustomerID, id)
}

// OpportunityAttr is the span attribute for an opportunity id
func OpportunityAttr(id int64) attribute.KeyValue {
	return attribute.Int64(SpanAttrOpportunityID, id)
}
