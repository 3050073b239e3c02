// Package sagalog provides helpers for building SagaLog entries from
// an active OpenTelemetry span stored in a context.Context.
package sagalog

import (
	"context"
	"encoding/json"
	"time"

	"go.opentelemetry.io/otel/trace"
)

// TraceInfo holds the OTel identifiers extracted from a context.
type TraceInfo struct {
	// TraceID is the W3C trace ID (32 lowercase hex chars).
	// Empty string if no active span is found in the context.
	TraceID string

	// SpanID is the W3C span ID (16 lowercase hex chars).
	SpanID string
}

// ExtractTraceInfo reads the active OpenTelemetry span from ctx and returns
// its trace_id and span_id as hex strings.
//
// The orchestrator opens a span per saga, so rows written while it runs
// carry that span's ids. With no active span (tracing disabled, unit tests)
// both fields are empty.
func ExtractTraceInfo(ctx context.Context) TraceInfo {
	span := trace.SpanFromContext(ctx)
	sc := span.SpanContext()

	if !sc.IsValid() {
		return TraceInfo{}
	}

	return TraceInfo{
		TraceID: sc.TraceID().String(), // 32 hex chars, e.g. "4bf92f3577b34da6a3ce929d0e0e4736"
		SpanID:  sc.SpanID().String(),  // 16 hex chars, e.g. "00f067aa0ba902b7"
	}
}

// Header identifies the saga execution a row belongs to.
type Header struct {
	SagaID   string
	SagaType string
	OrderID  string
}

// NewEntry builds a SagaLog entry with the trace info extracted from ctx.
//
//	entry := sagalog.NewEntry(ctx, h, sagalog.StatusStepDone, "create_delivery", "", nil)
//	_ = repo.Save(ctx, entry)
func NewEntry(
	ctx context.Context,
	h Header,
	status Status,
	currentStep string,
	payload string,
	errs []string,
) *SagaLog {
	ti := ExtractTraceInfo(ctx)

	errJSON := "[]"
	if len(errs) > 0 {
		if b, err := json.Marshal(errs); err == nil {
			errJSON = string(b)
		}
	}

	return &SagaLog{
		SagaID:        h.SagaID,
		SagaType:      h.SagaType,
		OrderID:       h.OrderID,
		Status:        status,
		CurrentStep:   currentStep,
		Payload:       payload,
		ErrorMessages: errJSON,
		TraceID:       ti.TraceID,
		SpanID:        ti.SpanID,
		UpdatedAt:     time.Now().UTC(),
	}
}
