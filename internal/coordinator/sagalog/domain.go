// Package sagalog defines the audit trail of order action sagas.
//
// Every state transition of a saga is appended as one row. The log serves
// two purposes:
//
//  1. Observability: the dashboard shows where the last action on an order
//     stopped, and each row links to its distributed trace via trace_id.
//
//  2. Reconciliation: a FAILED row whose error list contains a compensation
//     failure marks backend state that has to be repaired by hand, e.g. a
//     delivery that exists for an order that was never marked shipped.
package sagalog

import "time"

// Status represents the lifecycle state of a saga execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	// StatusCompensated means a step failed and every earlier step was undone.
	StatusCompensated Status = "COMPENSATED"
	// StatusFailed means a compensation itself failed; backend state is
	// inconsistent until someone reconciles it.
	StatusFailed Status = "FAILED"
)

// SagaLog is a single row in the saga_logs table.
type SagaLog struct {
	// SagaID is the unique identifier for this saga execution (a UUID).
	SagaID string `json:"sagaId"`

	// SagaType names the action, e.g. "ship_order".
	SagaType string `json:"sagaType"`

	// OrderID joins the row with the order the action ran on.
	OrderID string `json:"orderId"`

	Status Status `json:"status"`

	// CurrentStep is the name of the step that was just executed or failed.
	CurrentStep string `json:"currentStep"`

	// Payload is the JSON input that started the saga. Only set on STARTED.
	Payload string `json:"payload,omitempty"`

	// ErrorMessages accumulates failure details as a JSON array:
	// ["step X failed: ...", "compensation of Y failed: ..."]
	ErrorMessages string `json:"errorMessages"`

	// TraceID and SpanID identify the OpenTelemetry span that was active
	// when the row was written.
	TraceID string `json:"traceId"`
	SpanID  string `json:"spanId"`

	UpdatedAt time.Time `json:"updatedAt"`
}
