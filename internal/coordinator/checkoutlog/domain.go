// Package checkoutlog defines the domain types for the checkout audit log.
//
// Every checkout appends a row per lifecycle transition, so the log answers
// two questions: where a checkout is (or stopped), correlated with its
// distributed trace via trace_id, and what a failed checkout compensated.
package checkoutlog

import "time"

// Status represents the lifecycle state of a checkout execution.
type Status string

const (
	StatusStarted      Status = "STARTED"
	StatusStepDone     Status = "STEP_DONE"
	StatusCompleted    Status = "COMPLETED"
	StatusCompensating Status = "COMPENSATING"
	StatusFailed       Status = "FAILED"
)

// Entry is a single row in the checkout_logs table: a point-in-time
// snapshot of one checkout execution.
type Entry struct {
	// CheckoutID is the order id the checkout is materializing, so the log
	// can be joined with business data.
	CheckoutID string

	// Status is the lifecycle state at the time this row was written.
	Status Status

	// CurrentStep is the step that just executed or failed.
	CurrentStep string

	// Payload is the JSON-serialised input that started the checkout.
	// Written once on STARTED, empty after.
	Payload string

	// ErrorMessages accumulates failure details as a JSON array, one entry
	// per failed step or failed compensation.
	ErrorMessages string

	// TraceID is the W3C trace id of the OpenTelemetry span active when
	// this row was written; SpanID pinpoints the span within the trace.
	TraceID string
	SpanID  string

	// UpdatedAt is the wall-clock time of this entry.
	UpdatedAt time.Time
}
