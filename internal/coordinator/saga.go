// Package coordinator runs a checkout as an ordered sequence of steps,
// each with a compensating action, and rolls back in LIFO order when a
// step fails. Every transition is appended to the checkout log.
package coordinator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jcmexdev/shoe-fulfillment/internal/coordinator/checkoutlog"
)

// Step represents a single unit of work in a checkout.
// Each step must have a compensating action that undoes its effects.
type Step interface {
	Name() string
	Execute(ctx context.Context) error
	Compensate(ctx context.Context) error
}

// Orchestrator manages the execution of a collection of Steps.
type Orchestrator struct {
	checkoutID string
	steps      []Step
	log        checkoutlog.Repository // nil-safe: logging skipped if nil
	payload    string
}

// NewOrchestrator builds an orchestrator for one checkout. checkoutID is
// the order id being materialized; payload is the JSON input recorded on
// the STARTED row. log may be nil, in which case no audit rows are written.
func NewOrchestrator(checkoutID string, steps []Step, log checkoutlog.Repository, payload string) *Orchestrator {
	return &Orchestrator{
		checkoutID: checkoutID,
		steps:      steps,
		log:        log,
		payload:    payload,
	}
}

// Start runs the steps sequentially. If a step fails, the compensations of
// all previously successful steps run in reverse order, and the step's
// error is returned unchanged so the caller keeps its fault typing.
func (o *Orchestrator) Start(ctx context.Context) error {
	o.record(ctx, checkoutlog.StatusStarted, "", o.payload, nil)

	var done []Step
	for _, step := range o.steps {
		if err := step.Execute(ctx); err != nil {
			slog.WarnContext(ctx, "checkout step failed, rolling back",
				"checkout_id", o.checkoutID, "step", step.Name(), "error", err)

			errs := []string{fmt.Sprintf("step %s failed: %v", step.Name(), err)}
			o.record(ctx, checkoutlog.StatusCompensating, step.Name(), "", errs)

			errs = append(errs, o.rollback(ctx, done)...)
			o.record(ctx, checkoutlog.StatusFailed, step.Name(), "", errs)
			return err
		}
		done = append(done, step)
		o.record(ctx, checkoutlog.StatusStepDone, step.Name(), "", nil)
	}

	o.record(ctx, checkoutlog.StatusCompleted, "", "", nil)
	slog.InfoContext(ctx, "checkout completed", "checkout_id", o.checkoutID)
	return nil
}

// rollback compensates the given steps in LIFO order. Compensation errors
// are collected, not returned: a failed compensation must not stop the
// remaining ones from running.
func (o *Orchestrator) rollback(ctx context.Context, steps []Step) []string {
	var errs []string
	for i := len(steps) - 1; i >= 0; i-- {
		step := steps[i]
		if err := step.Compensate(ctx); err != nil {
			slog.ErrorContext(ctx, "CRITICAL: failed to compensate checkout step",
				"checkout_id", o.checkoutID, "step", step.Name(), "error", err)
			errs = append(errs, fmt.Sprintf("compensation of %s failed: %v", step.Name(), err))
		}
	}
	return errs
}

func (o *Orchestrator) record(ctx context.Context, status checkoutlog.Status, step, payload string, errs []string) {
	if o.log == nil {
		return
	}
	entry := checkoutlog.NewEntry(ctx, o.checkoutID, status, step, payload, errs)
	if err := o.log.Save(ctx, entry); err != nil {
		// The audit log must never fail a checkout.
		slog.ErrorContext(ctx, "failed to persist checkout log entry",
			"checkout_id", o.checkoutID, "status", string(status), "error", err)
	}
}
