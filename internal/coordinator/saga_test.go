package coordinator_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jcmexdev/shoe-fulfillment/internal/coordinator"
	"github.com/jcmexdev/shoe-fulfillment/internal/coordinator/checkoutlog"
	"github.com/jcmexdev/shoe-fulfillment/internal/fault"
)

// recordingStep appends its name to a shared trace on both execute and
// compensate so tests can assert ordering.
type recordingStep struct {
	name          string
	trace         *[]string
	executeErr    error
	compensateErr error
}

func (s *recordingStep) Name() string { return s.name }

func (s *recordingStep) Execute(ctx context.Context) error {
	*s.trace = append(*s.trace, "exec:"+s.name)
	return s.executeErr
}

func (s *recordingStep) Compensate(ctx context.Context) error {
	*s.trace = append(*s.trace, "comp:"+s.name)
	return s.compensateErr
}

func TestStartRunsStepsInOrder(t *testing.T) {
	var trace []string
	steps := []coordinator.Step{
		&recordingStep{name: "a", trace: &trace},
		&recordingStep{name: "b", trace: &trace},
		&recordingStep{name: "c", trace: &trace},
	}
	log := checkoutlog.NewMemoryRepository()

	saga := coordinator.NewOrchestrator("chk-1", steps, log, `{"user_id":"u1"}`)
	if err := saga.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	want := []string{"exec:a", "exec:b", "exec:c"}
	if !equal(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}

	wantStatuses := []checkoutlog.Status{
		checkoutlog.StatusStarted,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusCompleted,
	}
	assertStatuses(t, log.All("chk-1"), wantStatuses)
}

func TestStartCompensatesInReverseOrder(t *testing.T) {
	var trace []string
	boom := fault.InsufficientStock("product %q is out of stock. Available: %d, Requested: %d", "Runner", 0, 1)
	steps := []coordinator.Step{
		&recordingStep{name: "a", trace: &trace},
		&recordingStep{name: "b", trace: &trace},
		&recordingStep{name: "c", trace: &trace, executeErr: boom},
	}
	log := checkoutlog.NewMemoryRepository()

	saga := coordinator.NewOrchestrator("chk-2", steps, log, "")
	err := saga.Start(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected the step error back unchanged, got %v", err)
	}
	// Fault typing must survive the orchestrator.
	if !fault.IsKind(err, fault.KindInsufficientStock) {
		t.Fatalf("expected insufficient stock kind, got %v", err)
	}

	want := []string{"exec:a", "exec:b", "exec:c", "comp:b", "comp:a"}
	if !equal(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}

	wantStatuses := []checkoutlog.Status{
		checkoutlog.StatusStarted,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusStepDone,
		checkoutlog.StatusCompensating,
		checkoutlog.StatusFailed,
	}
	entries := log.All("chk-2")
	assertStatuses(t, entries, wantStatuses)

	failed := entries[len(entries)-1]
	if failed.CurrentStep != "c" {
		t.Fatalf("FAILED row should name the failing step, got %q", failed.CurrentStep)
	}
	if !strings.Contains(failed.ErrorMessages, "step c failed") {
		t.Fatalf("FAILED row missing step error, got %q", failed.ErrorMessages)
	}
}

func TestRollbackContinuesPastCompensationFailure(t *testing.T) {
	var trace []string
	steps := []coordinator.Step{
		&recordingStep{name: "a", trace: &trace},
		&recordingStep{name: "b", trace: &trace, compensateErr: errors.New("release failed")},
		&recordingStep{name: "c", trace: &trace, executeErr: errors.New("boom")},
	}
	log := checkoutlog.NewMemoryRepository()

	saga := coordinator.NewOrchestrator("chk-3", steps, log, "")
	if err := saga.Start(context.Background()); err == nil {
		t.Fatal("expected step error")
	}

	// b's compensation fails but a's must still run.
	want := []string{"exec:a", "exec:b", "exec:c", "comp:b", "comp:a"}
	if !equal(trace, want) {
		t.Fatalf("trace = %v, want %v", trace, want)
	}

	entries := log.All("chk-3")
	failed := entries[len(entries)-1]
	if failed.Status != checkoutlog.StatusFailed {
		t.Fatalf("expected FAILED terminal entry, got %s", failed.Status)
	}
	if !strings.Contains(failed.ErrorMessages, "compensation of b failed") {
		t.Fatalf("expected compensation failure recorded, got %q", failed.ErrorMessages)
	}
}

func TestStartWithNilLog(t *testing.T) {
	var trace []string
	steps := []coordinator.Step{&recordingStep{name: "a", trace: &trace}}

	saga := coordinator.NewOrchestrator("chk-4", steps, nil, "")
	if err := saga.Start(context.Background()); err != nil {
		t.Fatalf("Start with nil log failed: %v", err)
	}
}

func assertStatuses(t *testing.T, entries []*checkoutlog.Entry, want []checkoutlog.Status) {
	t.Helper()
	if len(entries) != len(want) {
		t.Fatalf("expected %d log entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Status != want[i] {
			t.Fatalf("entry %d status = %s, want %s", i, e.Status, want[i])
		}
	}
}

func equal(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}
