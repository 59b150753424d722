package service

import (
	"context"
	"testing"

	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/platform/apperr"
	"leadvox_backend/platform/logger"

	"github.com/google/uuid"
)

func TestTransitionWritesOneAuditRow(t *testing.T) {
	store := newFakeStore()
	machine := NewStateMachine(store, logger.New("test"))
	company := store.addCompany("Acme", domain.StatePendingGeneration, nil)

	if err := machine.Transition(context.Background(), company.ID, domain.StatePendingReview, nil, nil); err != nil {
		t.Fatalf("Transition: %v", err)
	}

	if got := store.auditCountFor(company.ID); got != 1 {
		t.Fatalf("audit rows = %d, want 1", got)
	}
	updated, _ := store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StatePendingReview {
		t.Fatalf("state = %s, want %s", updated.State, domain.StatePendingReview)
	}
}

func TestInvalidTransitionReportedNotRecorded(t *testing.T) {
	store := newFakeStore()
	machine := NewStateMachine(store, logger.New("test"))
	company := store.addCompany("Acme", domain.StatePendingGeneration, nil)

	err := machine.Transition(context.Background(), company.ID, domain.StateSent, nil, nil)
	if err == nil {
		t.Fatal("expected error for pending_generation -> sent")
	}
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("kind = %v, want validation", apperr.GetKind(err))
	}

	if got := store.auditCountFor(company.ID); got != 0 {
		t.Fatalf("audit rows = %d, want 0 after rejected transition", got)
	}
	updated, _ := store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StatePendingGeneration {
		t.Fatalf("state changed to %s after rejected transition", updated.State)
	}
}

func TestTransitionUnknownCompany(t *testing.T) {
	store := newFakeStore()
	machine := NewStateMachine(store, logger.New("test"))

	err := machine.Transition(context.Background(), uuid.New(), domain.StatePendingReview, nil, nil)
	if err == nil {
		t.Fatal("expected error for unknown company")
	}
	if apperr.GetKind(err) != apperr.KindNotFound {
		t.Fatalf("kind = %v, want not found", apperr.GetKind(err))
	}
	if err.Error() != "Company not found" {
		t.Fatalf("message = %q, want %q", err.Error(), "Company not found")
	}
}

func TestMarkNotGeneratedStoresReasonAndResetClearsIt(t *testing.T) {
	store := newFakeStore()
	machine := NewStateMachine(store, logger.New("test"))
	company := store.addCompany("Acme", domain.StatePendingGeneration, nil)

	if err := machine.MarkNotGenerated(context.Background(), company.ID, domain.ContactNoEmail(), nil); err != nil {
		t.Fatalf("MarkNotGenerated: %v", err)
	}
	updated, _ := store.GetCompany(context.Background(), company.ID)
	if updated.State != domain.StateEmailNotGenerated {
		t.Fatalf("state = %s, want %s", updated.State, domain.StateEmailNotGenerated)
	}
	if updated.NotGenerated == nil || updated.NotGenerated.String() != "contact_found_no_email" {
		t.Fatalf("reason = %v, want contact_found_no_email", updated.NotGenerated)
	}

	if err := machine.Transition(context.Background(), company.ID, domain.StatePendingGeneration, nil, nil); err != nil {
		t.Fatalf("reset: %v", err)
	}
	updated, _ = store.GetCompany(context.Background(), company.ID)
	if updated.NotGenerated != nil {
		t.Fatalf("reason survived reset: %v", updated.NotGenerated)
	}
	if got := store.auditCountFor(company.ID); got != 2 {
		t.Fatalf("audit rows = %d, want 2", got)
	}
}
