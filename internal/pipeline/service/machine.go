package service

import (
	"context"
	"errors"
	"strings"

	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/platform/apperr"
	"leadvox_backend/platform/logger"

	"github.com/google/uuid"
)

// StateMachine drives a single company through the pipeline. Every
// successful transition writes exactly one audit row in the same
// transaction as the state change.
type StateMachine struct {
	store repository.Store
	log   *logger.Logger
}

// NewStateMachine wires the machine over the given store.
func NewStateMachine(store repository.Store, log *logger.Logger) *StateMachine {
	return &StateMachine{store: store, log: log}
}

// Transition moves the company to the target state. Failures are
// reported as typed errors: not-found or validation, never a panic.
func (m *StateMachine) Transition(ctx context.Context, companyID uuid.UUID, to domain.State, actor *string, metadata map[string]any) error {
	from, err := m.store.Transition(ctx, repository.TransitionParams{
		CompanyID: companyID,
		To:        to,
		Actor:     actor,
		Metadata:  metadata,
	})
	if err != nil {
		return m.classify(err)
	}

	m.log.StateTransition(companyID.String(), string(from), string(to))
	return nil
}

// MarkNotGenerated transitions to email_not_generated and stores the
// structured reason on the company, atomically. The reason is skipped
// entirely when the transition itself is invalid.
func (m *StateMachine) MarkNotGenerated(ctx context.Context, companyID uuid.UUID, reason domain.NotGeneratedReason, actor *string) error {
	from, err := m.store.Transition(ctx, repository.TransitionParams{
		CompanyID: companyID,
		To:        domain.StateEmailNotGenerated,
		Actor:     actor,
		Metadata:  map[string]any{"reason": reason.String()},
		Reason:    &reason,
	})
	if err != nil {
		return m.classify(err)
	}

	m.log.StateTransition(companyID.String(), string(from), string(domain.StateEmailNotGenerated))
	return nil
}

// classify converts repository errors into typed domain errors so HTTP
// and batch callers can branch on kind instead of string matching.
func (m *StateMachine) classify(err error) error {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound("Company not found")
	case errors.Is(err, repository.ErrDraftNotFound):
		return apperr.NotFound("Draft not found")
	case strings.Contains(err.Error(), "invalid state transition"):
		return apperr.Validation(err.Error())
	case strings.Contains(err.Error(), "unknown pipeline state"):
		return apperr.Validation(err.Error())
	default:
		return apperr.Wrap(apperr.KindInternal, "transition failed", err)
	}
}
