package service

import (
	"context"
	"fmt"

	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/platform/apperr"

	"github.com/google/uuid"
)

// Stats is the count-by-state aggregate shown on the dashboard.
type Stats struct {
	PendingGeneration int `json:"pendingGeneration"`
	EmailNotGenerated int `json:"emailNotGenerated"`
	PendingReview     int `json:"pendingReview"`
	ApprovedToSend    int `json:"approvedToSend"`
	Sent              int `json:"sent"`
	Total             int `json:"total"`
}

// Stats returns the number of companies in each pipeline state.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	counts, err := s.store.CountByState(ctx)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		PendingGeneration: counts[domain.StatePendingGeneration],
		EmailNotGenerated: counts[domain.StateEmailNotGenerated],
		PendingReview:     counts[domain.StatePendingReview],
		ApprovedToSend:    counts[domain.StateApprovedToSend],
		Sent:              counts[domain.StateSent],
	}
	stats.Total = stats.PendingGeneration + stats.EmailNotGenerated +
		stats.PendingReview + stats.ApprovedToSend + stats.Sent
	return stats, nil
}

// ListByState pages through companies in one state, newest-updated first,
// each joined with its draft when present.
func (s *Service) ListByState(ctx context.Context, state domain.State, limit, offset int) ([]repository.CompanyWithDraft, error) {
	if !domain.IsKnown(state) {
		return nil, apperr.Validation(fmt.Sprintf("unknown pipeline state %q", state))
	}
	return s.store.ListByState(ctx, state, limit, offset)
}

// AuditTrail returns the audit entries for one company, newest first.
func (s *Service) AuditTrail(ctx context.Context, companyID uuid.UUID, limit int) ([]domain.AuditLogEntry, error) {
	return s.store.ListAuditEntries(ctx, companyID, limit)
}

// GetCompany fetches one company.
func (s *Service) GetCompany(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	company, err := s.store.GetCompany(ctx, id)
	if err != nil {
		return domain.Company{}, s.machine.classify(err)
	}
	return company, nil
}

// GetDraft fetches one company's draft.
func (s *Service) GetDraft(ctx context.Context, companyID uuid.UUID) (domain.Draft, error) {
	draft, err := s.store.GetDraftByCompany(ctx, companyID)
	if err != nil {
		return domain.Draft{}, s.machine.classify(err)
	}
	return draft, nil
}
