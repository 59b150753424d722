package service

import (
	"context"

	"leadvox_backend/internal/pipeline/batch"
	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/platform/events"

	"github.com/google/uuid"
)

// ErrorDetail names one failed item so the operator can act on it
// without digging through logs.
type ErrorDetail struct {
	CompanyID   string `json:"companyId"`
	CompanyName string `json:"companyName"`
	Message     string `json:"error"`
}

// ProcessAllResult aggregates an import-and-generate batch.
type ProcessAllResult struct {
	Imported       int             `json:"imported"`
	EmailGenerated int             `json:"emailGenerated"`
	NoContact      int             `json:"noContact"`
	Skipped        int             `json:"skipped"`
	Errors         int             `json:"errors"`
	Outcomes       []ImportOutcome `json:"outcomes"`
	ErrorDetails   []ErrorDetail   `json:"errorDetails"`
}

// ProcessAll drives every candidate through the import-and-generate flow
// in chunks. One candidate's failure never aborts the batch.
func (s *Service) ProcessAll(ctx context.Context, candidates []ImportCandidate) ProcessAllResult {
	outcomes := batch.Run(ctx, s.runner, candidates, s.importAndGenerate)

	result := ProcessAllResult{
		Outcomes:     make([]ImportOutcome, 0, len(outcomes)),
		ErrorDetails: make([]ErrorDetail, 0),
	}
	for i, o := range outcomes {
		result.Outcomes = append(result.Outcomes, o.Result)
		switch {
		case o.Err != nil:
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, ErrorDetail{
				CompanyID:   o.Result.CompanyID,
				CompanyName: nameOrCandidate(o.Result, candidates[i]),
				Message:     o.Err.Error(),
			})
		case o.Result.FailureDetail != "":
			result.Errors++
			result.ErrorDetails = append(result.ErrorDetails, ErrorDetail{
				CompanyID:   o.Result.CompanyID,
				CompanyName: o.Result.CompanyName,
				Message:     o.Result.FailureDetail,
			})
		case o.Result.Skipped:
			result.Skipped++
		case o.Result.NoContact:
			result.NoContact++
		case o.Result.EmailGenerated:
			result.EmailGenerated++
		}
		if o.Result.Imported {
			result.Imported++
		}
	}

	s.publishBatchCompleted(ctx, "process_all", len(candidates), len(candidates)-result.Errors, result.Errors)
	return result
}

func nameOrCandidate(outcome ImportOutcome, candidate ImportCandidate) string {
	if outcome.CompanyName != "" {
		return outcome.CompanyName
	}
	if candidate.Name != "" {
		return candidate.Name
	}
	return "Unknown"
}

// BatchResult aggregates a simple success/failure batch operation.
type BatchResult struct {
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	Skipped   int           `json:"skipped"`
	Errors    []ErrorDetail `json:"errors"`
}

// BatchRetry regenerates drafts for companies in email_not_generated
// that already hold a contact email. Ineligible companies are skipped at
// selection, not counted as failures.
func (s *Service) BatchRetry(ctx context.Context, ids []uuid.UUID, actor *string) (BatchResult, error) {
	eligible := make([]uuid.UUID, 0, len(ids))
	skipped := 0
	for _, id := range ids {
		company, err := s.store.GetCompany(ctx, id)
		if err != nil || company.State != domain.StateEmailNotGenerated ||
			company.ContactEmail == nil || *company.ContactEmail == "" {
			skipped++
			continue
		}
		eligible = append(eligible, id)
	}

	result := s.runIDBatch(ctx, "batch_retry", eligible, func(ctx context.Context, id uuid.UUID) error {
		return s.retry(ctx, id, actor, originBatchRetry)
	})
	result.Skipped = skipped
	return result, nil
}

// BatchApprove freezes and advances every listed company in pending_review.
func (s *Service) BatchApprove(ctx context.Context, ids []uuid.UUID, actor *string) (BatchResult, error) {
	return s.runIDBatch(ctx, "batch_approve", ids, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.Approve(ctx, id, actor)
		return err
	}), nil
}

// BatchSend dispatches every listed company in approved_to_send.
func (s *Service) BatchSend(ctx context.Context, ids []uuid.UUID, actor *string) (BatchResult, error) {
	return s.runIDBatch(ctx, "batch_send", ids, func(ctx context.Context, id uuid.UUID) error {
		_, err := s.Send(ctx, id, actor)
		return err
	}), nil
}

// BatchDelete removes the listed companies. Names for error details come
// from a snapshot taken before any deletion, so a failing id can still be
// reported by name after its neighbours are gone.
func (s *Service) BatchDelete(ctx context.Context, ids []uuid.UUID, removeDedup bool) (BatchResult, error) {
	names, err := s.store.GetCompanyNames(ctx, ids)
	if err != nil {
		return BatchResult{}, err
	}

	outcomes := batch.Run(ctx, s.runner, ids, func(ctx context.Context, id uuid.UUID) (struct{}, error) {
		return struct{}{}, s.Delete(ctx, id, removeDedup)
	})

	result := BatchResult{Errors: make([]ErrorDetail, 0)}
	for i, o := range outcomes {
		if o.Err != nil {
			result.Failed++
			name, ok := names[ids[i]]
			if !ok {
				name = "Unknown"
			}
			result.Errors = append(result.Errors, ErrorDetail{
				CompanyID:   ids[i].String(),
				CompanyName: name,
				Message:     o.Err.Error(),
			})
			continue
		}
		result.Succeeded++
	}

	s.publishBatchCompleted(ctx, "batch_delete", len(ids), result.Succeeded, result.Failed)
	return result, nil
}

// runIDBatch runs a per-company worker over ids with the shared runner,
// resolving names for error details from a pre-fetched snapshot.
func (s *Service) runIDBatch(ctx context.Context, operation string, ids []uuid.UUID, worker func(ctx context.Context, id uuid.UUID) error) BatchResult {
	names, err := s.store.GetCompanyNames(ctx, ids)
	if err != nil {
		names = map[uuid.UUID]string{}
	}

	outcomes := batch.Run(ctx, s.runner, ids, func(ctx context.Context, id uuid.UUID) (struct{}, error) {
		return struct{}{}, worker(ctx, id)
	})

	result := BatchResult{Errors: make([]ErrorDetail, 0)}
	for i, o := range outcomes {
		if o.Err != nil {
			result.Failed++
			name, ok := names[ids[i]]
			if !ok {
				name = "Unknown"
			}
			result.Errors = append(result.Errors, ErrorDetail{
				CompanyID:   ids[i].String(),
				CompanyName: name,
				Message:     o.Err.Error(),
			})
			continue
		}
		result.Succeeded++
	}

	s.publishBatchCompleted(ctx, operation, len(ids), result.Succeeded, result.Failed)
	return result
}

func (s *Service) publishBatchCompleted(ctx context.Context, operation string, total, succeeded, failed int) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, BatchCompletedEvent{
		BaseEvent: events.NewBaseEvent(),
		Operation: operation,
		Total:     total,
		Succeeded: succeeded,
		Failed:    failed,
	})
}
