package service

import (
	"context"
	"fmt"
	"strings"

	"leadvox_backend/internal/email"
	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/platform/apperr"

	"github.com/google/uuid"
)

// ReviewInput carries the operator's review-time changes.
type ReviewInput struct {
	EditedSubject *string
	EditedBody    *string
	// RecipientEmail replaces the contact email the send will use.
	RecipientEmail *string
}

// Review stores the operator's edits on a pending_review draft without
// changing state, and records an email_reviewed audit entry.
func (s *Service) Review(ctx context.Context, companyID uuid.UUID, input ReviewInput, actor *string) (domain.Draft, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return domain.Draft{}, s.machine.classify(err)
	}
	if company.State != domain.StatePendingReview {
		return domain.Draft{}, apperr.Validation(
			fmt.Sprintf("company is in %s, expected %s", company.State, domain.StatePendingReview))
	}

	if input.RecipientEmail != nil && *input.RecipientEmail != "" {
		err := s.store.UpdateContactSnapshot(ctx, repository.UpdateContactParams{
			CompanyID: companyID,
			FirstName: company.ContactFirst,
			LastName:  company.ContactLast,
			Email:     input.RecipientEmail,
			Title:     company.ContactTitle,
		})
		if err != nil {
			return domain.Draft{}, s.machine.classify(err)
		}
	}

	draft, err := s.store.SaveReview(ctx, repository.SaveReviewParams{
		CompanyID:     companyID,
		EditedSubject: input.EditedSubject,
		EditedBody:    input.EditedBody,
	})
	if err != nil {
		return domain.Draft{}, s.machine.classify(err)
	}

	err = s.store.RecordAction(ctx, repository.RecordActionParams{
		EntityType: "company",
		EntityID:   companyID,
		Action:     domain.AuditActionEmailReviewed,
		Metadata: map[string]any{
			"edited":              input.EditedSubject != nil || input.EditedBody != nil,
			"recipientOverridden": input.RecipientEmail != nil && *input.RecipientEmail != "",
		},
		Actor: actor,
	})
	if err != nil {
		return domain.Draft{}, err
	}
	return draft, nil
}

// Approve freezes the effective content (edits winning over the
// generated original) into the final columns and moves the company to
// approved_to_send.
func (s *Service) Approve(ctx context.Context, companyID uuid.UUID, actor *string) (domain.Draft, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return domain.Draft{}, s.machine.classify(err)
	}
	if company.State != domain.StatePendingReview {
		return domain.Draft{}, apperr.Validation(
			fmt.Sprintf("company is in %s, expected %s", company.State, domain.StatePendingReview))
	}
	if _, err := s.store.GetDraftByCompany(ctx, companyID); err != nil {
		return domain.Draft{}, s.machine.classify(err)
	}

	draft, err := s.store.FreezeFinalContent(ctx, companyID)
	if err != nil {
		return domain.Draft{}, s.machine.classify(err)
	}

	if err := s.machine.Transition(ctx, companyID, domain.StateApprovedToSend, actor, nil); err != nil {
		return domain.Draft{}, err
	}
	s.publishStateChange(ctx, companyID, company.State, domain.StateApprovedToSend)

	err = s.store.RecordAction(ctx, repository.RecordActionParams{
		EntityType: "company",
		EntityID:   companyID,
		Action:     domain.AuditActionEmailApproved,
		Metadata:   map[string]any{"finalSubject": deref(draft.FinalSubject)},
		Actor:      actor,
	})
	if err != nil {
		return domain.Draft{}, err
	}
	return draft, nil
}

// Send dispatches an approved draft. The attempt counter always
// increments; the error column records the failure or is cleared on
// success. Only a confirmed provider acceptance transitions to sent —
// a failed send leaves the state untouched and writes no audit row.
func (s *Service) Send(ctx context.Context, companyID uuid.UUID, actor *string) (domain.Draft, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return domain.Draft{}, s.machine.classify(err)
	}
	if company.State != domain.StateApprovedToSend {
		return domain.Draft{}, apperr.Validation(
			fmt.Sprintf("company is in %s, expected %s", company.State, domain.StateApprovedToSend))
	}
	if company.ContactEmail == nil || *company.ContactEmail == "" {
		return domain.Draft{}, apperr.Validation("company has no contact email")
	}

	draft, err := s.store.GetDraftByCompany(ctx, companyID)
	if err != nil {
		return domain.Draft{}, s.machine.classify(err)
	}

	recipient := *company.ContactEmail
	msg := email.Message{
		To:      recipient,
		Subject: draft.SendSubject(),
		Body:    draft.SendBody(),
	}
	if s.sender != nil {
		name, addr, senderErr := s.sender.SenderOverride(ctx)
		if senderErr != nil {
			s.log.Warn("sender settings unavailable, using configured sender", "error", senderErr)
		} else if addr != "" {
			msg.FromName, msg.FromEmail = name, addr
		}
	}
	messageID, sendErr := s.dispatcher.Send(ctx, msg)

	draft, recordErr := s.store.RecordSendAttempt(ctx, companyID, recipient, sendErr)
	if recordErr != nil {
		return domain.Draft{}, s.machine.classify(recordErr)
	}

	if sendErr != nil {
		s.log.Warn("send failed",
			"company_id", companyID.String(),
			"recipient", recipient,
			"class", string(email.ClassOf(sendErr)),
			"error", sendErr,
		)
		return draft, apperr.Wrap(apperr.KindUnavailable, sendErr.Error(), sendErr)
	}

	err = s.machine.Transition(ctx, companyID, domain.StateSent, actor, map[string]any{
		"recipientEmail": recipient,
		"sentAt":         draft.SentAt,
		"messageId":      messageID,
	})
	if err != nil {
		return domain.Draft{}, err
	}
	s.publishStateChange(ctx, companyID, company.State, domain.StateSent)

	return draft, nil
}

// Retry regenerates the draft for a company parked in email_not_generated
// that already has a contact email: reset to pending_generation (which
// clears the stored reason), generate, and land in pending_review.
func (s *Service) Retry(ctx context.Context, companyID uuid.UUID, actor *string) error {
	return s.retry(ctx, companyID, actor, originManual)
}

func (s *Service) retry(ctx context.Context, companyID uuid.UUID, actor *string, origin draftOrigin) error {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return s.machine.classify(err)
	}
	if company.State != domain.StateEmailNotGenerated {
		return apperr.Validation(
			fmt.Sprintf("company is in %s, expected %s", company.State, domain.StateEmailNotGenerated))
	}
	if company.ContactEmail == nil || *company.ContactEmail == "" {
		return apperr.Validation("company has no contact email to retry with")
	}

	if err := s.machine.Transition(ctx, companyID, domain.StatePendingGeneration, actor, map[string]any{"retry": true}); err != nil {
		return err
	}

	company, err = s.store.GetCompany(ctx, companyID)
	if err != nil {
		return s.machine.classify(err)
	}

	if err := s.generateDraftFor(ctx, company, origin); err != nil {
		detail := err.Error()
		if markErr := s.machine.MarkNotGenerated(ctx, companyID, domain.GenerationFailed(detail), actor); markErr != nil {
			return markErr
		}
		return apperr.Wrap(apperr.KindUnavailable, "draft regeneration failed: "+detail, err)
	}
	return nil
}

// Generate runs draft generation for a company already sitting in
// pending_generation (e.g. imported earlier without a generation pass).
func (s *Service) Generate(ctx context.Context, companyID uuid.UUID, actor *string) error {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return s.machine.classify(err)
	}
	if company.State != domain.StatePendingGeneration {
		return apperr.Validation(
			fmt.Sprintf("company is in %s, expected %s", company.State, domain.StatePendingGeneration))
	}
	if company.ContactEmail == nil || *company.ContactEmail == "" {
		if err := s.machine.MarkNotGenerated(ctx, companyID, domain.ContactNoEmail(), actor); err != nil {
			return err
		}
		return apperr.Validation("company has no contact email")
	}

	if err := s.generateDraftFor(ctx, company, originManual); err != nil {
		detail := err.Error()
		if markErr := s.machine.MarkNotGenerated(ctx, companyID, domain.GenerationFailed(detail), actor); markErr != nil {
			return markErr
		}
		return apperr.Wrap(apperr.KindUnavailable, "draft generation failed: "+detail, err)
	}
	return nil
}

// DeleteDraftAndReset removes the company's draft and forces it back to
// pending_generation in one atomic step, whatever state it was in. The
// adjacency table is deliberately bypassed here: discarding the draft is
// the one operation that may pull an approved or sent lead back.
func (s *Service) DeleteDraftAndReset(ctx context.Context, companyID uuid.UUID, actor *string) error {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return s.machine.classify(err)
	}

	err = s.store.DeleteDraftAndReset(ctx, repository.ResetDraftParams{
		CompanyID: companyID,
		Actor:     actor,
	})
	if err != nil {
		return s.machine.classify(err)
	}
	s.publishStateChange(ctx, companyID, company.State, domain.StatePendingGeneration)
	return nil
}

// UpdateCompany patches the descriptive fields of a lead; the pipeline
// state and contact snapshot are managed by their own flows.
func (s *Service) UpdateCompany(ctx context.Context, params repository.UpdateCompanyParams) (domain.Company, error) {
	if params.Name != nil {
		trimmed := strings.TrimSpace(*params.Name)
		if trimmed == "" {
			return domain.Company{}, apperr.Validation("company name must not be empty")
		}
		params.Name = &trimmed
	}
	company, err := s.store.UpdateCompany(ctx, params)
	if err != nil {
		return domain.Company{}, s.machine.classify(err)
	}
	return company, nil
}

// Delete removes the company, its draft and its audit rows atomically.
func (s *Service) Delete(ctx context.Context, companyID uuid.UUID, removeDedup bool) error {
	err := s.store.DeleteCompany(ctx, repository.DeleteCompanyParams{
		CompanyID:         companyID,
		RemoveDedupRecord: removeDedup,
	})
	if err != nil {
		return s.machine.classify(err)
	}
	return nil
}
