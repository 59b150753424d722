package service

import (
	"context"
	"errors"
	"fmt"

	"leadvox_backend/internal/gemini"
	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/platform/events"

	"github.com/google/uuid"
)

// ImportCandidate is one organization from a provider search, ready for
// import into the pipeline.
type ImportCandidate struct {
	// OrganizationID is the provider's organization-level id, preferred
	// over any account-level id by the caller.
	OrganizationID string
	Name           string
	Domain         string
	Website        string
	Industry       string
	Location       string
	EmployeeCount  int
}

// ImportOutcome is the tagged per-item result of the richest flow.
type ImportOutcome struct {
	CompanyID      string
	CompanyName    string
	Imported       bool
	EmailGenerated bool
	// Skipped marks a re-imported company that already moved past
	// pending_generation or already holds a draft; it is left untouched.
	Skipped bool
	// NoContact marks the no_apollo_id / no_valid_contact_found /
	// contact_found_no_email endings; the company sits in
	// email_not_generated with the exact reason recorded on it.
	NoContact bool
	// FailureDetail is set for generation and infrastructure failures,
	// which count as errors rather than the no-contact bucket.
	FailureDetail string
}

// importAndGenerate runs the strictly sequential per-company flow. Every
// gate that fails leaves the company parked in email_not_generated with
// a specific reason, and the remaining steps are skipped.
func (s *Service) importAndGenerate(ctx context.Context, candidate ImportCandidate) (ImportOutcome, error) {
	company, created, err := s.upsertCandidate(ctx, candidate)
	if err != nil {
		return ImportOutcome{CompanyName: candidate.Name}, err
	}

	outcome := ImportOutcome{
		CompanyID:   company.ID.String(),
		CompanyName: company.Name,
		Imported:    created,
	}

	// A company that already moved past pending_generation, or that
	// already holds a draft, is left exactly as it is: re-running the
	// flow would overwrite reviewed content.
	if !created {
		if company.State != domain.StatePendingGeneration {
			outcome.Skipped = true
			return outcome, nil
		}
		switch _, err := s.store.GetDraftByCompany(ctx, company.ID); {
		case err == nil:
			outcome.Skipped = true
			return outcome, nil
		case !errors.Is(err, repository.ErrDraftNotFound):
			return outcome, err
		}
	}

	if company.ApolloID == nil || *company.ApolloID == "" {
		if err := s.machine.MarkNotGenerated(ctx, company.ID, domain.NoApolloID(), nil); err != nil {
			return outcome, err
		}
		outcome.NoContact = true
		return outcome, nil
	}

	titles, err := s.titles.ActiveTitles(ctx)
	if err != nil {
		return outcome, fmt.Errorf("load target titles: %w", err)
	}

	resolved, err := s.resolver.FindBestContact(ctx, *company.ApolloID, titles)
	if err != nil {
		return outcome, fmt.Errorf("contact search: %w", err)
	}
	if resolved.Person == nil {
		if err := s.machine.MarkNotGenerated(ctx, company.ID, domain.NoValidContact(), nil); err != nil {
			return outcome, err
		}
		outcome.NoContact = true
		return outcome, nil
	}

	contact := resolved.Person
	var emailPtr *string
	if resolved.Email != "" {
		emailPtr = &resolved.Email
	}
	err = s.store.UpdateContactSnapshot(ctx, repository.UpdateContactParams{
		CompanyID: company.ID,
		FirstName: nonEmptyPtr(contact.FirstName),
		LastName:  nonEmptyPtr(contact.LastName),
		Email:     emailPtr,
		Title:     nonEmptyPtr(contact.Title),
	})
	if err != nil {
		return outcome, fmt.Errorf("persist contact: %w", err)
	}

	if resolved.Email == "" {
		if err := s.machine.MarkNotGenerated(ctx, company.ID, domain.ContactNoEmail(), nil); err != nil {
			return outcome, err
		}
		outcome.NoContact = true
		return outcome, nil
	}

	company, err = s.store.GetCompany(ctx, company.ID)
	if err != nil {
		return outcome, err
	}

	if err := s.generateDraftFor(ctx, company, originAutoProcess); err != nil {
		detail := err.Error()
		if markErr := s.machine.MarkNotGenerated(ctx, company.ID, domain.GenerationFailed(detail), nil); markErr != nil {
			return outcome, markErr
		}
		outcome.FailureDetail = detail
		return outcome, nil
	}

	outcome.EmailGenerated = true
	return outcome, nil
}

// draftOrigin tags the email_generated audit entry with how the run was
// initiated, so a sweep, a batch retry and a manual generate stay
// distinguishable in the trail.
type draftOrigin string

const (
	originManual      draftOrigin = ""
	originAutoProcess draftOrigin = "autoProcessed"
	originBatchRetry  draftOrigin = "batchRetry"
)

// generateDraftFor composes the prompt, calls the generator, persists the
// draft and moves the company to pending_review with an email_generated
// audit entry. The company must currently allow the pending_review edge.
func (s *Service) generateDraftFor(ctx context.Context, company domain.Company, origin draftOrigin) error {
	prompt, err := s.prompts.ComposePrompt(ctx, promptInputFor(company))
	if err != nil {
		return fmt.Errorf("compose prompt: %w", err)
	}

	draft, err := s.generator.Generate(ctx, gemini.GenerateRequest{
		Company: company,
		Contact: gemini.Contact{
			FirstName: deref(company.ContactFirst),
			LastName:  deref(company.ContactLast),
			Title:     deref(company.ContactTitle),
		},
		Prompt: prompt,
	})
	if err != nil {
		return err
	}

	model := s.generator.ModelName()
	if _, err := s.store.UpsertDraft(ctx, repository.UpsertDraftParams{
		CompanyID:  company.ID,
		Subject:    draft.Subject,
		Body:       draft.Body,
		PromptUsed: &prompt,
		Model:      &model,
	}); err != nil {
		return fmt.Errorf("persist draft: %w", err)
	}

	if err := s.machine.Transition(ctx, company.ID, domain.StatePendingReview, nil, nil); err != nil {
		return err
	}
	s.publishStateChange(ctx, company.ID, company.State, domain.StatePendingReview)

	metadata := map[string]any{
		"subject":       draft.Subject,
		"bodyLength":    len(draft.Body),
		"targetContact": company.ContactFullName(),
	}
	if origin != originManual {
		metadata[string(origin)] = true
	}
	return s.store.RecordAction(ctx, repository.RecordActionParams{
		EntityType: "company",
		EntityID:   company.ID,
		Action:     domain.AuditActionEmailGenerated,
		Metadata:   metadata,
	})
}

func (s *Service) upsertCandidate(ctx context.Context, candidate ImportCandidate) (domain.Company, bool, error) {
	company, created, err := s.store.UpsertCompany(ctx, repository.UpsertCompanyParams{
		ApolloID:      nonEmptyPtr(candidate.OrganizationID),
		Domain:        nonEmptyPtr(candidate.Domain),
		Name:          candidate.Name,
		Website:       nonEmptyPtr(candidate.Website),
		Industry:      nonEmptyPtr(candidate.Industry),
		Location:      nonEmptyPtr(candidate.Location),
		EmployeeCount: positivePtr(candidate.EmployeeCount),
	})
	if err != nil {
		return domain.Company{}, false, fmt.Errorf("upsert company: %w", err)
	}

	if candidate.OrganizationID != "" {
		if err := s.store.UpsertDedupRecord(ctx, repository.UpsertDedupParams{
			OrganizationID: candidate.OrganizationID,
			Name:           candidate.Name,
			Domain:         nonEmptyPtr(candidate.Domain),
		}); err != nil {
			return domain.Company{}, false, fmt.Errorf("record dedup marker: %w", err)
		}
	}

	return company, created, nil
}

func (s *Service) publishStateChange(ctx context.Context, companyID uuid.UUID, from, to domain.State) {
	if s.bus == nil {
		return
	}
	s.bus.Publish(ctx, StateChangedEvent{
		BaseEvent: events.NewBaseEvent(),
		CompanyID: companyID,
		From:      from,
		To:        to,
	})
}

func promptInputFor(company domain.Company) PromptInput {
	return PromptInput{
		CompanyName:      company.Name,
		Website:          deref(company.Website),
		Industry:         deref(company.Industry),
		Location:         deref(company.Location),
		ContactFirstName: deref(company.ContactFirst),
		ContactLastName:  deref(company.ContactLast),
		ContactTitle:     deref(company.ContactTitle),
	}
}

func nonEmptyPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func positivePtr(n int) *int {
	if n <= 0 {
		return nil
	}
	return &n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
