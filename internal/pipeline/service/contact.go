package service

import (
	"context"
	"fmt"

	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/platform/apperr"

	"github.com/google/uuid"
)

// FindContact runs contact resolution for one existing company and
// refreshes its contact snapshot. It does not change pipeline state;
// callers decide whether to regenerate afterwards.
func (s *Service) FindContact(ctx context.Context, companyID uuid.UUID) (domain.Company, error) {
	company, err := s.store.GetCompany(ctx, companyID)
	if err != nil {
		return domain.Company{}, s.machine.classify(err)
	}
	if company.ApolloID == nil || *company.ApolloID == "" {
		return domain.Company{}, apperr.Validation("company has no provider organization id")
	}

	titles, err := s.titles.ActiveTitles(ctx)
	if err != nil {
		return domain.Company{}, fmt.Errorf("load target titles: %w", err)
	}

	resolved, err := s.resolver.FindBestContact(ctx, *company.ApolloID, titles)
	if err != nil {
		return domain.Company{}, apperr.Wrap(apperr.KindUnavailable, "contact search failed", err)
	}
	if resolved.Person == nil {
		return domain.Company{}, apperr.NotFound("no suitable contact found")
	}

	var emailPtr *string
	if resolved.Email != "" {
		emailPtr = &resolved.Email
	}
	err = s.store.UpdateContactSnapshot(ctx, repository.UpdateContactParams{
		CompanyID: companyID,
		FirstName: nonEmptyPtr(resolved.Person.FirstName),
		LastName:  nonEmptyPtr(resolved.Person.LastName),
		Email:     emailPtr,
		Title:     nonEmptyPtr(resolved.Person.Title),
	})
	if err != nil {
		return domain.Company{}, s.machine.classify(err)
	}

	company, err = s.store.GetCompany(ctx, companyID)
	if err != nil {
		return domain.Company{}, s.machine.classify(err)
	}
	return company, nil
}

// FetchedOrganizationIDs lists every provider organization id already
// imported, for exclusion from the next search.
func (s *Service) FetchedOrganizationIDs(ctx context.Context) ([]string, error) {
	return s.store.ListFetchedOrganizationIDs(ctx)
}
