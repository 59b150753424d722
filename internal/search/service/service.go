// Package service runs provider company searches, excluding
// organizations that were already imported.
package service

import (
	"context"
	"fmt"

	"leadvox_backend/internal/apollo"
	"leadvox_backend/platform/apperr"
	"leadvox_backend/platform/logger"
)

// SearchAPI is the provider search surface the service needs;
// *apollo.Client implements it.
type SearchAPI interface {
	SearchOrganizations(ctx context.Context, params apollo.SearchParams) (apollo.SearchResult, error)
}

// FetchedLister supplies the already-imported organization ids.
type FetchedLister interface {
	FetchedOrganizationIDs(ctx context.Context) ([]string, error)
}

// Service wraps the provider search with dedup exclusions.
type Service struct {
	api     SearchAPI
	fetched FetchedLister
	log     *logger.Logger
}

// New creates the search service. A nil api marks the provider as
// disabled; searches then fail with a typed unavailable error.
func New(api SearchAPI, fetched FetchedLister, log *logger.Logger) *Service {
	return &Service{api: api, fetched: fetched, log: log}
}

// Filters are the operator-facing search criteria.
type Filters struct {
	Locations    []string
	EmployeesMin int
	EmployeesMax int
	Keywords     []string
	Page         int
	PerPage      int
	// IncludeFetched disables the dedup exclusion, e.g. to re-inspect
	// organizations that were imported and later deleted.
	IncludeFetched bool
}

// Search returns provider organizations matching the filters, minus the
// ones already imported unless IncludeFetched is set.
func (s *Service) Search(ctx context.Context, filters Filters) (apollo.SearchResult, error) {
	if s.api == nil {
		return apollo.SearchResult{}, apperr.New(apperr.KindUnavailable, "lead search provider is not configured")
	}

	var exclude []string
	if !filters.IncludeFetched {
		ids, err := s.fetched.FetchedOrganizationIDs(ctx)
		if err != nil {
			return apollo.SearchResult{}, fmt.Errorf("load fetched organization ids: %w", err)
		}
		exclude = ids
	}

	var ranges []string
	if filters.EmployeesMin > 0 || filters.EmployeesMax > 0 {
		ranges = []string{fmt.Sprintf("%d,%d", filters.EmployeesMin, filters.EmployeesMax)}
	}

	result, err := s.api.SearchOrganizations(ctx, apollo.SearchParams{
		Locations:      filters.Locations,
		EmployeeRanges: ranges,
		Keywords:       filters.Keywords,
		Page:           filters.Page,
		PerPage:        filters.PerPage,
		ExcludedOrgIDs: exclude,
	})
	if err != nil {
		return apollo.SearchResult{}, apperr.Wrap(apperr.KindUnavailable, "lead search failed", err)
	}

	s.log.Info("lead search completed",
		"results", len(result.Organizations),
		"excluded", len(exclude),
	)
	return result, nil
}

// FetchedIDs lists every organization id already imported.
func (s *Service) FetchedIDs(ctx context.Context) ([]string, error) {
	return s.fetched.FetchedOrganizationIDs(ctx)
}
