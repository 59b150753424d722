package apollo

import (
	"context"
	"errors"

	"leadvox_backend/platform/logger"
)

// ResolvedContact is the outcome of a best-contact search. A nil Person
// means no candidate was found; that is a reported absence, not an error.
type ResolvedContact struct {
	Person *Person
	// Email is the usable address for the person, possibly revealed via
	// enrichment. Empty when the contact has no reachable address.
	Email string
}

// PeopleAPI is the slice of the client the resolver uses; tests provide
// scripted implementations.
type PeopleAPI interface {
	SearchPeople(ctx context.Context, organizationID string, titles []string) ([]Person, error)
	EnrichPerson(ctx context.Context, personID string) (string, error)
}

// Resolver picks the best outreach contact at an organization.
type Resolver struct {
	api PeopleAPI
	log *logger.Logger
}

// NewResolver creates a contact resolver over the given people API.
func NewResolver(api PeopleAPI, log *logger.Logger) *Resolver {
	return &Resolver{api: api, log: log}
}

// DisabledResolver stands in when no provider API key is configured.
// Every lookup fails with a configuration error.
type DisabledResolver struct{}

func (DisabledResolver) FindBestContact(ctx context.Context, organizationID string, titles []string) (ResolvedContact, error) {
	return ResolvedContact{}, errors.New("contact search is not configured: missing APOLLO_API_KEY")
}

// FindBestContact searches people by title priority and picks the first
// candidate with a name, preferring ones the provider says have an email.
// Enrichment is attempted only for candidates with a locked email on file.
// Transport failures return an error; "nobody found" returns a zero-value
// ResolvedContact with a nil Person.
func (r *Resolver) FindBestContact(ctx context.Context, organizationID string, titles []string) (ResolvedContact, error) {
	people, err := r.api.SearchPeople(ctx, organizationID, titles)
	if err != nil {
		return ResolvedContact{}, err
	}

	best := pickCandidate(people)
	if best == nil {
		return ResolvedContact{}, nil
	}

	resolved := ResolvedContact{Person: best, Email: best.Email}
	if resolved.Email == "" && best.HasEmail {
		email, err := r.api.EnrichPerson(ctx, best.ID)
		if err != nil {
			r.log.Warn("person enrichment failed", "person_id", best.ID, "error", err)
			return resolved, nil
		}
		resolved.Email = email
	}
	return resolved, nil
}

// pickCandidate scans the first page of results, skipping entries with no
// first name. Among the rest, a candidate with an email wins; otherwise
// the first named one.
func pickCandidate(people []Person) *Person {
	var fallback *Person
	for i := range people {
		p := &people[i]
		if p.FirstName == "" {
			continue
		}
		if p.Email != "" || p.HasEmail {
			return p
		}
		if fallback == nil {
			fallback = p
		}
	}
	return fallback
}
