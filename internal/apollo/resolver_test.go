package apollo

import (
	"context"
	"errors"
	"testing"

	"leadvox_backend/platform/logger"
)

type fakePeopleAPI struct {
	people     []Person
	searchErr  error
	enriched   map[string]string
	enrichErr  error
	enrichWant string
}

func (f *fakePeopleAPI) SearchPeople(ctx context.Context, organizationID string, titles []string) ([]Person, error) {
	return f.people, f.searchErr
}

func (f *fakePeopleAPI) EnrichPerson(ctx context.Context, personID string) (string, error) {
	f.enrichWant = personID
	if f.enrichErr != nil {
		return "", f.enrichErr
	}
	return f.enriched[personID], nil
}

func newTestResolver(api *fakePeopleAPI) *Resolver {
	return NewResolver(api, logger.New("development"))
}

func TestFindBestContactNobodyFound(t *testing.T) {
	r := newTestResolver(&fakePeopleAPI{people: nil})
	resolved, err := r.FindBestContact(context.Background(), "org_1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Person != nil {
		t.Errorf("expected nil person, got %+v", resolved.Person)
	}
}

func TestFindBestContactSkipsUnnamedPeople(t *testing.T) {
	r := newTestResolver(&fakePeopleAPI{people: []Person{
		{ID: "p1", FirstName: "", Title: "CEO"},
		{ID: "p2", FirstName: "Ann", LastName: "Lee", Title: "CTO"},
	}})
	resolved, err := r.FindBestContact(context.Background(), "org_1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Person == nil || resolved.Person.ID != "p2" {
		t.Errorf("expected p2, got %+v", resolved.Person)
	}
}

func TestFindBestContactPrefersCandidateWithEmail(t *testing.T) {
	r := newTestResolver(&fakePeopleAPI{people: []Person{
		{ID: "p1", FirstName: "Bob"},
		{ID: "p2", FirstName: "Ann", Email: "ann@acme.com"},
	}})
	resolved, err := r.FindBestContact(context.Background(), "org_1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Person.ID != "p2" || resolved.Email != "ann@acme.com" {
		t.Errorf("got %+v email=%q", resolved.Person, resolved.Email)
	}
}

func TestFindBestContactEnrichesLockedEmail(t *testing.T) {
	api := &fakePeopleAPI{
		people:   []Person{{ID: "p1", FirstName: "Ann", HasEmail: true}},
		enriched: map[string]string{"p1": "ann@acme.com"},
	}
	r := newTestResolver(api)
	resolved, err := r.FindBestContact(context.Background(), "org_1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Email != "ann@acme.com" {
		t.Errorf("email = %q", resolved.Email)
	}
	if api.enrichWant != "p1" {
		t.Errorf("enriched wrong person %q", api.enrichWant)
	}
}

// Enrichment failure degrades to a contact without an email rather than
// failing resolution outright.
func TestFindBestContactEnrichFailureDegrades(t *testing.T) {
	api := &fakePeopleAPI{
		people:    []Person{{ID: "p1", FirstName: "Ann", HasEmail: true}},
		enrichErr: errors.New("quota exceeded"),
	}
	r := newTestResolver(api)
	resolved, err := r.FindBestContact(context.Background(), "org_1", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resolved.Person == nil || resolved.Email != "" {
		t.Errorf("got %+v email=%q", resolved.Person, resolved.Email)
	}
}

func TestFindBestContactSearchErrorPropagates(t *testing.T) {
	r := newTestResolver(&fakePeopleAPI{searchErr: errors.New("network down")})
	if _, err := r.FindBestContact(context.Background(), "org_1", nil); err == nil {
		t.Fatal("expected transport error to propagate")
	}
}

func TestOrganizationHelpers(t *testing.T) {
	org := Organization{ID: "acc_1", OrganizationID: "org_1", City: "Austin", Country: "US"}
	if org.ProviderID() != "org_1" {
		t.Errorf("ProviderID = %q", org.ProviderID())
	}
	if org.Location() != "Austin, US" {
		t.Errorf("Location = %q", org.Location())
	}

	accountOnly := Organization{ID: "acc_2"}
	if accountOnly.ProviderID() != "acc_2" {
		t.Errorf("ProviderID fallback = %q", accountOnly.ProviderID())
	}
}
