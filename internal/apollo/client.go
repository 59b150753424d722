// Package apollo is a thin client for the Apollo.io lead-search API:
// organization search for imports, people search and person enrichment
// for contact resolution.
package apollo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"leadvox_backend/platform/config"
	"leadvox_backend/platform/logger"

	"golang.org/x/time/rate"
)

// Client talks to the Apollo HTTP API. All calls share one rate limiter
// so bursts from batch runs stay under the provider's per-minute quota.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	limiter *rate.Limiter
	log     *logger.Logger
}

// New creates a client. The limiter allows roughly one request per
// second with a small burst, matching the free-tier quota.
func New(cfg config.ApolloConfig, log *logger.Logger) *Client {
	return &Client{
		baseURL: cfg.GetApolloBaseURL(),
		apiKey:  cfg.GetApolloAPIKey(),
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(1), 3),
		log:     log,
	}
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("apollo request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("apollo %s returned %d: %s", path, resp.StatusCode, string(data))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// Organization is a company record from organization search.
type Organization struct {
	ID             string `json:"id"`
	OrganizationID string `json:"organization_id"`
	Name           string `json:"name"`
	WebsiteURL     string `json:"website_url"`
	PrimaryDomain  string `json:"primary_domain"`
	Industry       string `json:"industry"`
	City           string `json:"organization_city"`
	State          string `json:"organization_state"`
	Country        string `json:"organization_country"`
	EmployeeCount  int    `json:"estimated_num_employees"`
}

// ProviderID prefers the organization-level id over the account-level id.
func (o Organization) ProviderID() string {
	if o.OrganizationID != "" {
		return o.OrganizationID
	}
	return o.ID
}

// Location joins city, state and country, skipping blanks.
func (o Organization) Location() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{o.City, o.State, o.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	loc := ""
	for i, p := range parts {
		if i > 0 {
			loc += ", "
		}
		loc += p
	}
	return loc
}

// SearchParams filters an organization search.
type SearchParams struct {
	Locations      []string
	EmployeeRanges []string // e.g. "11,50"
	Keywords       []string
	Page           int
	PerPage        int
	ExcludedOrgIDs []string
}

type orgSearchRequest struct {
	Locations      []string `json:"organization_locations,omitempty"`
	EmployeeRanges []string `json:"organization_num_employees_ranges,omitempty"`
	Keywords       []string `json:"q_organization_keyword_tags,omitempty"`
	NotOrgIDs      []string `json:"organization_not_ids,omitempty"`
	Page           int      `json:"page"`
	PerPage        int      `json:"per_page"`
}

type orgSearchResponse struct {
	Accounts      []Organization `json:"accounts"`
	Organizations []Organization `json:"organizations"`
	Pagination    struct {
		Page       int `json:"page"`
		TotalPages int `json:"total_pages"`
	} `json:"pagination"`
}

// SearchResult is one page of organizations.
type SearchResult struct {
	Organizations []Organization
	Page          int
	TotalPages    int
}

// SearchOrganizations runs a paged company search, excluding ids already
// imported.
func (c *Client) SearchOrganizations(ctx context.Context, params SearchParams) (SearchResult, error) {
	if params.Page <= 0 {
		params.Page = 1
	}
	if params.PerPage <= 0 {
		params.PerPage = 25
	}

	var resp orgSearchResponse
	err := c.post(ctx, "/mixed_companies/search", orgSearchRequest{
		Locations:      params.Locations,
		EmployeeRanges: params.EmployeeRanges,
		Keywords:       params.Keywords,
		NotOrgIDs:      params.ExcludedOrgIDs,
		Page:           params.Page,
		PerPage:        params.PerPage,
	}, &resp)
	if err != nil {
		return SearchResult{}, err
	}

	orgs := resp.Organizations
	if len(orgs) == 0 {
		orgs = resp.Accounts
	}
	return SearchResult{
		Organizations: orgs,
		Page:          resp.Pagination.Page,
		TotalPages:    resp.Pagination.TotalPages,
	}, nil
}

// Person is a people-search result.
type Person struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Title     string `json:"title"`
	Email     string `json:"email"`
	HasEmail  bool   `json:"has_email"`
}

type peopleSearchRequest struct {
	OrganizationIDs []string `json:"organization_ids"`
	PersonTitles    []string `json:"person_titles,omitempty"`
	Page            int      `json:"page"`
	PerPage         int      `json:"per_page"`
}

type peopleSearchResponse struct {
	People []Person `json:"people"`
}

// SearchPeople lists people at an organization matching the given titles,
// ordered by the provider's relevance.
func (c *Client) SearchPeople(ctx context.Context, organizationID string, titles []string) ([]Person, error) {
	var resp peopleSearchResponse
	err := c.post(ctx, "/mixed_people/search", peopleSearchRequest{
		OrganizationIDs: []string{organizationID},
		PersonTitles:    titles,
		Page:            1,
		PerPage:         10,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.People, nil
}

type enrichRequest struct {
	ID          string `json:"id"`
	RevealEmail bool   `json:"reveal_personal_emails"`
}

type enrichResponse struct {
	Person Person `json:"person"`
}

// EnrichPerson reveals a person's email address. Returns an empty string
// when the provider has none on file.
func (c *Client) EnrichPerson(ctx context.Context, personID string) (string, error) {
	var resp enrichResponse
	err := c.post(ctx, "/people/match", enrichRequest{ID: personID, RevealEmail: true}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Person.Email == "email_not_unlocked@domain.com" {
		return "", nil
	}
	return resp.Person.Email, nil
}
