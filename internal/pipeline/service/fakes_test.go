package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"leadvox_backend/internal/apollo"
	"leadvox_backend/internal/email"
	"leadvox_backend/internal/gemini"
	"leadvox_backend/internal/pipeline/batch"
	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory repository.Store that mirrors the database
// semantics the services rely on: transition validation, atomic audit
// rows, cascade deletes.
type fakeStore struct {
	mu        sync.Mutex
	companies map[uuid.UUID]*domain.Company
	drafts    map[uuid.UUID]*domain.Draft
	audits    []domain.AuditLogEntry
	dedup     map[string]repository.UpsertDedupParams
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		companies: make(map[uuid.UUID]*domain.Company),
		drafts:    make(map[uuid.UUID]*domain.Draft),
		dedup:     make(map[string]repository.UpsertDedupParams),
	}
}

func (f *fakeStore) addCompany(name string, state domain.State, contactEmail *string) *domain.Company {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := &domain.Company{
		ID:           uuid.New(),
		Name:         name,
		State:        state,
		ContactEmail: contactEmail,
		UpdatedAt:    time.Now(),
	}
	first := "Jane"
	last := "Doe"
	c.ContactFirst = &first
	c.ContactLast = &last
	f.companies[c.ID] = c
	return c
}

func (f *fakeStore) addDraft(companyID uuid.UUID, subject, body string) *domain.Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &domain.Draft{
		ID:          uuid.New(),
		CompanyID:   companyID,
		Subject:     subject,
		Body:        body,
		GeneratedAt: time.Now(),
	}
	f.drafts[companyID] = d
	return d
}

func (f *fakeStore) auditCountFor(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, a := range f.audits {
		if a.EntityID == id {
			count++
		}
	}
	return count
}

func (f *fakeStore) UpsertCompany(ctx context.Context, params repository.UpsertCompanyParams) (domain.Company, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.companies {
		if params.ApolloID != nil && c.ApolloID != nil && *c.ApolloID == *params.ApolloID {
			return *c, false, nil
		}
		if params.Domain != nil && c.Domain != nil && *c.Domain == *params.Domain {
			return *c, false, nil
		}
	}
	c := &domain.Company{
		ID:            uuid.New(),
		ApolloID:      params.ApolloID,
		Domain:        params.Domain,
		Name:          params.Name,
		Website:       params.Website,
		Industry:      params.Industry,
		Location:      params.Location,
		EmployeeCount: params.EmployeeCount,
		State:         domain.StatePendingGeneration,
	}
	f.companies[c.ID] = c
	return *c, true, nil
}

func (f *fakeStore) GetCompany(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[id]
	if !ok {
		return domain.Company{}, repository.ErrNotFound
	}
	return *c, nil
}

func (f *fakeStore) UpdateCompany(ctx context.Context, params repository.UpdateCompanyParams) (domain.Company, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[params.CompanyID]
	if !ok {
		return domain.Company{}, repository.ErrNotFound
	}
	if params.Name != nil {
		c.Name = *params.Name
	}
	if params.Website != nil {
		c.Website = params.Website
	}
	if params.Industry != nil {
		c.Industry = params.Industry
	}
	if params.Location != nil {
		c.Location = params.Location
	}
	if params.EmployeeCount != nil {
		c.EmployeeCount = params.EmployeeCount
	}
	c.UpdatedAt = time.Now()
	return *c, nil
}

func (f *fakeStore) UpdateContactSnapshot(ctx context.Context, params repository.UpdateContactParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[params.CompanyID]
	if !ok {
		return repository.ErrNotFound
	}
	now := time.Now()
	c.ContactFirst = params.FirstName
	c.ContactLast = params.LastName
	c.ContactEmail = params.Email
	c.ContactTitle = params.Title
	c.ContactFoundAt = &now
	return nil
}

func (f *fakeStore) ListByState(ctx context.Context, state domain.State, limit, offset int) ([]repository.CompanyWithDraft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := make([]repository.CompanyWithDraft, 0)
	for _, c := range f.companies {
		if c.State != state {
			continue
		}
		item := repository.CompanyWithDraft{Company: *c}
		if d, ok := f.drafts[c.ID]; ok {
			draft := *d
			item.Draft = &draft
		}
		items = append(items, item)
	}
	return items, nil
}

func (f *fakeStore) CountByState(ctx context.Context) (map[domain.State]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[domain.State]int)
	for _, s := range domain.AllStates {
		counts[s] = 0
	}
	for _, c := range f.companies {
		counts[c.State]++
	}
	return counts, nil
}

func (f *fakeStore) GetCompanyNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make(map[uuid.UUID]string)
	for _, id := range ids {
		if c, ok := f.companies[id]; ok {
			names[id] = c.Name
		}
	}
	return names, nil
}

func (f *fakeStore) Transition(ctx context.Context, params repository.TransitionParams) (domain.State, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.companies[params.CompanyID]
	if !ok {
		return "", repository.ErrNotFound
	}
	from := c.State
	if err := domain.ValidateTransition(from, params.To); err != nil {
		return "", err
	}

	c.State = params.To
	switch {
	case params.To == domain.StateEmailNotGenerated && params.Reason != nil:
		reason := *params.Reason
		c.NotGenerated = &reason
	case params.To == domain.StatePendingGeneration:
		c.NotGenerated = nil
	}
	c.UpdatedAt = time.Now()

	fromCopy, toCopy := from, params.To
	f.audits = append(f.audits, domain.AuditLogEntry{
		ID:         uuid.New(),
		EntityType: "company",
		EntityID:   params.CompanyID,
		Action:     domain.AuditActionStateChange,
		FromState:  &fromCopy,
		ToState:    &toCopy,
		Metadata:   params.Metadata,
		Actor:      params.Actor,
		CreatedAt:  time.Now(),
	})
	return from, nil
}

func (f *fakeStore) ClearNotGeneratedReason(ctx context.Context, companyID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[companyID]
	if !ok {
		return repository.ErrNotFound
	}
	c.NotGenerated = nil
	return nil
}

func (f *fakeStore) DeleteCompany(ctx context.Context, params repository.DeleteCompanyParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[params.CompanyID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(f.drafts, params.CompanyID)
	remaining := f.audits[:0]
	for _, a := range f.audits {
		if a.EntityID != params.CompanyID {
			remaining = append(remaining, a)
		}
	}
	f.audits = remaining
	if params.RemoveDedupRecord && c.ApolloID != nil {
		delete(f.dedup, *c.ApolloID)
	}
	delete(f.companies, params.CompanyID)
	return nil
}

func (f *fakeStore) UpsertDraft(ctx context.Context, params repository.UpsertDraftParams) (domain.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d := &domain.Draft{
		ID:          uuid.New(),
		CompanyID:   params.CompanyID,
		Subject:     params.Subject,
		Body:        params.Body,
		PromptUsed:  params.PromptUsed,
		Model:       params.Model,
		GeneratedAt: time.Now(),
	}
	f.drafts[params.CompanyID] = d
	return *d, nil
}

func (f *fakeStore) GetDraftByCompany(ctx context.Context, companyID uuid.UUID) (domain.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[companyID]
	if !ok {
		return domain.Draft{}, repository.ErrDraftNotFound
	}
	return *d, nil
}

func (f *fakeStore) SaveReview(ctx context.Context, params repository.SaveReviewParams) (domain.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[params.CompanyID]
	if !ok {
		return domain.Draft{}, repository.ErrDraftNotFound
	}
	now := time.Now()
	d.EditedSubject = params.EditedSubject
	d.EditedBody = params.EditedBody
	d.ReviewedAt = &now
	return *d, nil
}

func (f *fakeStore) FreezeFinalContent(ctx context.Context, companyID uuid.UUID) (domain.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[companyID]
	if !ok {
		return domain.Draft{}, repository.ErrDraftNotFound
	}
	subject := d.Subject
	if d.EditedSubject != nil {
		subject = *d.EditedSubject
	}
	body := d.Body
	if d.EditedBody != nil {
		body = *d.EditedBody
	}
	now := time.Now()
	d.FinalSubject = &subject
	d.FinalBody = &body
	d.ApprovedAt = &now
	return *d, nil
}

func (f *fakeStore) RecordSendAttempt(ctx context.Context, companyID uuid.UUID, recipient string, sendErr error) (domain.Draft, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.drafts[companyID]
	if !ok {
		return domain.Draft{}, repository.ErrDraftNotFound
	}
	d.SendAttempts++
	if sendErr != nil {
		msg := sendErr.Error()
		d.SendError = &msg
	} else {
		now := time.Now()
		d.SendError = nil
		d.SentAt = &now
		d.SentTo = &recipient
	}
	return *d, nil
}

func (f *fakeStore) DeleteDraftAndReset(ctx context.Context, params repository.ResetDraftParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.companies[params.CompanyID]
	if !ok {
		return repository.ErrNotFound
	}
	d, ok := f.drafts[params.CompanyID]
	if !ok {
		return repository.ErrDraftNotFound
	}
	delete(f.drafts, params.CompanyID)

	from := c.State
	c.State = domain.StatePendingGeneration
	c.NotGenerated = nil
	c.UpdatedAt = time.Now()

	to := domain.StatePendingGeneration
	f.audits = append(f.audits, domain.AuditLogEntry{
		ID:         uuid.New(),
		EntityType: "company",
		EntityID:   params.CompanyID,
		Action:     domain.AuditActionEmailDeleted,
		FromState:  &from,
		ToState:    &to,
		Metadata:   map[string]any{"draftId": d.ID.String()},
		Actor:      params.Actor,
		CreatedAt:  time.Now(),
	})
	return nil
}

func (f *fakeStore) RecordAction(ctx context.Context, params repository.RecordActionParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.audits = append(f.audits, domain.AuditLogEntry{
		ID:         uuid.New(),
		EntityType: params.EntityType,
		EntityID:   params.EntityID,
		Action:     params.Action,
		Metadata:   params.Metadata,
		Actor:      params.Actor,
		CreatedAt:  time.Now(),
	})
	return nil
}

func (f *fakeStore) ListAuditEntries(ctx context.Context, entityID uuid.UUID, limit int) ([]domain.AuditLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entries := make([]domain.AuditLogEntry, 0)
	for i := len(f.audits) - 1; i >= 0; i-- {
		if f.audits[i].EntityID == entityID {
			entries = append(entries, f.audits[i])
		}
	}
	return entries, nil
}

func (f *fakeStore) CountAuditEntries(ctx context.Context, entityID uuid.UUID) (int, error) {
	return f.auditCountFor(entityID), nil
}

func (f *fakeStore) UpsertDedupRecord(ctx context.Context, params repository.UpsertDedupParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dedup[params.OrganizationID] = params
	return nil
}

func (f *fakeStore) ListFetchedOrganizationIDs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, 0, len(f.dedup))
	for id := range f.dedup {
		ids = append(ids, id)
	}
	return ids, nil
}

func (f *fakeStore) ListDedupRecords(ctx context.Context, limit int) ([]domain.DedupRecord, error) {
	return nil, nil
}

var _ repository.Store = (*fakeStore)(nil)

// fakeResolver scripts contact resolution per organization id.
type fakeResolver struct {
	contacts map[string]apollo.ResolvedContact
	err      error
}

func (f *fakeResolver) FindBestContact(ctx context.Context, organizationID string, titles []string) (apollo.ResolvedContact, error) {
	if f.err != nil {
		return apollo.ResolvedContact{}, f.err
	}
	return f.contacts[organizationID], nil
}

// fakeGenerator returns a fixed draft or error.
type fakeGenerator struct {
	draft gemini.Draft
	err   error
	calls int
}

func (f *fakeGenerator) Generate(ctx context.Context, req gemini.GenerateRequest) (gemini.Draft, error) {
	f.calls++
	if f.err != nil {
		return gemini.Draft{}, f.err
	}
	return f.draft, nil
}

func (f *fakeGenerator) ModelName() string { return "fake-model" }

// fakeDispatcher scripts delivery.
type fakeDispatcher struct {
	err      error
	sent     []email.Message
	messages int
}

func (f *fakeDispatcher) Send(ctx context.Context, msg email.Message) (string, error) {
	f.messages++
	if f.err != nil {
		return "", f.err
	}
	f.sent = append(f.sent, msg)
	return fmt.Sprintf("msg-%d", f.messages), nil
}

// fakeSender scripts the operator sender override.
type fakeSender struct {
	name  string
	email string
	err   error
}

func (f *fakeSender) SenderOverride(ctx context.Context) (string, string, error) {
	if f.err != nil {
		return "", "", f.err
	}
	return f.name, f.email, nil
}

// staticTitles always returns one title.
type staticTitles struct{}

func (staticTitles) ActiveTitles(ctx context.Context) ([]string, error) {
	return []string{"CEO", "Founder"}, nil
}

// staticPrompts renders a trivially composed prompt.
type staticPrompts struct{}

func (staticPrompts) ComposePrompt(ctx context.Context, input PromptInput) (string, error) {
	return fmt.Sprintf("write to %s at %s", input.ContactFirstName, input.CompanyName), nil
}

func instantRunner() *batch.Runner {
	return batch.NewRunner(batch.WithSleep(func(ctx context.Context, d time.Duration) error {
		return nil
	}))
}

type fixture struct {
	store      *fakeStore
	resolver   *fakeResolver
	generator  *fakeGenerator
	dispatcher *fakeDispatcher
	svc        *Service
}

func newFixture() *fixture {
	store := newFakeStore()
	resolver := &fakeResolver{contacts: make(map[string]apollo.ResolvedContact)}
	generator := &fakeGenerator{draft: gemini.Draft{Subject: "Quick question", Body: "Hi Jane,"}}
	dispatcher := &fakeDispatcher{}
	svc := New(Deps{
		Store:      store,
		Resolver:   resolver,
		Generator:  generator,
		Dispatcher: dispatcher,
		Titles:     staticTitles{},
		Prompts:    staticPrompts{},
		Runner:     instantRunner(),
		Logger:     logger.New("test"),
	})
	return &fixture{store: store, resolver: resolver, generator: generator, dispatcher: dispatcher, svc: svc}
}

var errProviderDown = errors.New("provider down")
