// Package service implements the pipeline workflows: import-and-generate,
// review, approval, sending and deletion, both per-company and in batches.
package service

import (
	"context"

	"leadvox_backend/internal/apollo"
	"leadvox_backend/internal/email"
	"leadvox_backend/internal/gemini"
	"leadvox_backend/internal/pipeline/batch"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/platform/events"
	"leadvox_backend/platform/logger"
)

// ContactResolver obtains a best-candidate contact for an organization.
type ContactResolver interface {
	FindBestContact(ctx context.Context, organizationID string, titles []string) (apollo.ResolvedContact, error)
}

// DraftGenerator produces a subject/body pair for a company and contact.
type DraftGenerator interface {
	Generate(ctx context.Context, req gemini.GenerateRequest) (gemini.Draft, error)
	ModelName() string
}

// TitleSource supplies the prioritized job titles for contact search.
type TitleSource interface {
	ActiveTitles(ctx context.Context) ([]string, error)
}

// SenderSource supplies the operator-configured From override for
// outgoing drafts; both values empty means the dispatcher's configured
// sender applies.
type SenderSource interface {
	SenderOverride(ctx context.Context) (name, email string, err error)
}

// PromptSource supplies the outreach prompt template and renders it for
// a concrete company and contact.
type PromptSource interface {
	ComposePrompt(ctx context.Context, input PromptInput) (string, error)
}

// PromptInput is the data available to prompt templates.
type PromptInput struct {
	CompanyName      string
	Website          string
	Industry         string
	Location         string
	ContactFirstName string
	ContactLastName  string
	ContactTitle     string
}

// Service bundles the pipeline workflows around explicitly injected
// collaborators; there is no ambient global client anywhere.
type Service struct {
	store      repository.Store
	machine    *StateMachine
	resolver   ContactResolver
	generator  DraftGenerator
	dispatcher email.Dispatcher
	titles     TitleSource
	sender     SenderSource
	prompts    PromptSource
	runner     *batch.Runner
	bus        events.Bus
	log        *logger.Logger
}

// Deps lists the collaborators the service needs.
type Deps struct {
	Store      repository.Store
	Resolver   ContactResolver
	Generator  DraftGenerator
	Dispatcher email.Dispatcher
	Titles     TitleSource
	// Sender is optional; nil means no operator override is available.
	Sender  SenderSource
	Prompts PromptSource
	Runner  *batch.Runner
	Bus     events.Bus
	Logger  *logger.Logger
}

// New constructs the pipeline service.
func New(deps Deps) *Service {
	if deps.Runner == nil {
		deps.Runner = batch.NewRunner()
	}
	return &Service{
		store:      deps.Store,
		machine:    NewStateMachine(deps.Store, deps.Logger),
		resolver:   deps.Resolver,
		generator:  deps.Generator,
		dispatcher: deps.Dispatcher,
		titles:     deps.Titles,
		sender:     deps.Sender,
		prompts:    deps.Prompts,
		runner:     deps.Runner,
		bus:        deps.Bus,
		log:        deps.Logger,
	}
}

// Machine exposes the state machine for callers that need bare
// transitions (e.g. the companies module resetting a lead).
func (s *Service) Machine() *StateMachine {
	return s.machine
}
