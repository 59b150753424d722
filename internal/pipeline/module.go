// Package pipeline provides the outreach pipeline module: lead import,
// draft generation, review/approve/send and the batch operations over
// them.
package pipeline

import (
	"leadvox_backend/internal/email"
	apphttp "leadvox_backend/internal/http"
	"leadvox_backend/internal/pipeline/handler"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/internal/pipeline/service"
	"leadvox_backend/platform/events"
	"leadvox_backend/platform/logger"
	"leadvox_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps are the external collaborators the pipeline needs. The resolver,
// generator and dispatcher are constructed by the composition root so
// their lifecycle (API clients, credentials) is owned there.
type Deps struct {
	Pool       *pgxpool.Pool
	Resolver   service.ContactResolver
	Generator  service.DraftGenerator
	Dispatcher email.Dispatcher
	Titles     service.TitleSource
	Sender     service.SenderSource
	Prompts    service.PromptSource
	Bus        events.Bus
	Validator  *validator.Validator
	Logger     *logger.Logger
}

// Module is the pipeline module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the pipeline module.
func NewModule(deps Deps) *Module {
	repo := repository.New(deps.Pool)
	svc := service.New(service.Deps{
		Store:      repo,
		Resolver:   deps.Resolver,
		Generator:  deps.Generator,
		Dispatcher: deps.Dispatcher,
		Titles:     deps.Titles,
		Sender:     deps.Sender,
		Prompts:    deps.Prompts,
		Bus:        deps.Bus,
		Logger:     deps.Logger,
	})
	return &Module{
		handler: handler.New(svc, deps.Validator),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "pipeline"
}

// Service returns the service layer for external use (scheduler tasks).
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository returns the repository for direct access if needed.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts pipeline routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/pipeline/stats", m.handler.Stats)
	ctx.Protected.POST("/pipeline/process", m.handler.Process)

	companies := ctx.Protected.Group("/companies")
	companies.GET("", m.handler.ListCompanies)
	companies.GET("/:id", m.handler.GetCompany)
	companies.PATCH("/:id", m.handler.UpdateCompany)
	companies.DELETE("/:id", m.handler.DeleteCompany)
	companies.POST("/batch-delete", m.handler.BatchDelete)
	companies.POST("/:id/find-contact", m.handler.FindContact)
	companies.POST("/:id/generate", m.handler.Generate)

	emails := ctx.Protected.Group("/emails")
	emails.PUT("/:id/review", m.handler.Review)
	emails.POST("/:id/approve", m.handler.Approve)
	emails.POST("/:id/send", m.handler.Send)
	emails.POST("/:id/retry", m.handler.Retry)
	emails.DELETE("/:id", m.handler.DeleteDraft)
	emails.POST("/batch-retry", m.handler.BatchRetry)
	emails.POST("/batch-approve", m.handler.BatchApprove)
	emails.POST("/batch-send", m.handler.BatchSend)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
