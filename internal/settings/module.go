// Package settings provides the operator settings module: target titles
// for contact search and the outreach prompt template.
package settings

import (
	apphttp "leadvox_backend/internal/http"
	"leadvox_backend/internal/settings/handler"
	"leadvox_backend/internal/settings/repository"
	"leadvox_backend/internal/settings/service"
	"leadvox_backend/platform/logger"
	"leadvox_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the settings module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the settings module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "settings"
}

// Service returns the service layer; the pipeline module consumes it as
// its title and prompt-template source.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts settings routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/settings")
	group.GET("/titles", m.handler.ListTitles)
	group.POST("/titles", m.handler.CreateTitle)
	group.PUT("/titles/:id", m.handler.UpdateTitle)
	group.DELETE("/titles/:id", m.handler.DeleteTitle)
	group.GET("/prompt", m.handler.GetPrompt)
	group.PUT("/prompt", m.handler.SavePrompt)
	group.GET("/sender", m.handler.GetSender)
	group.PUT("/sender", m.handler.SaveSender)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
