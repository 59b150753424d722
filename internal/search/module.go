// Package search provides the lead discovery module: provider company
// search with already-imported organizations excluded.
package search

import (
	apphttp "leadvox_backend/internal/http"
	"leadvox_backend/internal/search/handler"
	"leadvox_backend/internal/search/service"
	"leadvox_backend/platform/logger"
	"leadvox_backend/platform/validator"
)

// Module is the search module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the search module.
func NewModule(api service.SearchAPI, fetched service.FetchedLister, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(api, fetched, log)
	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "search"
}

// RegisterRoutes mounts search routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/search")
	group.POST("/companies", m.handler.Search)
	group.GET("/fetched", m.handler.FetchedIDs)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
