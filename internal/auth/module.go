// Package auth provides the authentication module: a single operator
// account seeded from configuration, with JWT access tokens.
package auth

import (
	"context"

	"leadvox_backend/internal/auth/handler"
	"leadvox_backend/internal/auth/repository"
	"leadvox_backend/internal/auth/service"
	apphttp "leadvox_backend/internal/http"
	"leadvox_backend/platform/config"
	"leadvox_backend/platform/logger"
	"leadvox_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the auth module.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, cfg, log)
	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// EnsureOperator seeds the operator account at startup.
func (m *Module) EnsureOperator(ctx context.Context, email, password string) error {
	return m.service.EnsureOperator(ctx, email, password)
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	authGroup.POST("/login", m.handler.Login)

	ctx.Protected.GET("/auth/me", m.handler.Me)
	ctx.Protected.PUT("/auth/password", m.handler.ChangePassword)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
