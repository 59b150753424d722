// Package service exposes the operator settings: target titles used for
// contact search and the outreach prompt template.
package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"leadvox_backend/internal/settings/repository"
	"leadvox_backend/platform/apperr"
	"leadvox_backend/platform/logger"

	"github.com/google/uuid"
)

// Store is the persistence contract; *repository.Repository implements it.
type Store interface {
	ListTitles(ctx context.Context) ([]repository.TargetTitle, error)
	ActiveTitleStrings(ctx context.Context) ([]string, error)
	CreateTitle(ctx context.Context, params repository.CreateTitleParams) (repository.TargetTitle, error)
	UpdateTitle(ctx context.Context, params repository.UpdateTitleParams) (repository.TargetTitle, error)
	DeleteTitle(ctx context.Context, id uuid.UUID) error
	GetPromptTemplate(ctx context.Context) (string, error)
	SavePromptTemplate(ctx context.Context, template string) error
	GetSender(ctx context.Context) (repository.Sender, error)
	SaveSender(ctx context.Context, name, email string) error
}

// defaultTitles seeds contact search when the operator has not
// configured any titles yet.
var defaultTitles = []string{"CEO", "Founder", "Owner", "Managing Director"}

// Service wraps the settings store with validation and defaults.
type Service struct {
	store Store
	log   *logger.Logger
}

// New creates the settings service.
func New(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log}
}

// ActiveTitles returns the active target titles in priority order,
// falling back to the built-in defaults when none are configured.
func (s *Service) ActiveTitles(ctx context.Context) ([]string, error) {
	titles, err := s.store.ActiveTitleStrings(ctx)
	if err != nil {
		return nil, err
	}
	if len(titles) == 0 {
		return defaultTitles, nil
	}
	return titles, nil
}

// ActiveTemplate returns the stored prompt override, "" when unset.
func (s *Service) ActiveTemplate(ctx context.Context) (string, error) {
	return s.store.GetPromptTemplate(ctx)
}

// ListTitles returns every configured title.
func (s *Service) ListTitles(ctx context.Context) ([]repository.TargetTitle, error) {
	return s.store.ListTitles(ctx)
}

// CreateTitle adds a target title.
func (s *Service) CreateTitle(ctx context.Context, title string, priority int) (repository.TargetTitle, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return repository.TargetTitle{}, apperr.Validation("title must not be empty")
	}
	return s.store.CreateTitle(ctx, repository.CreateTitleParams{
		Title:    title,
		Priority: priority,
	})
}

// UpdateTitle patches a target title.
func (s *Service) UpdateTitle(ctx context.Context, params repository.UpdateTitleParams) (repository.TargetTitle, error) {
	if params.Title != nil {
		trimmed := strings.TrimSpace(*params.Title)
		if trimmed == "" {
			return repository.TargetTitle{}, apperr.Validation("title must not be empty")
		}
		params.Title = &trimmed
	}
	t, err := s.store.UpdateTitle(ctx, params)
	if err != nil {
		return repository.TargetTitle{}, s.classify(err)
	}
	return t, nil
}

// DeleteTitle removes a target title.
func (s *Service) DeleteTitle(ctx context.Context, id uuid.UUID) error {
	if err := s.store.DeleteTitle(ctx, id); err != nil {
		return s.classify(err)
	}
	return nil
}

// GetPrompt returns the effective template source: the override when one
// is stored, otherwise empty with custom=false so the caller can show
// the built-in.
func (s *Service) GetPrompt(ctx context.Context) (template string, custom bool, err error) {
	template, err = s.store.GetPromptTemplate(ctx)
	if err != nil {
		return "", false, err
	}
	return template, template != "", nil
}

// SavePrompt stores the prompt override; empty clears it.
func (s *Service) SavePrompt(ctx context.Context, template string) error {
	return s.store.SavePromptTemplate(ctx, strings.TrimSpace(template))
}

// GetSender returns the stored sender override; a zero value means the
// configured sender applies.
func (s *Service) GetSender(ctx context.Context) (repository.Sender, error) {
	return s.store.GetSender(ctx)
}

// SaveSender stores the sender override; an empty email clears it.
func (s *Service) SaveSender(ctx context.Context, name, email string) error {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return apperr.Validation("invalid sender email address")
		}
	}
	return s.store.SaveSender(ctx, name, email)
}

// SenderOverride implements the pipeline's sender source: the stored
// name/address pair, both empty when no override is set.
func (s *Service) SenderOverride(ctx context.Context) (name, email string, err error) {
	sender, err := s.store.GetSender(ctx)
	if err != nil {
		return "", "", err
	}
	return sender.Name, sender.Email, nil
}

func (s *Service) classify(err error) error {
	if errors.Is(err, repository.ErrTitleNotFound) {
		return apperr.NotFound("target title not found")
	}
	return err
}
