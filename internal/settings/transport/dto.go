package transport

import (
	"time"

	"github.com/google/uuid"

	"leadvox_backend/internal/settings/repository"
)

type CreateTitleRequest struct {
	Title    string `json:"title" validate:"required,min=1,max=100"`
	Priority int    `json:"priority" validate:"min=0,max=1000"`
}

type UpdateTitleRequest struct {
	Title    *string `json:"title,omitempty" validate:"omitempty,min=1,max=100"`
	Priority *int    `json:"priority,omitempty" validate:"omitempty,min=0,max=1000"`
	Active   *bool   `json:"active,omitempty"`
}

type TitleResponse struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Priority  int       `json:"priority"`
	Active    bool      `json:"active"`
	CreatedAt string    `json:"createdAt"`
}

func ToTitleResponse(t repository.TargetTitle) TitleResponse {
	return TitleResponse{
		ID:        t.ID,
		Title:     t.Title,
		Priority:  t.Priority,
		Active:    t.Active,
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
	}
}

func ToTitleListResponse(titles []repository.TargetTitle) []TitleResponse {
	out := make([]TitleResponse, 0, len(titles))
	for _, t := range titles {
		out = append(out, ToTitleResponse(t))
	}
	return out
}

type SavePromptRequest struct {
	Template string `json:"template" validate:"max=20000"`
}

type PromptResponse struct {
	Template string `json:"template"`
	Custom   bool   `json:"custom"`
}

type SaveSenderRequest struct {
	Name string `json:"name" validate:"max=200"`
	// An empty email clears the override.
	Email string `json:"email" validate:"omitempty,email"`
}

type SenderResponse struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Custom bool   `json:"custom"`
}
