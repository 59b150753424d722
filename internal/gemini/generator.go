// Package gemini drafts outreach emails through the Gemini generation API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/platform/logger"

	"google.golang.org/genai"
)

// Placeholders the model may leave in the body; substituted post-hoc with
// the contact's real name.
const (
	placeholderFirstName = "{{CONTACT_FIRST_NAME}}"
	placeholderLastName  = "{{CONTACT_LAST_NAME}}"
)

// ErrEmptyDraft is returned when the model response carries no usable
// subject/body pair.
var ErrEmptyDraft = errors.New("model returned an empty draft")

// TextModel is the narrow slice of the generation API the generator
// needs. The production implementation wraps the genai client.
type TextModel interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// genaiModel adapts google.golang.org/genai to TextModel.
type genaiModel struct {
	client *genai.Client
	model  string
}

func (m *genaiModel) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := m.client.Models.GenerateContent(ctx, m.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

// NewTextModel builds the production Gemini-backed model.
func NewTextModel(ctx context.Context, apiKey, model string) (TextModel, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &genaiModel{client: client, model: model}, nil
}

// Draft is a generated subject/body pair. Both fields are non-empty on
// success.
type Draft struct {
	Subject string
	Body    string
}

// Contact is the resolved recipient used for placeholder substitution
// and prompt composition.
type Contact struct {
	FirstName string
	LastName  string
	Title     string
}

// GenerateRequest carries everything the generator needs for one draft.
type GenerateRequest struct {
	Company domain.Company
	Contact Contact
	// Prompt is the fully composed prompt text, including the template
	// with company/contact fields already substituted.
	Prompt string
}

// Generator turns prompts into drafts with a bounded retry policy.
type Generator struct {
	model  TextModel
	name   string
	policy RetryPolicy
	log    *logger.Logger
}

// NewGenerator wires a generator around any TextModel.
func NewGenerator(model TextModel, modelName string, policy RetryPolicy, log *logger.Logger) *Generator {
	return &Generator{model: model, name: modelName, policy: policy, log: log}
}

// ModelName identifies the underlying model for draft bookkeeping.
func (g *Generator) ModelName() string { return g.name }

// Generate produces a draft, retrying transient failures per the policy.
// The returned draft's subject and body are guaranteed non-empty.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (Draft, error) {
	var draft Draft

	err := g.policy.Do(ctx, func(ctx context.Context) error {
		raw, err := g.model.GenerateText(ctx, req.Prompt)
		if err != nil {
			g.log.Warn("draft generation attempt failed", "company", req.Company.Name, "error", err)
			return err
		}

		parsed, err := extractDraft(raw)
		if err != nil {
			g.log.Warn("draft generation returned unusable content", "company", req.Company.Name, "error", err)
			return err
		}

		draft = parsed
		return nil
	})
	if err != nil {
		return Draft{}, err
	}

	draft.Body = substitutePlaceholders(draft.Body, req.Contact)
	draft.Subject = substitutePlaceholders(draft.Subject, req.Contact)
	return draft, nil
}

// DisabledGenerator stands in when no API key is configured. Every
// generation attempt fails with a configuration error, which the
// pipeline records as a generation failure on the company.
type DisabledGenerator struct{}

func (DisabledGenerator) Generate(ctx context.Context, req GenerateRequest) (Draft, error) {
	return Draft{}, errors.New("draft generation is not configured: missing GEMINI_API_KEY")
}

func (DisabledGenerator) ModelName() string { return "disabled" }

// draftPayload is the JSON object the model is instructed to emit.
type draftPayload struct {
	Subject   string `json:"subject"`
	EmailBody string `json:"email_body"`
}

// extractDraft finds the first well-formed JSON object in the response,
// tolerating free text and markdown fences around it.
func extractDraft(raw string) (Draft, error) {
	text := strings.TrimSpace(raw)
	if text == "" {
		return Draft{}, ErrEmptyDraft
	}

	start := strings.IndexByte(text, '{')
	for start >= 0 {
		dec := json.NewDecoder(strings.NewReader(text[start:]))
		var payload draftPayload
		if err := dec.Decode(&payload); err == nil {
			if payload.Subject != "" && payload.EmailBody != "" {
				return Draft{Subject: payload.Subject, Body: payload.EmailBody}, nil
			}
		}
		next := strings.IndexByte(text[start+1:], '{')
		if next < 0 {
			break
		}
		start = start + 1 + next
	}

	return Draft{}, fmt.Errorf("no subject/email_body JSON object in model response")
}

func substitutePlaceholders(text string, contact Contact) string {
	text = strings.ReplaceAll(text, placeholderFirstName, contact.FirstName)
	text = strings.ReplaceAll(text, placeholderLastName, contact.LastName)
	return text
}
