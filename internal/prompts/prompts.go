// Package prompts renders the outreach prompt sent to the draft
// generator. A database override wins over the built-in template.
package prompts

import (
	"context"
	"strings"

	"leadvox_backend/internal/pipeline/service"
	"leadvox_backend/platform/logger"
)

// DefaultTemplate is the built-in outreach prompt. The generator parses
// the model output as JSON, so the template pins the response shape.
const DefaultTemplate = `You are writing a short, personal B2B outreach email on behalf of a sales representative.

Company: {{COMPANY_NAME}}
Website: {{COMPANY_WEBSITE}}
Industry: {{COMPANY_INDUSTRY}}
Location: {{COMPANY_LOCATION}}
Recipient: {{CONTACT_FIRST_NAME}} {{CONTACT_LAST_NAME}}, {{CONTACT_TITLE}}

Write a concise email (under 120 words) that opens with something specific to the company, names one concrete way we could help, and ends with a low-pressure question. No bullet points, no placeholders other than the recipient's first name, no sign-off block.

Respond with ONLY a JSON object in exactly this shape, with no surrounding text or code fences:
{"subject": "<subject line>", "email_body": "<email body>"}`

// TemplateStore supplies the operator-managed template override. An
// empty string means no override is configured.
type TemplateStore interface {
	ActiveTemplate(ctx context.Context) (string, error)
}

// Composer renders prompts for concrete companies and contacts.
type Composer struct {
	store TemplateStore
	log   *logger.Logger
}

// NewComposer wires a composer over the given template store. A nil
// store always renders the built-in template.
func NewComposer(store TemplateStore, log *logger.Logger) *Composer {
	return &Composer{store: store, log: log}
}

// ComposePrompt renders the active template for one company. A store
// failure falls back to the built-in template rather than blocking
// generation.
func (c *Composer) ComposePrompt(ctx context.Context, input service.PromptInput) (string, error) {
	template := DefaultTemplate
	if c.store != nil {
		override, err := c.store.ActiveTemplate(ctx)
		switch {
		case err != nil:
			c.log.Warn("prompt template lookup failed, using built-in", "error", err)
		case override != "":
			template = override
		}
	}
	return Render(template, input), nil
}

// Render substitutes the company and contact placeholders. Unknown
// placeholders are left untouched so the model sees them verbatim.
func Render(template string, input service.PromptInput) string {
	replacer := strings.NewReplacer(
		"{{COMPANY_NAME}}", input.CompanyName,
		"{{COMPANY_WEBSITE}}", input.Website,
		"{{COMPANY_INDUSTRY}}", input.Industry,
		"{{COMPANY_LOCATION}}", input.Location,
		"{{CONTACT_FIRST_NAME}}", input.ContactFirstName,
		"{{CONTACT_LAST_NAME}}", input.ContactLastName,
		"{{CONTACT_TITLE}}", input.ContactTitle,
	)
	return replacer.Replace(template)
}

var _ service.PromptSource = (*Composer)(nil)
