package transport

import (
	"time"

	"github.com/google/uuid"

	"leadvox_backend/internal/pipeline/domain"
	"leadvox_backend/internal/pipeline/repository"
	"leadvox_backend/internal/pipeline/service"
)

// Companies

type ImportCandidateRequest struct {
	OrganizationID string `json:"organizationId" validate:"required,min=1,max=100"`
	Name           string `json:"name" validate:"required,min=1,max=255"`
	Domain         string `json:"domain" validate:"omitempty,max=255"`
	Website        string `json:"website" validate:"omitempty,max=500"`
	Industry       string `json:"industry" validate:"omitempty,max=255"`
	Location       string `json:"location" validate:"omitempty,max=255"`
	EmployeeCount  int    `json:"employeeCount" validate:"omitempty,min=0"`
}

type ProcessRequest struct {
	Companies []ImportCandidateRequest `json:"companies" validate:"required,min=1,max=100,dive"`
}

func (r ProcessRequest) ToCandidates() []service.ImportCandidate {
	out := make([]service.ImportCandidate, 0, len(r.Companies))
	for _, c := range r.Companies {
		out = append(out, service.ImportCandidate{
			OrganizationID: c.OrganizationID,
			Name:           c.Name,
			Domain:         c.Domain,
			Website:        c.Website,
			Industry:       c.Industry,
			Location:       c.Location,
			EmployeeCount:  c.EmployeeCount,
		})
	}
	return out
}

type BatchIDsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
}

type BatchDeleteRequest struct {
	IDs         []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
	RemoveDedup bool        `json:"removeDedup"`
}

type ListCompaniesRequest struct {
	State  string `form:"state" validate:"required"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=200"`
	Offset int    `form:"offset" validate:"omitempty,min=0"`
}

type UpdateCompanyRequest struct {
	Name          *string `json:"name,omitempty" validate:"omitempty,min=1,max=300"`
	Website       *string `json:"website,omitempty" validate:"omitempty,max=500"`
	Industry      *string `json:"industry,omitempty" validate:"omitempty,max=200"`
	Location      *string `json:"location,omitempty" validate:"omitempty,max=300"`
	EmployeeCount *int    `json:"employeeCount,omitempty" validate:"omitempty,min=0"`
}

type ReviewRequest struct {
	EditedSubject *string `json:"editedSubject,omitempty" validate:"omitempty,max=500"`
	EditedBody    *string `json:"editedBody,omitempty" validate:"omitempty,max=20000"`
	// RecipientEmail replaces the contact email the send will use.
	RecipientEmail *string `json:"recipientEmail,omitempty" validate:"omitempty,email"`
}

// Responses

type CompanyResponse struct {
	ID                 uuid.UUID `json:"id"`
	ApolloID           *string   `json:"apolloId,omitempty"`
	Domain             *string   `json:"domain,omitempty"`
	Name               string    `json:"name"`
	Website            *string   `json:"website,omitempty"`
	Industry           *string   `json:"industry,omitempty"`
	Location           *string   `json:"location,omitempty"`
	EmployeeCount      *int      `json:"employeeCount,omitempty"`
	State              string    `json:"pipelineState"`
	NotGeneratedReason *string   `json:"notGeneratedReason,omitempty"`
	ContactFirstName   *string   `json:"contactFirstName,omitempty"`
	ContactLastName    *string   `json:"contactLastName,omitempty"`
	ContactEmail       *string   `json:"contactEmail,omitempty"`
	ContactTitle       *string   `json:"contactTitle,omitempty"`
	ContactFoundAt     *string   `json:"contactFoundAt,omitempty"`
	CreatedAt          string    `json:"createdAt"`
	UpdatedAt          string    `json:"updatedAt"`
}

func ToCompanyResponse(c domain.Company) CompanyResponse {
	resp := CompanyResponse{
		ID:               c.ID,
		ApolloID:         c.ApolloID,
		Domain:           c.Domain,
		Name:             c.Name,
		Website:          c.Website,
		Industry:         c.Industry,
		Location:         c.Location,
		EmployeeCount:    c.EmployeeCount,
		State:            string(c.State),
		ContactFirstName: c.ContactFirst,
		ContactLastName:  c.ContactLast,
		ContactEmail:     c.ContactEmail,
		ContactTitle:     c.ContactTitle,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        c.UpdatedAt.Format(time.RFC3339),
	}
	if c.NotGenerated != nil {
		reason := c.NotGenerated.String()
		resp.NotGeneratedReason = &reason
	}
	if c.ContactFoundAt != nil {
		ts := c.ContactFoundAt.Format(time.RFC3339)
		resp.ContactFoundAt = &ts
	}
	return resp
}

type DraftResponse struct {
	ID            uuid.UUID `json:"id"`
	CompanyID     uuid.UUID `json:"companyId"`
	Subject       string    `json:"subject"`
	Body          string    `json:"body"`
	EditedSubject *string   `json:"editedSubject,omitempty"`
	EditedBody    *string   `json:"editedBody,omitempty"`
	FinalSubject  *string   `json:"finalSubject,omitempty"`
	FinalBody     *string   `json:"finalBody,omitempty"`
	Model         *string   `json:"model,omitempty"`
	GeneratedAt   string    `json:"generatedAt"`
	ReviewedAt    *string   `json:"reviewedAt,omitempty"`
	ApprovedAt    *string   `json:"approvedAt,omitempty"`
	SentAt        *string   `json:"sentAt,omitempty"`
	SentTo        *string   `json:"sentTo,omitempty"`
	SendAttempts  int       `json:"sendAttempts"`
	SendError     *string   `json:"sendError,omitempty"`
}

func ToDraftResponse(d domain.Draft) DraftResponse {
	return DraftResponse{
		ID:            d.ID,
		CompanyID:     d.CompanyID,
		Subject:       d.Subject,
		Body:          d.Body,
		EditedSubject: d.EditedSubject,
		EditedBody:    d.EditedBody,
		FinalSubject:  d.FinalSubject,
		FinalBody:     d.FinalBody,
		Model:         d.Model,
		GeneratedAt:   d.GeneratedAt.Format(time.RFC3339),
		ReviewedAt:    formatTimePtr(d.ReviewedAt),
		ApprovedAt:    formatTimePtr(d.ApprovedAt),
		SentAt:        formatTimePtr(d.SentAt),
		SentTo:        d.SentTo,
		SendAttempts:  d.SendAttempts,
		SendError:     d.SendError,
	}
}

type CompanyWithDraftResponse struct {
	CompanyResponse
	Draft *DraftResponse `json:"draft,omitempty"`
}

func ToCompanyListResponse(items []repository.CompanyWithDraft) []CompanyWithDraftResponse {
	out := make([]CompanyWithDraftResponse, 0, len(items))
	for _, item := range items {
		resp := CompanyWithDraftResponse{CompanyResponse: ToCompanyResponse(item.Company)}
		if item.Draft != nil {
			draft := ToDraftResponse(*item.Draft)
			resp.Draft = &draft
		}
		out = append(out, resp)
	}
	return out
}

type AuditEntryResponse struct {
	ID        uuid.UUID      `json:"id"`
	Action    string         `json:"action"`
	FromState *string        `json:"fromState,omitempty"`
	ToState   *string        `json:"toState,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	Actor     *string        `json:"actor,omitempty"`
	CreatedAt string         `json:"createdAt"`
}

func ToAuditListResponse(entries []domain.AuditLogEntry) []AuditEntryResponse {
	out := make([]AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp := AuditEntryResponse{
			ID:        e.ID,
			Action:    e.Action,
			Metadata:  e.Metadata,
			Actor:     e.Actor,
			CreatedAt: e.CreatedAt.Format(time.RFC3339),
		}
		if e.FromState != nil {
			from := string(*e.FromState)
			resp.FromState = &from
		}
		if e.ToState != nil {
			to := string(*e.ToState)
			resp.ToState = &to
		}
		out = append(out, resp)
	}
	return out
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(time.RFC3339)
	return &s
}
