package domain

import (
	"time"

	"github.com/google/uuid"
)

// Company is a lead tracked through the outreach pipeline.
type Company struct {
	ID             uuid.UUID
	ApolloID       *string
	Domain         *string
	Name           string
	Website        *string
	Industry       *string
	Location       *string
	EmployeeCount  *int
	State          State
	NotGenerated   *NotGeneratedReason
	ContactFirst   *string
	ContactLast    *string
	ContactEmail   *string
	ContactTitle   *string
	ContactFoundAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ContactFullName renders the contact snapshot as "First Last".
// Returns an empty string when no contact has been resolved.
func (c *Company) ContactFullName() string {
	switch {
	case c.ContactFirst == nil:
		return ""
	case c.ContactLast == nil || *c.ContactLast == "":
		return *c.ContactFirst
	default:
		return *c.ContactFirst + " " + *c.ContactLast
	}
}

// Draft is the generated email content owned by exactly one company.
type Draft struct {
	ID            uuid.UUID
	CompanyID     uuid.UUID
	Subject       string
	Body          string
	EditedSubject *string
	EditedBody    *string
	FinalSubject  *string
	FinalBody     *string
	PromptUsed    *string
	Model         *string
	GeneratedAt   time.Time
	ReviewedAt    *time.Time
	ApprovedAt    *time.Time
	SentAt        *time.Time
	SentTo        *string
	SendAttempts  int
	SendError     *string
}

// SendSubject returns the content to dispatch: final wins, then edited,
// then the generated original.
func (d *Draft) SendSubject() string {
	if d.FinalSubject != nil {
		return *d.FinalSubject
	}
	if d.EditedSubject != nil {
		return *d.EditedSubject
	}
	return d.Subject
}

// SendBody mirrors SendSubject for the body.
func (d *Draft) SendBody() string {
	if d.FinalBody != nil {
		return *d.FinalBody
	}
	if d.EditedBody != nil {
		return *d.EditedBody
	}
	return d.Body
}

// Audit actions recorded alongside, or instead of, state transitions.
const (
	AuditActionStateChange    = "state_change"
	AuditActionEmailGenerated = "email_generated"
	AuditActionEmailReviewed  = "email_reviewed"
	AuditActionEmailApproved  = "email_approved"
	AuditActionEmailDeleted   = "email_deleted"
)

// AuditLogEntry is an append-only record of a transition or notable action.
type AuditLogEntry struct {
	ID         uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Action     string
	FromState  *State
	ToState    *State
	Metadata   map[string]any
	Actor      *string
	CreatedAt  time.Time
}

// DedupRecord marks an external organization id as already imported.
type DedupRecord struct {
	ID             uuid.UUID
	OrganizationID string
	Name           string
	Domain         *string
	FetchedAt      time.Time
}

// TargetTitle is a prioritized job-title string used for contact search.
type TargetTitle struct {
	ID       uuid.UUID
	Title    string
	Priority int
	Active   bool
}
