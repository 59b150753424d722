package repository

import (
	"context"

	"leadvox_backend/internal/pipeline/domain"

	"github.com/google/uuid"
)

// Store is the persistence contract consumed by the pipeline services.
// *Repository is the production implementation; tests substitute fakes.
type Store interface {
	// Companies
	UpsertCompany(ctx context.Context, params UpsertCompanyParams) (domain.Company, bool, error)
	GetCompany(ctx context.Context, id uuid.UUID) (domain.Company, error)
	UpdateCompany(ctx context.Context, params UpdateCompanyParams) (domain.Company, error)
	UpdateContactSnapshot(ctx context.Context, params UpdateContactParams) error
	ListByState(ctx context.Context, state domain.State, limit, offset int) ([]CompanyWithDraft, error)
	CountByState(ctx context.Context) (map[domain.State]int, error)
	GetCompanyNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error)

	// Transitions
	Transition(ctx context.Context, params TransitionParams) (domain.State, error)
	ClearNotGeneratedReason(ctx context.Context, companyID uuid.UUID) error
	DeleteCompany(ctx context.Context, params DeleteCompanyParams) error

	// Drafts
	UpsertDraft(ctx context.Context, params UpsertDraftParams) (domain.Draft, error)
	GetDraftByCompany(ctx context.Context, companyID uuid.UUID) (domain.Draft, error)
	SaveReview(ctx context.Context, params SaveReviewParams) (domain.Draft, error)
	FreezeFinalContent(ctx context.Context, companyID uuid.UUID) (domain.Draft, error)
	RecordSendAttempt(ctx context.Context, companyID uuid.UUID, recipient string, sendErr error) (domain.Draft, error)
	DeleteDraftAndReset(ctx context.Context, params ResetDraftParams) error

	// Audit
	RecordAction(ctx context.Context, params RecordActionParams) error
	ListAuditEntries(ctx context.Context, entityID uuid.UUID, limit int) ([]domain.AuditLogEntry, error)
	CountAuditEntries(ctx context.Context, entityID uuid.UUID) (int, error)

	// Dedup
	UpsertDedupRecord(ctx context.Context, params UpsertDedupParams) error
	ListFetchedOrganizationIDs(ctx context.Context) ([]string, error)
	ListDedupRecords(ctx context.Context, limit int) ([]domain.DedupRecord, error)
}

var _ Store = (*Repository)(nil)
