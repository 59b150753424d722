package repository

import (
	"context"
	"errors"
	"time"

	"leadvox_backend/internal/pipeline/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const draftColumns = `
	id, company_id, subject, body, edited_subject, edited_body, final_subject, final_body,
	prompt_used, model, generated_at, reviewed_at, approved_at, sent_at, sent_to,
	send_attempts, send_error`

func scanDraft(row pgx.Row) (domain.Draft, error) {
	var d domain.Draft
	err := row.Scan(
		&d.ID, &d.CompanyID, &d.Subject, &d.Body, &d.EditedSubject, &d.EditedBody,
		&d.FinalSubject, &d.FinalBody, &d.PromptUsed, &d.Model, &d.GeneratedAt,
		&d.ReviewedAt, &d.ApprovedAt, &d.SentAt, &d.SentTo, &d.SendAttempts, &d.SendError,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Draft{}, ErrDraftNotFound
		}
		return domain.Draft{}, err
	}
	return d, nil
}

// UpsertDraftParams carries freshly generated content. A retry replaces
// any existing draft wholesale, clearing edits and send bookkeeping.
type UpsertDraftParams struct {
	CompanyID  uuid.UUID
	Subject    string
	Body       string
	PromptUsed *string
	Model      *string
}

// UpsertDraft writes the generated draft for a company, replacing an
// existing one.
func (r *Repository) UpsertDraft(ctx context.Context, params UpsertDraftParams) (domain.Draft, error) {
	return scanDraft(r.pool.QueryRow(ctx, `
		INSERT INTO emails (id, company_id, subject, body, prompt_used, model, generated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (company_id) DO UPDATE SET
			subject = EXCLUDED.subject,
			body = EXCLUDED.body,
			edited_subject = NULL,
			edited_body = NULL,
			final_subject = NULL,
			final_body = NULL,
			prompt_used = EXCLUDED.prompt_used,
			model = EXCLUDED.model,
			generated_at = now(),
			reviewed_at = NULL,
			approved_at = NULL,
			sent_at = NULL,
			sent_to = NULL,
			send_attempts = 0,
			send_error = NULL
		RETURNING `+draftColumns,
		uuid.New(), params.CompanyID, params.Subject, params.Body, params.PromptUsed, params.Model,
	))
}

// GetDraftByCompany fetches a company's draft.
func (r *Repository) GetDraftByCompany(ctx context.Context, companyID uuid.UUID) (domain.Draft, error) {
	return scanDraft(r.pool.QueryRow(ctx,
		`SELECT `+draftColumns+` FROM emails WHERE company_id = $1`, companyID))
}

// SaveReviewParams carries human edits recorded during review.
type SaveReviewParams struct {
	CompanyID     uuid.UUID
	EditedSubject *string
	EditedBody    *string
}

// SaveReview stores the operator's edits and stamps reviewed_at.
func (r *Repository) SaveReview(ctx context.Context, params SaveReviewParams) (domain.Draft, error) {
	return scanDraft(r.pool.QueryRow(ctx, `
		UPDATE emails
		SET edited_subject = $2, edited_body = $3, reviewed_at = now()
		WHERE company_id = $1
		RETURNING `+draftColumns,
		params.CompanyID, params.EditedSubject, params.EditedBody,
	))
}

// FreezeFinalContent copies the effective content (edits winning over the
// generated original) into the final columns and stamps approved_at.
func (r *Repository) FreezeFinalContent(ctx context.Context, companyID uuid.UUID) (domain.Draft, error) {
	return scanDraft(r.pool.QueryRow(ctx, `
		UPDATE emails
		SET final_subject = COALESCE(edited_subject, subject),
		    final_body = COALESCE(edited_body, body),
		    approved_at = now()
		WHERE company_id = $1
		RETURNING `+draftColumns,
		companyID,
	))
}

// RecordSendAttempt increments the attempt counter and stores the outcome.
// On success the error column is cleared and sent_at/sent_to are stamped;
// on failure they are left untouched.
func (r *Repository) RecordSendAttempt(ctx context.Context, companyID uuid.UUID, recipient string, sendErr error) (domain.Draft, error) {
	if sendErr != nil {
		message := sendErr.Error()
		return scanDraft(r.pool.QueryRow(ctx, `
			UPDATE emails
			SET send_attempts = send_attempts + 1, send_error = $2
			WHERE company_id = $1
			RETURNING `+draftColumns,
			companyID, message,
		))
	}
	return scanDraft(r.pool.QueryRow(ctx, `
		UPDATE emails
		SET send_attempts = send_attempts + 1, send_error = NULL, sent_at = $2, sent_to = $3
		WHERE company_id = $1
		RETURNING `+draftColumns,
		companyID, time.Now(), recipient,
	))
}

// ResetDraftParams controls the atomic draft delete + state reset.
type ResetDraftParams struct {
	CompanyID uuid.UUID
	Actor     *string
}

// DeleteDraftAndReset removes the draft and forces the company back to
// pending_generation in one transaction, regardless of its current
// state. Exactly one email_deleted audit row carries the from/to states.
// When the company or the draft is missing nothing is written.
func (r *Repository) DeleteDraftAndReset(ctx context.Context, params ResetDraftParams) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var stateRaw string
		err := tx.QueryRow(ctx,
			`SELECT pipeline_state FROM companies WHERE id = $1 FOR UPDATE`,
			params.CompanyID,
		).Scan(&stateRaw)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		var draftID uuid.UUID
		err = tx.QueryRow(ctx,
			`DELETE FROM emails WHERE company_id = $1 RETURNING id`,
			params.CompanyID,
		).Scan(&draftID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrDraftNotFound
			}
			return err
		}

		_, err = tx.Exec(ctx, `
			UPDATE companies
			SET pipeline_state = $2, not_generated_reason = NULL, updated_at = now()
			WHERE id = $1`,
			params.CompanyID, string(domain.StatePendingGeneration))
		if err != nil {
			return err
		}

		from := domain.State(stateRaw)
		to := domain.StatePendingGeneration
		return insertAuditEntry(ctx, tx, auditEntryParams{
			EntityType: "company",
			EntityID:   params.CompanyID,
			Action:     domain.AuditActionEmailDeleted,
			FromState:  &from,
			ToState:    &to,
			Metadata:   map[string]any{"draftId": draftID.String()},
			Actor:      params.Actor,
		})
	})
}
