package repository

import (
	"context"
	"encoding/json"
	"errors"

	"leadvox_backend/internal/pipeline/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransitionParams describes one requested state change.
type TransitionParams struct {
	CompanyID uuid.UUID
	To        domain.State
	Actor     *string
	Metadata  map[string]any
	// Reason is written to the company when entering email_not_generated
	// and must be nil otherwise.
	Reason *domain.NotGeneratedReason
}

// Transition atomically validates the state change, updates the company
// and appends exactly one audit row. On any failure nothing is written.
// The company row is locked for the duration of the transaction.
func (r *Repository) Transition(ctx context.Context, params TransitionParams) (domain.State, error) {
	var from domain.State

	err := r.withTx(ctx, func(tx pgx.Tx) error {
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

		from = domain.State(stateRaw)
		if err := domain.ValidateTransition(from, params.To); err != nil {
			return err
		}

		if err := r.updateState(ctx, tx, params); err != nil {
			return err
		}

		fromCopy, toCopy := from, params.To
		return insertAuditEntry(ctx, tx, auditEntryParams{
			EntityType: "company",
			EntityID:   params.CompanyID,
			Action:     domain.AuditActionStateChange,
			FromState:  &fromCopy,
			ToState:    &toCopy,
			Metadata:   params.Metadata,
			Actor:      params.Actor,
		})
	})
	if err != nil {
		return "", err
	}
	return from, nil
}

func (r *Repository) updateState(ctx context.Context, tx pgx.Tx, params TransitionParams) error {
	switch {
	case params.To == domain.StateEmailNotGenerated && params.Reason != nil:
		reasonJSON, err := json.Marshal(params.Reason)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `
			UPDATE companies
			SET pipeline_state = $2, not_generated_reason = $3, updated_at = now()
			WHERE id = $1`,
			params.CompanyID, string(params.To), reasonJSON)
		return err

	case params.To == domain.StatePendingGeneration:
		// Resetting for regeneration clears the stored failure reason.
		_, err := tx.Exec(ctx, `
			UPDATE companies
			SET pipeline_state = $2, not_generated_reason = NULL, updated_at = now()
			WHERE id = $1`,
			params.CompanyID, string(params.To))
		return err

	default:
		_, err := tx.Exec(ctx, `
			UPDATE companies
			SET pipeline_state = $2, updated_at = now()
			WHERE id = $1`,
			params.CompanyID, string(params.To))
		return err
	}
}

// ClearNotGeneratedReason removes the stored reason without a transition.
// Used by the retry flow after a replacement draft is written.
func (r *Repository) ClearNotGeneratedReason(ctx context.Context, companyID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies SET not_generated_reason = NULL, updated_at = now() WHERE id = $1`,
		companyID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCompanyParams controls the 3-way delete.
type DeleteCompanyParams struct {
	CompanyID uuid.UUID
	// RemoveDedupRecord also deletes the fetched-organization marker so the
	// provider id becomes eligible for re-import.
	RemoveDedupRecord bool
}

// DeleteCompany removes the draft, the audit rows and the company itself
// as one atomic unit.
func (r *Repository) DeleteCompany(ctx context.Context, params DeleteCompanyParams) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		var apolloID *string
		err := tx.QueryRow(ctx,
			`SELECT apollo_id FROM companies WHERE id = $1 FOR UPDATE`,
			params.CompanyID,
		).Scan(&apolloID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrNotFound
			}
			return err
		}

		if _, err := tx.Exec(ctx, `DELETE FROM emails WHERE company_id = $1`, params.CompanyID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM audit_logs WHERE entity_id = $1`, params.CompanyID); err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM companies WHERE id = $1`, params.CompanyID); err != nil {
			return err
		}

		if params.RemoveDedupRecord && apolloID != nil && *apolloID != "" {
			if _, err := tx.Exec(ctx,
				`DELETE FROM fetched_organizations WHERE organization_id = $1`, *apolloID); err != nil {
				return err
			}
		}
		return nil
	})
}
