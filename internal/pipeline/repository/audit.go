package repository

import (
	"context"
	"encoding/json"

	"leadvox_backend/internal/pipeline/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type auditEntryParams struct {
	EntityType string
	EntityID   uuid.UUID
	Action     string
	FromState  *domain.State
	ToState    *domain.State
	Metadata   map[string]any
	Actor      *string
}

func insertAuditEntry(ctx context.Context, tx pgx.Tx, params auditEntryParams) error {
	metadataJSON, err := json.Marshal(params.Metadata)
	if err != nil {
		return err
	}

	var from, to *string
	if params.FromState != nil {
		s := string(*params.FromState)
		from = &s
	}
	if params.ToState != nil {
		s := string(*params.ToState)
		to = &s
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO audit_logs (id, entity_type, entity_id, action, from_state, to_state, metadata, actor)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), params.EntityType, params.EntityID, params.Action, from, to, metadataJSON, params.Actor,
	)
	return err
}

// RecordActionParams describes a non-transition audit entry such as
// email_generated or email_reviewed.
type RecordActionParams struct {
	EntityType string
	EntityID   uuid.UUID
	Action     string
	Metadata   map[string]any
	Actor      *string
}

// RecordAction appends an audit entry outside of a state transition.
func (r *Repository) RecordAction(ctx context.Context, params RecordActionParams) error {
	return r.withTx(ctx, func(tx pgx.Tx) error {
		return insertAuditEntry(ctx, tx, auditEntryParams{
			EntityType: params.EntityType,
			EntityID:   params.EntityID,
			Action:     params.Action,
			Metadata:   params.Metadata,
			Actor:      params.Actor,
		})
	})
}

// ListAuditEntries returns the audit trail for one entity, newest first.
func (r *Repository) ListAuditEntries(ctx context.Context, entityID uuid.UUID, limit int) ([]domain.AuditLogEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, entity_type, entity_id, action, from_state, to_state, metadata, actor, created_at
		FROM audit_logs
		WHERE entity_id = $1
		ORDER BY created_at DESC
		LIMIT $2`,
		entityID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]domain.AuditLogEntry, 0)
	for rows.Next() {
		var entry domain.AuditLogEntry
		var from, to *string
		var metadataJSON []byte
		err := rows.Scan(&entry.ID, &entry.EntityType, &entry.EntityID, &entry.Action,
			&from, &to, &metadataJSON, &entry.Actor, &entry.CreatedAt)
		if err != nil {
			return nil, err
		}
		if from != nil {
			s := domain.State(*from)
			entry.FromState = &s
		}
		if to != nil {
			s := domain.State(*to)
			entry.ToState = &s
		}
		if len(metadataJSON) > 0 {
			_ = json.Unmarshal(metadataJSON, &entry.Metadata)
		}
		entries = append(entries, entry)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return entries, nil
}

// CountAuditEntries returns the number of audit rows for one entity.
func (r *Repository) CountAuditEntries(ctx context.Context, entityID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM audit_logs WHERE entity_id = $1`, entityID).Scan(&count)
	return count, err
}
