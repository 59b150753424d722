package repository

import (
	"context"

	"leadvox_backend/internal/pipeline/domain"

	"github.com/google/uuid"
)

// UpsertDedupParams marks a provider organization id as imported.
type UpsertDedupParams struct {
	OrganizationID string
	Name           string
	Domain         *string
}

// UpsertDedupRecord records that an organization id has been fetched, so
// future provider searches can exclude it.
func (r *Repository) UpsertDedupRecord(ctx context.Context, params UpsertDedupParams) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO fetched_organizations (id, organization_id, name, domain)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (organization_id) DO UPDATE SET
			name = EXCLUDED.name,
			domain = EXCLUDED.domain,
			fetched_at = now()`,
		uuid.New(), params.OrganizationID, params.Name, params.Domain,
	)
	return err
}

// ListFetchedOrganizationIDs returns every provider id already imported.
func (r *Repository) ListFetchedOrganizationIDs(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT organization_id FROM fetched_organizations ORDER BY fetched_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return ids, nil
}

// ListDedupRecords returns the full dedup rows, newest first.
func (r *Repository) ListDedupRecords(ctx context.Context, limit int) ([]domain.DedupRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, name, domain, fetched_at
		FROM fetched_organizations
		ORDER BY fetched_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]domain.DedupRecord, 0)
	for rows.Next() {
		var rec domain.DedupRecord
		if err := rows.Scan(&rec.ID, &rec.OrganizationID, &rec.Name, &rec.Domain, &rec.FetchedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return records, nil
}
