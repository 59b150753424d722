package repository

import (
	"context"
	"errors"
	"time"

	"leadvox_backend/internal/pipeline/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const companyColumns = `
	id, apollo_id, domain, name, website, industry, location, employee_count,
	pipeline_state, not_generated_reason,
	contact_first_name, contact_last_name, contact_email, contact_title, contact_found_at,
	created_at, updated_at`

func scanCompany(row pgx.Row) (domain.Company, error) {
	var c domain.Company
	var state string
	var reason *string
	err := row.Scan(
		&c.ID, &c.ApolloID, &c.Domain, &c.Name, &c.Website, &c.Industry, &c.Location, &c.EmployeeCount,
		&state, &reason,
		&c.ContactFirst, &c.ContactLast, &c.ContactEmail, &c.ContactTitle, &c.ContactFoundAt,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Company{}, ErrNotFound
		}
		return domain.Company{}, err
	}

	c.State = domain.State(state)
	if reason != nil {
		parsed, err := domain.ParseReason(*reason)
		if err == nil {
			c.NotGenerated = &parsed
		}
	}
	return c, nil
}

// UpsertCompanyParams carries the import payload. ApolloID should be the
// organization-level provider id when available.
type UpsertCompanyParams struct {
	ApolloID      *string
	Domain        *string
	Name          string
	Website       *string
	Industry      *string
	Location      *string
	EmployeeCount *int
}

// UpsertCompany inserts a company in pending_generation, or returns the
// existing row matched by apollo id or domain.
func (r *Repository) UpsertCompany(ctx context.Context, params UpsertCompanyParams) (domain.Company, bool, error) {
	existing, err := r.findExisting(ctx, params.ApolloID, params.Domain)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return domain.Company{}, false, err
	}

	row := r.pool.QueryRow(ctx, `
		INSERT INTO companies (id, apollo_id, domain, name, website, industry, location, employee_count, pipeline_state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING `+companyColumns,
		uuid.New(), params.ApolloID, params.Domain, params.Name, params.Website,
		params.Industry, params.Location, params.EmployeeCount, string(domain.StatePendingGeneration),
	)
	created, err := scanCompany(row)
	if err != nil {
		return domain.Company{}, false, err
	}
	return created, true, nil
}

func (r *Repository) findExisting(ctx context.Context, apolloID, domainName *string) (domain.Company, error) {
	if apolloID != nil && *apolloID != "" {
		c, err := scanCompany(r.pool.QueryRow(ctx,
			`SELECT `+companyColumns+` FROM companies WHERE apollo_id = $1`, *apolloID))
		if err == nil || !errors.Is(err, ErrNotFound) {
			return c, err
		}
	}
	if domainName != nil && *domainName != "" {
		return scanCompany(r.pool.QueryRow(ctx,
			`SELECT `+companyColumns+` FROM companies WHERE domain = $1`, *domainName))
	}
	return domain.Company{}, ErrNotFound
}

// GetCompany fetches one company by id.
func (r *Repository) GetCompany(ctx context.Context, id uuid.UUID) (domain.Company, error) {
	return scanCompany(r.pool.QueryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE id = $1`, id))
}

// UpdateCompanyParams holds the optional descriptive fields of a patch.
type UpdateCompanyParams struct {
	CompanyID     uuid.UUID
	Name          *string
	Website       *string
	Industry      *string
	Location      *string
	EmployeeCount *int
}

// UpdateCompany applies the non-nil fields and returns the updated row.
func (r *Repository) UpdateCompany(ctx context.Context, params UpdateCompanyParams) (domain.Company, error) {
	return scanCompany(r.pool.QueryRow(ctx, `
		UPDATE companies
		SET name           = COALESCE($2, name),
		    website        = COALESCE($3, website),
		    industry       = COALESCE($4, industry),
		    location       = COALESCE($5, location),
		    employee_count = COALESCE($6, employee_count),
		    updated_at     = now()
		WHERE id = $1
		RETURNING `+companyColumns,
		params.CompanyID, params.Name, params.Website, params.Industry,
		params.Location, params.EmployeeCount,
	))
}

// UpdateContactParams is the contact snapshot written after resolution.
type UpdateContactParams struct {
	CompanyID uuid.UUID
	FirstName *string
	LastName  *string
	Email     *string
	Title     *string
}

// UpdateContactSnapshot persists the resolved contact onto the company.
func (r *Repository) UpdateContactSnapshot(ctx context.Context, params UpdateContactParams) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE companies
		SET contact_first_name = $2, contact_last_name = $3, contact_email = $4,
		    contact_title = $5, contact_found_at = $6, updated_at = now()
		WHERE id = $1`,
		params.CompanyID, params.FirstName, params.LastName, params.Email, params.Title, time.Now(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CompanyWithDraft joins a company with its draft, when one exists.
type CompanyWithDraft struct {
	Company domain.Company
	Draft   *domain.Draft
}

// ListByState returns companies in the given state, most recently updated
// first, joined with their draft.
func (r *Repository) ListByState(ctx context.Context, state domain.State, limit, offset int) ([]CompanyWithDraft, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT
			c.id, c.apollo_id, c.domain, c.name, c.website, c.industry, c.location, c.employee_count,
			c.pipeline_state, c.not_generated_reason,
			c.contact_first_name, c.contact_last_name, c.contact_email, c.contact_title, c.contact_found_at,
			c.created_at, c.updated_at,
			e.id, e.subject, e.body, e.edited_subject, e.edited_body, e.final_subject, e.final_body,
			e.prompt_used, e.model, e.generated_at, e.reviewed_at, e.approved_at, e.sent_at, e.sent_to,
			e.send_attempts, e.send_error
		FROM companies c
		LEFT JOIN emails e ON e.company_id = c.id
		WHERE c.pipeline_state = $1
		ORDER BY c.updated_at DESC
		LIMIT $2 OFFSET $3`,
		string(state), limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]CompanyWithDraft, 0)
	for rows.Next() {
		var c domain.Company
		var stateRaw string
		var reason *string
		var draftID *uuid.UUID
		var d domain.Draft
		var subject, body *string
		var sendAttempts *int

		err := rows.Scan(
			&c.ID, &c.ApolloID, &c.Domain, &c.Name, &c.Website, &c.Industry, &c.Location, &c.EmployeeCount,
			&stateRaw, &reason,
			&c.ContactFirst, &c.ContactLast, &c.ContactEmail, &c.ContactTitle, &c.ContactFoundAt,
			&c.CreatedAt, &c.UpdatedAt,
			&draftID, &subject, &body, &d.EditedSubject, &d.EditedBody, &d.FinalSubject, &d.FinalBody,
			&d.PromptUsed, &d.Model, &d.GeneratedAt, &d.ReviewedAt, &d.ApprovedAt, &d.SentAt, &d.SentTo,
			&sendAttempts, &d.SendError,
		)
		if err != nil {
			return nil, err
		}

		c.State = domain.State(stateRaw)
		if reason != nil {
			if parsed, perr := domain.ParseReason(*reason); perr == nil {
				c.NotGenerated = &parsed
			}
		}

		item := CompanyWithDraft{Company: c}
		if draftID != nil {
			d.ID = *draftID
			d.CompanyID = c.ID
			if subject != nil {
				d.Subject = *subject
			}
			if body != nil {
				d.Body = *body
			}
			if sendAttempts != nil {
				d.SendAttempts = *sendAttempts
			}
			item.Draft = &d
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return items, nil
}

// CountByState returns the number of companies per pipeline state.
// States with no companies are present with a zero count.
func (r *Repository) CountByState(ctx context.Context) (map[domain.State]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT pipeline_state, COUNT(*) FROM companies GROUP BY pipeline_state`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[domain.State]int, len(domain.AllStates))
	for _, s := range domain.AllStates {
		counts[s] = 0
	}
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, err
		}
		counts[domain.State(state)] = count
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return counts, nil
}

// CompanyName is a lightweight id/name pair used for pre-fetched snapshots
// in batch flows, so error details can name a company even after deletion.
type CompanyName struct {
	ID   uuid.UUID
	Name string
}

// GetCompanyNames resolves names for the given ids. Missing ids are simply
// absent from the result.
func (r *Repository) GetCompanyNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]string{}, nil
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, name FROM companies WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	names := make(map[uuid.UUID]string, len(ids))
	for rows.Next() {
		var item CompanyName
		if err := rows.Scan(&item.ID, &item.Name); err != nil {
			return nil, err
		}
		names[item.ID] = item.Name
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return names, nil
}
