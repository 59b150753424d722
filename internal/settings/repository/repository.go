// Package repository persists the operator-managed settings: target job
// titles for contact search and the outreach prompt template.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrTitleNotFound marks a missing target title row.
var ErrTitleNotFound = errors.New("target title not found")

// Repository is the pgx-backed settings store.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates the settings repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TargetTitle is one prioritized job title used when searching contacts.
type TargetTitle struct {
	ID        uuid.UUID
	Title     string
	Priority  int
	Active    bool
	CreatedAt time.Time
}

const titleColumns = `id, title, priority, active, created_at`

func scanTitle(row pgx.Row) (TargetTitle, error) {
	var t TargetTitle
	err := row.Scan(&t.ID, &t.Title, &t.Priority, &t.Active, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return TargetTitle{}, ErrTitleNotFound
		}
		return TargetTitle{}, err
	}
	return t, nil
}

// ListTitles returns every title ordered by priority, then name.
func (r *Repository) ListTitles(ctx context.Context) ([]TargetTitle, error) {
	query := `SELECT ` + titleColumns + ` FROM target_titles ORDER BY priority ASC, title ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list titles: %w", err)
	}
	defer rows.Close()

	titles := make([]TargetTitle, 0)
	for rows.Next() {
		t, err := scanTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, t)
	}
	return titles, rows.Err()
}

// ActiveTitleStrings returns the active titles in priority order, ready
// to hand to the contact search.
func (r *Repository) ActiveTitleStrings(ctx context.Context) ([]string, error) {
	query := `SELECT title FROM target_titles WHERE active ORDER BY priority ASC, title ASC`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active titles: %w", err)
	}
	defer rows.Close()

	titles := make([]string, 0)
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan active title: %w", err)
		}
		titles = append(titles, title)
	}
	return titles, rows.Err()
}

// CreateTitleParams holds the fields for a new target title.
type CreateTitleParams struct {
	Title    string
	Priority int
}

// CreateTitle inserts a target title, active by default.
func (r *Repository) CreateTitle(ctx context.Context, params CreateTitleParams) (TargetTitle, error) {
	query := `
		INSERT INTO target_titles (id, title, priority, active)
		VALUES ($1, $2, $3, TRUE)
		RETURNING ` + titleColumns
	t, err := scanTitle(r.pool.QueryRow(ctx, query, uuid.New(), params.Title, params.Priority))
	if err != nil {
		return TargetTitle{}, fmt.Errorf("create title: %w", err)
	}
	return t, nil
}

// UpdateTitleParams holds the optional fields of a title update.
type UpdateTitleParams struct {
	ID       uuid.UUID
	Title    *string
	Priority *int
	Active   *bool
}

// UpdateTitle applies the non-nil fields and returns the updated row.
func (r *Repository) UpdateTitle(ctx context.Context, params UpdateTitleParams) (TargetTitle, error) {
	query := `
		UPDATE target_titles
		SET title    = COALESCE($2, title),
		    priority = COALESCE($3, priority),
		    active   = COALESCE($4, active)
		WHERE id = $1
		RETURNING ` + titleColumns
	t, err := scanTitle(r.pool.QueryRow(ctx, query, params.ID, params.Title, params.Priority, params.Active))
	if err != nil {
		if errors.Is(err, ErrTitleNotFound) {
			return TargetTitle{}, ErrTitleNotFound
		}
		return TargetTitle{}, fmt.Errorf("update title: %w", err)
	}
	return t, nil
}

// DeleteTitle removes a target title.
func (r *Repository) DeleteTitle(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM target_titles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete title: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTitleNotFound
	}
	return nil
}

// Sender is the operator-configured From identity for outgoing drafts.
// A zero value means no override; the dispatcher's configured sender
// applies.
type Sender struct {
	Name      string
	Email     string
	UpdatedAt time.Time
}

// GetSender returns the stored sender override, or a zero Sender when
// none is set.
func (r *Repository) GetSender(ctx context.Context) (Sender, error) {
	var s Sender
	err := r.pool.QueryRow(ctx,
		`SELECT name, email, updated_at FROM sender_settings WHERE id = 1`,
	).Scan(&s.Name, &s.Email, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Sender{}, nil
	}
	if err != nil {
		return Sender{}, fmt.Errorf("get sender: %w", err)
	}
	return s, nil
}

// SaveSender stores or replaces the sender override. An empty email
// removes it so the configured sender applies again.
func (r *Repository) SaveSender(ctx context.Context, name, email string) error {
	if email == "" {
		if _, err := r.pool.Exec(ctx, `DELETE FROM sender_settings WHERE id = 1`); err != nil {
			return fmt.Errorf("clear sender: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO sender_settings (id, name, email)
		VALUES (1, $1, $2)
		ON CONFLICT (id) DO UPDATE SET
			name       = EXCLUDED.name,
			email      = EXCLUDED.email,
			updated_at = NOW()`
	if _, err := r.pool.Exec(ctx, query, name, email); err != nil {
		return fmt.Errorf("save sender: %w", err)
	}
	return nil
}

// outreachPromptKey is the single prompt template the pipeline uses.
const outreachPromptKey = "outreach_email"

// GetPromptTemplate returns the stored override, or "" when none is set.
func (r *Repository) GetPromptTemplate(ctx context.Context) (string, error) {
	var template string
	err := r.pool.QueryRow(ctx,
		`SELECT template FROM prompt_templates WHERE name = $1`, outreachPromptKey,
	).Scan(&template)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get prompt template: %w", err)
	}
	return template, nil
}

// SavePromptTemplate stores or replaces the override. An empty template
// removes the override so the built-in prompt applies again.
func (r *Repository) SavePromptTemplate(ctx context.Context, template string) error {
	if template == "" {
		_, err := r.pool.Exec(ctx,
			`DELETE FROM prompt_templates WHERE name = $1`, outreachPromptKey)
		if err != nil {
			return fmt.Errorf("clear prompt template: %w", err)
		}
		return nil
	}

	query := `
		INSERT INTO prompt_templates (id, name, template)
		VALUES ($1, $2, $3)
		ON CONFLICT (name) DO UPDATE SET
			template   = EXCLUDED.template,
			updated_at = NOW()`
	if _, err := r.pool.Exec(ctx, query, uuid.New(), outreachPromptKey, template); err != nil {
		return fmt.Errorf("save prompt template: %w", err)
	}
	return nil
}
