package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"jobtracker_server/core/domain"
	"jobtracker_server/core/port/out"
)

// ApplicationRepository implements out.ApplicationRepository on sqlite or postgres.
type ApplicationRepository struct {
	db *sqlx.DB
}

func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

type applicationRow struct {
	ID            string         `db:"id"`
	Company       string         `db:"company"`
	Role          string         `db:"role"`
	Status        string         `db:"status"`
	AppliedDate   string         `db:"applied_date"`
	Notes         string         `db:"notes"`
	Link          string         `db:"link"`
	ThreadID      string         `db:"thread_id"`
	MessageID     string         `db:"message_id"`
	AISummary     string         `db:"ai_summary"`
	AIActionItems pq.StringArray `db:"ai_action_items"`
	CreatedAt     time.Time      `db:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at"`
}

func (r *applicationRow) toDomain() *domain.ConfirmedApplication {
	return &domain.ConfirmedApplication{
		ID:            r.ID,
		Company:       r.Company,
		Role:          r.Role,
		Status:        domain.ParseStatus(r.Status),
		AppliedDate:   r.AppliedDate,
		Notes:         r.Notes,
		Link:          r.Link,
		ThreadID:      r.ThreadID,
		MessageID:     r.MessageID,
		AISummary:     r.AISummary,
		AIActionItems: []string(r.AIActionItems),
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}

func fromDomain(a *domain.ConfirmedApplication) *applicationRow {
	items := pq.StringArray(a.AIActionItems)
	if items == nil {
		items = pq.StringArray{}
	}
	return &applicationRow{
		ID:            a.ID,
		Company:       a.Company,
		Role:          a.Role,
		Status:        string(a.Status),
		AppliedDate:   a.AppliedDate,
		Notes:         a.Notes,
		Link:          a.Link,
		ThreadID:      a.ThreadID,
		MessageID:     a.MessageID,
		AISummary:     a.AISummary,
		AIActionItems: items,
		CreatedAt:     a.CreatedAt.UTC(),
		UpdatedAt:     a.UpdatedAt.UTC(),
	}
}

const applicationColumns = `id, company, role, status, applied_date, notes, link,
	thread_id, message_id, ai_summary, ai_action_items, created_at, updated_at`

func (r *ApplicationRepository) Create(ctx context.Context, app *domain.ConfirmedApplication) error {
	query := `
		INSERT INTO applications (` + applicationColumns + `)
		VALUES (:id, :company, :role, :status, :applied_date, :notes, :link,
		        :thread_id, :message_id, :ai_summary, :ai_action_items, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, fromDomain(app)); err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) Get(ctx context.Context, id string) (*domain.ConfirmedApplication, error) {
	query := r.db.Rebind(`SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`)

	var row applicationRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get application: %w", err)
	}
	return row.toDomain(), nil
}

// List returns applications newest first.
func (r *ApplicationRepository) List(ctx context.Context, filter domain.ApplicationFilter) ([]*domain.ConfirmedApplication, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications`
	var args []interface{}
	if filter.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(filter.Status))
	}
	query += ` ORDER BY applied_date DESC, created_at DESC`

	var rows []applicationRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}

	apps := make([]*domain.ConfirmedApplication, len(rows))
	for i := range rows {
		apps[i] = rows[i].toDomain()
	}
	return apps, nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app *domain.ConfirmedApplication) error {
	query := `
		UPDATE applications SET
			company = :company, role = :role, status = :status, applied_date = :applied_date,
			notes = :notes, link = :link, ai_summary = :ai_summary,
			ai_action_items = :ai_action_items, updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, fromDomain(app))
	if err != nil {
		return fmt.Errorf("update application: %w", err)
	}
	return requireAffected(res)
}

func (r *ApplicationRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(`DELETE FROM applications WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete application: %w", err)
	}
	return requireAffected(res)
}

func (r *ApplicationRepository) ConfirmedRefs(ctx context.Context) (*domain.ConfirmedRefs, error) {
	var rows []struct {
		ThreadID  string `db:"thread_id"`
		MessageID string `db:"message_id"`
	}
	if err := r.db.SelectContext(ctx, &rows, `SELECT thread_id, message_id FROM applications`); err != nil {
		return nil, fmt.Errorf("load confirmed refs: %w", err)
	}

	refs := domain.NewConfirmedRefs()
	for _, row := range rows {
		refs.Add(row.ThreadID, row.MessageID)
	}
	return refs, nil
}

// Ping is used by the readiness check.
func (r *ApplicationRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return out.ErrNotFound
	}
	return nil
}

var _ out.ApplicationRepository = (*ApplicationRepository)(nil)
