package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/lib/pq"
)

// ApplicationRepository handles persistence for the application ledger.
// Every read and write is scoped to the owning account.
type ApplicationRepository struct {
	db          *sql.DB
	attachments *AttachmentRepository
}

func NewApplicationRepository(db *sql.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db, attachments: NewAttachmentRepository(db)}
}

const applicationColumns = `a.application_id, a.user_id, a.job_id, a.status, a.applied_date,
	a.personal_notes, a.cover_letter, a.cold_message, a.created_at, a.updated_at`

func applicationScanTargets(app *types.Application, appliedDate *sql.NullTime) []any {
	return []any{
		&app.ID,
		&app.UserID,
		&app.JobID,
		&app.Status,
		appliedDate,
		&app.PersonalNotes,
		&app.CoverLetter,
		&app.ColdMessage,
		&app.CreatedAt,
		&app.UpdatedAt,
	}
}

func nullableTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// Create inserts a new application. A second application for the same
// account and job fails with ErrConflict.
func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	now := time.Now().UTC()
	app.ID = uuid.NewString()
	app.CreatedAt = now
	app.UpdatedAt = now
	if app.Status == "" {
		app.Status = types.StatusSaved
	}

	const query = `
		INSERT INTO applications (application_id, user_id, job_id, status, applied_date, personal_notes,
			cover_letter, cold_message, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		app.ID,
		app.UserID,
		app.JobID,
		app.Status,
		nullableTime(app.AppliedDate),
		app.PersonalNotes,
		app.CoverLetter,
		app.ColdMessage,
		app.CreatedAt,
		app.UpdatedAt,
	); err != nil {
		return types.Application{}, translateError(err)
	}
	return app, nil
}

// GetByID returns the application with its job and attachment metadata.
func (r *ApplicationRepository) GetByID(ctx context.Context, userID, id string) (types.Application, error) {
	query := `
		SELECT ` + applicationColumns + `, ` + jobColumns("j") + `
		FROM applications a
		JOIN jobs j ON j.job_id = a.job_id
		WHERE a.application_id = $1 AND a.user_id = $2`
	apps, err := r.queryWithJobs(ctx, query, id, userID)
	if err != nil {
		return types.Application{}, err
	}
	if len(apps) == 0 {
		return types.Application{}, ErrNotFound
	}
	return apps[0], nil
}

// FindByUserAndJob returns the account's application for jobID, without joins.
func (r *ApplicationRepository) FindByUserAndJob(ctx context.Context, userID, jobID string) (types.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications a WHERE a.user_id = $1 AND a.job_id = $2`
	var (
		app         types.Application
		appliedDate sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, query, userID, jobID).Scan(applicationScanTargets(&app, &appliedDate)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Application{}, ErrNotFound
		}
		return types.Application{}, translateError(err)
	}
	if appliedDate.Valid {
		app.AppliedDate = &appliedDate.Time
	}
	return app, nil
}

// List returns the account's applications, most recently updated first.
func (r *ApplicationRepository) List(ctx context.Context, userID string, filter types.ApplicationFilter, offset, limit int) ([]types.Application, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	var conds conditions
	conds.add("a.user_id = ?", userID)
	if len(filter.Statuses) > 0 {
		conds.add("a.status = ANY(?)", pq.Array(stringsOf(filter.Statuses)))
	}

	countQuery := `SELECT COUNT(1) FROM applications a` + conds.where()
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, conds.args...).Scan(&total); err != nil {
		return nil, 0, translateError(err)
	}

	listQuery := `
		SELECT ` + applicationColumns + `, ` + jobColumns("j") + `
		FROM applications a
		JOIN jobs j ON j.job_id = a.job_id` + conds.where() + `
		ORDER BY a.updated_at DESC, a.application_id
		OFFSET ` + conds.next(offset) + ` LIMIT ` + conds.next(limit)
	apps, err := r.queryWithJobs(ctx, listQuery, conds.args...)
	if err != nil {
		return nil, 0, err
	}
	return apps, total, nil
}

// Update rewrites the mutable fields of an application owned by app.UserID.
func (r *ApplicationRepository) Update(ctx context.Context, app types.Application) (types.Application, error) {
	app.UpdatedAt = time.Now().UTC()

	const query = `
		UPDATE applications
		SET job_id = $1,
			status = $2,
			applied_date = $3,
			personal_notes = $4,
			updated_at = $5
		WHERE application_id = $6 AND user_id = $7`
	result, err := r.db.ExecContext(
		ctx,
		query,
		app.JobID,
		app.Status,
		nullableTime(app.AppliedDate),
		app.PersonalNotes,
		app.UpdatedAt,
		app.ID,
		app.UserID,
	)
	if err != nil {
		return types.Application{}, translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Application{}, err
	}
	if affected == 0 {
		return types.Application{}, ErrNotFound
	}
	return app, nil
}

// SetDocument stores generated text on the application's cover letter or
// cold message field.
func (r *ApplicationRepository) SetDocument(ctx context.Context, userID, id string, kind types.DocumentKind, content string) error {
	var column string
	switch kind {
	case types.DocumentCoverLetter:
		column = "cover_letter"
	case types.DocumentColdMessage:
		column = "cold_message"
	default:
		return fmt.Errorf("unknown document kind %q", kind)
	}

	query := `UPDATE applications SET ` + column + ` = $1, updated_at = $2 WHERE application_id = $3 AND user_id = $4`
	result, err := r.db.ExecContext(ctx, query, content, time.Now().UTC(), id, userID)
	if err != nil {
		return translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an application and, by cascade, its attachment metadata.
func (r *ApplicationRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM applications WHERE application_id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *ApplicationRepository) queryWithJobs(ctx context.Context, query string, args ...any) ([]types.Application, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	apps := make([]types.Application, 0)
	for rows.Next() {
		var (
			app         types.Application
			appliedDate sql.NullTime
			job         types.Job
		)
		jobTargets, finish := jobScanTargets(&job)
		targets := append(applicationScanTargets(&app, &appliedDate), jobTargets...)
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		finish()
		if appliedDate.Valid {
			app.AppliedDate = &appliedDate.Time
		}
		app.Job = &job
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return apps, nil
	}

	ids := make([]string, len(apps))
	for i, app := range apps {
		ids[i] = app.ID
	}
	byApp, err := r.attachments.listFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range apps {
		apps[i].Attachments = types.NewAttachmentSet(byApp[apps[i].ID]...)
	}
	return apps, nil
}
