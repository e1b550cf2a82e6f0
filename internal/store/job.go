package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/lib/pq"
)

// JobRepository handles persistence for the job catalog.
type JobRepository struct {
	db *sql.DB
}

func NewJobRepository(db *sql.DB) *JobRepository {
	return &JobRepository{db: db}
}

func jobColumns(alias string) string {
	cols := []string{
		"job_id", "job_title", "company_name", "job_description", "job_url", "country", "city",
		"timezone", "work_modality", "salary_min", "salary_max", "salary_currency", "employment_type",
		"seniority_level", "is_active", "is_mock_data", "posted_date", "created_at", "updated_at",
	}
	if alias != "" {
		for i, col := range cols {
			cols[i] = alias + "." + col
		}
	}
	return strings.Join(cols, ", ")
}

// jobScanTargets returns the destinations for jobColumns plus a finisher
// that copies nullable columns into job.
func jobScanTargets(job *types.Job) ([]any, func()) {
	var salaryMin, salaryMax sql.NullInt64
	targets := []any{
		&job.ID,
		&job.Title,
		&job.CompanyName,
		&job.Description,
		&job.URL,
		&job.Country,
		&job.City,
		&job.Timezone,
		&job.WorkModality,
		&salaryMin,
		&salaryMax,
		&job.SalaryCurrency,
		&job.EmploymentType,
		&job.SeniorityLevel,
		&job.IsActive,
		&job.IsMockData,
		&job.PostedDate,
		&job.CreatedAt,
		&job.UpdatedAt,
	}
	return targets, func() {
		job.SalaryMin = nil
		job.SalaryMax = nil
		if salaryMin.Valid {
			v := salaryMin.Int64
			job.SalaryMin = &v
		}
		if salaryMax.Valid {
			v := salaryMax.Int64
			job.SalaryMax = &v
		}
	}
}

func (r *JobRepository) GetByID(ctx context.Context, id string) (types.Job, error) {
	query := `SELECT ` + jobColumns("") + ` FROM jobs WHERE job_id = $1`
	var job types.Job
	targets, finish := jobScanTargets(&job)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(targets...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Job{}, ErrNotFound
		}
		return types.Job{}, translateError(err)
	}
	finish()
	return job, nil
}

// List returns active jobs matching filter, newest first, plus the total
// number of matches.
func (r *JobRepository) List(ctx context.Context, filter types.JobFilter, offset, limit int) ([]types.Job, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 20
	}

	var conds conditions
	conds.add("is_active = TRUE")
	if len(filter.WorkModalities) > 0 {
		conds.add("work_modality = ANY(?)", pq.Array(stringsOf(filter.WorkModalities)))
	}
	if len(filter.Seniorities) > 0 {
		conds.add("seniority_level = ANY(?)", pq.Array(stringsOf(filter.Seniorities)))
	}
	if filter.SalaryMin != nil {
		conds.add("salary_min >= ?", *filter.SalaryMin)
	}
	if filter.SalaryMax != nil {
		conds.add("salary_max <= ?", *filter.SalaryMax)
	}
	if country := strings.TrimSpace(filter.Country); country != "" {
		conds.add("country ILIKE ?", "%"+escapeLike(country)+"%")
	}
	if city := strings.TrimSpace(filter.City); city != "" {
		conds.add("city ILIKE ?", "%"+escapeLike(city)+"%")
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		conds.add("search_vector @@ plainto_tsquery('simple', ?)", search)
	}

	countQuery := `SELECT COUNT(1) FROM jobs` + conds.where()
	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, conds.args...).Scan(&total); err != nil {
		return nil, 0, translateError(err)
	}

	listQuery := `SELECT ` + jobColumns("") + ` FROM jobs` + conds.where() +
		` ORDER BY posted_date DESC, job_id OFFSET ` + conds.next(offset) + ` LIMIT ` + conds.next(limit)
	jobs, err := r.query(ctx, listQuery, conds.args...)
	if err != nil {
		return nil, 0, err
	}
	return jobs, total, nil
}

// Search ranks active jobs by relevance to the free-text query.
func (r *JobRepository) Search(ctx context.Context, text string, limit int) ([]types.Job, error) {
	if limit < 1 {
		limit = 10
	}
	query := `
		SELECT ` + jobColumns("") + `
		FROM jobs
		WHERE is_active = TRUE AND search_vector @@ plainto_tsquery('simple', $1)
		ORDER BY ts_rank(search_vector, plainto_tsquery('simple', $1)) DESC, posted_date DESC
		LIMIT $2`
	return r.query(ctx, query, text, limit)
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	now := time.Now().UTC()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.PostedDate.IsZero() {
		job.PostedDate = now
	}
	if job.SalaryCurrency == "" {
		job.SalaryCurrency = "USD"
	}
	job.CreatedAt = now
	job.UpdatedAt = now

	const query = `
		INSERT INTO jobs (job_id, job_title, company_name, job_description, job_url, country, city, timezone,
			work_modality, salary_min, salary_max, salary_currency, employment_type, seniority_level,
			is_active, is_mock_data, posted_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		job.ID,
		job.Title,
		job.CompanyName,
		job.Description,
		job.URL,
		job.Country,
		job.City,
		job.Timezone,
		job.WorkModality,
		nullableInt64(job.SalaryMin),
		nullableInt64(job.SalaryMax),
		job.SalaryCurrency,
		job.EmploymentType,
		job.SeniorityLevel,
		job.IsActive,
		job.IsMockData,
		job.PostedDate,
		job.CreatedAt,
		job.UpdatedAt,
	); err != nil {
		return types.Job{}, translateError(err)
	}
	return job, nil
}

// CountMock returns the number of jobs inserted by the seed command.
func (r *JobRepository) CountMock(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM jobs WHERE is_mock_data = TRUE`).Scan(&count); err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

func (r *JobRepository) query(ctx context.Context, query string, args ...any) ([]types.Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	jobs := make([]types.Job, 0)
	for rows.Next() {
		var job types.Job
		targets, finish := jobScanTargets(&job)
		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}
		finish()
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func nullableInt64(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func stringsOf[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
