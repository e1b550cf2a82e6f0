package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/jobseeker-app/apiserver/types"
)

// AnalyticsRepository runs the read-only aggregations behind the
// analytics endpoints. Every query is scoped to one account.
type AnalyticsRepository struct {
	db *sql.DB
}

func NewAnalyticsRepository(db *sql.DB) *AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// StatusCounts returns the number of applications per status. Statuses
// without applications are absent from the map.
func (r *AnalyticsRepository) StatusCounts(ctx context.Context, userID string) (map[types.Status]int, error) {
	const query = `SELECT status, COUNT(1) FROM applications WHERE user_id = $1 GROUP BY status`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	counts := make(map[types.Status]int)
	for rows.Next() {
		var (
			status types.Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// CountCreatedSince counts applications created at or after since.
func (r *AnalyticsRepository) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	const query = `SELECT COUNT(1) FROM applications WHERE user_id = $1 AND created_at >= $2`
	var count int
	if err := r.db.QueryRowContext(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, translateError(err)
	}
	return count, nil
}

// AverageDaysToApply is the mean number of days between creating an
// application and its applied date, over applications that have one.
func (r *AnalyticsRepository) AverageDaysToApply(ctx context.Context, userID string) (float64, error) {
	const query = `
		SELECT COALESCE(AVG(GREATEST(EXTRACT(EPOCH FROM (applied_date - created_at)), 0)) / 86400, 0)
		FROM applications
		WHERE user_id = $1 AND applied_date IS NOT NULL`
	var days float64
	if err := r.db.QueryRowContext(ctx, query, userID).Scan(&days); err != nil {
		return 0, translateError(err)
	}
	return days, nil
}

// TopCompanies returns the companies with the most applications.
func (r *AnalyticsRepository) TopCompanies(ctx context.Context, userID string, limit int) ([]types.CompanyCount, error) {
	const query = `
		SELECT j.company_name, COUNT(1) AS applications
		FROM applications a
		JOIN jobs j ON j.job_id = a.job_id
		WHERE a.user_id = $1
		GROUP BY j.company_name
		ORDER BY applications DESC, j.company_name
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	companies := make([]types.CompanyCount, 0, limit)
	for rows.Next() {
		var c types.CompanyCount
		if err := rows.Scan(&c.CompanyName, &c.Applications); err != nil {
			return nil, err
		}
		companies = append(companies, c)
	}
	return companies, rows.Err()
}

// ByWorkModality groups applications by the job's modality and averages
// the jobs' minimum salary.
func (r *AnalyticsRepository) ByWorkModality(ctx context.Context, userID string) ([]types.ModalityStat, error) {
	const query = `
		SELECT j.work_modality, COUNT(1), AVG(j.salary_min)::float8
		FROM applications a
		JOIN jobs j ON j.job_id = a.job_id
		WHERE a.user_id = $1
		GROUP BY j.work_modality
		ORDER BY j.work_modality`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	stats := make([]types.ModalityStat, 0)
	for rows.Next() {
		var (
			stat types.ModalityStat
			avg  sql.NullFloat64
		)
		if err := rows.Scan(&stat.WorkModality, &stat.Count, &avg); err != nil {
			return nil, err
		}
		if avg.Valid {
			v := avg.Float64
			stat.AvgSalary = &v
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// BySeniority groups applications by the job's seniority level.
func (r *AnalyticsRepository) BySeniority(ctx context.Context, userID string) ([]types.SeniorityStat, error) {
	const query = `
		SELECT j.seniority_level, COUNT(1)
		FROM applications a
		JOIN jobs j ON j.job_id = a.job_id
		WHERE a.user_id = $1
		GROUP BY j.seniority_level
		ORDER BY j.seniority_level`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	stats := make([]types.SeniorityStat, 0)
	for rows.Next() {
		var stat types.SeniorityStat
		if err := rows.Scan(&stat.SeniorityLevel, &stat.Count); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// ByMonth counts applications per calendar month of creation, oldest first.
func (r *AnalyticsRepository) ByMonth(ctx context.Context, userID string) ([]types.MonthStat, error) {
	const query = `
		SELECT EXTRACT(YEAR FROM created_at)::int AS year,
			EXTRACT(MONTH FROM created_at)::int AS month,
			COUNT(1)
		FROM applications
		WHERE user_id = $1
		GROUP BY year, month
		ORDER BY year, month`
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	stats := make([]types.MonthStat, 0)
	for rows.Next() {
		var stat types.MonthStat
		if err := rows.Scan(&stat.Year, &stat.Month, &stat.Count); err != nil {
			return nil, err
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}
