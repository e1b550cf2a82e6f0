package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/lib/pq"
)

// ProfileRepository handles persistence for profiles.
type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `profile_id, user_id, full_name, phone, linkedin_url, bio, country, city, timezone,
	current_job_title, years_experience, industries, work_modality_preferred,
	salary_min, salary_max, salary_currency, created_at, updated_at`

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (types.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE user_id = $1`
	var profile types.Profile
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&profile.ID,
		&profile.UserID,
		&profile.FullName,
		&profile.Phone,
		&profile.LinkedInURL,
		&profile.Bio,
		&profile.Country,
		&profile.City,
		&profile.Timezone,
		&profile.CurrentJobTitle,
		&profile.YearsExperience,
		pq.Array(&profile.Industries),
		&profile.WorkModalityPreferred,
		&profile.SalaryMin,
		&profile.SalaryMax,
		&profile.SalaryCurrency,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Profile{}, ErrNotFound
		}
		return types.Profile{}, translateError(err)
	}
	return profile, nil
}

// Create inserts a profile. A second profile for the same account fails
// with ErrConflict.
func (r *ProfileRepository) Create(ctx context.Context, profile types.Profile) (types.Profile, error) {
	now := time.Now().UTC()
	profile.ID = uuid.NewString()
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.Industries == nil {
		profile.Industries = []string{}
	}

	const query = `
		INSERT INTO profiles (profile_id, user_id, full_name, phone, linkedin_url, bio, country, city, timezone,
			current_job_title, years_experience, industries, work_modality_preferred,
			salary_min, salary_max, salary_currency, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`
	if _, err := r.db.ExecContext(
		ctx,
		query,
		profile.ID,
		profile.UserID,
		profile.FullName,
		profile.Phone,
		profile.LinkedInURL,
		profile.Bio,
		profile.Country,
		profile.City,
		profile.Timezone,
		profile.CurrentJobTitle,
		profile.YearsExperience,
		pq.Array(profile.Industries),
		profile.WorkModalityPreferred,
		profile.SalaryMin,
		profile.SalaryMax,
		profile.SalaryCurrency,
		profile.CreatedAt,
		profile.UpdatedAt,
	); err != nil {
		return types.Profile{}, translateError(err)
	}
	return profile, nil
}

// Update rewrites a profile owned by profile.UserID. Profiles owned by
// another account are reported as ErrNotFound.
func (r *ProfileRepository) Update(ctx context.Context, profile types.Profile) (types.Profile, error) {
	profile.UpdatedAt = time.Now().UTC()
	if profile.Industries == nil {
		profile.Industries = []string{}
	}

	const query = `
		UPDATE profiles
		SET full_name = $1,
			phone = $2,
			linkedin_url = $3,
			bio = $4,
			country = $5,
			city = $6,
			timezone = $7,
			current_job_title = $8,
			years_experience = $9,
			industries = $10,
			work_modality_preferred = $11,
			salary_min = $12,
			salary_max = $13,
			salary_currency = $14,
			updated_at = $15
		WHERE profile_id = $16 AND user_id = $17
		RETURNING created_at`
	err := r.db.QueryRowContext(
		ctx,
		query,
		profile.FullName,
		profile.Phone,
		profile.LinkedInURL,
		profile.Bio,
		profile.Country,
		profile.City,
		profile.Timezone,
		profile.CurrentJobTitle,
		profile.YearsExperience,
		pq.Array(profile.Industries),
		profile.WorkModalityPreferred,
		profile.SalaryMin,
		profile.SalaryMax,
		profile.SalaryCurrency,
		profile.UpdatedAt,
		profile.ID,
		profile.UserID,
	).Scan(&profile.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Profile{}, ErrNotFound
		}
		return types.Profile{}, translateError(err)
	}
	return profile, nil
}
