package types

import "time"

// Profile holds the personal and career details of an account.
// Each account owns at most one profile.
type Profile struct {
	// ID is the unique identifier of the profile.
	ID string `json:"profile_id" db:"profile_id"`

	// UserID identifies the owning account.
	UserID string `json:"user_id" db:"user_id"`

	// FullName is the display name used in generated documents.
	FullName string `json:"full_name" db:"full_name"`

	// Phone is an optional contact number.
	Phone string `json:"phone" db:"phone"`

	// LinkedInURL is an optional public profile link.
	LinkedInURL string `json:"linkedin_url" db:"linkedin_url"`

	// Bio is a short free-text summary, at most 500 characters.
	Bio string `json:"bio" db:"bio"`

	// Country is the country of residence.
	Country string `json:"country" db:"country"`

	// City is the city of residence.
	City string `json:"city" db:"city"`

	// Timezone is an IANA zone name or free-form offset.
	Timezone string `json:"timezone" db:"timezone"`

	// CurrentJobTitle is the title the user currently holds.
	CurrentJobTitle string `json:"current_job_title" db:"current_job_title"`

	// YearsExperience is the total professional experience in years.
	YearsExperience int `json:"years_experience" db:"years_experience"`

	// Industries lists the sectors the user has worked in.
	Industries []string `json:"industries" db:"industries"`

	// WorkModalityPreferred is the preferred working arrangement, if any.
	WorkModalityPreferred WorkModality `json:"work_modality_preferred" db:"work_modality_preferred"`

	// SalaryMin is the lower bound of the expected salary.
	SalaryMin int64 `json:"salary_min" db:"salary_min"`

	// SalaryMax is the upper bound of the expected salary.
	SalaryMax int64 `json:"salary_max" db:"salary_max"`

	// SalaryCurrency is an ISO 4217 currency code.
	SalaryCurrency string `json:"salary_currency" db:"salary_currency"`

	// CreatedAt is the timestamp when the profile was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the profile.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
