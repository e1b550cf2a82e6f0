package types

import "time"

// WorkModality describes where a job is performed.
type WorkModality string

const (
	WorkModalityRemote WorkModality = "remote"
	WorkModalityOnsite WorkModality = "onsite"
	WorkModalityHybrid WorkModality = "hybrid"
)

// EmploymentType describes the contract shape of a job.
type EmploymentType string

const (
	EmploymentFullTime EmploymentType = "full_time"
	EmploymentPartTime EmploymentType = "part_time"
	EmploymentContract EmploymentType = "contract"
)

// SeniorityLevel describes the experience a job targets.
type SeniorityLevel string

const (
	SeniorityJunior SeniorityLevel = "junior"
	SeniorityMid    SeniorityLevel = "mid"
	SenioritySenior SeniorityLevel = "senior"
)

// Job represents a position published in the catalog.
// Jobs are read-only through the API; they are loaded by the seed command
// or an external ingestion process.
type Job struct {
	// ID is the unique identifier of the job.
	ID string `json:"job_id" db:"job_id"`

	// Title is the advertised position name.
	Title string `json:"job_title" db:"job_title"`

	// CompanyName is the hiring organization.
	CompanyName string `json:"company_name" db:"company_name"`

	// Description is the full job posting text.
	Description string `json:"job_description" db:"job_description"`

	// URL links to the original posting.
	URL string `json:"job_url" db:"job_url"`

	// Country is where the job is located.
	Country string `json:"country" db:"country"`

	// City is where the job is located.
	City string `json:"city" db:"city"`

	// Timezone is the working timezone expected by the employer.
	Timezone string `json:"timezone" db:"timezone"`

	// WorkModality is remote, onsite, or hybrid.
	WorkModality WorkModality `json:"work_modality" db:"work_modality"`

	// SalaryMin is the lower bound of the advertised range.
	SalaryMin *int64 `json:"salary_min" db:"salary_min"`

	// SalaryMax is the upper bound of the advertised range.
	SalaryMax *int64 `json:"salary_max" db:"salary_max"`

	// SalaryCurrency is an ISO 4217 currency code.
	SalaryCurrency string `json:"salary_currency" db:"salary_currency"`

	// EmploymentType is full_time, part_time, or contract.
	EmploymentType EmploymentType `json:"employment_type" db:"employment_type"`

	// SeniorityLevel is junior, mid, or senior.
	SeniorityLevel SeniorityLevel `json:"seniority_level" db:"seniority_level"`

	// IsActive reports whether the job is still open.
	IsActive bool `json:"is_active" db:"is_active"`

	// IsMockData marks rows inserted by the seed command.
	IsMockData bool `json:"is_mock_data" db:"is_mock_data"`

	// PostedDate is when the employer published the job.
	PostedDate time.Time `json:"posted_date" db:"posted_date"`

	// CreatedAt is the timestamp when the job was stored.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the job.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// JobFilter narrows catalog listings. Zero values disable a filter.
type JobFilter struct {
	WorkModalities []WorkModality   `json:"work_modality,omitempty"`
	Seniorities    []SeniorityLevel `json:"seniority_level,omitempty"`
	SalaryMin      *int64           `json:"salary_min,omitempty"`
	SalaryMax      *int64           `json:"salary_max,omitempty"`
	Country        string           `json:"country,omitempty"`
	City           string           `json:"city,omitempty"`
	Search         string           `json:"search,omitempty"`
}

// Valid reports whether m is a known work modality.
func (m WorkModality) Valid() bool {
	switch m {
	case WorkModalityRemote, WorkModalityOnsite, WorkModalityHybrid:
		return true
	}
	return false
}

// Valid reports whether l is a known seniority level.
func (l SeniorityLevel) Valid() bool {
	switch l {
	case SeniorityJunior, SeniorityMid, SenioritySenior:
		return true
	}
	return false
}
