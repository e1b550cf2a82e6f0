package types

// Dashboard is the summary view of an account's ledger.
type Dashboard struct {
	Summary         DashboardSummary `json:"summary"`
	StatusBreakdown map[Status]int   `json:"status_breakdown"`
	RecentActivity  RecentActivity   `json:"recent_activity"`
	TopCompanies    []CompanyCount   `json:"top_companies"`
}

// DashboardSummary carries the headline ledger figures.
type DashboardSummary struct {
	TotalApplications  int `json:"total_applications"`
	ActiveApplications int `json:"active_applications"`
	// ResponseRate is the share of applications past the saved state,
	// rounded to two decimals.
	ResponseRate float64 `json:"response_rate"`
	// AverageResponseTimeDays is the mean number of days between creating
	// an application and applying, over applications that have applied.
	AverageResponseTimeDays float64 `json:"average_response_time_days"`
}

// RecentActivity counts applications over trailing windows.
type RecentActivity struct {
	ApplicationsLast7Days  int `json:"applications_last_7_days"`
	ApplicationsLast30Days int `json:"applications_last_30_days"`
	UpcomingInterviews     int `json:"upcoming_interviews"`
}

// CompanyCount is the number of applications sent to one company.
type CompanyCount struct {
	CompanyName  string `json:"company_name"`
	Applications int    `json:"applications"`
}

// ApplicationAnalytics is the detailed breakdown of an account's ledger.
type ApplicationAnalytics struct {
	ByWorkModality []ModalityStat  `json:"by_work_modality"`
	BySeniority    []SeniorityStat `json:"by_seniority"`
	ByMonth        []MonthStat     `json:"by_month"`
	SuccessRate    SuccessRate     `json:"success_rate"`
}

// ModalityStat groups applications by the job's work modality.
type ModalityStat struct {
	WorkModality WorkModality `json:"work_modality"`
	Count        int          `json:"count"`
	// AvgSalary averages the jobs' salary_min; nil when no job has one.
	AvgSalary *float64 `json:"avg_salary"`
}

// SeniorityStat groups applications by the job's seniority level.
type SeniorityStat struct {
	SeniorityLevel SeniorityLevel `json:"seniority_level"`
	Count          int            `json:"count"`
}

// MonthStat counts applications created in one calendar month.
type MonthStat struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Count int `json:"count"`
}

// SuccessRate counts applications that reached interview or offer.
type SuccessRate struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
}
