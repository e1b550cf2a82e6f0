package services

import (
	"context"
	"math"
	"time"

	"github.com/jobseeker-app/apiserver/types"
)

const topCompaniesLimit = 5

// AnalyticsRepository exposes the ledger aggregates, all scoped to one account.
type AnalyticsRepository interface {
	StatusCounts(ctx context.Context, userID string) (map[types.Status]int, error)
	CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error)
	AverageDaysToApply(ctx context.Context, userID string) (float64, error)
	TopCompanies(ctx context.Context, userID string, limit int) ([]types.CompanyCount, error)
	ByWorkModality(ctx context.Context, userID string) ([]types.ModalityStat, error)
	BySeniority(ctx context.Context, userID string) ([]types.SeniorityStat, error)
	ByMonth(ctx context.Context, userID string) ([]types.MonthStat, error)
}

// AnalyticsService derives dashboard figures from the ledger on every call.
type AnalyticsService struct {
	repo AnalyticsRepository
	now  func() time.Time
}

func NewAnalyticsService(repo AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo, now: time.Now}
}

// WithClock replaces the time source for the recency windows.
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// Dashboard builds the summary view for userID.
func (s *AnalyticsService) Dashboard(ctx context.Context, userID string) (types.Dashboard, error) {
	breakdown, err := s.statusBreakdown(ctx, userID)
	if err != nil {
		return types.Dashboard{}, err
	}

	total := 0
	for _, count := range breakdown {
		total += count
	}
	responded := breakdown[types.StatusApplied] + breakdown[types.StatusInterview] + breakdown[types.StatusOffer]

	avgDays, err := s.repo.AverageDaysToApply(ctx, userID)
	if err != nil {
		return types.Dashboard{}, err
	}

	now := s.now().UTC()
	last7, err := s.repo.CountCreatedSince(ctx, userID, now.AddDate(0, 0, -7))
	if err != nil {
		return types.Dashboard{}, err
	}
	last30, err := s.repo.CountCreatedSince(ctx, userID, now.AddDate(0, 0, -30))
	if err != nil {
		return types.Dashboard{}, err
	}

	top, err := s.repo.TopCompanies(ctx, userID, topCompaniesLimit)
	if err != nil {
		return types.Dashboard{}, err
	}
	if top == nil {
		top = []types.CompanyCount{}
	}

	return types.Dashboard{
		Summary: types.DashboardSummary{
			TotalApplications:       total,
			ActiveApplications:      total - breakdown[types.StatusRejected],
			ResponseRate:            ratio(responded, total),
			AverageResponseTimeDays: round(avgDays, 1),
		},
		StatusBreakdown: breakdown,
		RecentActivity: types.RecentActivity{
			ApplicationsLast7Days:  last7,
			ApplicationsLast30Days: last30,
			UpcomingInterviews:     breakdown[types.StatusInterview],
		},
		TopCompanies: top,
	}, nil
}

// Applications builds the detailed breakdowns for userID.
func (s *AnalyticsService) Applications(ctx context.Context, userID string) (types.ApplicationAnalytics, error) {
	byModality, err := s.repo.ByWorkModality(ctx, userID)
	if err != nil {
		return types.ApplicationAnalytics{}, err
	}
	bySeniority, err := s.repo.BySeniority(ctx, userID)
	if err != nil {
		return types.ApplicationAnalytics{}, err
	}
	byMonth, err := s.repo.ByMonth(ctx, userID)
	if err != nil {
		return types.ApplicationAnalytics{}, err
	}
	breakdown, err := s.statusBreakdown(ctx, userID)
	if err != nil {
		return types.ApplicationAnalytics{}, err
	}

	success := types.SuccessRate{
		Successful: breakdown[types.StatusInterview] + breakdown[types.StatusOffer],
	}
	for _, count := range breakdown {
		success.Total += count
	}

	if byModality == nil {
		byModality = []types.ModalityStat{}
	}
	if bySeniority == nil {
		bySeniority = []types.SeniorityStat{}
	}
	if byMonth == nil {
		byMonth = []types.MonthStat{}
	}
	return types.ApplicationAnalytics{
		ByWorkModality: byModality,
		BySeniority:    bySeniority,
		ByMonth:        byMonth,
		SuccessRate:    success,
	}, nil
}

// statusBreakdown returns counts for every status, zero-filled.
func (s *AnalyticsService) statusBreakdown(ctx context.Context, userID string) (map[types.Status]int, error) {
	counts, err := s.repo.StatusCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	breakdown := make(map[types.Status]int, len(types.Statuses))
	for _, status := range types.Statuses {
		breakdown[status] = counts[status]
	}
	return breakdown, nil
}

func ratio(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return round(float64(part)/float64(total), 2)
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
