package services

import (
	"context"
	"fmt"

	"github.com/jobseeker-app/apiserver/types"
)

const (
	defaultSearchLimit = 10
	maxSearchLimit     = 100
	maxListLimit       = 100
)

// JobRepository defines persistence operations for the job catalog.
type JobRepository interface {
	GetByID(ctx context.Context, id string) (types.Job, error)
	List(ctx context.Context, filter types.JobFilter, offset, limit int) ([]types.Job, int, error)
	Search(ctx context.Context, text string, limit int) ([]types.Job, error)
	Create(ctx context.Context, job types.Job) (types.Job, error)
	CountMock(ctx context.Context) (int, error)
}

// JobService encapsulates catalog use-cases.
type JobService struct {
	repo JobRepository
}

func NewJobService(repo JobRepository) *JobService {
	return &JobService{repo: repo}
}

func (s *JobService) List(ctx context.Context, filter types.JobFilter, offset, limit int) ([]types.Job, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.repo.List(ctx, filter, offset, limit)
}

func (s *JobService) Search(ctx context.Context, text string, limit int) ([]types.Job, error) {
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}
	return s.repo.Search(ctx, text, limit)
}

func (s *JobService) Get(ctx context.Context, id string) (types.Job, error) {
	return s.repo.GetByID(ctx, id)
}

// SeedMockJobs inserts the demo catalog unless mock jobs are already present.
// It returns the number of jobs inserted.
func (s *JobService) SeedMockJobs(ctx context.Context) (int, error) {
	existing, err := s.repo.CountMock(ctx)
	if err != nil {
		return 0, err
	}
	if existing > 0 {
		return 0, nil
	}

	inserted := 0
	for _, job := range MockJobs() {
		if _, err := s.repo.Create(ctx, job); err != nil {
			return inserted, fmt.Errorf("seed %q: %w", job.Title, err)
		}
		inserted++
	}
	return inserted, nil
}

// MockJobs is the demo catalog used in development.
func MockJobs() []types.Job {
	salary := func(v int64) *int64 { return &v }
	return []types.Job{
		{
			Title:          "Frontend Developer",
			CompanyName:    "TechCorp",
			Description:    "Buscamos desarrollador React con experiencia en TypeScript y Next.js",
			City:           "Madrid",
			Country:        "España",
			WorkModality:   types.WorkModalityRemote,
			SalaryMin:      salary(45000),
			SalaryMax:      salary(65000),
			SalaryCurrency: "EUR",
			EmploymentType: types.EmploymentFullTime,
			SeniorityLevel: types.SeniorityMid,
			IsActive:       true,
			IsMockData:     true,
		},
		{
			Title:          "Backend Developer",
			CompanyName:    "StartupXYZ",
			Description:    "Node.js developer para API RESTful con MongoDB",
			City:           "Barcelona",
			Country:        "España",
			WorkModality:   types.WorkModalityHybrid,
			SalaryMin:      salary(50000),
			SalaryMax:      salary(70000),
			SalaryCurrency: "EUR",
			EmploymentType: types.EmploymentFullTime,
			SeniorityLevel: types.SenioritySenior,
			IsActive:       true,
			IsMockData:     true,
		},
		{
			Title:          "Full Stack Developer",
			CompanyName:    "InnovaTech",
			Description:    "MERN Stack developer para aplicación de e-commerce",
			City:           "Remote",
			Country:        "Global",
			WorkModality:   types.WorkModalityRemote,
			SalaryMin:      salary(40000),
			SalaryMax:      salary(60000),
			SalaryCurrency: "USD",
			EmploymentType: types.EmploymentFullTime,
			SeniorityLevel: types.SeniorityMid,
			IsActive:       true,
			IsMockData:     true,
		},
	}
}
