// Package testutil provides in-memory repositories and fakes that mirror the
// Postgres-backed store for service and handler tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/types"
)

// DB is a process-local stand-in for the relational store. Repositories
// built from the same DB share state.
type DB struct {
	mu          sync.Mutex
	now         func() time.Time
	users       map[string]types.User
	profiles    map[string]types.Profile
	jobs        map[string]types.Job
	apps        map[string]types.Application
	attachments map[string][]types.Attachment
}

// NewDB returns an empty store using the wall clock.
func NewDB() *DB {
	return &DB{
		now:         time.Now,
		users:       make(map[string]types.User),
		profiles:    make(map[string]types.Profile),
		jobs:        make(map[string]types.Job),
		apps:        make(map[string]types.Application),
		attachments: make(map[string][]types.Attachment),
	}
}

// SetClock makes created and updated timestamps come from now.
func (db *DB) SetClock(now func() time.Time) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.now = now
}

func (db *DB) Users() *UserRepository               { return &UserRepository{db: db} }
func (db *DB) Profiles() *ProfileRepository         { return &ProfileRepository{db: db} }
func (db *DB) Jobs() *JobRepository                 { return &JobRepository{db: db} }
func (db *DB) Applications() *ApplicationRepository { return &ApplicationRepository{db: db} }
func (db *DB) Attachments() *AttachmentRepository   { return &AttachmentRepository{db: db} }
func (db *DB) Analytics() *AnalyticsRepository      { return &AnalyticsRepository{db: db} }

// PutJob stores job as is, assigning an ID when empty.
func (db *DB) PutJob(job types.Job) types.Job {
	db.mu.Lock()
	defer db.mu.Unlock()
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.PostedDate.IsZero() {
		job.PostedDate = db.now().UTC()
	}
	db.jobs[job.ID] = job
	return job
}

// DeleteUser removes an account, as an operator would.
func (db *DB) DeleteUser(id string) {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.users, id)
}

// ApplicationCount returns the number of stored applications.
func (db *DB) ApplicationCount() int {
	db.mu.Lock()
	defer db.mu.Unlock()
	return len(db.apps)
}

// UserRepository implements the account store.
type UserRepository struct{ db *DB }

func (r *UserRepository) GetByID(ctx context.Context, id string) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.users[id]
	if !ok {
		return types.User{}, store.ErrNotFound
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, user := range r.db.users {
		if user.Email == email {
			return user, nil
		}
	}
	return types.User{}, store.ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, user types.User) (types.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.users {
		if existing.Email == user.Email {
			return types.User{}, store.ErrConflict
		}
	}
	now := r.db.now().UTC()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now
	if user.AuthProvider == "" {
		user.AuthProvider = types.AuthProviderLocal
	}
	r.db.users[user.ID] = user
	return user, nil
}

func (r *UserRepository) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	user, ok := r.db.users[id]
	if !ok {
		return store.ErrNotFound
	}
	user.LastLogin = &at
	user.UpdatedAt = at
	r.db.users[id] = user
	return nil
}

// ProfileRepository implements the profile store.
type ProfileRepository struct{ db *DB }

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (types.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, profile := range r.db.profiles {
		if profile.UserID == userID {
			return profile, nil
		}
	}
	return types.Profile{}, store.ErrNotFound
}

func (r *ProfileRepository) Create(ctx context.Context, profile types.Profile) (types.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, existing := range r.db.profiles {
		if existing.UserID == profile.UserID {
			return types.Profile{}, store.ErrConflict
		}
	}
	now := r.db.now().UTC()
	profile.ID = uuid.NewString()
	profile.CreatedAt, profile.UpdatedAt = now, now
	if profile.Industries == nil {
		profile.Industries = []string{}
	}
	r.db.profiles[profile.ID] = profile
	return profile, nil
}

func (r *ProfileRepository) Update(ctx context.Context, profile types.Profile) (types.Profile, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.profiles[profile.ID]
	if !ok || existing.UserID != profile.UserID {
		return types.Profile{}, store.ErrNotFound
	}
	profile.CreatedAt = existing.CreatedAt
	profile.UpdatedAt = r.db.now().UTC()
	if profile.Industries == nil {
		profile.Industries = []string{}
	}
	r.db.profiles[profile.ID] = profile
	return profile, nil
}

// JobRepository implements the catalog store.
type JobRepository struct{ db *DB }

func (r *JobRepository) GetByID(ctx context.Context, id string) (types.Job, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	job, ok := r.db.jobs[id]
	if !ok {
		return types.Job{}, store.ErrNotFound
	}
	return job, nil
}

func (r *JobRepository) List(ctx context.Context, filter types.JobFilter, offset, limit int) ([]types.Job, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	matches := make([]types.Job, 0)
	for _, job := range r.db.jobs {
		if job.IsActive && jobMatches(job, filter) {
			matches = append(matches, job)
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].PostedDate.Equal(matches[j].PostedDate) {
			return matches[i].PostedDate.After(matches[j].PostedDate)
		}
		return matches[i].ID < matches[j].ID
	})
	return page(matches, offset, limit), len(matches), nil
}

func (r *JobRepository) Search(ctx context.Context, text string, limit int) ([]types.Job, error) {
	jobs, _, err := r.List(ctx, types.JobFilter{Search: text}, 0, limit)
	return jobs, err
}

func (r *JobRepository) Create(ctx context.Context, job types.Job) (types.Job, error) {
	if job.SalaryCurrency == "" {
		job.SalaryCurrency = "USD"
	}
	return r.db.PutJob(job), nil
}

func (r *JobRepository) CountMock(ctx context.Context) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	count := 0
	for _, job := range r.db.jobs {
		if job.IsMockData {
			count++
		}
	}
	return count, nil
}

func jobMatches(job types.Job, filter types.JobFilter) bool {
	if len(filter.WorkModalities) > 0 && !contains(filter.WorkModalities, job.WorkModality) {
		return false
	}
	if len(filter.Seniorities) > 0 && !contains(filter.Seniorities, job.SeniorityLevel) {
		return false
	}
	if filter.SalaryMin != nil && (job.SalaryMin == nil || *job.SalaryMin < *filter.SalaryMin) {
		return false
	}
	if filter.SalaryMax != nil && (job.SalaryMax == nil || *job.SalaryMax > *filter.SalaryMax) {
		return false
	}
	if filter.Country != "" && !containsFold(job.Country, filter.Country) {
		return false
	}
	if filter.City != "" && !containsFold(job.City, filter.City) {
		return false
	}
	if filter.Search != "" {
		text := job.Title + " " + job.CompanyName + " " + job.Description
		for _, word := range strings.Fields(filter.Search) {
			if !containsFold(text, word) {
				return false
			}
		}
	}
	return true
}

// ApplicationRepository implements the ledger store.
type ApplicationRepository struct{ db *DB }

func (r *ApplicationRepository) Create(ctx context.Context, app types.Application) (types.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.jobs[app.JobID]; !ok {
		return types.Application{}, store.ErrNotFound
	}
	for _, existing := range r.db.apps {
		if existing.UserID == app.UserID && existing.JobID == app.JobID {
			return types.Application{}, store.ErrConflict
		}
	}
	now := r.db.now().UTC()
	app.ID = uuid.NewString()
	app.CreatedAt, app.UpdatedAt = now, now
	if app.Status == "" {
		app.Status = types.StatusSaved
	}
	app.Job = nil
	app.Attachments = types.AttachmentSet{}
	r.db.apps[app.ID] = app
	return app, nil
}

func (r *ApplicationRepository) GetByID(ctx context.Context, userID, id string) (types.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	app, ok := r.db.apps[id]
	if !ok || app.UserID != userID {
		return types.Application{}, store.ErrNotFound
	}
	return r.db.hydrate(app), nil
}

func (r *ApplicationRepository) FindByUserAndJob(ctx context.Context, userID, jobID string) (types.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, app := range r.db.apps {
		if app.UserID == userID && app.JobID == jobID {
			return app, nil
		}
	}
	return types.Application{}, store.ErrNotFound
}

func (r *ApplicationRepository) List(ctx context.Context, userID string, filter types.ApplicationFilter, offset, limit int) ([]types.Application, int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	matches := make([]types.Application, 0)
	for _, app := range r.db.apps {
		if app.UserID != userID {
			continue
		}
		if len(filter.Statuses) > 0 && !contains(filter.Statuses, app.Status) {
			continue
		}
		matches = append(matches, r.db.hydrate(app))
	}
	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].UpdatedAt.Equal(matches[j].UpdatedAt) {
			return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return page(matches, offset, limit), len(matches), nil
}

func (r *ApplicationRepository) Update(ctx context.Context, app types.Application) (types.Application, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	existing, ok := r.db.apps[app.ID]
	if !ok || existing.UserID != app.UserID {
		return types.Application{}, store.ErrNotFound
	}
	if _, ok := r.db.jobs[app.JobID]; !ok {
		return types.Application{}, store.ErrNotFound
	}
	for _, other := range r.db.apps {
		if other.ID != app.ID && other.UserID == app.UserID && other.JobID == app.JobID {
			return types.Application{}, store.ErrConflict
		}
	}
	existing.JobID = app.JobID
	existing.Status = app.Status
	existing.AppliedDate = app.AppliedDate
	existing.PersonalNotes = app.PersonalNotes
	existing.UpdatedAt = r.db.now().UTC()
	r.db.apps[app.ID] = existing

	app.UpdatedAt = existing.UpdatedAt
	return app, nil
}

func (r *ApplicationRepository) SetDocument(ctx context.Context, userID, id string, kind types.DocumentKind, content string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	app, ok := r.db.apps[id]
	if !ok || app.UserID != userID {
		return store.ErrNotFound
	}
	switch kind {
	case types.DocumentCoverLetter:
		app.CoverLetter = content
	case types.DocumentColdMessage:
		app.ColdMessage = content
	default:
		return fmt.Errorf("unknown document kind %q", kind)
	}
	app.UpdatedAt = r.db.now().UTC()
	r.db.apps[id] = app
	return nil
}

func (r *ApplicationRepository) Delete(ctx context.Context, userID, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	app, ok := r.db.apps[id]
	if !ok || app.UserID != userID {
		return store.ErrNotFound
	}
	delete(r.db.apps, id)
	delete(r.db.attachments, id)
	return nil
}

// hydrate attaches the job and attachment metadata. Callers hold db.mu.
func (db *DB) hydrate(app types.Application) types.Application {
	if job, ok := db.jobs[app.JobID]; ok {
		app.Job = &job
	}
	app.Attachments = types.NewAttachmentSet(db.attachments[app.ID]...)
	return app
}

// AttachmentRepository implements the attachment metadata store.
type AttachmentRepository struct{ db *DB }

func (r *AttachmentRepository) Add(ctx context.Context, attachment types.Attachment) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.apps[attachment.ApplicationID]; !ok {
		return store.ErrNotFound
	}
	r.db.attachments[attachment.ApplicationID] = append(r.db.attachments[attachment.ApplicationID], attachment)
	return nil
}

func (r *AttachmentRepository) Remove(ctx context.Context, applicationID, attachmentID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	items := r.db.attachments[applicationID]
	for i, item := range items {
		if item.ID == attachmentID {
			r.db.attachments[applicationID] = append(items[:i:i], items[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (r *AttachmentRepository) List(ctx context.Context, applicationID string) ([]types.Attachment, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]types.Attachment(nil), r.db.attachments[applicationID]...), nil
}

// AnalyticsRepository computes the ledger aggregates over the maps.
type AnalyticsRepository struct{ db *DB }

func (r *AnalyticsRepository) owned(userID string) []types.Application {
	apps := make([]types.Application, 0)
	for _, app := range r.db.apps {
		if app.UserID == userID {
			apps = append(apps, app)
		}
	}
	return apps
}

func (r *AnalyticsRepository) StatusCounts(ctx context.Context, userID string) (map[types.Status]int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := make(map[types.Status]int)
	for _, app := range r.owned(userID) {
		counts[app.Status]++
	}
	return counts, nil
}

func (r *AnalyticsRepository) CountCreatedSince(ctx context.Context, userID string, since time.Time) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	count := 0
	for _, app := range r.owned(userID) {
		if !app.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (r *AnalyticsRepository) AverageDaysToApply(ctx context.Context, userID string) (float64, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var (
		sum float64
		n   int
	)
	for _, app := range r.owned(userID) {
		if app.AppliedDate == nil {
			continue
		}
		days := app.AppliedDate.Sub(app.CreatedAt).Hours() / 24
		if days < 0 {
			days = 0
		}
		sum += days
		n++
	}
	if n == 0 {
		return 0, nil
	}
	return sum / float64(n), nil
}

func (r *AnalyticsRepository) TopCompanies(ctx context.Context, userID string, limit int) ([]types.CompanyCount, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := make(map[string]int)
	for _, app := range r.owned(userID) {
		if job, ok := r.db.jobs[app.JobID]; ok {
			counts[job.CompanyName]++
		}
	}
	companies := make([]types.CompanyCount, 0, len(counts))
	for name, n := range counts {
		companies = append(companies, types.CompanyCount{CompanyName: name, Applications: n})
	}
	sort.Slice(companies, func(i, j int) bool {
		if companies[i].Applications != companies[j].Applications {
			return companies[i].Applications > companies[j].Applications
		}
		return companies[i].CompanyName < companies[j].CompanyName
	})
	if len(companies) > limit {
		companies = companies[:limit]
	}
	return companies, nil
}

func (r *AnalyticsRepository) ByWorkModality(ctx context.Context, userID string) ([]types.ModalityStat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	type acc struct {
		count, withSalary int
		salarySum         float64
	}
	groups := make(map[types.WorkModality]*acc)
	for _, app := range r.owned(userID) {
		job, ok := r.db.jobs[app.JobID]
		if !ok {
			continue
		}
		g := groups[job.WorkModality]
		if g == nil {
			g = &acc{}
			groups[job.WorkModality] = g
		}
		g.count++
		if job.SalaryMin != nil {
			g.withSalary++
			g.salarySum += float64(*job.SalaryMin)
		}
	}
	stats := make([]types.ModalityStat, 0, len(groups))
	for modality, g := range groups {
		stat := types.ModalityStat{WorkModality: modality, Count: g.count}
		if g.withSalary > 0 {
			avg := g.salarySum / float64(g.withSalary)
			stat.AvgSalary = &avg
		}
		stats = append(stats, stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].WorkModality < stats[j].WorkModality })
	return stats, nil
}

func (r *AnalyticsRepository) BySeniority(ctx context.Context, userID string) ([]types.SeniorityStat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := make(map[types.SeniorityLevel]int)
	for _, app := range r.owned(userID) {
		if job, ok := r.db.jobs[app.JobID]; ok {
			counts[job.SeniorityLevel]++
		}
	}
	stats := make([]types.SeniorityStat, 0, len(counts))
	for level, n := range counts {
		stats = append(stats, types.SeniorityStat{SeniorityLevel: level, Count: n})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].SeniorityLevel < stats[j].SeniorityLevel })
	return stats, nil
}

func (r *AnalyticsRepository) ByMonth(ctx context.Context, userID string) ([]types.MonthStat, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	counts := make(map[[2]int]int)
	for _, app := range r.owned(userID) {
		created := app.CreatedAt.UTC()
		counts[[2]int{created.Year(), int(created.Month())}]++
	}
	stats := make([]types.MonthStat, 0, len(counts))
	for key, n := range counts {
		stats = append(stats, types.MonthStat{Year: key[0], Month: key[1], Count: n})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Year != stats[j].Year {
			return stats[i].Year < stats[j].Year
		}
		return stats[i].Month < stats[j].Month
	})
	return stats, nil
}

func page[T any](items []T, offset, limit int) []T {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(items) {
		return []T{}
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

func contains[T comparable](values []T, v T) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}
