package services

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/jobseeker-app/apiserver/internal/metrics"
	"github.com/jobseeker-app/apiserver/internal/mq"
	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/rs/zerolog/log"
)

// ApplicationRepository defines persistence operations for the ledger.
type ApplicationRepository interface {
	Create(ctx context.Context, app types.Application) (types.Application, error)
	GetByID(ctx context.Context, userID, id string) (types.Application, error)
	FindByUserAndJob(ctx context.Context, userID, jobID string) (types.Application, error)
	List(ctx context.Context, userID string, filter types.ApplicationFilter, offset, limit int) ([]types.Application, int, error)
	Update(ctx context.Context, app types.Application) (types.Application, error)
	SetDocument(ctx context.Context, userID, id string, kind types.DocumentKind, content string) error
	Delete(ctx context.Context, userID, id string) error
}

// ObjectStore holds attachment payloads.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// CreateApplicationInput is a new ledger entry as submitted by its owner.
type CreateApplicationInput struct {
	JobID         string
	Status        types.Status
	PersonalNotes string
	AppliedDate   *time.Time
}

// UpdateApplicationInput is a full rewrite. Nil fields keep their stored
// value.
type UpdateApplicationInput struct {
	JobID         string
	Status        *types.Status
	PersonalNotes *string
	AppliedDate   *time.Time
}

// ApplicationService owns the application lifecycle.
type ApplicationService struct {
	apps      ApplicationRepository
	jobs      JobRepository
	objects   ObjectStore
	publisher mq.Publisher
	now       func() time.Time
}

func NewApplicationService(apps ApplicationRepository, jobs JobRepository, objects ObjectStore, publisher mq.Publisher) *ApplicationService {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &ApplicationService{
		apps:      apps,
		jobs:      jobs,
		objects:   objects,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithClock replaces the time source used for applied-date stamping.
func (s *ApplicationService) WithClock(now func() time.Time) *ApplicationService {
	s.now = now
	return s
}

func (s *ApplicationService) Get(ctx context.Context, userID, id string) (types.Application, error) {
	app, err := s.apps.GetByID(ctx, userID, id)
	return app, notFound("application", err)
}

func (s *ApplicationService) List(ctx context.Context, userID string, filter types.ApplicationFilter, offset, limit int) ([]types.Application, int, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return s.apps.List(ctx, userID, filter, offset, limit)
}

// Create adds a job to the account's ledger. Tracking the same job twice
// fails with a ConflictError naming the existing application.
func (s *ApplicationService) Create(ctx context.Context, userID string, in CreateApplicationInput) (types.Application, error) {
	status := in.Status
	if status == "" {
		status = types.StatusSaved
	}
	if !status.Valid() {
		return types.Application{}, invalidStatus()
	}

	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		return types.Application{}, notFound("job", err)
	}
	if err := s.ensureUntracked(ctx, userID, in.JobID); err != nil {
		return types.Application{}, err
	}

	app := types.Application{
		UserID:        userID,
		JobID:         in.JobID,
		Status:        status,
		PersonalNotes: in.PersonalNotes,
		AppliedDate:   in.AppliedDate,
	}
	if status == types.StatusApplied && app.AppliedDate == nil {
		app.AppliedDate = s.stamp()
	}

	created, err := s.apps.Create(ctx, app)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			// Lost a race with a concurrent create for the same job.
			return types.Application{}, s.conflictFor(ctx, userID, in.JobID)
		}
		return types.Application{}, err
	}
	created.Job = &job

	metrics.RecordApplicationCreated()
	s.publish(ctx, mq.Event{
		Type:          mq.EventApplicationCreated,
		UserID:        userID,
		ApplicationID: created.ID,
		JobID:         created.JobID,
		Status:        string(created.Status),
	})
	return created, nil
}

// TransitionStatus moves an application to status. Every transition is
// allowed; moving to applied always stamps the applied date with now.
func (s *ApplicationService) TransitionStatus(ctx context.Context, userID, id string, status types.Status) (types.Application, error) {
	if !status.Valid() {
		return types.Application{}, invalidStatus()
	}

	app, err := s.Get(ctx, userID, id)
	if err != nil {
		return types.Application{}, err
	}

	previous := app.Status
	app.Status = status
	if status == types.StatusApplied {
		app.AppliedDate = s.stamp()
	}

	updated, err := s.apps.Update(ctx, app)
	if err != nil {
		return types.Application{}, notFound("application", err)
	}
	app.UpdatedAt = updated.UpdatedAt

	metrics.RecordStatusTransition(status)
	s.publish(ctx, mq.Event{
		Type:           mq.EventApplicationStatusChanged,
		UserID:         userID,
		ApplicationID:  app.ID,
		JobID:          app.JobID,
		Status:         string(status),
		PreviousStatus: string(previous),
	})
	return app, nil
}

// Update rewrites an application. Moving it onto a job the account already
// tracks fails with a ConflictError.
func (s *ApplicationService) Update(ctx context.Context, userID, id string, in UpdateApplicationInput) (types.Application, error) {
	if in.Status != nil && !in.Status.Valid() {
		return types.Application{}, invalidStatus()
	}
	if strings.TrimSpace(in.JobID) == "" {
		return types.Application{}, NewValidationError("job_id", "is required")
	}

	app, err := s.Get(ctx, userID, id)
	if err != nil {
		return types.Application{}, err
	}

	if in.JobID != app.JobID {
		if _, err := s.jobs.GetByID(ctx, in.JobID); err != nil {
			return types.Application{}, notFound("job", err)
		}
		if err := s.ensureUntracked(ctx, userID, in.JobID); err != nil {
			return types.Application{}, err
		}
		app.JobID = in.JobID
	}

	previous := app.Status
	if in.Status != nil {
		app.Status = *in.Status
	}
	if in.PersonalNotes != nil {
		app.PersonalNotes = *in.PersonalNotes
	}
	if in.AppliedDate != nil {
		app.AppliedDate = in.AppliedDate
	}
	if app.Status == types.StatusApplied && app.AppliedDate == nil {
		app.AppliedDate = s.stamp()
	}

	if _, err := s.apps.Update(ctx, app); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.Application{}, s.conflictFor(ctx, userID, app.JobID)
		}
		return types.Application{}, notFound("application", err)
	}

	updated, err := s.Get(ctx, userID, id)
	if err != nil {
		return types.Application{}, err
	}

	if updated.Status != previous {
		metrics.RecordStatusTransition(updated.Status)
	}
	s.publish(ctx, mq.Event{
		Type:           mq.EventApplicationUpdated,
		UserID:         userID,
		ApplicationID:  updated.ID,
		JobID:          updated.JobID,
		Status:         string(updated.Status),
		PreviousStatus: string(previous),
	})
	return updated, nil
}

// Delete removes an application and its attachment metadata. Stored payloads
// are removed afterwards; failures there are logged only.
func (s *ApplicationService) Delete(ctx context.Context, userID, id string) error {
	app, err := s.Get(ctx, userID, id)
	if err != nil {
		return err
	}
	if err := s.apps.Delete(ctx, userID, id); err != nil {
		return notFound("application", err)
	}

	for _, attachment := range app.Attachments.Items() {
		s.removeObject(ctx, attachment.ObjectKey)
	}

	s.publish(ctx, mq.Event{
		Type:          mq.EventApplicationDeleted,
		UserID:        userID,
		ApplicationID: app.ID,
		JobID:         app.JobID,
		Status:        string(app.Status),
	})
	return nil
}

func (s *ApplicationService) ensureUntracked(ctx context.Context, userID, jobID string) error {
	existing, err := s.apps.FindByUserAndJob(ctx, userID, jobID)
	if err == nil {
		return &ConflictError{Message: "application already exists for this job", ExistingID: existing.ID, JobID: jobID}
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}

func (s *ApplicationService) conflictFor(ctx context.Context, userID, jobID string) error {
	conflict := &ConflictError{Message: "application already exists for this job", JobID: jobID}
	if existing, err := s.apps.FindByUserAndJob(ctx, userID, jobID); err == nil {
		conflict.ExistingID = existing.ID
	}
	return conflict
}

func (s *ApplicationService) stamp() *time.Time {
	now := s.now().UTC()
	return &now
}

func (s *ApplicationService) removeObject(ctx context.Context, key string) {
	if s.objects == nil || key == "" {
		return
	}
	if err := s.objects.Delete(ctx, key); err != nil {
		log.Error().Err(err).Str("object_key", key).Msg("failed to remove attachment payload")
	}
}

func (s *ApplicationService) publish(ctx context.Context, event mq.Event) {
	publishEvent(ctx, s.publisher, event)
}

func publishEvent(ctx context.Context, publisher mq.Publisher, event mq.Event) {
	if err := publisher.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("event_type", string(event.Type)).Msg("failed to publish event")
	}
}

func invalidStatus() ValidationErrors {
	names := make([]string, len(types.Statuses))
	for i, status := range types.Statuses {
		names[i] = string(status)
	}
	return NewValidationError("status", "must be one of: "+strings.Join(names, ", "))
}
