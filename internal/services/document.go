package services

import (
	"context"
	"errors"

	"github.com/jobseeker-app/apiserver/internal/docgen"
	"github.com/jobseeker-app/apiserver/internal/metrics"
	"github.com/jobseeker-app/apiserver/internal/mq"
	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/rs/zerolog/log"
)

const defaultLanguage = "es"

// Generator renders a document for a job and profile.
type Generator interface {
	Generate(job types.Job, profile types.Profile, req types.DocumentRequest) (types.GeneratedDocument, error)
}

// DocumentService produces cover letters and cold messages.
type DocumentService struct {
	jobs      JobRepository
	profiles  ProfileRepository
	apps      ApplicationRepository
	generator Generator
	publisher mq.Publisher
}

func NewDocumentService(jobs JobRepository, profiles ProfileRepository, apps ApplicationRepository, generator Generator, publisher mq.Publisher) *DocumentService {
	if publisher == nil {
		publisher = mq.NopPublisher{}
	}
	return &DocumentService{
		jobs:      jobs,
		profiles:  profiles,
		apps:      apps,
		generator: generator,
		publisher: publisher,
	}
}

// Generate renders the requested document. When the account already tracks
// the job, the text is also saved on that application; that step never
// changes the result and the returned ApplicationID is set only when it
// succeeded.
func (s *DocumentService) Generate(ctx context.Context, userID string, req types.DocumentRequest) (types.GeneratedDocument, error) {
	if req.Tone == "" {
		req.Tone = types.ToneProfessional
	}
	if req.Language == "" {
		req.Language = defaultLanguage
	}

	job, err := s.jobs.GetByID(ctx, req.JobID)
	if err != nil {
		return types.GeneratedDocument{}, notFound("job", err)
	}
	profile, err := s.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return types.GeneratedDocument{}, notFound("profile", err)
	}

	doc, err := s.generator.Generate(job, profile, req)
	if err != nil {
		switch {
		case errors.Is(err, docgen.ErrUnsupportedLanguage):
			return types.GeneratedDocument{}, NewValidationError("language", "is not supported")
		case errors.Is(err, docgen.ErrUnsupportedTone):
			return types.GeneratedDocument{}, NewValidationError("tone", "is not supported")
		case errors.Is(err, docgen.ErrUnsupportedKind):
			return types.GeneratedDocument{}, NewValidationError("type", "is not supported")
		}
		return types.GeneratedDocument{}, err
	}
	metrics.RecordDocumentGenerated(doc.Kind)

	doc.ApplicationID = s.writeBack(ctx, userID, req.JobID, doc)

	publishEvent(ctx, s.publisher, mq.Event{
		Type:          mq.EventDocumentGenerated,
		UserID:        userID,
		ApplicationID: doc.ApplicationID,
		JobID:         req.JobID,
		DocumentKind:  string(doc.Kind),
	})
	return doc, nil
}

// writeBack stores the text on the account's application for the job, if
// one exists. It runs before the response is written, but its outcome never
// changes what Generate returns.
func (s *DocumentService) writeBack(ctx context.Context, userID, jobID string, doc types.GeneratedDocument) string {
	app, err := s.apps.FindByUserAndJob(ctx, userID, jobID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			log.Error().Err(err).Str("job_id", jobID).Msg("failed to look up application for generated document")
		}
		return ""
	}
	if err := s.apps.SetDocument(ctx, userID, app.ID, doc.Kind, doc.Content); err != nil {
		log.Error().Err(err).Str("application_id", app.ID).Msg("failed to save generated document")
		return ""
	}
	return app.ID
}
