package services

import (
	"context"
	"errors"
	"testing"

	"github.com/jobseeker-app/apiserver/internal/docgen"
	"github.com/jobseeker-app/apiserver/internal/mq"
	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingSetDocument struct {
	ApplicationRepository
}

func (failingSetDocument) SetDocument(context.Context, string, string, types.DocumentKind, string) error {
	return errors.New("write failed")
}

func newDocumentFixture(t *testing.T) (*ledgerFixture, *DocumentService) {
	t.Helper()
	f := newLedgerFixture(t)
	gen, err := docgen.New()
	require.NoError(t, err)
	_, err = NewProfileService(f.db.Profiles()).Create(context.Background(), "user-a", types.Profile{
		FullName:   "Ana García",
		Industries: []string{"software"},
	})
	require.NoError(t, err)
	return f, NewDocumentService(f.db.Jobs(), f.db.Profiles(), f.db.Applications(), gen, f.publisher)
}

func TestGenerateWithoutApplicationPersistsNothing(t *testing.T) {
	f, svc := newDocumentFixture(t)

	doc, err := svc.Generate(context.Background(), "user-a", types.DocumentRequest{JobID: f.job.ID, Kind: types.DocumentCoverLetter})
	require.NoError(t, err)

	assert.Contains(t, doc.Content, "TechCorp")
	assert.Contains(t, doc.Content, "Ana García")
	assert.Equal(t, types.ToneProfessional, doc.Metadata.Tone)
	assert.Equal(t, "es", doc.Metadata.Language)
	assert.Empty(t, doc.ApplicationID)
	assert.Equal(t, 0, f.db.ApplicationCount())
	assert.Equal(t, []mq.EventType{mq.EventDocumentGenerated}, f.publisher.Types())
}

func TestGenerateWritesBackToTrackedApplication(t *testing.T) {
	f, svc := newDocumentFixture(t)
	ctx := context.Background()

	app, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	doc, err := svc.Generate(ctx, "user-a", types.DocumentRequest{JobID: f.job.ID, Kind: types.DocumentColdMessage, Tone: types.ToneCasual, Language: "en"})
	require.NoError(t, err)
	assert.Equal(t, app.ID, doc.ApplicationID)

	stored, err := f.service.Get(ctx, "user-a", app.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.Content, stored.ColdMessage)
	assert.Empty(t, stored.CoverLetter)
}

func TestGenerateWriteBackFailureKeepsResult(t *testing.T) {
	f, _ := newDocumentFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	gen, err := docgen.New()
	require.NoError(t, err)
	svc := NewDocumentService(f.db.Jobs(), f.db.Profiles(), failingSetDocument{f.db.Applications()}, gen, nil)

	doc, err := svc.Generate(ctx, "user-a", types.DocumentRequest{JobID: f.job.ID, Kind: types.DocumentCoverLetter})
	require.NoError(t, err)
	assert.NotEmpty(t, doc.Content)
	assert.Empty(t, doc.ApplicationID)
}

func TestGenerateMissingJobOrProfile(t *testing.T) {
	f, svc := newDocumentFixture(t)
	ctx := context.Background()

	_, err := svc.Generate(ctx, "user-a", types.DocumentRequest{JobID: "missing", Kind: types.DocumentCoverLetter})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "job", nf.Resource)

	_, err = svc.Generate(ctx, "user-without-profile", types.DocumentRequest{JobID: f.job.ID, Kind: types.DocumentCoverLetter})
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "profile", nf.Resource)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGenerateUnsupportedLanguage(t *testing.T) {
	f, svc := newDocumentFixture(t)

	_, err := svc.Generate(context.Background(), "user-a", types.DocumentRequest{JobID: f.job.ID, Kind: types.DocumentCoverLetter, Language: "de"})
	var verr ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "language", verr[0].Field)
}
