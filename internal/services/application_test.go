package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jobseeker-app/apiserver/internal/mq"
	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/internal/testutil"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ledgerFixture struct {
	db        *testutil.DB
	objects   *testutil.ObjectStore
	publisher *testutil.Publisher
	clock     *testutil.Clock
	service   *ApplicationService
	job       types.Job
	otherJob  types.Job
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()
	clock := testutil.NewClock(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	db := testutil.NewDB()
	db.SetClock(clock.Now)
	objects := testutil.NewObjectStore()
	publisher := &testutil.Publisher{}

	f := &ledgerFixture{
		db:        db,
		objects:   objects,
		publisher: publisher,
		clock:     clock,
		service:   NewApplicationService(db.Applications(), db.Jobs(), objects, publisher).WithClock(clock.Now),
		job: db.PutJob(types.Job{
			Title: "Frontend Developer", CompanyName: "TechCorp", IsActive: true,
			WorkModality: types.WorkModalityRemote, SeniorityLevel: types.SeniorityMid,
		}),
		otherJob: db.PutJob(types.Job{
			Title: "Backend Developer", CompanyName: "StartupXYZ", IsActive: true,
			WorkModality: types.WorkModalityHybrid, SeniorityLevel: types.SenioritySenior,
		}),
	}
	return f
}

func TestCreateDefaultsToSaved(t *testing.T) {
	f := newLedgerFixture(t)

	app, err := f.service.Create(context.Background(), "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	assert.NotEmpty(t, app.ID)
	assert.Equal(t, types.StatusSaved, app.Status)
	assert.Nil(t, app.AppliedDate)
	require.NotNil(t, app.Job)
	assert.Equal(t, "TechCorp", app.Job.CompanyName)
	assert.Equal(t, []mq.EventType{mq.EventApplicationCreated}, f.publisher.Types())
}

func TestCreateAppliedStampsNow(t *testing.T) {
	f := newLedgerFixture(t)

	app, err := f.service.Create(context.Background(), "user-a", CreateApplicationInput{JobID: f.job.ID, Status: types.StatusApplied})
	require.NoError(t, err)
	require.NotNil(t, app.AppliedDate)
	assert.True(t, f.clock.Now().Equal(*app.AppliedDate))

	explicit := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	app, err = f.service.Create(context.Background(), "user-a", CreateApplicationInput{JobID: f.otherJob.ID, Status: types.StatusApplied, AppliedDate: &explicit})
	require.NoError(t, err)
	assert.True(t, explicit.Equal(*app.AppliedDate))
}

func TestCreateTwiceConflictsWithExistingID(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	_, err = f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID, Status: types.StatusApplied})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.ExistingID)
	assert.Equal(t, f.job.ID, conflict.JobID)
	assert.ErrorIs(t, err, store.ErrConflict)
	assert.Equal(t, 1, f.db.ApplicationCount())

	// A different account may track the same job.
	_, err = f.service.Create(ctx, "user-b", CreateApplicationInput{JobID: f.job.ID})
	assert.NoError(t, err)
}

func TestCreateUnknownJob(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.service.Create(context.Background(), "user-a", CreateApplicationInput{JobID: "missing"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "job", nf.Resource)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateRejectsUnknownStatus(t *testing.T) {
	f := newLedgerFixture(t)

	_, err := f.service.Create(context.Background(), "user-a", CreateApplicationInput{JobID: f.job.ID, Status: "ghosted"})
	var verr ValidationErrors
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr[0].Field)
}

func TestTransitionToAppliedAlwaysOverwritesDate(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	old := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	app, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID, Status: types.StatusApplied, AppliedDate: &old})
	require.NoError(t, err)

	f.clock.Advance(48 * time.Hour)
	moved, err := f.service.TransitionStatus(ctx, "user-a", app.ID, types.StatusApplied)
	require.NoError(t, err)
	require.NotNil(t, moved.AppliedDate)
	assert.True(t, f.clock.Now().Equal(*moved.AppliedDate))
	assert.True(t, f.clock.Now().Equal(moved.UpdatedAt))
}

func TestTransitionAllowsAnyMove(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	app, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	for _, status := range []types.Status{types.StatusOffer, types.StatusSaved, types.StatusRejected, types.StatusInterview} {
		moved, err := f.service.TransitionStatus(ctx, "user-a", app.ID, status)
		require.NoError(t, err)
		assert.Equal(t, status, moved.Status)
	}

	events := f.publisher.Events()
	last := events[len(events)-1]
	assert.Equal(t, mq.EventApplicationStatusChanged, last.Type)
	assert.Equal(t, "rejected", last.PreviousStatus)
	assert.Equal(t, "interview", last.Status)
}

func TestTransitionValidatesStatus(t *testing.T) {
	f := newLedgerFixture(t)
	app, err := f.service.Create(context.Background(), "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	_, err = f.service.TransitionStatus(context.Background(), "user-a", app.ID, "archived")
	var verr ValidationErrors
	assert.ErrorAs(t, err, &verr)
}

func TestOtherAccountSeesNotFound(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	app, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	_, err = f.service.Get(ctx, "user-b", app.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.service.TransitionStatus(ctx, "user-b", app.ID, types.StatusOffer)
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = f.service.Update(ctx, "user-b", app.ID, UpdateApplicationInput{JobID: f.job.ID})
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, f.service.Delete(ctx, "user-b", app.ID), store.ErrNotFound)

	still, err := f.service.Get(ctx, "user-a", app.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSaved, still.Status)
}

func TestUpdateKeepsOmittedFields(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	app, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID, PersonalNotes: "referral from Ana"})
	require.NoError(t, err)

	interview := types.StatusInterview
	updated, err := f.service.Update(ctx, "user-a", app.ID, UpdateApplicationInput{JobID: f.job.ID, Status: &interview})
	require.NoError(t, err)
	assert.Equal(t, types.StatusInterview, updated.Status)
	assert.Equal(t, "referral from Ana", updated.PersonalNotes)

	notes := ""
	updated, err = f.service.Update(ctx, "user-a", app.ID, UpdateApplicationInput{JobID: f.otherJob.ID, PersonalNotes: &notes})
	require.NoError(t, err)
	assert.Equal(t, f.otherJob.ID, updated.JobID)
	assert.Equal(t, "StartupXYZ", updated.Job.CompanyName)
	assert.Empty(t, updated.PersonalNotes)
	assert.Equal(t, types.StatusInterview, updated.Status)
}

func TestUpdateOntoTrackedJobConflicts(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)
	second, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.otherJob.ID})
	require.NoError(t, err)

	_, err = f.service.Update(ctx, "user-a", second.ID, UpdateApplicationInput{JobID: f.job.ID})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.ExistingID)
}

func TestUpdateRequiresJob(t *testing.T) {
	f := newLedgerFixture(t)
	app, err := f.service.Create(context.Background(), "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	notes := "x"
	_, err = f.service.Update(context.Background(), "user-a", app.ID, UpdateApplicationInput{PersonalNotes: &notes})
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "job_id", verrs[0].Field)

	still, err := f.service.Get(context.Background(), "user-a", app.ID)
	require.NoError(t, err)
	assert.Empty(t, still.PersonalNotes)
}

func TestUpdateUnknownJob(t *testing.T) {
	f := newLedgerFixture(t)
	app, err := f.service.Create(context.Background(), "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	_, err = f.service.Update(context.Background(), "user-a", app.ID, UpdateApplicationInput{JobID: "nope"})
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "job", nf.Resource)
}

func TestDeleteRemovesPayloadsBestEffort(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	app, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	attachments := NewAttachmentService(f.db.Applications(), f.db.Attachments(), f.objects, 1024, []string{"txt"})
	_, err = attachments.Upload(ctx, "user-a", app.ID, uploadOf("notes.txt", "text/plain", "hello"))
	require.NoError(t, err)
	require.Equal(t, 1, f.objects.Keys())

	f.objects.DeleteErr = errors.New("bucket offline")
	require.NoError(t, f.service.Delete(ctx, "user-a", app.ID))
	assert.Equal(t, 0, f.db.ApplicationCount())

	f.objects.DeleteErr = nil
	_, err = f.service.Get(ctx, "user-a", app.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Equal(t, mq.EventApplicationDeleted, f.publisher.Types()[len(f.publisher.Types())-1])
}

func TestPublishFailureDoesNotFailWrite(t *testing.T) {
	f := newLedgerFixture(t)
	f.publisher.Err = errors.New("broker down")

	app, err := f.service.Create(context.Background(), "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)
	assert.NotEmpty(t, app.ID)
}

func TestListFiltersAndOrders(t *testing.T) {
	f := newLedgerFixture(t)
	ctx := context.Background()

	first, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)
	f.clock.Advance(time.Minute)
	second, err := f.service.Create(ctx, "user-a", CreateApplicationInput{JobID: f.otherJob.ID, Status: types.StatusApplied})
	require.NoError(t, err)
	_, err = f.service.Create(ctx, "user-b", CreateApplicationInput{JobID: f.job.ID})
	require.NoError(t, err)

	items, total, err := f.service.List(ctx, "user-a", types.ApplicationFilter{}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Equal(t, []string{second.ID, first.ID}, []string{items[0].ID, items[1].ID})
	assert.NotNil(t, items[0].Job)

	f.clock.Advance(time.Minute)
	_, err = f.service.TransitionStatus(ctx, "user-a", first.ID, types.StatusInterview)
	require.NoError(t, err)

	items, total, err = f.service.List(ctx, "user-a", types.ApplicationFilter{Statuses: []types.Status{types.StatusInterview, types.StatusOffer}}, 0, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, first.ID, items[0].ID)
}
