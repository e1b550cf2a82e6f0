package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/internal/testutil"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(db *testutil.DB) *UserService {
	return NewUserService(db.Users()).WithPasswordCost(bcrypt.MinCost)
}

func TestRegisterNormalizesEmailAndHashes(t *testing.T) {
	svc := newUserService(testutil.NewDB())

	user, err := svc.Register(context.Background(), "  Ana@Example.COM ", "s3cret!")
	require.NoError(t, err)

	assert.Equal(t, "ana@example.com", user.Email)
	assert.Equal(t, types.AuthProviderLocal, user.AuthProvider)
	assert.NotEqual(t, "s3cret!", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret!")))
}

func TestDefaultPasswordCost(t *testing.T) {
	assert.Equal(t, 12, NewUserService(testutil.NewDB().Users()).cost)
}

func TestRegisterDuplicateEmailConflicts(t *testing.T) {
	svc := newUserService(testutil.NewDB())
	ctx := context.Background()

	_, err := svc.Register(ctx, "ana@example.com", "s3cret!")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ANA@example.com", "other-password")
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestRegisterRejectsPasswordOverBcryptLimit(t *testing.T) {
	db := testutil.NewDB()
	service := newUserService(db)

	_, err := service.Register(context.Background(), "ana@example.com", strings.Repeat("ñ", 40))
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "password", verrs[0].Field)

	_, err = db.Users().GetByEmail(context.Background(), "ana@example.com")
	assert.ErrorIs(t, err, store.ErrNotFound)

	_, err = service.Register(context.Background(), "ana@example.com", strings.Repeat("p", 72))
	assert.NoError(t, err)
}

func TestLoginDoesNotRevealWhichFactorFailed(t *testing.T) {
	svc := newUserService(testutil.NewDB())
	ctx := context.Background()

	_, err := svc.Register(ctx, "ana@example.com", "s3cret!")
	require.NoError(t, err)

	_, wrongPassword := svc.Login(ctx, "ana@example.com", "nope")
	_, unknownEmail := svc.Login(ctx, "bob@example.com", "s3cret!")

	assert.ErrorIs(t, wrongPassword, ErrInvalidCredentials)
	assert.ErrorIs(t, unknownEmail, ErrInvalidCredentials)
	assert.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestLoginStampsLastLogin(t *testing.T) {
	db := testutil.NewDB()
	svc := newUserService(db)
	at := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	svc.now = func() time.Time { return at }
	ctx := context.Background()

	registered, err := svc.Register(ctx, "ana@example.com", "s3cret!")
	require.NoError(t, err)
	assert.Nil(t, registered.LastLogin)

	user, err := svc.Login(ctx, " Ana@example.com", "s3cret!")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)
	assert.True(t, at.Equal(*user.LastLogin))

	stored, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)
	assert.True(t, at.Equal(*stored.LastLogin))
}

func TestProfileOnePerAccount(t *testing.T) {
	db := testutil.NewDB()
	svc := NewProfileService(db.Profiles())
	ctx := context.Background()

	created, err := svc.Create(ctx, "user-a", types.Profile{FullName: "Ana García"})
	require.NoError(t, err)
	assert.Equal(t, "USD", created.SalaryCurrency)
	assert.Equal(t, "user-a", created.UserID)

	_, err = svc.Create(ctx, "user-a", types.Profile{FullName: "Ana Again"})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, created.ID, conflict.ExistingID)

	updated, err := svc.Update(ctx, "user-a", created.ID, types.Profile{FullName: "Ana G.", SalaryCurrency: "EUR"})
	require.NoError(t, err)
	assert.Equal(t, "Ana G.", updated.FullName)
	assert.Equal(t, "EUR", updated.SalaryCurrency)

	_, err = svc.Update(ctx, "user-b", created.ID, types.Profile{FullName: "Mallory"})
	assert.ErrorIs(t, err, store.ErrNotFound)

	got, err := svc.GetByUserID(ctx, "user-a")
	require.NoError(t, err)
	assert.Equal(t, "Ana G.", got.FullName)
}

func TestSeedMockJobsIsIdempotent(t *testing.T) {
	db := testutil.NewDB()
	svc := NewJobService(db.Jobs())
	ctx := context.Background()

	inserted, err := svc.SeedMockJobs(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, inserted)

	inserted, err = svc.SeedMockJobs(ctx)
	require.NoError(t, err)
	assert.Zero(t, inserted)

	jobs, total, err := svc.List(ctx, types.JobFilter{WorkModalities: []types.WorkModality{types.WorkModalityRemote}}, 0, 500)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	assert.Len(t, jobs, 2)

	found, err := svc.Search(ctx, "typescript", 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "TechCorp", found[0].CompanyName)
}
