package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobseeker-app/apiserver/internal/docgen"
	"github.com/jobseeker-app/apiserver/internal/services"
	"github.com/jobseeker-app/apiserver/internal/testutil"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const (
	testSecret    = "test-secret"
	testUploadCap = 64
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type apiFixture struct {
	t       *testing.T
	db      *testutil.DB
	objects *testutil.ObjectStore
	router  http.Handler
	job     types.Job
}

type envelope struct {
	Success   bool                  `json:"success"`
	Data      json.RawMessage       `json:"data"`
	Message   string                `json:"message"`
	Code      int                   `json:"code"`
	Errors    []services.FieldError `json:"errors"`
	Meta      map[string]any        `json:"meta"`
	Timestamp time.Time             `json:"timestamp"`
}

func newAPIFixture(t *testing.T, dbPing pingFunc) *apiFixture {
	t.Helper()
	db := testutil.NewDB()
	objects := testutil.NewObjectStore()
	gen, err := docgen.New()
	require.NoError(t, err)

	userService := services.NewUserService(db.Users()).WithPasswordCost(bcrypt.MinCost)
	profileService := services.NewProfileService(db.Profiles())
	applicationService := services.NewApplicationService(db.Applications(), db.Jobs(), objects, nil)

	set := Set{
		Auth:         NewAuthHandler(userService, profileService, testSecret, time.Hour),
		Jobs:         NewJobHandler(services.NewJobService(db.Jobs())),
		Applications: NewApplicationHandler(applicationService),
		Attachments: NewAttachmentHandler(services.NewAttachmentService(
			db.Applications(), db.Attachments(), objects, testUploadCap, []string{"pdf", "txt"},
		)),
		Profiles:  NewProfileHandler(profileService),
		Analytics: NewAnalyticsHandler(services.NewAnalyticsService(db.Analytics())),
		Documents: NewDocumentHandler(services.NewDocumentService(db.Jobs(), db.Profiles(), db.Applications(), gen, nil)),
		Health:    NewHealthHandler(dbPing, nil, "memory", "", "test"),
	}
	router := chi.NewRouter()
	router.NotFound(NotFound)
	router.Route("/api/v1", func(r chi.Router) {
		Mount(r, set)
	})

	return &apiFixture{
		t:       t,
		db:      db,
		objects: objects,
		router:  router,
		job: db.PutJob(types.Job{
			Title: "Frontend Developer", CompanyName: "TechCorp", IsActive: true,
			WorkModality: types.WorkModalityRemote, SeniorityLevel: types.SeniorityMid,
			City: "Madrid", Country: "Spain", PostedDate: time.Now(),
		}),
	}
}

func (f *apiFixture) do(method, path, token string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(f.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, "/api/v1"+path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *apiFixture) upload(path, token, filename string, content []byte) *httptest.ResponseRecorder {
	f.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(formFieldFile, filename)
	require.NoError(f.t, err)
	_, err = part.Write(content)
	require.NoError(f.t, err)
	require.NoError(f.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1"+path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

// register creates an account and returns its token and id.
func (f *apiFixture) register(email string) (string, string) {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/auth/register", "", map[string]string{"email": email, "password": "s3cret!"})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp AuthResponse
	decodeData(f.t, rec, &resp)
	require.NotEmpty(f.t, resp.Token)
	return resp.Token, resp.User.ID
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder, dst any) envelope {
	t.Helper()
	env := decodeEnvelope(t, rec)
	require.NoError(t, json.Unmarshal(env.Data, dst))
	return env
}

func TestEnvelopeShape(t *testing.T) {
	f := newAPIFixture(t, nil)

	rec := f.do(http.MethodGet, "/jobs?work_modality=remote", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var jobs []types.Job
	env := decodeData(t, rec, &jobs)
	assert.True(t, env.Success)
	assert.False(t, env.Timestamp.IsZero())
	require.Len(t, jobs, 1)
	assert.Equal(t, f.job.ID, jobs[0].ID)

	pagination, ok := env.Meta["pagination"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 1, pagination["page"])
	assert.EqualValues(t, 20, pagination["limit"])
	assert.EqualValues(t, 1, pagination["total"])
	assert.EqualValues(t, 1, pagination["total_pages"])
	assert.Equal(t, false, pagination["has_next"])
	assert.Equal(t, false, pagination["has_prev"])
	assert.Contains(t, env.Meta, "filters_applied")

	rec = f.do(http.MethodGet, "/nowhere", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env = decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.Equal(t, http.StatusNotFound, env.Code)
}

func TestJobCatalogValidation(t *testing.T) {
	f := newAPIFixture(t, nil)

	tests := []struct {
		name  string
		path  string
		field string
	}{
		{name: "short query", path: "/jobs/search?q=a", field: "q"},
		{name: "missing query", path: "/jobs/search", field: "q"},
		{name: "bad modality", path: "/jobs?work_modality=moon", field: "work_modality"},
		{name: "negative salary", path: "/jobs?salary_min=-1", field: "salary_min"},
		{name: "bad page", path: "/jobs?page=0", field: "page"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(http.MethodGet, tt.path, "", nil)
			require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
			env := decodeEnvelope(t, rec)
			require.NotEmpty(t, env.Errors)
			assert.Equal(t, tt.field, env.Errors[0].Field)
		})
	}

	rec := f.do(http.MethodGet, "/jobs/search?q=frontend", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var found []types.Job
	decodeData(t, rec, &found)
	assert.Len(t, found, 1)

	rec = f.do(http.MethodGet, "/jobs/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAuthFailures(t *testing.T) {
	f := newAPIFixture(t, nil)
	token, userID := f.register("ana@example.com")

	rec := f.do(http.MethodGet, "/applications", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, http.StatusUnauthorized, decodeEnvelope(t, rec).Code)

	rec = f.do(http.MethodGet, "/applications", "not-a-token", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	forged, err := issueToken(types.User{ID: userID, Email: "ana@example.com"}, []byte("other-secret"), time.Hour)
	require.NoError(t, err)
	rec = f.do(http.MethodGet, "/applications", forged, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	expired, err := issueToken(types.User{ID: userID, Email: "ana@example.com"}, []byte(testSecret), -time.Minute)
	require.NoError(t, err)
	rec = f.do(http.MethodGet, "/applications", expired, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(http.MethodGet, "/applications", token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	f.db.DeleteUser(userID)
	rec = f.do(http.MethodGet, "/applications", token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	f := newAPIFixture(t, nil)
	f.register("ana@example.com")

	rec := f.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "ANA@example.com", "password": "another"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "not-an-email", "password": "123"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	fields := make([]string, 0, len(env.Errors))
	for _, fe := range env.Errors {
		fields = append(fields, fe.Field)
	}
	assert.ElementsMatch(t, []string{"email", "password"}, fields)

	for _, password := range []string{strings.Repeat("p", 80), strings.Repeat("ñ", 40)} {
		rec = f.do(http.MethodPost, "/auth/register", "", map[string]string{"email": "long@example.com", "password": password})
		require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
		env = decodeEnvelope(t, rec)
		require.Len(t, env.Errors, 1)
		assert.Equal(t, "password", env.Errors[0].Field)
	}

	wrongPassword := f.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "nope"})
	unknownEmail := f.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "bob@example.com", "password": "s3cret!"})
	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	assert.Equal(t, decodeEnvelope(t, wrongPassword).Message, decodeEnvelope(t, unknownEmail).Message)

	rec = f.do(http.MethodPost, "/auth/login", "", map[string]string{"email": "ana@example.com", "password": "s3cret!"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AuthResponse
	decodeData(t, rec, &resp)
	require.NotNil(t, resp.User.LastLogin)

	claims, err := parseToken(resp.Token, []byte(testSecret))
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
}

func TestMeIncludesProfile(t *testing.T) {
	f := newAPIFixture(t, nil)
	token, _ := f.register("ana@example.com")

	rec := f.do(http.MethodGet, "/auth/me", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var raw map[string]json.RawMessage
	decodeData(t, rec, &raw)
	assert.JSONEq(t, "null", string(raw["profile"]))

	rec = f.do(http.MethodPost, "/profiles", token, map[string]any{"full_name": "Ana <b>García</b>", "salary_currency": "eur"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created types.Profile
	decodeData(t, rec, &created)
	assert.Equal(t, "Ana García", created.FullName)
	assert.Equal(t, "EUR", created.SalaryCurrency)

	rec = f.do(http.MethodPost, "/profiles", token, map[string]any{"full_name": "Ana Again"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.do(http.MethodGet, "/auth/me", token, nil)
	var me MeResponse
	decodeData(t, rec, &me)
	require.NotNil(t, me.Profile)
	assert.Equal(t, created.ID, me.Profile.ID)

	rec = f.do(http.MethodPut, "/profiles/"+created.ID, token, map[string]any{"city": "Valencia"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated types.Profile
	decodeData(t, rec, &updated)
	assert.Equal(t, "Ana García", updated.FullName)
	assert.Equal(t, "Valencia", updated.City)

	other, _ := f.register("bob@example.com")
	rec = f.do(http.MethodPut, "/profiles/"+created.ID, other, map[string]any{"city": "Lisboa"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLedgerWalkthrough(t *testing.T) {
	f := newAPIFixture(t, nil)
	token, _ := f.register("ana@example.com")

	rec := f.do(http.MethodPost, "/applications", token, map[string]string{"job_id": f.job.ID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var app types.Application
	decodeData(t, rec, &app)
	assert.Equal(t, types.StatusSaved, app.Status)
	assert.Nil(t, app.AppliedDate)
	require.NotNil(t, app.Job)
	assert.Equal(t, "TechCorp", app.Job.CompanyName)

	rec = f.do(http.MethodPost, "/applications", token, map[string]string{"job_id": f.job.ID})
	require.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, app.ID, env.Meta["existing_application_id"])
	assert.Equal(t, f.job.ID, env.Meta["job_id"])

	rec = f.do(http.MethodPatch, "/applications/"+app.ID+"/status", token, map[string]string{"status": "applied"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &app)
	assert.Equal(t, types.StatusApplied, app.Status)
	assert.NotNil(t, app.AppliedDate)

	rec = f.do(http.MethodPatch, "/applications/"+app.ID+"/status", token, map[string]string{"status": "ghosted"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = f.do(http.MethodGet, "/analytics/dashboard", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var dash types.Dashboard
	decodeData(t, rec, &dash)
	assert.Equal(t, 1, dash.Summary.TotalApplications)
	assert.Equal(t, map[types.Status]int{
		types.StatusSaved:     0,
		types.StatusApplied:   1,
		types.StatusInterview: 0,
		types.StatusOffer:     0,
		types.StatusRejected:  0,
	}, dash.StatusBreakdown)

	rec = f.do(http.MethodGet, "/applications?status=applied,offer", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []types.Application
	decodeData(t, rec, &listed)
	assert.Len(t, listed, 1)

	rec = f.do(http.MethodGet, "/applications?status=saved", token, nil)
	decodeData(t, rec, &listed)
	assert.Empty(t, listed)

	rec = f.do(http.MethodPut, "/applications/"+app.ID, token, map[string]string{"personal_notes": "no job"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code, rec.Body.String())
	env = decodeEnvelope(t, rec)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "job_id", env.Errors[0].Field)

	rec = f.do(http.MethodPut, "/applications/"+app.ID, token, map[string]string{"job_id": f.job.ID, "personal_notes": "Call back <script>x</script>on Monday"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &app)
	assert.Equal(t, types.StatusApplied, app.Status)
	assert.Equal(t, "Call back on Monday", app.PersonalNotes)

	rec = f.do(http.MethodGet, "/analytics/applications", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var detail types.ApplicationAnalytics
	decodeData(t, rec, &detail)
	assert.Equal(t, types.SuccessRate{Total: 1, Successful: 0}, detail.SuccessRate)

	rec = f.do(http.MethodDelete, "/applications/"+app.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, "/applications/"+app.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateApplicationValidation(t *testing.T) {
	f := newAPIFixture(t, nil)
	token, _ := f.register("ana@example.com")

	rec := f.do(http.MethodPost, "/applications", token, map[string]string{})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	env := decodeEnvelope(t, rec)
	require.Len(t, env.Errors, 1)
	assert.Equal(t, "job_id", env.Errors[0].Field)

	rec = f.do(http.MethodPost, "/applications", token, map[string]any{"job_id": f.job.ID, "personal_notes": strings.Repeat("n", 1001)})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "personal_notes", decodeEnvelope(t, rec).Errors[0].Field)

	rec = f.do(http.MethodPost, "/applications", token, map[string]string{"job_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, 0, f.db.ApplicationCount())
}

func TestCrossAccountAccessIsNotFound(t *testing.T) {
	f := newAPIFixture(t, nil)
	owner, _ := f.register("ana@example.com")
	intruder, _ := f.register("bob@example.com")

	rec := f.do(http.MethodPost, "/applications", owner, map[string]string{"job_id": f.job.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var app types.Application
	decodeData(t, rec, &app)

	base := "/applications/" + app.ID
	checks := []*httptest.ResponseRecorder{
		f.do(http.MethodGet, base, intruder, nil),
		f.do(http.MethodPut, base, intruder, map[string]string{"job_id": f.job.ID, "personal_notes": "mine now"}),
		f.do(http.MethodPatch, base+"/status", intruder, map[string]string{"status": "rejected"}),
		f.do(http.MethodGet, base+"/attachments", intruder, nil),
		f.upload(base+"/attachments", intruder, "cv.pdf", []byte("%PDF")),
		f.do(http.MethodDelete, base, intruder, nil),
	}
	for _, rec := range checks {
		assert.Equal(t, http.StatusNotFound, rec.Code, rec.Body.String())
	}

	rec = f.do(http.MethodGet, "/applications", intruder, nil)
	var listed []types.Application
	decodeData(t, rec, &listed)
	assert.Empty(t, listed)

	rec = f.do(http.MethodGet, base, owner, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	decodeData(t, rec, &app)
	assert.Equal(t, types.StatusSaved, app.Status)
	assert.Empty(t, app.PersonalNotes)
}

func TestAttachmentLifecycle(t *testing.T) {
	f := newAPIFixture(t, nil)
	token, _ := f.register("ana@example.com")
	rec := f.do(http.MethodPost, "/applications", token, map[string]string{"job_id": f.job.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var app types.Application
	decodeData(t, rec, &app)
	base := "/applications/" + app.ID + "/attachments"

	rec = f.upload(base, token, "big.pdf", bytes.Repeat([]byte("x"), testUploadCap+1))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeEnvelope(t, rec).Message, "too large")

	rec = f.upload(base, token, "run.exe", []byte("MZ"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodGet, base, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []types.Attachment
	decodeData(t, rec, &listed)
	assert.Empty(t, listed)
	assert.Equal(t, 0, f.objects.Keys())

	rec = f.upload(base, token, "notes.txt", []byte("hello"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var att types.Attachment
	decodeData(t, rec, &att)
	assert.Equal(t, "notes.txt", att.OriginalName)

	rec = f.do(http.MethodGet, base+"/"+att.ID, token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hello", rec.Body.String())
	assert.Equal(t, `attachment; filename=notes.txt`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "5", rec.Header().Get("Content-Length"))
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain"))

	rec = f.do(http.MethodDelete, base+"/"+att.ID, token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, base+"/"+att.ID, token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateDocuments(t *testing.T) {
	f := newAPIFixture(t, nil)
	token, _ := f.register("ana@example.com")

	rec := f.do(http.MethodPost, "/ai/generate-cover-letter", token, map[string]string{"job_id": f.job.ID})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "profile not found", decodeEnvelope(t, rec).Message)

	rec = f.do(http.MethodPost, "/profiles", token, map[string]any{"full_name": "Ana García"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodPost, "/ai/generate-cover-letter", token, map[string]string{"job_id": f.job.ID})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var body map[string]json.RawMessage
	decodeData(t, rec, &body)
	var letter string
	require.NoError(t, json.Unmarshal(body["cover_letter"], &letter))
	assert.Contains(t, letter, "TechCorp")
	assert.NotContains(t, body, "application_id")
	var meta types.GenerationMetadata
	require.NoError(t, json.Unmarshal(body["metadata"], &meta))
	assert.Equal(t, docgen.Model, meta.Model)
	assert.Equal(t, "es", meta.Language)
	assert.Equal(t, 0, f.db.ApplicationCount())

	rec = f.do(http.MethodPost, "/applications", token, map[string]string{"job_id": f.job.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	var app types.Application
	decodeData(t, rec, &app)

	rec = f.do(http.MethodPost, "/ai/generate-cold-message", token, map[string]string{"job_id": f.job.ID, "language": "en", "tone": "casual"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	decodeData(t, rec, &body)
	assert.Contains(t, body, "cold_message")
	assert.JSONEq(t, `"`+app.ID+`"`, string(body["application_id"]))

	rec = f.do(http.MethodGet, "/applications/"+app.ID, token, nil)
	decodeData(t, rec, &app)
	assert.NotEmpty(t, app.ColdMessage)

	rec = f.do(http.MethodPost, "/ai/generate-cold-message", token, map[string]string{"job_id": f.job.ID, "language": "fr"})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "language", decodeEnvelope(t, rec).Errors[0].Field)

	rec = f.do(http.MethodPost, "/ai/generate-cover-letter", token, map[string]string{"job_id": "missing"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealth(t *testing.T) {
	healthy := newAPIFixture(t, func(context.Context) error { return nil })
	rec := healthy.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var report healthReport
	env := decodeData(t, rec, &report)
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "connected", report.Services.Database)
	assert.Equal(t, "disabled", report.Services.Redis)
	assert.Equal(t, "memory", report.Services.Storage)

	down := newAPIFixture(t, func(context.Context) error { return errors.New("connection refused") })
	rec = down.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env = decodeData(t, rec, &report)
	assert.False(t, env.Success)
	assert.Equal(t, "disconnected", report.Services.Database)
}
