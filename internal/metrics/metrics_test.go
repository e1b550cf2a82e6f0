package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestInstrumentHandlerLabelsByRoutePattern(t *testing.T) {
	router := chi.NewRouter()
	router.Use(InstrumentHandler)
	router.Get("/jobs/{jobID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	for _, id := range []string{"a", "b", "c"} {
		router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/jobs/"+id, nil))
	}

	assert.Equal(t, 3.0, testutil.ToFloat64(httpRequests.WithLabelValues("GET", "/jobs/{jobID}", "404")))
}

func TestDomainCounters(t *testing.T) {
	before := testutil.ToFloat64(statusTransitions.WithLabelValues("interview"))
	RecordStatusTransition(types.StatusInterview)
	assert.Equal(t, before+1, testutil.ToFloat64(statusTransitions.WithLabelValues("interview")))

	bytesBefore := testutil.ToFloat64(attachmentBytes)
	RecordAttachmentBytes(512)
	RecordAttachmentBytes(-1)
	assert.Equal(t, bytesBefore+512, testutil.ToFloat64(attachmentBytes))
}

func TestHandlerExposesCollectors(t *testing.T) {
	RecordDocumentGenerated(types.DocumentCoverLetter)

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), `jobseeker_documents_generated_total{kind="cover_letter"}`))
}
