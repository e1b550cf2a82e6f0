package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Set groups the handlers mounted under the API prefix.
type Set struct {
	Auth         *AuthHandler
	Jobs         *JobHandler
	Applications *ApplicationHandler
	Attachments  *AttachmentHandler
	Profiles     *ProfileHandler
	Analytics    *AnalyticsHandler
	Documents    *DocumentHandler
	Health       *HealthHandler
}

// Mount registers every API route on r. Routes other than auth, jobs and
// health sit behind the bearer token check.
func Mount(r chi.Router, set Set) {
	if set.Health != nil {
		r.Get("/health", set.Health.Health)
	}
	r.Route("/auth", func(r chi.Router) {
		AuthRouter(r, set.Auth)
	})
	r.Route("/jobs", func(r chi.Router) {
		JobRouter(r, set.Jobs)
	})

	r.Group(func(r chi.Router) {
		r.Use(set.Auth.RequireAuth)
		r.Route("/applications", func(r chi.Router) {
			ApplicationRouter(r, set.Applications, set.Attachments)
		})
		r.Route("/profiles", func(r chi.Router) {
			ProfileRouter(r, set.Profiles)
		})
		r.Route("/analytics", func(r chi.Router) {
			AnalyticsRouter(r, set.Analytics)
		})
		r.Route("/ai", func(r chi.Router) {
			DocumentRouter(r, set.Documents)
		})
	})
}

// NotFound answers unknown routes with the standard envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, "route "+r.Method+" "+r.URL.Path+" not found")
}

// MethodNotAllowed answers known routes called with the wrong method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method "+r.Method+" not allowed")
}
