package handlers

import (
	"context"
	"net/http"
	"time"
)

const (
	healthTimeout = 2 * time.Second
	// Version is reported by the health endpoint.
	Version = "1.0.0"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness and dependency status.
type HealthHandler struct {
	db          Pinger
	redisPing   func(ctx context.Context) error
	storage     string
	events      string
	environment string
}

// NewHealthHandler builds a HealthHandler. redisPing may be nil when Redis
// is not configured; an empty events name means publishing is disabled.
func NewHealthHandler(db Pinger, redisPing func(ctx context.Context) error, storage, events, environment string) *HealthHandler {
	return &HealthHandler{
		db:          db,
		redisPing:   redisPing,
		storage:     storage,
		events:      events,
		environment: environment,
	}
}

type healthReport struct {
	Status      string         `json:"status"`
	Timestamp   time.Time      `json:"timestamp"`
	Environment string         `json:"environment"`
	Services    healthServices `json:"services"`
}

type healthServices struct {
	API      string `json:"api"`
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Storage  string `json:"storage"`
	Events   string `json:"events"`
	Version  string `json:"version"`
}

// Health answers 503 when the database is unreachable.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	report := healthReport{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: h.environment,
		Services: healthServices{
			API:      "running",
			Database: "connected",
			Redis:    "disabled",
			Storage:  h.storage,
			Events:   "disabled",
			Version:  Version,
		},
	}
	if h.events != "" {
		report.Services.Events = h.events
	}
	if h.redisPing != nil {
		report.Services.Redis = "connected"
		if err := h.redisPing(ctx); err != nil {
			report.Services.Redis = "disconnected"
		}
	}

	status := http.StatusOK
	if h.db == nil || h.db.PingContext(ctx) != nil {
		report.Status = "unhealthy"
		report.Services.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, Envelope{
		Success:   status == http.StatusOK,
		Data:      report,
		Timestamp: report.Timestamp,
	})
}
