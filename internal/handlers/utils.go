package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jobseeker-app/apiserver/internal/services"
	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/rs/zerolog/hlog"
)

const (
	defaultPage  = 1
	defaultLimit = 20
	maxLimit     = 100
)

type contextKey string

const contextUserKey contextKey = "user"

// Envelope wraps every API response.
type Envelope struct {
	Success   bool                  `json:"success"`
	Data      any                   `json:"data,omitempty"`
	Message   string                `json:"message,omitempty"`
	Code      int                   `json:"code,omitempty"`
	Errors    []services.FieldError `json:"errors,omitempty"`
	Meta      map[string]any        `json:"meta,omitempty"`
	Timestamp time.Time             `json:"timestamp"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int  `json:"page"`
	Limit      int  `json:"limit"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

func newPagination(page, limit, total int) Pagination {
	pages := 0
	if limit > 0 {
		pages = (total + limit - 1) / limit
	}
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: pages,
		HasNext:    page < pages,
		HasPrev:    page > 1,
	}
}

func withUser(ctx context.Context, user types.User) context.Context {
	return context.WithValue(ctx, contextUserKey, user)
}

func userFromContext(ctx context.Context) (types.User, bool) {
	user, ok := ctx.Value(contextUserKey).(types.User)
	return user, ok && user.ID != ""
}

// requireUser returns the authenticated account or answers 401.
func requireUser(w http.ResponseWriter, r *http.Request) (types.User, bool) {
	user, ok := userFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
	}
	return user, ok
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeSuccess(w http.ResponseWriter, status int, data any, message string, meta map[string]any) {
	writeJSON(w, status, Envelope{
		Success:   true,
		Data:      data,
		Message:   message,
		Meta:      meta,
		Timestamp: time.Now().UTC(),
	})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{
		Message:   message,
		Code:      status,
		Timestamp: time.Now().UTC(),
	})
}

func writeValidation(w http.ResponseWriter, fieldErrors services.ValidationErrors) {
	writeJSON(w, http.StatusUnprocessableEntity, Envelope{
		Message:   "validation failed",
		Code:      http.StatusUnprocessableEntity,
		Errors:    fieldErrors,
		Timestamp: time.Now().UTC(),
	})
}

// writeServiceError maps a service failure onto the error taxonomy.
// Unexpected errors are logged and answered with a generic message.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validation services.ValidationErrors
		conflict   *services.ConflictError
		missing    *services.NotFoundError
		upload     *services.UploadError
	)
	switch {
	case errors.As(err, &validation):
		writeValidation(w, validation)
	case errors.As(err, &conflict):
		meta := map[string]any{}
		if conflict.JobID != "" {
			meta["existing_application_id"] = conflict.ExistingID
			meta["job_id"] = conflict.JobID
		} else if conflict.ExistingID != "" {
			meta["existing_id"] = conflict.ExistingID
		}
		env := Envelope{
			Message:   conflict.Message,
			Code:      http.StatusConflict,
			Timestamp: time.Now().UTC(),
		}
		if len(meta) > 0 {
			env.Meta = meta
		}
		writeJSON(w, http.StatusConflict, env)
	case errors.As(err, &missing):
		writeError(w, http.StatusNotFound, missing.Error())
	case isNotFound(err):
		writeError(w, http.StatusNotFound, "resource not found")
	case errors.As(err, &upload):
		writeError(w, http.StatusBadRequest, upload.Message)
	case errors.Is(err, services.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid credentials")
	default:
		hlog.FromRequest(r).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

func parsePagination(r *http.Request) (page, limit, offset int, err error) {
	page = defaultPage
	limit = defaultLimit

	if raw := strings.TrimSpace(r.URL.Query().Get("page")); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil || page < 1 {
			return 0, 0, 0, services.NewValidationError("page", "must be a positive integer")
		}
	}

	rawLimit := strings.TrimSpace(r.URL.Query().Get("limit"))
	if rawLimit == "" {
		rawLimit = strings.TrimSpace(r.URL.Query().Get("per_page"))
	}
	if rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			return 0, 0, 0, services.NewValidationError("limit", "must be a positive integer")
		}
	}

	if limit > maxLimit {
		limit = maxLimit
	}

	offset = (page - 1) * limit
	return page, limit, offset, nil
}

// queryList collects comma separated values across repeated query keys.
func queryList(r *http.Request, key string) []string {
	var values []string
	for _, raw := range r.URL.Query()[key] {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				values = append(values, part)
			}
		}
	}
	return values
}
