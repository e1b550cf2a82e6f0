package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/jobseeker-app/apiserver/internal/services"
	"github.com/jobseeker-app/apiserver/internal/store"
	"github.com/jobseeker-app/apiserver/types"
)

const (
	minSearchLength = 2
	maxSearchLength = 100
)

// JobHandler serves the public job catalog.
type JobHandler struct {
	jobService *services.JobService
}

func NewJobHandler(jobService *services.JobService) *JobHandler {
	return &JobHandler{jobService: jobService}
}

// JobRouter registers catalog routes on the given router.
func JobRouter(r chi.Router, handler *JobHandler) {
	r.Get("/", handler.ListJobs)
	r.Get("/search", handler.SearchJobs)
	r.Get("/{jobID}", handler.GetJob)
}

func (h *JobHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	filter, err := parseJobFilter(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	jobs, total, err := h.jobService.List(r.Context(), filter, offset, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, jobs, "", map[string]any{
		"pagination":      newPagination(page, limit, total),
		"filters_applied": filter,
	})
}

func (h *JobHandler) SearchJobs(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if n := utf8.RuneCountInString(q); n < minSearchLength || n > maxSearchLength {
		writeValidation(w, services.NewValidationError("q", "must be between 2 and 100 characters"))
		return
	}

	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > maxLimit {
			writeValidation(w, services.NewValidationError("limit", "must be between 1 and 100"))
			return
		}
		limit = parsed
	}

	jobs, err := h.jobService.Search(r.Context(), q, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, jobs, "", map[string]any{
		"query": q,
		"total": len(jobs),
	})
}

func (h *JobHandler) GetJob(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobService.Get(r.Context(), chi.URLParam(r, "jobID"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "job not found")
			return
		}
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, job, "", nil)
}

func parseJobFilter(r *http.Request) (types.JobFilter, error) {
	query := r.URL.Query()
	filter := types.JobFilter{
		Country: strings.TrimSpace(query.Get("country")),
		City:    strings.TrimSpace(query.Get("city")),
		Search:  strings.TrimSpace(query.Get("search")),
	}

	for _, raw := range queryList(r, "work_modality") {
		modality := types.WorkModality(strings.ToLower(raw))
		if !modality.Valid() {
			return types.JobFilter{}, services.NewValidationError("work_modality", "must be one of: remote, onsite, hybrid")
		}
		filter.WorkModalities = append(filter.WorkModalities, modality)
	}
	for _, raw := range queryList(r, "seniority_level") {
		level := types.SeniorityLevel(strings.ToLower(raw))
		if !level.Valid() {
			return types.JobFilter{}, services.NewValidationError("seniority_level", "must be one of: junior, mid, senior")
		}
		filter.Seniorities = append(filter.Seniorities, level)
	}

	var err error
	if filter.SalaryMin, err = parseSalary(query.Get("salary_min"), "salary_min"); err != nil {
		return types.JobFilter{}, err
	}
	if filter.SalaryMax, err = parseSalary(query.Get("salary_max"), "salary_max"); err != nil {
		return types.JobFilter{}, err
	}
	return filter, nil
}

func parseSalary(raw, field string) (*int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || value < 0 {
		return nil, services.NewValidationError(field, "must be a non-negative integer")
	}
	return &value, nil
}
