package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jobseeker-app/apiserver/internal/services"
	"github.com/jobseeker-app/apiserver/types"
)

// ApplicationHandler serves the caller's application ledger.
type ApplicationHandler struct {
	applicationService *services.ApplicationService
}

func NewApplicationHandler(applicationService *services.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{applicationService: applicationService}
}

// ApplicationRouter registers ledger routes. Every route requires auth.
func ApplicationRouter(r chi.Router, handler *ApplicationHandler, attachments *AttachmentHandler) {
	r.Get("/", handler.ListApplications)
	r.Post("/", handler.CreateApplication)
	r.Route("/{applicationID}", func(r chi.Router) {
		r.Get("/", handler.GetApplication)
		r.Put("/", handler.UpdateApplication)
		r.Delete("/", handler.DeleteApplication)
		r.Patch("/status", handler.UpdateStatus)
		if attachments != nil {
			r.Route("/attachments", func(r chi.Router) {
				AttachmentRouter(r, attachments)
			})
		}
	})
}

func (h *ApplicationHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	statuses, err := types.ParseStatuses(strings.Join(queryList(r, "status"), ","))
	if err != nil {
		writeValidation(w, services.NewValidationError("status", "must be one of: saved, applied, interview, offer, rejected"))
		return
	}

	apps, total, err := h.applicationService.List(r.Context(), user.ID, types.ApplicationFilter{Statuses: statuses}, offset, limit)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, apps, "", map[string]any{
		"pagination": newPagination(page, limit, total),
	})
}

func (h *ApplicationHandler) GetApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	app, err := h.applicationService.Get(r.Context(), user.ID, chi.URLParam(r, "applicationID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, app, "", nil)
}

func (h *ApplicationHandler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req CreateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	app, err := h.applicationService.Create(r.Context(), user.ID, services.CreateApplicationInput{
		JobID:         strings.TrimSpace(req.JobID),
		Status:        req.Status,
		PersonalNotes: sanitizeText(req.PersonalNotes),
		AppliedDate:   req.AppliedDate,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, app, "application created", nil)
}

func (h *ApplicationHandler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req UpdateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	in := services.UpdateApplicationInput{
		JobID:       strings.TrimSpace(req.JobID),
		Status:      req.Status,
		AppliedDate: req.AppliedDate,
	}
	if req.PersonalNotes != nil {
		notes := sanitizeText(*req.PersonalNotes)
		in.PersonalNotes = &notes
	}

	app, err := h.applicationService.Update(r.Context(), user.ID, chi.URLParam(r, "applicationID"), in)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, app, "application updated", nil)
}

func (h *ApplicationHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	app, err := h.applicationService.TransitionStatus(r.Context(), user.ID, chi.URLParam(r, "applicationID"), req.Status)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, app, "status updated", nil)
}

func (h *ApplicationHandler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.applicationService.Delete(r.Context(), user.ID, chi.URLParam(r, "applicationID")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "application deleted", nil)
}

type CreateApplicationRequest struct {
	JobID         string       `json:"job_id" validate:"required"`
	Status        types.Status `json:"status" validate:"omitempty,oneof=saved applied interview offer rejected"`
	PersonalNotes string       `json:"personal_notes" validate:"max=1000"`
	AppliedDate   *time.Time   `json:"applied_date"`
}

type UpdateApplicationRequest struct {
	JobID         string        `json:"job_id" validate:"required"`
	Status        *types.Status `json:"status" validate:"omitempty,oneof=saved applied interview offer rejected"`
	PersonalNotes *string       `json:"personal_notes" validate:"omitempty,max=1000"`
	AppliedDate   *time.Time    `json:"applied_date"`
}

type UpdateStatusRequest struct {
	Status types.Status `json:"status" validate:"required,oneof=saved applied interview offer rejected"`
}
