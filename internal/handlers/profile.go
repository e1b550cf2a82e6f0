package handlers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobseeker-app/apiserver/internal/services"
	"github.com/jobseeker-app/apiserver/types"
)

// ProfileHandler serves the caller's profile.
type ProfileHandler struct {
	profileService *services.ProfileService
}

func NewProfileHandler(profileService *services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profileService: profileService}
}

// ProfileRouter registers profile routes. Every route requires auth.
func ProfileRouter(r chi.Router, handler *ProfileHandler) {
	r.Get("/me", handler.GetMyProfile)
	r.Post("/", handler.CreateProfile)
	r.Put("/{profileID}", handler.UpdateProfile)
}

func (h *ProfileHandler) GetMyProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	profile, err := h.profileService.GetByUserID(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, notFoundAs("profile", err))
		return
	}

	writeSuccess(w, http.StatusOK, profile, "", nil)
}

func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req ProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	profile, err := h.profileService.Create(r.Context(), user.ID, req.toProfile())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, profile, "profile created", nil)
}

// UpdateProfile overlays the submitted fields onto the stored profile.
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}
	profileID := chi.URLParam(r, "profileID")

	current, err := h.profileService.GetByUserID(r.Context(), user.ID)
	if err != nil && !isNotFound(err) {
		writeServiceError(w, r, err)
		return
	}
	if err != nil || current.ID != profileID {
		writeError(w, http.StatusNotFound, "profile not found")
		return
	}

	req := profileRequestFrom(current)
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}

	profile, err := h.profileService.Update(r.Context(), user.ID, profileID, req.toProfile())
	if err != nil {
		writeServiceError(w, r, notFoundAs("profile", err))
		return
	}

	writeSuccess(w, http.StatusOK, profile, "profile updated", nil)
}

type ProfileRequest struct {
	FullName              string             `json:"full_name" validate:"required,min=2,max=100"`
	Phone                 string             `json:"phone" validate:"max=50"`
	LinkedInURL           string             `json:"linkedin_url" validate:"omitempty,url"`
	Bio                   string             `json:"bio" validate:"max=500"`
	Country               string             `json:"country" validate:"max=100"`
	City                  string             `json:"city" validate:"max=100"`
	Timezone              string             `json:"timezone" validate:"max=64"`
	CurrentJobTitle       string             `json:"current_job_title" validate:"max=200"`
	YearsExperience       int                `json:"years_experience" validate:"min=0,max=50"`
	Industries            []string           `json:"industries" validate:"dive,max=100"`
	WorkModalityPreferred types.WorkModality `json:"work_modality_preferred" validate:"omitempty,oneof=remote onsite hybrid"`
	SalaryMin             int64              `json:"salary_min" validate:"min=0"`
	SalaryMax             int64              `json:"salary_max" validate:"omitempty,gtefield=SalaryMin"`
	SalaryCurrency        string             `json:"salary_currency" validate:"omitempty,len=3"`
}

func profileRequestFrom(p types.Profile) ProfileRequest {
	return ProfileRequest{
		FullName:              p.FullName,
		Phone:                 p.Phone,
		LinkedInURL:           p.LinkedInURL,
		Bio:                   p.Bio,
		Country:               p.Country,
		City:                  p.City,
		Timezone:              p.Timezone,
		CurrentJobTitle:       p.CurrentJobTitle,
		YearsExperience:       p.YearsExperience,
		Industries:            p.Industries,
		WorkModalityPreferred: p.WorkModalityPreferred,
		SalaryMin:             p.SalaryMin,
		SalaryMax:             p.SalaryMax,
		SalaryCurrency:        p.SalaryCurrency,
	}
}

func (req ProfileRequest) toProfile() types.Profile {
	industries := make([]string, 0, len(req.Industries))
	for _, industry := range req.Industries {
		if industry = sanitizeText(industry); industry != "" {
			industries = append(industries, industry)
		}
	}
	return types.Profile{
		FullName:              sanitizeText(req.FullName),
		Phone:                 strings.TrimSpace(req.Phone),
		LinkedInURL:           strings.TrimSpace(req.LinkedInURL),
		Bio:                   sanitizeText(req.Bio),
		Country:               sanitizeText(req.Country),
		City:                  sanitizeText(req.City),
		Timezone:              strings.TrimSpace(req.Timezone),
		CurrentJobTitle:       sanitizeText(req.CurrentJobTitle),
		YearsExperience:       req.YearsExperience,
		Industries:            industries,
		WorkModalityPreferred: req.WorkModalityPreferred,
		SalaryMin:             req.SalaryMin,
		SalaryMax:             req.SalaryMax,
		SalaryCurrency:        strings.ToUpper(strings.TrimSpace(req.SalaryCurrency)),
	}
}

func notFoundAs(resource string, err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return &services.NotFoundError{Resource: resource}
	}
	return err
}
