package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/jobseeker-app/apiserver/internal/services"
	"github.com/jobseeker-app/apiserver/types"
)

// DocumentHandler serves the cover letter and cold message generators.
type DocumentHandler struct {
	documentService *services.DocumentService
}

func NewDocumentHandler(documentService *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// DocumentRouter registers generator routes. Every route requires auth.
func DocumentRouter(r chi.Router, handler *DocumentHandler) {
	r.Post("/generate-cover-letter", handler.generate(types.DocumentCoverLetter, "cover letter generated"))
	r.Post("/generate-cold-message", handler.generate(types.DocumentColdMessage, "cold message generated"))
}

func (h *DocumentHandler) generate(kind types.DocumentKind, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := requireUser(w, r)
		if !ok {
			return
		}
		var req GenerateDocumentRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, err)
			return
		}

		doc, err := h.documentService.Generate(r.Context(), user.ID, types.DocumentRequest{
			JobID:             strings.TrimSpace(req.JobID),
			Kind:              kind,
			Tone:              req.Tone,
			Language:          req.Language,
			AdditionalContext: sanitizeText(req.AdditionalContext),
		})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}

		writeSuccess(w, http.StatusOK, GeneratedDocumentResponse{doc}, message, nil)
	}
}

type GenerateDocumentRequest struct {
	JobID             string     `json:"job_id" validate:"required"`
	Tone              types.Tone `json:"tone" validate:"omitempty,oneof=professional casual enthusiastic"`
	Language          string     `json:"language" validate:"omitempty,oneof=es en"`
	AdditionalContext string     `json:"additional_context" validate:"max=500"`
}

// GeneratedDocumentResponse keys the content by document kind, so a cover
// letter is returned under "cover_letter" and a cold message under
// "cold_message".
type GeneratedDocumentResponse struct {
	types.GeneratedDocument
}

func (g GeneratedDocumentResponse) MarshalJSON() ([]byte, error) {
	body := map[string]any{
		string(g.Kind): g.Content,
		"metadata":     g.Metadata,
	}
	if g.ApplicationID != "" {
		body["application_id"] = g.ApplicationID
	}
	return json.Marshal(body)
}
