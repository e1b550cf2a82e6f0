package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jobseeker-app/apiserver/internal/services"
	"github.com/rs/zerolog/hlog"
)

const (
	formFieldFile      = "file"
	maxMultipartMemory = 8 << 20
	multipartOverhead  = 1 << 20
)

// AttachmentHandler serves files uploaded against an application.
type AttachmentHandler struct {
	attachmentService *services.AttachmentService
}

func NewAttachmentHandler(attachmentService *services.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{attachmentService: attachmentService}
}

// AttachmentRouter registers attachment routes under an application.
func AttachmentRouter(r chi.Router, handler *AttachmentHandler) {
	r.Post("/", handler.UploadAttachment)
	r.Get("/", handler.ListAttachments)
	r.Get("/{attachmentID}", handler.DownloadAttachment)
	r.Delete("/{attachmentID}", handler.DeleteAttachment)
}

// UploadAttachment accepts a single multipart "file" field. Bodies larger
// than the configured cap are refused before anything is stored.
func (h *AttachmentHandler) UploadAttachment(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	maxSize := h.attachmentService.MaxSize()
	tooLarge := fmt.Sprintf("file too large (max %d bytes)", maxSize)
	if r.ContentLength > maxSize+multipartOverhead {
		writeError(w, http.StatusBadRequest, tooLarge)
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeError(w, http.StatusBadRequest, tooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	files := r.MultipartForm.File[formFieldFile]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no file uploaded")
		return
	}
	if len(files) > 1 {
		writeError(w, http.StatusBadRequest, "only one file is allowed")
		return
	}
	header := files[0]
	if header.Size > maxSize {
		writeError(w, http.StatusBadRequest, tooLarge)
		return
	}

	file, err := header.Open()
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read uploaded file")
		return
	}
	defer file.Close()

	attachment, err := h.attachmentService.Upload(r.Context(), user.ID, chi.URLParam(r, "applicationID"), services.UploadInput{
		OriginalName: header.Filename,
		MimeType:     header.Header.Get("Content-Type"),
		Size:         header.Size,
		Body:         file,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusCreated, attachment, "file uploaded", nil)
}

func (h *AttachmentHandler) ListAttachments(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	attachments, err := h.attachmentService.List(r.Context(), user.ID, chi.URLParam(r, "applicationID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, attachments, "", nil)
}

// DownloadAttachment streams the stored payload under its original name.
func (h *AttachmentHandler) DownloadAttachment(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	meta, body, err := h.attachmentService.Open(r.Context(), user.ID, chi.URLParam(r, "applicationID"), chi.URLParam(r, "attachmentID"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer body.Close()

	w.Header().Set("Content-Type", meta.MimeType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": meta.OriginalName}))
	w.Header().Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, body); err != nil {
		hlog.FromRequest(r).Error().Err(err).Str("attachment_id", meta.ID).Msg("failed to stream attachment")
	}
}

func (h *AttachmentHandler) DeleteAttachment(w http.ResponseWriter, r *http.Request) {
	user, ok := requireUser(w, r)
	if !ok {
		return
	}

	if err := h.attachmentService.Remove(r.Context(), user.ID, chi.URLParam(r, "applicationID"), chi.URLParam(r, "attachmentID")); err != nil {
		writeServiceError(w, r, err)
		return
	}

	writeSuccess(w, http.StatusOK, nil, "file deleted", nil)
}
