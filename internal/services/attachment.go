package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jobseeker-app/apiserver/internal/metrics"
	"github.com/jobseeker-app/apiserver/internal/storage"
	"github.com/jobseeker-app/apiserver/types"
	"github.com/rs/zerolog/log"
)

// AttachmentRepository defines persistence operations for attachment metadata.
type AttachmentRepository interface {
	Add(ctx context.Context, attachment types.Attachment) error
	Remove(ctx context.Context, applicationID, attachmentID string) error
	List(ctx context.Context, applicationID string) ([]types.Attachment, error)
}

// mimeTypesByExtension lists the media types accepted for each extension.
var mimeTypesByExtension = map[string][]string{
	"pdf":  {"application/pdf"},
	"doc":  {"application/msword"},
	"docx": {"application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
	"txt":  {"text/plain"},
	"jpg":  {"image/jpeg"},
	"jpeg": {"image/jpeg"},
	"png":  {"image/png"},
	"gif":  {"image/gif"},
}

// UploadInput describes one incoming file.
type UploadInput struct {
	OriginalName string
	MimeType     string
	Size         int64
	Body         io.Reader
}

// AttachmentService stores files against applications.
type AttachmentService struct {
	apps        ApplicationRepository
	attachments AttachmentRepository
	objects     ObjectStore
	maxSize     int64
	allowed     map[string]bool
	now         func() time.Time
}

func NewAttachmentService(apps ApplicationRepository, attachments AttachmentRepository, objects ObjectStore, maxSize int64, allowedExtensions []string) *AttachmentService {
	allowed := make(map[string]bool, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		allowed[strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))] = true
	}
	return &AttachmentService{
		apps:        apps,
		attachments: attachments,
		objects:     objects,
		maxSize:     maxSize,
		allowed:     allowed,
		now:         time.Now,
	}
}

// MaxSize is the largest accepted payload in bytes.
func (s *AttachmentService) MaxSize() int64 {
	return s.maxSize
}

// Upload validates and stores a file, then records its metadata on the
// application. The payload is written before the metadata row.
func (s *AttachmentService) Upload(ctx context.Context, userID, applicationID string, in UploadInput) (types.Attachment, error) {
	app, err := s.apps.GetByID(ctx, userID, applicationID)
	if err != nil {
		return types.Attachment{}, notFound("application", err)
	}

	name := cleanFilename(in.OriginalName)
	if name == "" {
		return types.Attachment{}, &UploadError{Message: "file name is required"}
	}
	if in.Size <= 0 {
		return types.Attachment{}, &UploadError{Message: "file is empty"}
	}
	if s.maxSize > 0 && in.Size > s.maxSize {
		return types.Attachment{}, &UploadError{Message: fmt.Sprintf("file exceeds the %d byte limit", s.maxSize)}
	}
	mimeType, err := s.checkType(name, in.MimeType)
	if err != nil {
		return types.Attachment{}, err
	}

	id := uuid.NewString()
	filename := id + "_" + name
	attachment := types.Attachment{
		ID:            id,
		ApplicationID: app.ID,
		Filename:      filename,
		OriginalName:  name,
		MimeType:      mimeType,
		Size:          in.Size,
		ObjectKey:     path.Join("applications", app.ID, filename),
		UploadedAt:    s.now().UTC(),
	}

	if err := s.objects.Put(ctx, attachment.ObjectKey, io.LimitReader(in.Body, in.Size), in.Size, mimeType); err != nil {
		return types.Attachment{}, fmt.Errorf("store attachment: %w", err)
	}
	if err := s.attachments.Add(ctx, attachment); err != nil {
		s.discard(ctx, attachment.ObjectKey)
		return types.Attachment{}, err
	}

	metrics.RecordAttachmentBytes(attachment.Size)
	return attachment, nil
}

// List returns attachment metadata in upload order.
func (s *AttachmentService) List(ctx context.Context, userID, applicationID string) ([]types.Attachment, error) {
	app, err := s.apps.GetByID(ctx, userID, applicationID)
	if err != nil {
		return nil, notFound("application", err)
	}
	attachments, err := s.attachments.List(ctx, app.ID)
	if err != nil {
		return nil, err
	}
	if attachments == nil {
		attachments = []types.Attachment{}
	}
	return attachments, nil
}

// Open returns the attachment metadata and a reader over its payload. The
// caller closes the reader.
func (s *AttachmentService) Open(ctx context.Context, userID, applicationID, attachmentID string) (types.Attachment, io.ReadCloser, error) {
	attachment, err := s.find(ctx, userID, applicationID, attachmentID)
	if err != nil {
		return types.Attachment{}, nil, err
	}
	body, err := s.objects.Get(ctx, attachment.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return types.Attachment{}, nil, &NotFoundError{Resource: "attachment"}
		}
		return types.Attachment{}, nil, err
	}
	return attachment, body, nil
}

// Remove deletes the attachment metadata and then its payload.
func (s *AttachmentService) Remove(ctx context.Context, userID, applicationID, attachmentID string) error {
	attachment, err := s.find(ctx, userID, applicationID, attachmentID)
	if err != nil {
		return err
	}
	if err := s.attachments.Remove(ctx, applicationID, attachmentID); err != nil {
		return notFound("attachment", err)
	}
	s.discard(ctx, attachment.ObjectKey)
	return nil
}

func (s *AttachmentService) find(ctx context.Context, userID, applicationID, attachmentID string) (types.Attachment, error) {
	app, err := s.apps.GetByID(ctx, userID, applicationID)
	if err != nil {
		return types.Attachment{}, notFound("application", err)
	}
	attachment, ok := app.Attachments.Find(attachmentID)
	if !ok {
		return types.Attachment{}, &NotFoundError{Resource: "attachment"}
	}
	return attachment, nil
}

func (s *AttachmentService) checkType(name, declared string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if !s.allowed[ext] {
		return "", &UploadError{Message: fmt.Sprintf("file type %q is not allowed", ext)}
	}
	accepted := mimeTypesByExtension[ext]

	mediaType := ""
	if declared != "" {
		parsed, _, err := mime.ParseMediaType(declared)
		if err == nil {
			mediaType = strings.ToLower(parsed)
		}
	}
	if len(accepted) == 0 {
		// Extension allowed by configuration without a known media type.
		if mediaType == "" {
			return "application/octet-stream", nil
		}
		return mediaType, nil
	}
	if mediaType == "" || mediaType == "application/octet-stream" {
		return accepted[0], nil
	}
	for _, candidate := range accepted {
		if candidate == mediaType {
			return mediaType, nil
		}
	}
	return "", &UploadError{Message: fmt.Sprintf("media type %q does not match .%s", mediaType, ext)}
}

func (s *AttachmentService) discard(ctx context.Context, key string) {
	if err := s.objects.Delete(ctx, key); err != nil {
		log.Error().Err(err).Str("object_key", key).Msg("failed to remove attachment payload")
	}
}

func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), "\\", "/"))
	if name == "." || name == "/" {
		return ""
	}
	return name
}
