package store

import (
	"context"
	"database/sql"

	"github.com/jobseeker-app/apiserver/types"
	"github.com/lib/pq"
)

// AttachmentRepository handles attachment metadata. Payloads are kept in
// object storage and referenced by object_key.
type AttachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

const attachmentColumns = `attachment_id, application_id, filename, original_name, mimetype, size, object_key, uploaded_at`

func (r *AttachmentRepository) Add(ctx context.Context, attachment types.Attachment) error {
	query := `INSERT INTO application_attachments (` + attachmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.db.ExecContext(
		ctx,
		query,
		attachment.ID,
		attachment.ApplicationID,
		attachment.Filename,
		attachment.OriginalName,
		attachment.MimeType,
		attachment.Size,
		attachment.ObjectKey,
		attachment.UploadedAt,
	)
	return translateError(err)
}

func (r *AttachmentRepository) Remove(ctx context.Context, applicationID, attachmentID string) error {
	const query = `DELETE FROM application_attachments WHERE application_id = $1 AND attachment_id = $2`
	result, err := r.db.ExecContext(ctx, query, applicationID, attachmentID)
	if err != nil {
		return translateError(err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns attachment metadata for one application in upload order.
func (r *AttachmentRepository) List(ctx context.Context, applicationID string) ([]types.Attachment, error) {
	byApp, err := r.listFor(ctx, []string{applicationID})
	if err != nil {
		return nil, err
	}
	return byApp[applicationID], nil
}

func (r *AttachmentRepository) listFor(ctx context.Context, applicationIDs []string) (map[string][]types.Attachment, error) {
	query := `SELECT ` + attachmentColumns + `
		FROM application_attachments
		WHERE application_id = ANY($1)
		ORDER BY uploaded_at, attachment_id`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(applicationIDs))
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	byApp := make(map[string][]types.Attachment, len(applicationIDs))
	for rows.Next() {
		var a types.Attachment
		if err := rows.Scan(
			&a.ID,
			&a.ApplicationID,
			&a.Filename,
			&a.OriginalName,
			&a.MimeType,
			&a.Size,
			&a.ObjectKey,
			&a.UploadedAt,
		); err != nil {
			return nil, err
		}
		byApp[a.ApplicationID] = append(byApp[a.ApplicationID], a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return byApp, nil
}
