package storage

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
)

// PostgresBlobStore keeps objects in the attachment_blobs table so a
// deployment without an object store still persists attachment payloads.
type PostgresBlobStore struct {
	db *sql.DB
}

// NewPostgresBlobStore constructs a blob store over an open database.
func NewPostgresBlobStore(db *sql.DB) *PostgresBlobStore {
	return &PostgresBlobStore{db: db}
}

// EnsureBucket is a no-op; the table is created by migrations.
func (p *PostgresBlobStore) EnsureBucket(ctx context.Context) error {
	return nil
}

// Put stores the object, replacing any previous payload under key.
func (p *PostgresBlobStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	if size >= 0 && int64(len(data)) != size {
		return fmt.Errorf("object size mismatch: expected %d bytes, read %d", size, len(data))
	}

	const query = `
		INSERT INTO attachment_blobs (object_key, content_type, data)
		VALUES ($1, $2, $3)
		ON CONFLICT (object_key) DO UPDATE SET content_type = EXCLUDED.content_type, data = EXCLUDED.data`
	_, err = p.db.ExecContext(ctx, query, key, contentType, data)
	return err
}

// Get returns a reader over the stored payload.
func (p *PostgresBlobStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	const query = `SELECT data FROM attachment_blobs WHERE object_key = $1`
	var data []byte
	if err := p.db.QueryRowContext(ctx, query, key).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrObjectNotFound
		}
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Delete removes the payload. Missing keys are not an error.
func (p *PostgresBlobStore) Delete(ctx context.Context, key string) error {
	_, err := p.db.ExecContext(ctx, `DELETE FROM attachment_blobs WHERE object_key = $1`, key)
	return err
}

// Bucket returns the backing table name.
func (p *PostgresBlobStore) Bucket() string {
	return "attachment_blobs"
}
