// Package storage keeps uploaded image blobs, either in a GCS bucket or on
// the local filesystem.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"studio-space-backend/internal/config"
)

// Store defines the interface for a blob storage backend.
type Store interface {
	// Put writes r under key and returns the public URL of the object.
	Put(ctx context.Context, key, contentType string, r io.Reader) (string, error)
	// Delete removes key. Missing objects are not an error.
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// NewKey builds a unique object key for an image on a board.
func NewKey(boardID uuid.UUID, ext string) string {
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return path.Join("boards", boardID.String(), uuid.NewString()+ext)
}

// New picks the backend from STORAGE_DRIVER. The returned close func
// releases any client the store holds.
func New(ctx context.Context, env config.Env) (Store, func() error, error) {
	switch env.StorageDriver {
	case "gcs":
		client, err := NewGCSClient(ctx, env.GCPCredentials)
		if err != nil {
			return nil, nil, err
		}
		if env.GCSBucket == "" {
			client.Close()
			return nil, nil, fmt.Errorf("GCS_BUCKET not set")
		}
		return NewGCSStore(client, env.GCSBucket), client.Close, nil
	case "local", "":
		fs := afero.NewBasePathFs(afero.NewOsFs(), env.UploadDir)
		if err := fs.MkdirAll("/", 0o755); err != nil {
			return nil, nil, fmt.Errorf("create upload dir: %w", err)
		}
		return NewLocalStore(fs, env.PublicBaseURL+"/uploads"), func() error { return nil }, nil
	}
	return nil, nil, fmt.Errorf("unknown storage driver %q", env.StorageDriver)
}
