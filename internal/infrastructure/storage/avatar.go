// Package storage keeps user avatars in a Google Cloud Storage bucket.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/daniellescalera/user-management/pkg/helpers"
)

type AvatarStore struct {
	client *gcs.Client
	bucket string
}

func NewAvatarStore(client *gcs.Client, bucket string) *AvatarStore {
	return &AvatarStore{client: client, bucket: bucket}
}

// ObjectPath is avatars/<user id>/<random id><ext>.
func ObjectPath(userID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return path.Join("avatars", userID, uuid.NewString()+ext)
}

// Upload writes r under a fresh object path and returns its public URL.
func (s *AvatarStore) Upload(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	return helpers.UploadObject(ctx, s.client, s.bucket, ObjectPath(userID, filename), contentType, r)
}
