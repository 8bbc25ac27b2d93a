package supabase

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	storage "github.com/supabase-community/storage-go"
)

// StorageClient wraps Supabase object storage for ear photo uploads.
type StorageClient struct {
	client  *storage.Client
	bucket  string
	baseURL string
}

func NewStorageClient(supabaseURL, serviceKey, bucket string) (*StorageClient, error) {
	baseURL := strings.TrimSuffix(supabaseURL, "/")
	client := storage.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &StorageClient{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
	}, nil
}

// UploadImage stores raw image bytes under users/{ownerKey}/uploads/ and
// returns the storage path plus the publicly resolvable URL.
func (s *StorageClient) UploadImage(ownerKey, ext string, data []byte) (string, string, error) {
	if ext == "" {
		ext = "jpg"
	}
	filename := fmt.Sprintf("%d.%s", time.Now().UnixNano(), ext)
	storagePath := fmt.Sprintf("users/%s/uploads/%s", ownerKey, filename)

	contentType := "image/jpeg"
	upsert := false
	_, err := s.client.UploadFile(s.bucket, storagePath, bytes.NewReader(data), storage.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to upload image: %w", err)
	}

	return storagePath, s.PublicURL(storagePath), nil
}

func (s *StorageClient) PublicURL(storagePath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, storagePath)
}

// DeleteUserUploads removes every stored object under the owner's upload
// prefix. Used by the explicit data-reset flow.
func (s *StorageClient) DeleteUserUploads(ownerKey string) error {
	prefix := fmt.Sprintf("users/%s/uploads/", ownerKey)

	files, err := s.client.ListFiles(s.bucket, prefix, storage.FileSearchOptions{
		Limit: 1000,
	})
	if err != nil {
		return fmt.Errorf("failed to list uploads: %w", err)
	}

	if len(files) > 0 {
		paths := make([]string, len(files))
		for i, f := range files {
			paths[i] = f.Name
		}
		if _, err := s.client.RemoveFile(s.bucket, paths); err != nil {
			return fmt.Errorf("failed to delete uploads: %w", err)
		}
	}

	return nil
}
