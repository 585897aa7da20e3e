package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

// CloudinaryStore implements ImageStore on Cloudinary.
type CloudinaryStore struct {
	cld    *cloudinary.Cloudinary
	folder string
}

// NewCloudinaryStore creates a new CloudinaryStore instance.
func NewCloudinaryStore(cloudName, apiKey, apiSecret, folder string) (*CloudinaryStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Cloudinary: %w", err)
	}
	return &CloudinaryStore{cld: cld, folder: folder}, nil
}

// Upload sends the image to the configured folder and returns its secure URL.
func (s *CloudinaryStore) Upload(ctx context.Context, file io.Reader) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	result, err := s.cld.Upload.Upload(ctx, file, uploader.UploadParams{Folder: s.folder})
	if err != nil {
		return "", fmt.Errorf("CloudinaryStore: failed to upload image: %w", err)
	}
	if result.SecureURL == "" {
		return "", fmt.Errorf("CloudinaryStore: no secure URL returned")
	}
	return result.SecureURL, nil
}

// Delete removes the image behind imageURL.
func (s *CloudinaryStore) Delete(ctx context.Context, imageURL string) error {
	publicID, err := ExtractPublicID(imageURL)
	if err != nil {
		return fmt.Errorf("could not extract public ID: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := s.cld.Upload.Destroy(ctx, uploader.DestroyParams{PublicID: publicID}); err != nil {
		return fmt.Errorf("CloudinaryStore: failed to delete image: %w", err)
	}
	return nil
}

// ExtractPublicID recovers the Cloudinary public ID from a delivery URL, e.g.
// https://res.cloudinary.com/demo/image/upload/v1234567890/services/abc123.jpg -> services/abc123
func ExtractPublicID(imageURL string) (string, error) {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return "", err
	}

	parts := strings.Split(strings.Trim(parsed.Path, "/"), "/")
	idx := -1
	for i, p := range parts {
		if p == "upload" {
			idx = i
			break
		}
	}
	if idx < 0 || idx+1 >= len(parts) {
		return "", fmt.Errorf("invalid cloudinary URL format")
	}

	rest := parts[idx+1:]
	if len(rest) > 1 && strings.HasPrefix(rest[0], "v") {
		rest = rest[1:]
	}
	id := strings.Join(rest, "/")
	return strings.TrimSuffix(id, path.Ext(id)), nil
}
